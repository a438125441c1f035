// Package models defines the data shapes the console exchanges with the
// remote API: the authenticated user, superuser-managed accounts and CRM
// customers.
package models
