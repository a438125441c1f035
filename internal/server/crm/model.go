// Package crm stores customer records and computes the dashboard
// statistics over them.
package crm

import "time"

// Statuses is the customer pipeline, in display order.
var Statuses = []string{"need_to_call", "contacted", "project_started", "continuing", "finished", "rejected"}

// DefaultStatus is used when a customer is created without one.
const DefaultStatus = "need_to_call"

// Platforms are the channels a customer can come from.
var Platforms = []string{"Instagram", "WhatsApp", "Facebook", "Telegram", "Email", "Phone"}

type Customer struct {
	ID                   int64
	FullName             string
	Username             string
	Platform             string
	PhoneNumber          string
	Status               string
	AssistantName        string
	Notes                string
	ConversationLanguage string
	CreatedAt            time.Time
}

// Input carries the submitted form fields of a customer.
type Input struct {
	FullName             string
	Username             string
	Platform             string
	PhoneNumber          string
	Status               string
	AssistantName        string
	Notes                string
	ConversationLanguage string
}

// Filter narrows List. Date is YYYY-MM-DD and matches the creation day.
type Filter struct {
	Search   string
	Status   string
	Platform string
	Date     string
}

type PeriodStats struct {
	Today       int
	ThisWeek    int
	ThisMonth   int
	Last3Months int
}

type Stats struct {
	TotalCustomers int
	ByStatus       map[string]int
	ByPlatform     map[string]int
	PeriodStats    PeriodStats
}
