// Package client is the console's view of the backend.
//
// # Overview
//
// The package provides:
//  1. Transport-agnostic contracts: AuthAPI (register, OTP verification and
//     resend, login, current user), AdminAPI (superuser console) and CRMAPI
//     (customer records and statistics), combined as Gateway.
//  2. HTTPClient, a REST implementation that attaches the bearer token and a
//     request id to every call, logs in through the OAuth2 password grant and
//     maps failures to the errors below.
//
// # Error Handling
//
// Network failures wrap ErrUnavailable. Non-2xx answers are returned as
// *APIError carrying the status code and the message extracted from the
// body; a 401 also matches ErrUnauthorized via errors.Is. MessageOf pulls the
// message back out for display.
//
// All methods accept a context.Context and honor cancellation. HTTPClient is
// safe for concurrent use.
package client
