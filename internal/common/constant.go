// Package common contains shared constants and sentinel errors used across
// the console client and the development API.
package common

// Storage keys used by the console's local database. The token keys mirror
// the names the web console used in durable browser storage.
const (
	AccessTokenKey  = "token"
	RefreshTokenKey = "refresh_token"
	PendingEmailKey = "pending_email"
)

// RequestIDHeaderName carries a per-request correlation ID on outbound
// gateway calls and is echoed by the development API.
const RequestIDHeaderName = "X-Request-ID"

// AuthorizationHeaderName and BearerPrefix describe how access tokens are
// attached to outbound HTTP requests.
const (
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "
)
