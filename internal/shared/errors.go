// Package shared holds the error values the API server's services return
// and its HTTP layer maps to status codes.
package shared

import "errors"

var (

	// common errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorValidation    = errors.New("validation error")
	ErrorInternal      = errors.New("internal error")

	// auth-specific errors
	ErrorInvalidToken            = errors.New("invalid token")
	ErrorTokenExpired            = errors.New("token expired")
	ErrorInvalidAuthheaderFormat = errors.New("invalid auth header format")
	ErrorInvalidLoginPassword    = errors.New("invalid login/password")
	ErrorInvalidCode             = errors.New("invalid verification code")
	ErrorNotVerified             = errors.New("email not verified")
	ErrorInactive                = errors.New("account is disabled")
	ErrorForbidden               = errors.New("forbidden")
)

// ValidationError is an ErrorValidation with a message fit for the client.
type ValidationError struct {
	Msg string
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrorValidation }
