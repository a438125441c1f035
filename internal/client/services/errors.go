package services

import (
	"errors"

	"github.com/dmitrijs2005/crmconsole/internal/client/client"
)

// Error kinds. Every failure returned by the services wraps exactly one of
// them and can be matched with errors.Is.
var (
	ErrValidationFailed      = errors.New("validation failed")
	ErrRegistrationFailed    = errors.New("registration failed")
	ErrOtpVerificationFailed = errors.New("otp verification failed")
	ErrResendFailed          = errors.New("resend failed")
	ErrLoginFailed           = errors.New("login failed")
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrMissingContext        = errors.New("missing context")
	ErrCooldownActive        = errors.New("resend cooldown active")
	ErrOperationInFlight     = errors.New("operation already in progress")
	ErrRequestFailed         = errors.New("request failed")
)

var fallbackMessages = map[error]string{
	ErrRegistrationFailed:    "Registration failed",
	ErrOtpVerificationFailed: "OTP verification failed",
	ErrResendFailed:          "Failed to resend OTP",
	ErrLoginFailed:           "Login failed",
	ErrNotAuthenticated:      "Not authenticated",
	ErrMissingContext:        "No pending registration",
	ErrCooldownActive:        "Please wait before requesting a new code",
	ErrRequestFailed:         "Request failed",
}

// OpError is the single error value an operation surfaces. Message is meant
// for display: the backend's message when it sent one, a fixed fallback
// otherwise.
type OpError struct {
	Op      Operation
	Kind    error
	Message string
	Err     error
}

func (e *OpError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newOpError(op Operation, kind, err error) *OpError {
	msg := client.MessageOf(err)
	if msg == "" {
		msg = fallbackMessages[kind]
	}
	return &OpError{Op: op, Kind: kind, Message: msg, Err: err}
}

func validationError(op Operation, msg string) *OpError {
	return &OpError{Op: op, Kind: ErrValidationFailed, Message: msg}
}

// Message returns the display text for err: OpError.Message when err is an
// OpError, err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Error()
	}
	return err.Error()
}
