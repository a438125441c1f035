package services

import (
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/crmconsole/internal/client/models"
)

const (
	MinPasswordLength = 8
	OtpLength         = 4

	msgFillAllFields    = "Please fill in all fields"
	msgPasswordTooShort = "Password must be at least 8 characters long"
	msgPasswordMismatch = "Passwords do not match"
	msgInvalidCode      = "Please enter a valid 4-digit code"
	msgCustomerRequired = "Full name, platform, phone number, and status are required."
	msgAccountRequired  = "Name, email and role are required."
	msgAccountUpdate    = "Name and email are required."
)

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name     string
	Surname  string
	Email    string
	Password string
}

func (in RegisterInput) normalize() RegisterInput {
	return RegisterInput{
		Name:     strings.TrimSpace(in.Name),
		Surname:  strings.TrimSpace(in.Surname),
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	}
}

// ValidateSignup runs the sign-up form checks, including the password
// confirmation that never reaches the service.
func ValidateSignup(in RegisterInput, confirm string) error {
	if err := validateRegister(in.normalize()); err != nil {
		return err
	}
	if in.Password != confirm {
		return validationError(OpRegister, msgPasswordMismatch)
	}
	return nil
}

func validateRegister(in RegisterInput) *OpError {
	if in.Name == "" || in.Surname == "" || in.Email == "" || in.Password == "" {
		return validationError(OpRegister, msgFillAllFields)
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return validationError(OpRegister, msgPasswordTooShort)
	}
	return nil
}

func validateLogin(username, password string) *OpError {
	if username == "" || password == "" {
		return validationError(OpLogin, msgFillAllFields)
	}
	return nil
}

func validateCode(code string) *OpError {
	if len(code) != OtpLength {
		return validationError(OpVerifyOtp, msgInvalidCode)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return validationError(OpVerifyOtp, msgInvalidCode)
		}
	}
	return nil
}

func validateCustomer(in models.CustomerInput) error {
	return requireFields(msgCustomerRequired, in.FullName, in.Platform, in.PhoneNumber, in.Status)
}

func requireFields(msg string, fields ...string) error {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return &OpError{Kind: ErrValidationFailed, Message: msg}
		}
	}
	return nil
}
