package client

import (
	"context"

	"github.com/dmitrijs2005/crmconsole/internal/client/models"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse echoes the email the OTP was sent to. User is optional.
type RegisterResponse struct {
	Email string       `json:"email"`
	User  *models.User `json:"user,omitempty"`
}

// AuthResponse is returned by OTP verification and login.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *models.User `json:"user,omitempty"`
}

// AuthAPI is the identity service contract consumed by the session
// controller.
type AuthAPI interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	VerifyEmail(ctx context.Context, email, code string) (*AuthResponse, error)
	// ResendOTP asks the backend to issue a fresh code for email.
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, username, password string) (*AuthResponse, error)
	CurrentUser(ctx context.Context) (*models.User, error)
}

type AdminAPI interface {
	AdminDashboard(ctx context.Context) (*models.AdminDashboard, error)
	CreateUser(ctx context.Context, u models.NewAccount) (*models.AccountUser, error)
	UpdateUser(ctx context.Context, id int64, u models.AccountUpdate) (*models.AccountUser, error)
	DeleteUser(ctx context.Context, id int64) error
	ToggleUserActive(ctx context.Context, id int64) error
}

type CRMAPI interface {
	LatestCustomers(ctx context.Context, limit int) (*models.CustomerPage, error)
	Customers(ctx context.Context, f models.CustomerFilter) (*models.CustomerPage, error)
	CreateCustomer(ctx context.Context, in models.CustomerInput) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, in models.CustomerInput) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	CRMStats(ctx context.Context) (*models.CRMStats, error)
}

// Gateway is everything the console talks to the backend about.
type Gateway interface {
	AuthAPI
	AdminAPI
	CRMAPI
}
