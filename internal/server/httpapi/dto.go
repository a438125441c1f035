package httpapi

import (
	"time"

	"github.com/dmitrijs2005/crmconsole/internal/server/crm"
	"github.com/dmitrijs2005/crmconsole/internal/server/users"
)

type registerRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type userDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
	IsActive bool   `json:"is_active"`
}

func toUserDTO(u *users.User) userDTO {
	return userDTO{
		ID:       u.ID,
		Name:     u.Name,
		Surname:  u.Surname,
		Email:    u.Email,
		Role:     u.Role,
		Verified: u.Verified,
		IsActive: u.IsActive,
	}
}

type registerResponse struct {
	Email string  `json:"email"`
	User  userDTO `json:"user"`
}

// tokenResponse doubles as the OAuth2 token response of /auth/login.
type tokenResponse struct {
	AccessToken  string  `json:"access_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int64   `json:"expires_in,omitempty"`
	RefreshToken string  `json:"refresh_token"`
	User         userDTO `json:"user"`
}

type accountRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
	Password string `json:"password"`
}

func (a accountRequest) toAccount() users.Account {
	return users.Account{
		Name:     a.Name,
		Surname:  a.Surname,
		Email:    a.Email,
		Role:     a.Role,
		IsActive: a.IsActive,
		Password: a.Password,
	}
}

type userStatisticsDTO struct {
	UserCount         int `json:"user_count"`
	ActiveUserCount   int `json:"active_user_count"`
	InactiveUserCount int `json:"inactive_user_count"`
}

type dashboardResponse struct {
	Users      []userDTO         `json:"users"`
	Statistics userStatisticsDTO `json:"statistics"`
}

type customerDTO struct {
	ID                   int64  `json:"id"`
	FullName             string `json:"full_name"`
	Username             string `json:"username"`
	Platform             string `json:"platform"`
	PhoneNumber          string `json:"phone_number"`
	Status               string `json:"status"`
	AssistantName        string `json:"assistant_name,omitempty"`
	Notes                string `json:"notes,omitempty"`
	ConversationLanguage string `json:"conversation_language,omitempty"`
	CreatedAt            string `json:"created_at"`
}

func toCustomerDTO(c *crm.Customer) customerDTO {
	return customerDTO{
		ID:                   c.ID,
		FullName:             c.FullName,
		Username:             c.Username,
		Platform:             c.Platform,
		PhoneNumber:          c.PhoneNumber,
		Status:               c.Status,
		AssistantName:        c.AssistantName,
		Notes:                c.Notes,
		ConversationLanguage: c.ConversationLanguage,
		CreatedAt:            c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type customerPage struct {
	Customers     []customerDTO `json:"customers"`
	StatusChoices []string      `json:"status_choices"`
}

func toCustomerPage(cs []*crm.Customer) customerPage {
	p := customerPage{Customers: make([]customerDTO, 0, len(cs)), StatusChoices: crm.Statuses}
	for _, c := range cs {
		p.Customers = append(p.Customers, toCustomerDTO(c))
	}
	return p
}

type periodStatsDTO struct {
	Today       int `json:"today"`
	ThisWeek    int `json:"this_week"`
	ThisMonth   int `json:"this_month"`
	Last3Months int `json:"last_3_months"`
}

type statsResponse struct {
	TotalCustomers int            `json:"total_customers"`
	ByStatus       map[string]int `json:"by_status"`
	ByPlatform     map[string]int `json:"by_platform"`
	PeriodStats    periodStatsDTO `json:"period_stats"`
}
