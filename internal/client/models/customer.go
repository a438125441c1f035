package models

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Customer is a CRM record.
type Customer struct {
	ID                   int64  `json:"id"`
	FullName             string `json:"full_name"`
	Username             string `json:"username"`
	Platform             string `json:"platform"`
	PhoneNumber          string `json:"phone_number"`
	Status               string `json:"status"`
	AssistantName        string `json:"assistant_name,omitempty"`
	Notes                string `json:"notes,omitempty"`
	AudioFileID          string `json:"audio_file_id,omitempty"`
	AudioURL             string `json:"audio_url,omitempty"`
	ConversationLanguage string `json:"conversation_language,omitempty"`
	CreatedAt            string `json:"created_at"`
}

// CustomerInput is the form submitted when creating or editing a customer.
type CustomerInput struct {
	FullName             string
	PhoneNumber          string
	Platform             string
	Status               string
	AssistantName        string
	Notes                string
	ConversationLanguage string
}

// Normalize trims every field.
func (in CustomerInput) Normalize() CustomerInput {
	return CustomerInput{
		FullName:             strings.TrimSpace(in.FullName),
		PhoneNumber:          strings.TrimSpace(in.PhoneNumber),
		Platform:             strings.TrimSpace(in.Platform),
		Status:               strings.TrimSpace(in.Status),
		AssistantName:        strings.TrimSpace(in.AssistantName),
		Notes:                strings.TrimSpace(in.Notes),
		ConversationLanguage: strings.TrimSpace(in.ConversationLanguage),
	}
}

var whitespace = regexp.MustCompile(`\s+`)

// Username derives the CRM username from the full name: lower case, runs of
// whitespace replaced by a dot.
func (in CustomerInput) Username() string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(in.FullName)), ".")
}

// CustomerFilter narrows the customer list. "all" and "" both mean no
// filter for Status and Platform.
type CustomerFilter struct {
	Search   string
	Status   string
	Platform string
	Date     string
}

// Normalize drops the "all" sentinel and surrounding whitespace.
func (f CustomerFilter) Normalize() CustomerFilter {
	clean := func(s string) string {
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, "all") {
			return ""
		}
		return s
	}
	return CustomerFilter{
		Search:   strings.TrimSpace(f.Search),
		Status:   clean(f.Status),
		Platform: clean(f.Platform),
		Date:     strings.TrimSpace(f.Date),
	}
}

// IsZero reports whether no filter is active after normalisation.
func (f CustomerFilter) IsZero() bool {
	n := f.Normalize()
	return n.Search == "" && n.Status == "" && n.Platform == "" && n.Date == ""
}

// CustomerPage is a customer listing. The API answers either with a bare
// array or with an object carrying the list and the allowed statuses.
type CustomerPage struct {
	Customers     []Customer `json:"customers"`
	StatusChoices []string   `json:"status_choices"`
}

func (p *CustomerPage) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = CustomerPage{}
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var list []Customer
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*p = CustomerPage{Customers: list}
		return nil
	}
	type plain CustomerPage
	var aux plain
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = CustomerPage(aux)
	return nil
}

type PeriodStats struct {
	Today       int `json:"today"`
	ThisWeek    int `json:"this_week"`
	ThisMonth   int `json:"this_month"`
	Last3Months int `json:"last_3_months"`
}

// CRMStats is the payload of GET /crm/stats.
type CRMStats struct {
	TotalCustomers int            `json:"total_customers"`
	ByStatus       map[string]int `json:"by_status,omitempty"`
	ByPlatform     map[string]int `json:"by_platform,omitempty"`
	PeriodStats    PeriodStats    `json:"period_stats"`
}
