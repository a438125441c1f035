package models

// AccountUser is a user as seen by the superuser console.
type AccountUser struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// NewAccount is the payload for creating a user from the superuser console.
type NewAccount struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
	Password string `json:"password,omitempty"`
}

// AccountUpdate replaces a user's editable fields. An empty Password leaves
// the password unchanged.
type AccountUpdate struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
	Password string `json:"password,omitempty"`
}

type UserStatistics struct {
	UserCount         int `json:"user_count"`
	ActiveUserCount   int `json:"active_user_count"`
	InactiveUserCount int `json:"inactive_user_count"`
}

// AdminDashboard is the payload of GET /superuser/dashboard.
type AdminDashboard struct {
	Users      []AccountUser  `json:"users"`
	Statistics UserStatistics `json:"statistics"`
}
