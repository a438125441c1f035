package users

import "time"

const (
	RoleSuperuser = "superuser"
	RoleAdmin     = "admin"
	RoleUser      = "user"
)

type User struct {
	ID           int64
	Name         string
	Surname      string
	Email        string
	PasswordHash []byte
	Role         string
	Verified     bool
	IsActive     bool
	CreatedAt    time.Time
}

func validRole(r string) bool {
	switch r {
	case RoleSuperuser, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// Statistics summarizes the user base for the superuser dashboard.
type Statistics struct {
	UserCount         int
	ActiveUserCount   int
	InactiveUserCount int
}
