// Package users registers, verifies, authenticates and administers the API
// server's accounts.
package users

import (
	"context"
)

type Repository interface {
	// Create stores a new user. An empty Role becomes RoleSuperuser when the
	// repository holds no users yet and RoleUser otherwise.
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int64) error
}
