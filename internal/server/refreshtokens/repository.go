// Package refreshtokens stores the refresh tokens handed out on login.
package refreshtokens

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	// DeleteForUser drops every token of userID.
	DeleteForUser(ctx context.Context, userID string) error
}
