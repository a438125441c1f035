package refreshtokens

import (
	"context"
	"sync"
	"time"
)

type refreshToken struct {
	userID    string
	expiresAt time.Time
}

// MemoryRepository keeps refresh tokens in a map. Expired tokens are dropped
// whenever a new one is created.
type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]refreshToken
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]refreshToken), now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, userID string, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, t := range r.tokens {
		if now.After(t.expiresAt) {
			delete(r.tokens, k)
		}
	}
	r.tokens[token] = refreshToken{userID: userID, expiresAt: now.Add(validity)}
	return nil
}

func (r *MemoryRepository) DeleteForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, t := range r.tokens {
		if t.userID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

// Count returns the number of live tokens held for userID.
func (r *MemoryRepository) Count(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, t := range r.tokens {
		if t.userID == userID && !r.now().After(t.expiresAt) {
			n++
		}
	}
	return n
}
