package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/crmconsole/internal/shared"
)

// MemoryRepository is a Repository held in process memory. Emails are
// unique, compared case-insensitively.
type MemoryRepository struct {
	mu     sync.RWMutex
	users  map[int64]*User
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[int64]*User), nextID: 1}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func clone(u *User) *User {
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &c
}

func (r *MemoryRepository) findByEmail(email string) *User {
	key := emailKey(email)
	for _, u := range r.users {
		if emailKey(u.Email) == key {
			return u
		}
	}
	return nil
}

func (r *MemoryRepository) Create(_ context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByEmail(user.Email) != nil {
		return nil, shared.ErrorAlreadyExists
	}

	u := clone(user)
	if u.Role == "" {
		u.Role = RoleUser
		if len(r.users) == 0 {
			u.Role = RoleSuperuser
		}
	}
	u.ID = r.nextID
	r.nextID++
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users[u.ID] = u

	return clone(u), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u := r.findByEmail(email)
	if u == nil {
		return nil, shared.ErrorNotFound
	}
	return clone(u), nil
}

// List returns all users ordered by id.
func (r *MemoryRepository) List(_ context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, clone(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return shared.ErrorNotFound
	}
	if other := r.findByEmail(user.Email); other != nil && other.ID != user.ID {
		return shared.ErrorAlreadyExists
	}
	r.users[user.ID] = clone(user)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return shared.ErrorNotFound
	}
	delete(r.users, id)
	return nil
}
