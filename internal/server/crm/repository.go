package crm

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/crmconsole/internal/shared"
)

type Repository interface {
	Create(ctx context.Context, c *Customer) (*Customer, error)
	Get(ctx context.Context, id int64) (*Customer, error)
	// List returns every customer, newest first.
	List(ctx context.Context) ([]*Customer, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id int64) error
}

type MemoryRepository struct {
	mu        sync.RWMutex
	customers map[int64]*Customer
	nextID    int64
	now       func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{customers: make(map[int64]*Customer), nextID: 1, now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, c *Customer) (*Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *c
	cp.ID = r.nextID
	r.nextID++
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = r.now().UTC()
	}
	r.customers[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (r *MemoryRepository) Get(_ context.Context, id int64) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, shared.ErrorNotFound
	}
	out := *c
	return &out, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Customer, 0, len(r.customers))
	for _, c := range r.customers {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, c *Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.customers[c.ID]; !ok {
		return shared.ErrorNotFound
	}
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.customers[id]; !ok {
		return shared.ErrorNotFound
	}
	delete(r.customers, id)
	return nil
}
