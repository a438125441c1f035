package credentials

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/crmconsole/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/crmconsole/internal/common"
)

// PendingStore keeps the email of a registration that still awaits OTP
// verification. It lives in the session-scoped table: it survives a restart
// of the console but is wiped on logout.
type PendingStore struct {
	repo metadata.Repository

	mu    sync.RWMutex
	email string
}

// OpenPending loads a previously stored pending email, if any.
func OpenPending(ctx context.Context, db *sql.DB) (*PendingStore, error) {
	repo := metadata.NewSQLiteRepository(db, metadata.TableSession)

	v, err := repo.Get(ctx, common.PendingEmailKey)
	if err != nil {
		return nil, fmt.Errorf("load pending registration: %w", err)
	}
	return &PendingStore{repo: repo, email: string(v)}, nil
}

// Get returns the pending email or "".
func (p *PendingStore) Get() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.email
}

func (p *PendingStore) Set(ctx context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.repo.Set(ctx, common.PendingEmailKey, []byte(email)); err != nil {
		return fmt.Errorf("store pending registration: %w", err)
	}
	p.email = email
	return nil
}

// Clear discards the pending registration and every other session-scoped
// value.
func (p *PendingStore) Clear(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.email = ""
	if err := p.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear session state: %w", err)
	}
	return nil
}
