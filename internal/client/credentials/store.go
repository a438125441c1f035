// Package credentials persists the bearer access token, the refresh token
// and the pending-registration email in the console's local database.
//
// Values are loaded once when a store is opened and then served from memory,
// so Get never blocks on I/O and can authorise requests before any
// rehydration probe completes. Writes go to the database first and only
// replace the in-memory copy once they are durable.
package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/crmconsole/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/crmconsole/internal/common"
	"github.com/dmitrijs2005/crmconsole/internal/dbx"
)

// ErrEmptyAccessToken is returned by Set when the access token is missing.
var ErrEmptyAccessToken = errors.New("access token is required")

// Credentials is the bearer token pair issued by the identity service.
// RefreshToken is optional.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Store owns Credentials. Nothing else in the console writes the token keys.
type Store struct {
	db *sql.DB

	mu      sync.RWMutex
	current *Credentials
}

// Open loads any previously stored credentials.
func Open(ctx context.Context, db *sql.DB) (*Store, error) {
	repo := metadata.NewSQLiteRepository(db, metadata.TableDurable)

	access, err := repo.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return nil, fmt.Errorf("load access token: %w", err)
	}
	refresh, err := repo.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}

	s := &Store{db: db}
	if len(access) > 0 {
		s.current = &Credentials{AccessToken: string(access), RefreshToken: string(refresh)}
	}
	return s, nil
}

// Get returns a copy of the stored credentials, or nil when anonymous.
func (s *Store) Get() *Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// AccessToken returns the current access token or "".
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return ""
	}
	return s.current.AccessToken
}

// Set replaces the stored credentials. A missing refresh token removes any
// previously stored one so the pair never mixes two sessions.
func (s *Store) Set(ctx context.Context, c Credentials) error {
	if c.AccessToken == "" {
		return ErrEmptyAccessToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx, metadata.TableDurable)
		if err := repo.Set(ctx, common.AccessTokenKey, []byte(c.AccessToken)); err != nil {
			return err
		}
		if c.RefreshToken == "" {
			return repo.Delete(ctx, common.RefreshTokenKey)
		}
		return repo.Set(ctx, common.RefreshTokenKey, []byte(c.RefreshToken))
	})
	if err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}

	s.current = &c
	return nil
}

// Clear forgets the credentials. The in-memory copy is dropped even when the
// database write fails, so a failed clear never leaves the console signed in.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx, metadata.TableDurable)
		if err := repo.Delete(ctx, common.AccessTokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, common.RefreshTokenKey)
	})
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
