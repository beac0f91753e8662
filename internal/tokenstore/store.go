// Package tokenstore persists the session credentials (access token, optional
// refresh token, user snapshot) across restarts. Concurrent writers are not
// coordinated: last write wins.
package tokenstore

import (
	"context"
	"sync"

	"github.com/prefeitura-digital/authgate/internal/models"
)

// Record is the full persisted client state for one principal.
type Record struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *models.User `json:"user,omitempty"`
}

type Store interface {
	// Set replaces the stored record.
	Set(ctx context.Context, rec Record) error
	// Get returns the stored record, or ok=false when nothing is held.
	Get(ctx context.Context) (rec Record, ok bool, err error)
	// Clear deletes the stored record. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Memory is the in-process backend, used in tests and as the anonymous store
// for requests that carry no session.
type Memory struct {
	mu   sync.Mutex
	rec  Record
	held bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Set(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	m.held = true
	return nil
}

func (m *Memory) Get(_ context.Context) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, m.held, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = Record{}
	m.held = false
	return nil
}
