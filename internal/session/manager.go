// Package session holds the authenticated-principal state machine. The
// Manager is the single writer over its state and over the token store;
// everything else reads projections of Snapshot.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/prefeitura-digital/authgate/internal/apiclient"
	"github.com/prefeitura-digital/authgate/internal/models"
	"github.com/prefeitura-digital/authgate/internal/tokenstore"
)

// Snapshot is a read-only copy of the session state.
// Invariant: Authenticated is true iff User is non-nil and a token is held.
type Snapshot struct {
	User          *models.User
	Authenticated bool
	Loading       bool
	Err           string
}

type Manager struct {
	client *apiclient.Client
	store  tokenstore.Store
	log    zerolog.Logger

	mu            sync.Mutex
	user          *models.User
	authenticated bool
	loading       bool
	err           string
}

func NewManager(client *apiclient.Client, store tokenstore.Store, log zerolog.Logger) *Manager {
	return &Manager{
		client: client,
		store:  store,
		log:    log,
	}
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Authenticated: m.authenticated,
		Loading:       m.loading,
		Err:           m.err,
	}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	return snap
}

// begin marks an operation in flight and clears any prior error. The returned
// func must be deferred: Loading settles to false on every exit path.
func (m *Manager) begin() func() {
	m.mu.Lock()
	m.loading = true
	m.err = ""
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}
}

// Login authenticates and commits the session. On failure the error is both
// recorded in the snapshot and returned, so forms can react either way.
func (m *Manager) Login(ctx context.Context, email, password string, rememberMe bool) error {
	defer m.begin()()

	result, err := m.client.Login(ctx, apiclient.LoginInput{
		Email:      email,
		Password:   password,
		RememberMe: rememberMe,
	})
	if err != nil {
		m.mu.Lock()
		m.user = nil
		m.authenticated = false
		m.err = apiclient.Message(err)
		m.mu.Unlock()
		return err
	}

	user := result.User
	m.mu.Lock()
	m.user = &user
	m.authenticated = true
	m.mu.Unlock()
	return nil
}

// Register creates an account. The returned user is kept as a courtesy value
// only: registration may await approval, so the session stays unauthenticated.
func (m *Manager) Register(ctx context.Context, in apiclient.RegisterInput) error {
	defer m.begin()()

	user, err := m.client.Register(ctx, in)
	if err != nil {
		m.mu.Lock()
		m.err = apiclient.Message(err)
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.user = &user
	m.authenticated = false
	m.mu.Unlock()
	return nil
}

// Logout notifies the backend on a best-effort basis, then unconditionally
// clears the store and resets the state. It never fails.
func (m *Manager) Logout(ctx context.Context) {
	defer m.begin()()

	if err := m.client.Logout(ctx); err != nil {
		m.log.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
	}
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn().Err(err).Msg("token store clear failed")
	}

	m.mu.Lock()
	m.user = nil
	m.authenticated = false
	m.err = ""
	m.mu.Unlock()
}

// CurrentUser hydrates the session from the store, once per process start.
// With no stored token it settles logged out without touching the network.
// A rejected token is expected after expiry, so failures clear the store and
// settle logged out silently.
func (m *Manager) CurrentUser(ctx context.Context) {
	_, held, err := m.store.Get(ctx)
	if err != nil || !held {
		m.mu.Lock()
		m.user = nil
		m.authenticated = false
		m.loading = false
		m.mu.Unlock()
		return
	}

	defer m.begin()()

	user, err := m.client.Me(ctx)
	if err != nil {
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.log.Warn().Err(clearErr).Msg("token store clear failed")
		}
		m.mu.Lock()
		m.user = nil
		m.authenticated = false
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	m.user = &user
	m.authenticated = true
	m.mu.Unlock()
}

// UpdateUser merges a completed profile edit into the current user and the
// stored snapshot. No-op when nobody is logged in.
func (m *Manager) UpdateUser(ctx context.Context, patch models.UserPatch) {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return
	}
	merged := patch.Apply(*m.user)
	m.user = &merged
	m.mu.Unlock()

	if rec, held, err := m.store.Get(ctx); err == nil && held {
		snapshot := merged
		rec.User = &snapshot
		if err := m.store.Set(ctx, rec); err != nil {
			m.log.Warn().Err(err).Msg("persist user snapshot failed")
		}
	}
}

func (m *Manager) ClearError() {
	m.mu.Lock()
	m.err = ""
	m.mu.Unlock()
}
