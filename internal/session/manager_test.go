package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-digital/authgate/internal/apiclient"
	"github.com/prefeitura-digital/authgate/internal/models"
	"github.com/prefeitura-digital/authgate/internal/tokenstore"
)

type backendOptions struct {
	logoutStatus int
}

func newBackend(t *testing.T, opts backendOptions) *httptest.Server {
	t.Helper()

	user := models.User{
		ID: 5, Name: "Dora", Email: "dora@example.com",
		Role: models.RoleEditor, Department: "Legislativo", Status: models.UserStatusActive,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req apiclient.LoginInput
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "dora@example.com" || req.Password != "segredo123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"invalid credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(apiclient.LoginResult{
			AccessToken:  "access-dora",
			RefreshToken: "refresh-dora",
			User:         user,
		})
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-dora" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"token expired"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req apiclient.RegisterInput
		_ = json.NewDecoder(r.Body).Decode(&req)
		created := user
		created.Email = req.Email
		created.Status = models.UserStatusPending
		_ = json.NewEncoder(w).Encode(created)
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		status := opts.logoutStatus
		if status == 0 {
			status = http.StatusNoContent
		}
		w.WriteHeader(status)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newManager(t *testing.T, baseURL string) (*Manager, tokenstore.Store) {
	t.Helper()
	store := tokenstore.NewMemory()
	client := apiclient.New(baseURL, store)
	return NewManager(client, store, zerolog.Nop()), store
}

func TestHydrationWithoutTokenMakesNoNetworkCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected network call to %s", r.URL.Path)
	}))
	t.Cleanup(srv.Close)

	manager, _ := newManager(t, srv.URL)
	manager.CurrentUser(context.Background())

	snap := manager.Snapshot()
	assert.False(t, snap.Authenticated)
	assert.Nil(t, snap.User)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Err)
}

func TestLoginRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t, backendOptions{})
	manager, store := newManager(t, srv.URL)

	require.NoError(t, manager.Login(ctx, "dora@example.com", "segredo123", false))

	snap := manager.Snapshot()
	assert.True(t, snap.Authenticated)
	require.NotNil(t, snap.User)
	assert.Equal(t, models.RoleEditor, snap.User.Role)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Err)

	rec, held, err := store.Get(ctx)
	require.NoError(t, err)
	require.True(t, held)
	assert.NotEmpty(t, rec.AccessToken)
}

func TestFailedLoginSetsErrorAndRejects(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t, backendOptions{})
	manager, store := newManager(t, srv.URL)

	err := manager.Login(ctx, "dora@example.com", "wrong", false)
	require.Error(t, err)

	snap := manager.Snapshot()
	assert.False(t, snap.Authenticated)
	assert.Nil(t, snap.User)
	assert.Equal(t, "invalid credentials", snap.Err)
	assert.False(t, snap.Loading)

	_, held, _ := store.Get(ctx)
	assert.False(t, held)
}

func TestLoadingSettlesAfterMixedLogins(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t, backendOptions{})
	manager, _ := newManager(t, srv.URL)

	_ = manager.Login(ctx, "dora@example.com", "wrong", false)
	assert.False(t, manager.Snapshot().Loading)

	require.NoError(t, manager.Login(ctx, "dora@example.com", "segredo123", false))
	assert.False(t, manager.Snapshot().Loading)
	assert.Empty(t, manager.Snapshot().Err, "successful login clears the previous error")

	_ = manager.Login(ctx, "dora@example.com", "wrong", true)
	assert.False(t, manager.Snapshot().Loading)
}

func TestLogoutClearsEverythingEvenWhenBackendFails(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t, backendOptions{logoutStatus: http.StatusInternalServerError})
	manager, store := newManager(t, srv.URL)

	require.NoError(t, manager.Login(ctx, "dora@example.com", "segredo123", false))
	manager.Logout(ctx)

	snap := manager.Snapshot()
	assert.False(t, snap.Authenticated)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Err)
	assert.False(t, snap.Loading)

	_, held, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestHydrationWithValidToken(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t, backendOptions{})
	manager, store := newManager(t, srv.URL)

	require.NoError(t, store.Set(ctx, tokenstore.Record{AccessToken: "access-dora"}))
	manager.CurrentUser(ctx)

	snap := manager.Snapshot()
	assert.True(t, snap.Authenticated)
	require.NotNil(t, snap.User)
	assert.Equal(t, "dora@example.com", snap.User.Email)
}

func TestHydrationWithStaleTokenSettlesSilently(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t, backendOptions{})
	manager, store := newManager(t, srv.URL)

	require.NoError(t, store.Set(ctx, tokenstore.Record{AccessToken: "expired-token"}))
	manager.CurrentUser(ctx)

	snap := manager.Snapshot()
	assert.False(t, snap.Authenticated)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Err, "an expired token on reload is expected, not an error")
	assert.False(t, snap.Loading)

	_, held, _ := store.Get(ctx)
	assert.False(t, held, "stale token is cleared")
}

func TestRegisterDoesNotAuthenticate(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t, backendOptions{})
	manager, store := newManager(t, srv.URL)

	err := manager.Register(ctx, apiclient.RegisterInput{
		Name: "Novo", Email: "novo@example.com", Password: "segredo123",
		Department: "Protocolo", Role: "viewer", Phone: "11 99999-0000",
	})
	require.NoError(t, err)

	snap := manager.Snapshot()
	assert.False(t, snap.Authenticated, "registration may await approval")
	require.NotNil(t, snap.User, "returned user is kept as a courtesy value")
	assert.Equal(t, "novo@example.com", snap.User.Email)

	_, held, _ := store.Get(ctx)
	assert.False(t, held, "no tokens are stored by registration")
}

func TestUpdateUserMergesAndPersists(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t, backendOptions{})
	manager, store := newManager(t, srv.URL)

	require.NoError(t, manager.Login(ctx, "dora@example.com", "segredo123", false))

	newName := "Dora Editada"
	newPhone := "11 98888-7777"
	manager.UpdateUser(ctx, models.UserPatch{Name: &newName, Phone: &newPhone})

	snap := manager.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, "Dora Editada", snap.User.Name)
	assert.Equal(t, "11 98888-7777", snap.User.Phone)
	assert.Equal(t, "dora@example.com", snap.User.Email, "untouched fields survive")

	rec, held, err := store.Get(ctx)
	require.NoError(t, err)
	require.True(t, held)
	require.NotNil(t, rec.User)
	assert.Equal(t, "Dora Editada", rec.User.Name)
}

func TestUpdateUserIsNoOpWhenLoggedOut(t *testing.T) {
	srv := newBackend(t, backendOptions{})
	manager, _ := newManager(t, srv.URL)

	name := "Ninguém"
	manager.UpdateUser(context.Background(), models.UserPatch{Name: &name})

	assert.Nil(t, manager.Snapshot().User)
}

func TestClearError(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t, backendOptions{})
	manager, _ := newManager(t, srv.URL)

	_ = manager.Login(ctx, "dora@example.com", "wrong", false)
	require.NotEmpty(t, manager.Snapshot().Err)

	manager.ClearError()
	assert.Empty(t, manager.Snapshot().Err)
}
