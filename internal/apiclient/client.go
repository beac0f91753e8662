// Package apiclient talks to the document platform's REST backend. It owns
// bearer-token injection, the one-shot refresh-on-401 recovery, and the
// normalization of every failure into *Error.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prefeitura-digital/authgate/internal/models"
	"github.com/prefeitura-digital/authgate/internal/tokenstore"
)

// DefaultTimeout bounds every backend call so callers' in-flight flags can
// never hang. Timeouts surface as network errors (status 0).
const DefaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	store   tokenstore.Store
	http    *http.Client
}

type Option func(*Client, *Transport)

// WithBaseTransport shares a pooled transport across per-session clients.
func WithBaseTransport(base http.RoundTripper) Option {
	return func(_ *Client, t *Transport) {
		t.Base = base
	}
}

// WithOnSessionExpired installs the hook fired when refresh fails for good.
func WithOnSessionExpired(fn func()) Option {
	return func(_ *Client, t *Transport) {
		t.OnSessionExpired = fn
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client, _ *Transport) {
		c.http.Timeout = d
	}
}

func New(baseURL string, store tokenstore.Store, opts ...Option) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")

	transport := &Transport{
		Store:      store,
		RefreshURL: baseURL + "/auth/refresh",
	}
	client := &Client{
		baseURL: baseURL,
		store:   store,
		http: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
	}

	for _, opt := range opts {
		opt(client, transport)
	}
	return client
}

type LoginInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me,omitempty"`
}

type LoginResult struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

// Login authenticates and persists the returned tokens plus the user snapshot.
func (c *Client) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &result); err != nil {
		return LoginResult{}, err
	}

	if result.AccessToken != "" {
		user := result.User
		err := c.store.Set(ctx, tokenstore.Record{
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
			User:         &user,
		})
		if err != nil {
			return LoginResult{}, fmt.Errorf("persist session: %w", err)
		}
	}
	return result, nil
}

type RegisterInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
	Role       string `json:"role"`
	Phone      string `json:"phone"`
}

// Register creates an account. It does not authenticate: approval may be
// pending, so no tokens are issued or stored.
func (c *Client) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/auth/register", in, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Logout tells the backend to drop the session. The response body is ignored.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me fetches the current user and refreshes the stored snapshot.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return models.User{}, err
	}

	if rec, held, err := c.store.Get(ctx); err == nil && held {
		snapshot := user
		rec.User = &snapshot
		_ = c.store.Set(ctx, rec)
	}
	return user, nil
}

// Refresh explicitly renews the access token. The transport performs the same
// exchange transparently on 401; this is for callers that renew ahead of use.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	rec, held, err := c.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	if !held || rec.RefreshToken == "" {
		return "", &Error{Message: "no refresh token available", Status: 0}
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	in := map[string]string{"refresh_token": rec.RefreshToken}
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", in, &result); err != nil {
		return "", err
	}

	rec.AccessToken = result.AccessToken
	if err := c.store.Set(ctx, rec); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}
	return result.AccessToken, nil
}

// ForgotPassword requests a reset email. No session effect.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var result struct {
		Message string `json:"message"`
	}
	in := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password", in, &result); err != nil {
		return "", err
	}
	return result.Message, nil
}

// ResetPassword redeems a reset token. No session effect.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	var result struct {
		Message string `json:"message"`
	}
	in := map[string]string{"token": token, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/reset-password", in, &result); err != nil {
		return "", err
	}
	return result.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return newNetworkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		return newHTTPError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
