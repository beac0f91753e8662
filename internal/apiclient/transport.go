package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/prefeitura-digital/authgate/internal/tokenstore"
)

// Transport injects the stored bearer token into every outbound request and
// recovers from token expiry: the first 401 triggers one refresh followed by
// one replay. The replay and the refresh call itself go straight to the base
// transport, so a request can never refresh twice.
//
// Refresh failure is terminal for the session: the store is cleared and
// OnSessionExpired fires (a redirect in the gateway, a message in the CLI),
// then the original 401 is surfaced untouched.
//
// Concurrent requests each carry their own one-shot guard; simultaneous 401s
// may refresh in parallel. The refresh endpoint tolerates that.
type Transport struct {
	Base             http.RoundTripper
	Store            tokenstore.Store
	RefreshURL       string
	OnSessionExpired func()
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	rec, held, err := t.Store.Get(ctx)
	if err != nil {
		// An unreadable store is treated as holding no token.
		held = false
	}

	out := req.Clone(ctx)
	if held && rec.AccessToken != "" {
		out.Header.Set("Authorization", "Bearer "+rec.AccessToken)
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if !held || t.isRefreshRequest(req) {
		// Anonymous requests have no session to recover; a failing refresh
		// call must not recurse into another refresh.
		return resp, nil
	}

	access, refreshErr := t.refresh(ctx, rec, held)
	if refreshErr != nil {
		_ = t.Store.Clear(ctx)
		if t.OnSessionExpired != nil {
			t.OnSessionExpired()
		}
		return resp, nil
	}

	resp.Body.Close()

	retry := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("replay request body: %w", err)
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+access)

	return t.base().RoundTrip(retry)
}

func (t *Transport) isRefreshRequest(req *http.Request) bool {
	refresh, err := url.Parse(t.RefreshURL)
	if err != nil {
		return false
	}
	return strings.TrimSuffix(req.URL.Path, "/") == strings.TrimSuffix(refresh.Path, "/")
}

// refresh trades the stored refresh token for a new access token and commits
// it back to the store.
func (t *Transport) refresh(ctx context.Context, rec tokenstore.Record, held bool) (string, error) {
	if !held || rec.RefreshToken == "" {
		return "", errors.New("no refresh token held")
	}

	payload, err := json.Marshal(map[string]string{"refresh_token": rec.RefreshToken})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.RefreshURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return "", fmt.Errorf("refresh call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	access := gjson.GetBytes(body, "access_token").String()
	if access == "" {
		return "", errors.New("refresh response missing access_token")
	}

	rec.AccessToken = access
	if err := t.Store.Set(ctx, rec); err != nil {
		return "", fmt.Errorf("persist refreshed token: %w", err)
	}
	return access, nil
}
