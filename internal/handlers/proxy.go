package handlers

import (
	"io"
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-digital/authgate/internal/apiclient"
	"github.com/prefeitura-digital/authgate/internal/middleware"
	"github.com/prefeitura-digital/authgate/internal/tokenstore"
)

// Proxy forwards everything that is not a gateway-owned route to the backend.
// The session's refresh transport sits under the reverse proxy, so an expired
// access token is renewed and the request replayed before the browser ever
// sees a 401. When the refresh itself fails the response is rewritten into a
// login redirect and the session cookie is dropped.
func (h HandlerSet) Proxy(c *gin.Context) {
	store, ok := middleware.SessionStore(c)
	if !ok {
		// Anonymous passthrough: no token to inject, nothing to refresh.
		store = tokenstore.NewMemory()
	}

	expired := false
	transport := &apiclient.Transport{
		Base:             h.baseTransport,
		Store:            store,
		RefreshURL:       strings.TrimSuffix(h.cfg.Backend.BaseURL, "/") + "/auth/refresh",
		OnSessionExpired: func() { expired = true },
	}

	originalPath := c.Request.URL.Path

	proxy := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = h.backendURL.Scheme
			req.URL.Host = h.backendURL.Host
			req.URL.Path = joinPath(h.backendURL.Path, req.URL.Path)
			req.Host = h.backendURL.Host
			// The gateway cookie is meaningless upstream and must not leak.
			req.Header.Del("Cookie")
		},
		Transport: transport,
		ModifyResponse: func(resp *http.Response) error {
			if !expired || resp.StatusCode != http.StatusUnauthorized {
				return nil
			}
			resp.Body.Close()
			resp.StatusCode = http.StatusFound
			resp.Body = io.NopCloser(strings.NewReader(""))
			resp.ContentLength = 0
			resp.Header.Del("Content-Length")
			resp.Header.Set("Location", middleware.LoginRedirect(originalPath))
			resp.Header.Add("Set-Cookie", h.cfg.Session.CookieName+"=; Path=/; Max-Age=0; HttpOnly")
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			h.log.Error().Err(err).Str("path", originalPath).Msg("backend proxy failed")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"backend unreachable"}`))
		},
	}

	proxy.ServeHTTP(c.Writer, c.Request)
}

func joinPath(base, path string) string {
	base = strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
