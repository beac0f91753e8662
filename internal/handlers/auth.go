package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-digital/authgate/internal/apiclient"
	"github.com/prefeitura-digital/authgate/internal/ids"
	"github.com/prefeitura-digital/authgate/internal/middleware"
	"github.com/prefeitura-digital/authgate/internal/security"
	"github.com/prefeitura-digital/authgate/internal/tokenstore"
)

type loginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
	Redirect   string `json:"redirect"`
}

// Login proxies the credentials to the backend and, on success, mints a new
// gateway session: tokens and user snapshot go to Redis, the browser only
// ever sees the signed session cookie.
func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ttl := h.cfg.Session.TTL
	if req.RememberMe {
		ttl = h.cfg.Session.RememberTTL
	}

	sessionID := ids.New()
	store := tokenstore.NewSession(h.redis, sessionID, ttl)
	client := h.clientFor(store)

	result, err := client.Login(c.Request.Context(), apiclient.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		h.writeAPIError(c, err)
		return
	}

	cookie, err := security.MintSessionCookie(h.cookieKey, sessionID, req.RememberMe, ttl)
	if err != nil {
		h.log.Error().Err(err).Msg("mint session cookie failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.SetCookie(h.cfg.Session.CookieName, cookie, int(ttl.Seconds()), "/", "", h.cfg.Session.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{
		"user":     result.User,
		"redirect": safeRedirect(req.Redirect, c.Query("redirect")),
	})
}

type registerRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Department string `json:"department" binding:"required"`
	Role       string `json:"role" binding:"required,oneof=admin editor viewer"`
	Phone      string `json:"phone" binding:"required"`
}

// RegisterUser passes the registration through. No session is created:
// accounts may await approval before they can sign in.
func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := h.clientFor(tokenstore.NewMemory())
	user, err := client.Register(c.Request.Context(), apiclient.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		Role:       req.Role,
		Phone:      req.Phone,
	})
	if err != nil {
		h.writeAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Logout notifies the backend on a best-effort basis, then drops the Redis
// record and the cookie no matter what the backend said.
func (h HandlerSet) Logout(c *gin.Context) {
	if store, ok := middleware.SessionStore(c); ok {
		if err := h.clientFor(store).Logout(c.Request.Context()); err != nil {
			h.log.Warn().Err(err).Msg("backend logout failed, clearing session anyway")
		}
		if err := store.Clear(c.Request.Context()); err != nil {
			h.log.Warn().Err(err).Msg("session clear failed")
		}
	}

	c.SetCookie(h.cfg.Session.CookieName, "", -1, "/", "", h.cfg.Session.CookieSecure, true)
	c.Status(http.StatusNoContent)
}

// Me fetches the current user from the backend through the session's client,
// so an expired access token is refreshed transparently on the way.
func (h HandlerSet) Me(c *gin.Context) {
	store, ok := middleware.SessionStore(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	expired := false
	client := h.clientFor(store, apiclient.WithOnSessionExpired(func() { expired = true }))

	user, err := client.Me(c.Request.Context())
	if err != nil {
		if expired {
			c.SetCookie(h.cfg.Session.CookieName, "", -1, "/", "", h.cfg.Session.CookieSecure, true)
		}
		h.writeAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// safeRedirect keeps the post-login redirect on-site: only relative paths
// survive, anything else falls back to the landing page.
func safeRedirect(candidates ...string) string {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if strings.HasPrefix(candidate, "/") && !strings.HasPrefix(candidate, "//") {
			return candidate
		}
	}
	return "/"
}
