package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/prefeitura-digital/authgate/internal/models"
	"github.com/prefeitura-digital/authgate/internal/tokenstore"
)

const (
	ctxKeyUser         = "current_user"
	ctxKeySessionID    = "session_id"
	ctxKeySessionStore = "session_store"
)

// CurrentUser returns the user snapshot loaded from the gateway session,
// if the request carries one.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	val, exists := c.Get(ctxKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok && user != nil
}

// SessionStore returns the per-session token store for the request.
func SessionStore(c *gin.Context) (tokenstore.Store, bool) {
	val, exists := c.Get(ctxKeySessionStore)
	if !exists {
		return nil, false
	}
	store, ok := val.(tokenstore.Store)
	return store, ok
}

// SessionID returns the gateway session id for the request.
func SessionID(c *gin.Context) (string, bool) {
	val, exists := c.Get(ctxKeySessionID)
	if !exists {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}
