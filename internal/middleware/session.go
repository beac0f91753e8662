package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/prefeitura-digital/authgate/internal/config"
	"github.com/prefeitura-digital/authgate/internal/security"
	"github.com/prefeitura-digital/authgate/internal/tokenstore"
)

// LoadSession resolves the gateway session cookie into a per-session token
// store and the stored user snapshot. It never aborts: anonymous requests
// pass through and the guards downstream decide what that means.
func LoadSession(cfg config.SessionConfig, redisClient *redis.Client, cookieKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(cfg.CookieName)
		if err != nil || cookie == "" {
			c.Next()
			return
		}

		claims, err := security.ParseSessionCookie(cookie, cookieKey)
		if err != nil {
			// Tampered or expired cookie: treat as anonymous.
			c.Next()
			return
		}

		ttl := cfg.TTL
		if claims.Remember {
			ttl = cfg.RememberTTL
		}

		store := tokenstore.NewSession(redisClient, claims.SessionID, ttl)
		c.Set(ctxKeySessionID, claims.SessionID)
		c.Set(ctxKeySessionStore, tokenstore.Store(store))

		if rec, held, err := store.Get(c.Request.Context()); err == nil && held && rec.User != nil {
			c.Set(ctxKeyUser, rec.User)
		}

		c.Next()
	}
}
