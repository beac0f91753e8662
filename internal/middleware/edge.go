package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-digital/authgate/internal/config"
)

// LoginPath is where unauthenticated navigation gets sent, carrying the
// original path so a later login can return there.
const LoginPath = "/login"

func LoginRedirect(originalPath string) string {
	return LoginPath + "?redirect=" + url.QueryEscape(originalPath)
}

// Edge is the coarse request filter that runs before any handler. It only
// looks at token presence: the session cookie names a session but carries no
// role, so fine-grained checks stay with RequireRoles further down the chain.
//
//   - public paths always pass
//   - protected/admin paths without a session cookie or bearer header
//     redirect to the login page with the original path attached
//   - a session holder visiting /login or /registro is bounced to the
//     landing page to avoid re-login loops
func Edge(routes config.RouteConfig, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		token := presentedToken(c, cookieName)

		if token != "" && (path == LoginPath || path == "/registro") {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		if matchesAny(routes.Public, path) {
			c.Next()
			return
		}

		guarded := matchesAny(routes.Protected, path) || matchesAny(routes.Admin, path)
		if token == "" && guarded {
			c.Redirect(http.StatusFound, LoginRedirect(path))
			c.Abort()
			return
		}

		c.Next()
	}
}

func presentedToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	return strings.TrimPrefix(header, "Bearer ")
}

func matchesAny(routes []string, path string) bool {
	for _, route := range routes {
		if path == route || strings.HasPrefix(path, route) {
			return true
		}
	}
	return false
}
