package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-digital/authgate/internal/models"
	"github.com/prefeitura-digital/authgate/internal/roles"
)

// RequireRoles is the fine-grained route guard. Unauthenticated requests are
// sent to the login page with the original path attached; an authenticated
// user lacking the role gets a 403 naming the role(s) required, since they
// are legitimately signed in and a redirect would mislead.
//
// Matching is exact per role: admin does not imply editor. Surfaces open to
// several roles list all of them.
func RequireRoles(required ...models.Role) gin.HandlerFunc {
	names := make([]string, 0, len(required))
	for _, role := range required {
		names = append(names, string(role))
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Redirect(http.StatusFound, LoginRedirect(c.Request.URL.Path))
			c.Abort()
			return
		}

		evaluator := roles.NewEvaluator(user, true)
		if !evaluator.HasAnyRole(required...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":          "forbidden",
				"required_roles": names,
				"message":        fmt.Sprintf("access requires role: %s", strings.Join(names, ", ")),
			})
			return
		}

		c.Next()
	}
}
