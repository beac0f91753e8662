// Package roles derives authorization predicates from the current session.
// Role matching is exact: there is no implicit hierarchy, so a surface that
// requires admin rejects an editor. Surfaces that accept several roles must
// name all of them via HasAnyRole.
package roles

import "github.com/prefeitura-digital/authgate/internal/models"

type Evaluator struct {
	user          *models.User
	authenticated bool
}

func NewEvaluator(user *models.User, authenticated bool) Evaluator {
	return Evaluator{user: user, authenticated: authenticated}
}

func (e Evaluator) HasRole(role models.Role) bool {
	return e.authenticated && e.user != nil && e.user.Role == role
}

func (e Evaluator) HasAnyRole(roles ...models.Role) bool {
	if !e.authenticated || e.user == nil {
		return false
	}
	for _, role := range roles {
		if e.user.Role == role {
			return true
		}
	}
	return false
}

func (e Evaluator) IsAdmin() bool  { return e.HasRole(models.RoleAdmin) }
func (e Evaluator) IsEditor() bool { return e.HasRole(models.RoleEditor) }
func (e Evaluator) IsViewer() bool { return e.HasRole(models.RoleViewer) }
