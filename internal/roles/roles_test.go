package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prefeitura-digital/authgate/internal/models"
)

func user(role models.Role) *models.User {
	return &models.User{ID: 7, Name: "Ana", Email: "ana@example.com", Role: role}
}

func TestHasRoleIsExact(t *testing.T) {
	e := NewEvaluator(user(models.RoleEditor), true)

	assert.False(t, e.HasRole(models.RoleAdmin), "editor must not satisfy an admin requirement")
	assert.True(t, e.HasRole(models.RoleEditor))
	assert.False(t, e.HasRole(models.RoleViewer))
}

func TestHasAnyRole(t *testing.T) {
	e := NewEvaluator(user(models.RoleEditor), true)

	assert.True(t, e.HasAnyRole(models.RoleAdmin, models.RoleEditor))
	assert.False(t, e.HasAnyRole(models.RoleAdmin, models.RoleViewer))
	assert.False(t, e.HasAnyRole())
}

func TestConvenienceFlagsAreMutuallyExclusive(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdmin, models.RoleEditor, models.RoleViewer} {
		e := NewEvaluator(user(role), true)

		flags := 0
		for _, set := range []bool{e.IsAdmin(), e.IsEditor(), e.IsViewer()} {
			if set {
				flags++
			}
		}
		assert.Equal(t, 1, flags, "exactly one flag for role %s", role)
	}
}

func TestUnauthenticatedHasNoRoles(t *testing.T) {
	e := NewEvaluator(user(models.RoleAdmin), false)

	assert.False(t, e.HasRole(models.RoleAdmin))
	assert.False(t, e.HasAnyRole(models.RoleAdmin, models.RoleEditor, models.RoleViewer))
	assert.False(t, e.IsAdmin())
}

func TestNilUser(t *testing.T) {
	e := NewEvaluator(nil, true)

	assert.False(t, e.HasRole(models.RoleViewer))
	assert.False(t, e.HasAnyRole(models.RoleViewer))
}
