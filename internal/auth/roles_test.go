package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func newRoleTestApp(principal *domain.User, allowed ...domain.Role) *fiber.App {
	app := fiber.New()
	app.Get("/protected", func(c *fiber.Ctx) error {
		if principal != nil {
			c.Locals(principalKey, principal)
		}
		return c.Next()
	}, RequireRole(allowed...), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func roleRequest(t *testing.T, app *fiber.App) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireRole(t *testing.T) {
	admin := &domain.User{ID: "a1", Role: domain.RoleAdmin, Division: domain.DivisionIT, Active: true}
	user := &domain.User{ID: "u1", Role: domain.RoleUser, Division: domain.DivisionIT, Active: true}

	assert.Equal(t, http.StatusOK,
		roleRequest(t, newRoleTestApp(admin, domain.RoleAdmin, domain.RoleSuperAdmin)))
	assert.Equal(t, http.StatusForbidden,
		roleRequest(t, newRoleTestApp(user, domain.RoleAdmin, domain.RoleSuperAdmin)))
	assert.Equal(t, http.StatusUnauthorized,
		roleRequest(t, newRoleTestApp(nil, domain.RoleAdmin)))
}

func TestRequireRole_NoRolesOnlyRequiresAuth(t *testing.T) {
	user := &domain.User{ID: "u1", Role: domain.RoleUser, Division: domain.DivisionIT, Active: true}
	assert.Equal(t, http.StatusOK, roleRequest(t, newRoleTestApp(user)))
	assert.Equal(t, http.StatusUnauthorized, roleRequest(t, newRoleTestApp(nil)))
}
