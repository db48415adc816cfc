package middleware

import (
	"net/http"

	"github.com/civitrack/civitrack-backend/internal/rbac"
	"github.com/labstack/echo/v4"
)

// RoleOf reads the role resolved by RequireAuth, defaulting to CITIZEN.
func RoleOf(c echo.Context) rbac.Role {
	if role, ok := c.Get(CtxRole).(rbac.Role); ok {
		return role
	}
	return rbac.RoleCitizen
}

// RequirePermission guards a route with a static permission check. Must run
// after RequireAuth.
func RequirePermission(p rbac.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rbac.Has(RoleOf(c), p) {
				return c.JSON(http.StatusForbidden, map[string]map[string]string{
					"error": {"code": "forbidden", "message": "missing permission"},
				})
			}
			return next(c)
		}
	}
}
