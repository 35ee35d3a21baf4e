package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ontimely/admin-portal/internal/domain"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

// RequireRole ensures the caller is authenticated with at least the minimum role.
func RequireRole(minimum domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := SessionFromContext(c)
		if !ok || !sess.State().IsAuthenticated {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !sess.HasRole(minimum) {
			return apperrors.NewForbidden(fmt.Sprintf("%s role required", minimum))
		}
		return c.Next()
	}
}

// RequireStaff admits any authenticated operator.
func RequireStaff() fiber.Handler { return RequireRole(domain.RoleStaff) }

// RequireAdmin admits admins and directors.
func RequireAdmin() fiber.Handler { return RequireRole(domain.RoleAdmin) }

// RequireDirector admits directors only.
func RequireDirector() fiber.Handler { return RequireRole(domain.RoleDirector) }
