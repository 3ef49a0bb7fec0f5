package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/fluxdesk/helpdesk/pkg/util"
)

// RequireAdmin ensures the authenticated caller has the admin flag.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !user.IsAdmin {
			return apperrors.NewPermissionError("admin required")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures the caller is logged in.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
