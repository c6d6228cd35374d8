package middleware

import (
	"log"
	"net/url"

	"game-site-backend/services"
	"game-site-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminEmailKey is the ctx local the verified identity is stored under.
// Handlers treat the value as opaque.
const AdminEmailKey = "admin_email"

// SessionAuthMiddleware guards the admin area. Missing, tampered and
// expired tokens are rejected identically; callers never learn which.
// Browser navigation (GET) is redirected to the login page carrying the
// originally requested path, everything else gets a 401 envelope.
func SessionAuthMiddleware(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// The login flow itself stays reachable, otherwise the redirect
		// below would bounce forever.
		if c.Path() == "/admin/login" || c.Path() == "/admin/logout" {
			return c.Next()
		}

		token := c.Cookies(services.SessionCookie)
		identity, ok := auth.Verify(token)
		if !ok {
			log.Printf("🚫 [SESSION] Unauthenticated request to %s", c.Path())
			if c.Method() == fiber.MethodGet {
				return c.Redirect(
					"/admin/login?redirect="+url.QueryEscape(c.OriginalURL()),
					fiber.StatusFound,
				)
			}
			return utils.Error(c, fiber.StatusUnauthorized, "authentication required")
		}

		c.Locals(AdminEmailKey, identity)
		return c.Next()
	}
}
