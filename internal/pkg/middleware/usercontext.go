package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RegioJobs/RegioJobs/internal/pkg/usercontext"
)

// UserContextMiddleware seeds an anonymous user context for every request.
// The API key middleware overwrites it once a key has been verified.
func UserContextMiddleware(c *fiber.Ctx) error {
	c.Locals("USER_CONTEXT", usercontext.UserContext{
		IsLoggedIn: false,
		IsAdmin:    false,
	})
	c.Locals(usercontext.KeyFromProtected, false)
	c.Locals(usercontext.KeyIsAdmin, false)
	return c.Next()
}
