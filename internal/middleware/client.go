package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// EnsureClientID identifies the presentation client behind a request, taken
// from the X-Client-ID header or the clientId query parameter.
func EnsureClientID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("clientID") != nil {
			return c.Next()
		}

		clientID := strings.TrimSpace(c.Get("X-Client-ID"))
		if clientID == "" {
			clientID = strings.TrimSpace(c.Query("clientId"))
		}

		if clientID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Client ID is required. Please ensure client is properly initialized.",
			})
		}

		c.Locals("clientID", clientID)
		return c.Next()
	}
}
