package middleware

import (
	"log/slog"
	"strings"

	"dropzone/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by SessionRequired.
const (
	LocalSessionID = "session_id"
	LocalPhone     = "phone"
)

// SessionRequired is a Fiber middleware that admits requests carrying a
// valid session bearer token.
func SessionRequired(authService *services.AuthService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer")) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Debug("session token rejected", "error", err, "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(LocalSessionID, claims.SessionID)
		c.Locals(LocalPhone, claims.Phone)

		return c.Next()
	}
}
