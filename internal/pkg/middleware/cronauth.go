package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/LaunchBoard/internal/pkg/env"
)

// CronAuthMiddleware guards the internal cron trigger endpoints with a
// shared secret header. With no CRON_SECRET configured, the endpoints are
// disabled entirely.
func CronAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := env.GetEnv("CRON_SECRET", "")
		if secret == "" {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}

		got := strings.TrimSpace(c.Get("X-Cron-Secret"))
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "missing or invalid cron secret",
			})
		}

		return c.Next()
	}
}
