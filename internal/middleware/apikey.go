package middleware

import (
	"crypto/subtle"
	"log"

	"github.com/gofiber/fiber/v2"
)

// APIKeyMiddleware guards admin endpoints (catalog refresh, stats). It checks
// the X-API-Key header against the configured key set. With no keys
// configured the endpoints are open, which is the local-development mode.
func APIKeyMiddleware(allowedKeys []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(allowedKeys) == 0 {
			return c.Next()
		}

		apiKey := c.Get("X-API-Key")
		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing API key. Include X-API-Key header.",
				"code":  "unauthorized",
			})
		}

		for _, key := range allowedKeys {
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
				c.Locals("auth_type", "api_key")
				return c.Next()
			}
		}

		log.Printf("❌ [APIKEY-AUTH] Invalid key attempt from %s", c.IP())
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid API key",
			"code":  "unauthorized",
		})
	}
}
