package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on successful GET responses that did
// not set one. Stored batches never change, so results are cacheable.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string
		switch {
		case path == "/health" || path == "/ready" || path == "/metrics":
			ttl = "no-cache"
		case strings.HasPrefix(path, "/api/journeys/results/"):
			ttl = "public, max-age=3600, immutable"
		case path == "/docs" || path == "/docs/openapi.yaml":
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}
