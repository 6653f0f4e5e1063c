package ratelimit

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MamadouBacke/Scolaria/internal/pkg/cache"
)

// Login rate limiting: a fixed window per client IP and tenant domain.
// This throttles brute-force attempts without changing the uniform
// failure contract of the authentication chain.
const (
	loginWindow      = time.Minute
	loginMaxAttempts = 10
)

// LoginLimiter returns a middleware limiting login attempts per
// IP+domain pair. Redis failures fail open: a broken cache must not
// lock every tenant out.
func LoginLimiter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Domain string `json:"domain" form:"domain"`
		}
		_ = c.BodyParser(&body)

		key := fmt.Sprintf("login_attempts:%s:%s", c.IP(), body.Domain)
		count, err := cache.Incr(key)
		if err != nil {
			log.Printf("rate limiter: redis unavailable, failing open: %v", err)
			return c.Next()
		}
		if count == 1 {
			if err := cache.Expire(key, loginWindow); err != nil {
				log.Printf("rate limiter: failed to set ttl on %s: %v", key, err)
			}
		}
		if count > loginMaxAttempts {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Trop de tentatives, reessayez plus tard",
			})
		}
		return c.Next()
	}
}
