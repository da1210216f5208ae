package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// ============================================================================
// RATE LIMITING MIDDLEWARE
// ============================================================================
// Protege el backend contra abuso. Los endpoints de autenticación (OTP y
// login) son los más sensibles: despachan email/SMS sin token y son blanco de
// fuerza bruta.

// GlobalRateLimiter - Limitador general para todos los endpoints
// 1000 requests por minuto por IP
func GlobalRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Rate limit exceeded",
				"retry_after": 60,
				"message":     "Too many requests. Please try again in 1 minute.",
			})
		},
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
		LimiterMiddleware:      limiter.SlidingWindow{},
	})
}

// AuthRateLimiter - Limitador para endpoints de autenticación y OTP
// 10 requests por minuto (protege contra fuerza bruta y spam de OTP)
func AuthRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			// Rate limit por IP + endpoint para mejor granularidad
			return c.IP() + ":" + c.Path()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Authentication rate limit exceeded",
				"retry_after": 60,
				"message":     "Too many attempts. Please try again in 1 minute.",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

// UploadRateLimiter - Para endpoints que reciben imágenes
// 20 requests cada 5 minutos
func UploadRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        20,
		Expiration: 5 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Upload rate limit exceeded",
				"retry_after": 300,
				"message":     "This operation is rate-limited to 20 requests per 5 minutes.",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
