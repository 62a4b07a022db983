package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/taonaire/catalog-backend/internal/apps"
	"github.com/taonaire/catalog-backend/internal/config"
	"github.com/taonaire/catalog-backend/internal/dto"
	"github.com/taonaire/catalog-backend/internal/handlers"
	"github.com/taonaire/catalog-backend/internal/middleware"
	"github.com/taonaire/catalog-backend/internal/repository"
	"gorm.io/gorm"
)

const activityWriteTimeout = 5 * time.Second

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	plugins []apps.Plugin,
) {
	// Product images, by stored file name.
	app.Static("/uploads", cfg.UploadDir, fiber.Static{Browse: false})

	api := app.Group("/api")
	api.Use(middleware.ActivityLogger(repository.NewActivityLogRepository(db), activityWriteTimeout))
	if limit := rateLimiter(cfg.RateLimitAPI); limit != nil {
		api.Use(limit)
	}

	api.Get("/health", healthHandler.Check)

	auth := api.Group("/auth")
	if limit := rateLimiter(cfg.RateLimitAuth); limit != nil {
		auth.Use(limit)
	}
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/google", authHandler.GoogleLogin)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)

	protect := middleware.JWTProtected(cfg)
	for _, p := range plugins {
		p.RegisterRoutes(api, protect, db, cfg)
	}

	api.Use(middleware.NotFound)
}

// rateLimiter allows max requests per minute per IP. Zero disables it.
func rateLimiter(max int) fiber.Handler {
	if max <= 0 {
		return nil
	}
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.Fail("Too many requests. Please try again later."))
		},
	})
}
