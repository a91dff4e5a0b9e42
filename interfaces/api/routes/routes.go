package routes

import (
	"github.com/gofiber/fiber/v2"

	"face-search/interfaces/api/handlers"
	"face-search/pkg/config"
)

func SetupRoutes(app *fiber.App, h *handlers.Handlers, cfg *config.Config) {
	SetupHealthRoutes(app, h)

	SetupImageRoutes(app, h, &cfg.RateLimit)
	SetupPersonRoutes(app, h, &cfg.RateLimit)
	SetupRecognitionRoutes(app, h, &cfg.RateLimit)

	// Uploaded blobs are served as-is
	app.Static("/static", cfg.Storage.Dir)
}
