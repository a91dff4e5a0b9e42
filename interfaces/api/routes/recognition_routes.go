package routes

import (
	"github.com/gofiber/fiber/v2"

	"face-search/interfaces/api/handlers"
	"face-search/interfaces/api/middleware"
	"face-search/pkg/config"
)

func SetupRecognitionRoutes(app *fiber.App, h *handlers.Handlers, rateLimit *config.RateLimitConfig) {
	app.Post("/recognize", middleware.UploadRateLimiter(rateLimit), h.Recognition.Recognize)
}
