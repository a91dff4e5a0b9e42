package routes

import (
	"github.com/gofiber/fiber/v2"

	"face-search/interfaces/api/handlers"
	"face-search/interfaces/api/middleware"
	"face-search/pkg/config"
)

func SetupImageRoutes(app *fiber.App, h *handlers.Handlers, rateLimit *config.RateLimitConfig) {
	images := app.Group("/images")

	// Uploads hit the detection model; keep them rate limited
	images.Post("/", middleware.UploadRateLimiter(rateLimit), h.Image.Upload)
	images.Post("/batch", middleware.UploadRateLimiter(rateLimit), h.Image.UploadBatch)

	images.Get("/", h.Image.Search)
	images.Get("/by-name", h.Image.SearchByName)
	images.Get("/:id/faces", h.Image.GetImageFaces)
}
