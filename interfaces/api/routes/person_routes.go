package routes

import (
	"github.com/gofiber/fiber/v2"

	"face-search/interfaces/api/handlers"
	"face-search/interfaces/api/middleware"
	"face-search/pkg/config"
)

func SetupPersonRoutes(app *fiber.App, h *handlers.Handlers, rateLimit *config.RateLimitConfig) {
	persons := app.Group("/persons")

	persons.Post("/", h.Person.Create)
	persons.Post("/from-face", h.Person.CreateFromFace)
	persons.Get("/", h.Person.List)
	persons.Get("/:id", h.Person.Get)
	persons.Delete("/:id", h.Person.Delete)

	// Enrollment uploads hit the detection model
	persons.Post("/:id/images", middleware.UploadRateLimiter(rateLimit), h.Person.AddSampleImage)
}
