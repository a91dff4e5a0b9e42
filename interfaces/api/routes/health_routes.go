package routes

import (
	"github.com/gofiber/fiber/v2"

	"face-search/interfaces/api/handlers"
)

func SetupHealthRoutes(app *fiber.App, h *handlers.Handlers) {
	app.Get("/health", h.Health.Health)
}
