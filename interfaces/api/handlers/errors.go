package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"face-search/domain/services"
	"face-search/pkg/utils"
)

// serviceError maps service sentinel errors to HTTP responses. Unknown
// errors fall through as 500.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrImageNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Image not found", err)
	case errors.Is(err, services.ErrFaceNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Face not found", err)
	case errors.Is(err, services.ErrPersonNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Person not found", err)
	case errors.Is(err, services.ErrFaceAlreadyAssigned):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Face is already assigned to a person", err)
	case errors.Is(err, services.ErrPersonNameTaken):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Person name already in use", err)
	case errors.Is(err, services.ErrNoFaceDetected):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No face detected in the uploaded image", err)
	case errors.Is(err, services.ErrDetectionFailed), errors.Is(err, services.ErrInvalidEmbedding):
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Face detection failed", err)
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", err)
	}
}

// isValidImageType checks if the content type is a valid image
func isValidImageType(contentType string) bool {
	validTypes := []string{
		"image/jpeg",
		"image/png",
		"image/webp",
		"image/gif",
	}
	for _, t := range validTypes {
		if contentType == t {
			return true
		}
	}
	return false
}
