package handlers

import (
	"github.com/gofiber/fiber/v2"

	"face-search/domain/dto"
	"face-search/domain/services"
	"face-search/pkg/utils"
)

type RecognitionHandler struct {
	recognitionService services.RecognitionService
}

func NewRecognitionHandler(recognitionService services.RecognitionService) *RecognitionHandler {
	return &RecognitionHandler{
		recognitionService: recognitionService,
	}
}

// Recognize identifies the faces in an uploaded probe image. Nothing is
// stored.
func (h *RecognitionHandler) Recognize(c *fiber.Ctx) error {
	data, contentType, ok := readImageFile(c, "file")
	if !ok {
		return nil
	}

	faces, err := h.recognitionService.Recognize(c.UserContext(), data, contentType)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.SuccessResponse(c, "Recognition complete", dto.RecognizedFacesToResponse(faces))
}
