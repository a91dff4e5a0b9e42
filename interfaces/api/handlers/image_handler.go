package handlers

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"face-search/domain/dto"
	"face-search/domain/services"
	"face-search/pkg/utils"
)

const maxUploadSize = 10 * 1024 * 1024

type ImageHandler struct {
	imageService services.ImageService
}

func NewImageHandler(imageService services.ImageService) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
	}
}

// Upload ingests a single image
func (h *ImageHandler) Upload(c *fiber.Ctx) error {
	data, contentType, ok := readImageFile(c, "file")
	if !ok {
		return nil
	}

	image, err := h.imageService.Upload(c.UserContext(), data, contentType)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.CreatedResponse(c, "Image uploaded", dto.ImageToImageResponse(image))
}

// UploadBatch ingests several images in one request; items fail
// independently
func (h *ImageHandler) UploadBatch(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Multipart form is required", err)
	}

	files := form.File["files"]
	if len(files) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "At least one file is required", nil)
	}

	response := make([]dto.BatchUploadItemResponse, len(files))
	items := make([]services.UploadItem, 0, len(files))
	itemSlot := make([]int, 0, len(files))

	for i, file := range files {
		response[i].FileName = file.Filename

		data, contentType, err := readFileHeader(file)
		if err != nil {
			response[i].Error = "failed to read file: " + err.Error()
			continue
		}
		items = append(items, services.UploadItem{
			FileName:    file.Filename,
			Data:        data,
			ContentType: contentType,
		})
		itemSlot = append(itemSlot, i)
	}

	results := h.imageService.UploadBatch(c.UserContext(), items)
	for i, r := range results {
		slot := itemSlot[i]
		if r.Err != nil {
			response[slot].Error = r.Err.Error()
		} else {
			response[slot].Image = dto.ImageToImageResponse(r.Image)
		}
	}

	return utils.SuccessResponse(c, "Batch processed", fiber.Map{
		"items": response,
		"total": len(response),
	})
}

// GetImageFaces returns an image with its faces and person links
func (h *ImageHandler) GetImageFaces(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid image id", err)
	}

	image, err := h.imageService.GetImageFaces(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.SuccessResponse(c, "Image retrieved", dto.ImageToImageResponse(image))
}

// Search pages through images containing the given persons
func (h *ImageHandler) Search(c *fiber.Ctx) error {
	var personIDs []uuid.UUID
	if raw := c.Query("person_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid person id: "+part, err)
			}
			personIDs = append(personIDs, id)
		}
	}

	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 20)

	result, err := h.imageService.Search(c.UserContext(), personIDs, page, size)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.SuccessResponse(c, "Images retrieved", dto.ImagePageToListResponse(result))
}

// SearchByName pages through images of persons whose name contains the
// given substring
func (h *ImageHandler) SearchByName(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Query parameter 'name' is required", nil)
	}

	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 20)

	result, err := h.imageService.SearchByName(c.UserContext(), name, page, size)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.SuccessResponse(c, "Images retrieved", dto.ImagePageToListResponse(result))
}

// readImageFile validates and reads a single multipart image field.
// On failure the error response has already been written and ok is
// false.
func readImageFile(c *fiber.Ctx, field string) (data []byte, contentType string, ok bool) {
	file, err := c.FormFile(field)
	if err != nil {
		utils.ErrorResponse(c, fiber.StatusBadRequest, "Image file is required", err)
		return nil, "", false
	}

	if file.Size > maxUploadSize {
		utils.ErrorResponse(c, fiber.StatusBadRequest, "File size exceeds 10MB limit", nil)
		return nil, "", false
	}

	contentType = file.Header.Get("Content-Type")
	if !isValidImageType(contentType) {
		utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid image type. Allowed: jpeg, png, webp, gif", nil)
		return nil, "", false
	}

	data, err = readFileData(file)
	if err != nil {
		utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read file", err)
		return nil, "", false
	}

	return data, contentType, true
}

func readFileHeader(file *multipart.FileHeader) ([]byte, string, error) {
	contentType := file.Header.Get("Content-Type")
	data, err := readFileData(file)
	return data, contentType, err
}

func readFileData(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}
