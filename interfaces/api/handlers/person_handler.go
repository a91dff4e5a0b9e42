package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"face-search/domain/dto"
	"face-search/domain/services"
	"face-search/pkg/utils"
)

type PersonHandler struct {
	personService services.PersonService
}

func NewPersonHandler(personService services.PersonService) *PersonHandler {
	return &PersonHandler{
		personService: personService,
	}
}

// Create creates a person with no faces yet
func (h *PersonHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePersonRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	person, err := h.personService.Create(c.UserContext(), req.Name)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.CreatedResponse(c, "Person created", dto.PersonToPersonResponse(person, 0))
}

// CreateFromFace names an unassigned face, linking similar unassigned
// faces to the new person
func (h *PersonHandler) CreateFromFace(c *fiber.Ctx) error {
	var req dto.CreatePersonFromFaceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	person, err := h.personService.CreateFromFace(c.UserContext(), req.FaceID, req.Name)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.CreatedResponse(c, "Person created from face", dto.PersonToPersonResponse(person, 0))
}

// List pages through persons with face counts
func (h *PersonHandler) List(c *fiber.Ctx) error {
	name := c.Query("name")
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 20)

	persons, total, err := h.personService.List(c.UserContext(), name, page, size)
	if err != nil {
		return serviceError(c, err)
	}

	response := dto.PersonListResponse{
		Persons: make([]dto.PersonResponse, 0, len(persons)),
		Total:   total,
		Page:    page,
		Size:    size,
	}
	for _, p := range persons {
		response.Persons = append(response.Persons, *dto.PersonToPersonResponse(&p.Person, p.FaceCount))
	}

	return utils.SuccessResponse(c, "Persons retrieved", response)
}

// Get returns a person with their face count
func (h *PersonHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid person id", err)
	}

	person, err := h.personService.Get(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.SuccessResponse(c, "Person retrieved", dto.PersonToPersonResponse(&person.Person, person.FaceCount))
}

// Delete removes a person; their faces become unassigned
func (h *PersonHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid person id", err)
	}

	if err := h.personService.Delete(c.UserContext(), id); err != nil {
		return serviceError(c, err)
	}

	return utils.SuccessResponse(c, "Person deleted", nil)
}

// AddSampleImage enrolls a reference photo for a person
func (h *PersonHandler) AddSampleImage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid person id", err)
	}

	data, contentType, ok := readImageFile(c, "file")
	if !ok {
		return nil
	}

	result, err := h.personService.AddSampleImage(c.UserContext(), id, data, contentType)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.CreatedResponse(c, "Sample image enrolled", dto.EnrollResponse{
		ImageID: result.ImageID,
		FaceID:  result.FaceID,
	})
}
