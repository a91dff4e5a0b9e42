package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreatePersonRequest names a new person explicitly
type CreatePersonRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// CreatePersonFromFaceRequest labels an existing unassigned face
type CreatePersonFromFaceRequest struct {
	FaceID uuid.UUID `json:"face_id" validate:"required"`
	Name   string    `json:"name" validate:"required,min=1,max=255"`
}

// PersonResponse is the DTO for person API responses
type PersonResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	FaceCount int64     `json:"face_count"`
	CreatedAt time.Time `json:"created_at"`
}

// PersonListResponse is the DTO for paginated person lists
type PersonListResponse struct {
	Persons []PersonResponse `json:"persons"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
}

// EnrollResponse reports a reference-sample enrollment
type EnrollResponse struct {
	ImageID uuid.UUID `json:"image_id"`
	FaceID  uuid.UUID `json:"face_id"`
}
