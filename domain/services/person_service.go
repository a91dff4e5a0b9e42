package services

import (
	"context"

	"github.com/google/uuid"

	"face-search/domain/models"
)

// PersonWithCount pairs a person with the number of faces linked to them.
type PersonWithCount struct {
	models.Person
	FaceCount int64
}

// EnrollResult reports a reference-sample enrollment.
type EnrollResult struct {
	ImageID uuid.UUID
	FaceID  uuid.UUID
}

// PersonService manages identities.
type PersonService interface {
	Create(ctx context.Context, name string) (*models.Person, error)

	// CreateFromFace names an unlinked face, creating the person and
	// linking every unlinked face close enough to the labeled one.
	CreateFromFace(ctx context.Context, faceID uuid.UUID, name string) (*models.Person, error)

	Get(ctx context.Context, id uuid.UUID) (*PersonWithCount, error)
	List(ctx context.Context, nameFilter string, page, size int) ([]PersonWithCount, int64, error)

	// Delete removes the person; their faces stay but become unlinked.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddSampleImage enrolls a reference photo: the largest detected
	// face becomes a sample face linked to the person.
	AddSampleImage(ctx context.Context, personID uuid.UUID, data []byte, contentType string) (*EnrollResult, error)
}
