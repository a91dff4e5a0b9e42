package repositories

import (
	"context"

	"github.com/google/uuid"

	"face-search/domain/models"
)

type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error

	// GetWithFaces loads the image plus its faces and their person links.
	GetWithFaces(ctx context.Context, id uuid.UUID) (*models.Image, error)

	// SearchByPersonIDs returns non-sample images containing at least one
	// face linked to any of the given persons, each image once, newest
	// first. An empty id list applies no person filter and returns every
	// non-sample image.
	SearchByPersonIDs(ctx context.Context, personIDs []uuid.UUID, offset, limit int) ([]models.Image, int64, error)

	// SearchByPersonName is the same query keyed by a case-insensitive
	// substring of the person name.
	SearchByPersonName(ctx context.Context, pattern string, offset, limit int) ([]models.Image, int64, error)
}
