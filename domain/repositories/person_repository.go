package repositories

import (
	"context"

	"github.com/google/uuid"

	"face-search/domain/models"
)

type PersonRepository interface {
	Create(ctx context.Context, person *models.Person) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error)
	GetByName(ctx context.Context, name string) (*models.Person, error)

	// List returns persons matching the optional case-insensitive name
	// filter, newest first, plus the unpaginated total.
	List(ctx context.Context, nameFilter string, offset, limit int) ([]models.Person, int64, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
