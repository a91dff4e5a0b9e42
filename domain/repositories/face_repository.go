package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"face-search/domain/models"
)

// LinkedMatch is a nearest-neighbor hit among faces already linked to a person.
type LinkedMatch struct {
	FaceID     uuid.UUID
	PersonID   uuid.UUID
	PersonName string
	Distance   float64 // cosine distance, 0 = identical
}

// UnlinkedMatch is a nearest-neighbor hit among faces with no person link.
type UnlinkedMatch struct {
	FaceID   uuid.UUID
	Distance float64
}

type FaceRepository interface {
	Create(ctx context.Context, face *models.Face) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Face, error)

	// Vector search over faces linked to a person, ascending cosine
	// distance. Ties resolve by creation order.
	NearestLinked(ctx context.Context, embedding pgvector.Vector, limit int) ([]LinkedMatch, error)

	// Vector search over unlinked faces within maxDistance, excluding
	// excludeID, ascending cosine distance.
	NearestUnlinked(ctx context.Context, embedding pgvector.Vector, excludeID uuid.UUID, maxDistance float64) ([]UnlinkedMatch, error)

	SetPersonID(ctx context.Context, id uuid.UUID, personID *uuid.UUID) error

	// ClearPerson unlinks every face of a person, returning the number
	// of faces affected.
	ClearPerson(ctx context.Context, personID uuid.UUID) (int64, error)

	CountByPerson(ctx context.Context, personID uuid.UUID) (int64, error)
}
