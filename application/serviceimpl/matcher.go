package serviceimpl

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"face-search/domain/repositories"
)

// FaceMatch is the nearest linked face for a probe embedding. Matched
// reports whether the distance clears the identity threshold.
type FaceMatch struct {
	PersonID   uuid.UUID
	PersonName string
	Distance   float64
	Matched    bool
}

// Matcher is the single place a match/no-match decision is made. Every
// caller shares one threshold, so ingestion, labeling, and recognition
// can never disagree about who a face belongs to.
type Matcher struct {
	faceRepo  repositories.FaceRepository
	threshold float64
}

func NewMatcher(faceRepo repositories.FaceRepository, threshold float64) *Matcher {
	return &Matcher{
		faceRepo:  faceRepo,
		threshold: threshold,
	}
}

// Threshold returns the configured identity threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match finds the nearest face already linked to a person. Returns nil
// when no linked faces exist yet. A result below the threshold
// (strictly) is a match; an equal or greater distance is not.
func (m *Matcher) Match(ctx context.Context, embedding pgvector.Vector) (*FaceMatch, error) {
	nearest, err := m.faceRepo.NearestLinked(ctx, embedding, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to search linked faces: %w", err)
	}
	if len(nearest) == 0 {
		return nil, nil
	}

	hit := nearest[0]
	return &FaceMatch{
		PersonID:   hit.PersonID,
		PersonName: hit.PersonName,
		Distance:   hit.Distance,
		Matched:    hit.Distance < m.threshold,
	}, nil
}
