package serviceimpl

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"face-search/domain/services"
	"face-search/infrastructure/worker"
)

const unknownPerson = "Unknown"

type RecognitionServiceImpl struct {
	detector *worker.DetectionPool
	matcher  *Matcher
	dim      int
}

func NewRecognitionService(detector *worker.DetectionPool, matcher *Matcher, dim int) services.RecognitionService {
	return &RecognitionServiceImpl{
		detector: detector,
		matcher:  matcher,
		dim:      dim,
	}
}

// Recognize identifies the faces in a probe image without storing
// anything. Unmatched faces report "Unknown" with the nearest observed
// distance, or 1.0 when no linked face exists yet.
func (s *RecognitionServiceImpl) Recognize(ctx context.Context, data []byte, contentType string) ([]services.RecognizedFace, error) {
	detected, err := s.detector.Detect(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", services.ErrDetectionFailed, err)
	}

	results := make([]services.RecognizedFace, 0, len(detected))
	for _, d := range detected {
		if len(d.Embedding) != s.dim {
			return nil, fmt.Errorf("%w: got %d, want %d", services.ErrInvalidEmbedding, len(d.Embedding), s.dim)
		}

		face := services.RecognizedFace{
			// Wire format is [x, y, width, height]
			Box:      [4]int{d.Box[0], d.Box[1], d.Box[2] - d.Box[0], d.Box[3] - d.Box[1]},
			Person:   unknownPerson,
			Distance: 1.0,
		}

		match, err := s.matcher.Match(ctx, pgvector.NewVector(d.Embedding))
		if err != nil {
			return nil, err
		}
		if match != nil {
			face.Distance = match.Distance
			if match.Matched {
				face.Person = match.PersonName
			}
		}

		results = append(results, face)
	}

	return results, nil
}
