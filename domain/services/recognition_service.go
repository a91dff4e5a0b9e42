package services

import "context"

// RecognizedFace is one face of a recognition probe. Box is
// [x, y, width, height] in pixels. Person is "Unknown" when no linked
// face is close enough; Distance is then the nearest observed distance,
// or 1.0 when nothing is linked yet.
type RecognizedFace struct {
	Box      [4]int  `json:"box"`
	Person   string  `json:"person"`
	Distance float64 `json:"distance"`
}

// RecognitionService answers "who is in this photo" without persisting
// anything.
type RecognitionService interface {
	Recognize(ctx context.Context, data []byte, contentType string) ([]RecognizedFace, error)
}
