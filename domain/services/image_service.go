package services

import (
	"context"

	"github.com/google/uuid"

	"face-search/domain/models"
)

// UploadItem is one file of a batch upload.
type UploadItem struct {
	FileName    string
	Data        []byte
	ContentType string
}

// UploadResult reports the outcome of one batch item. Exactly one of
// Image / Err is set.
type UploadResult struct {
	FileName string
	Image    *models.Image
	Err      error
}

// ImagePage is one page of a search result.
type ImagePage struct {
	Items []models.Image
	Total int64
	Page  int
	Size  int
	Pages int
}

// ImageService ingests uploads and answers image queries.
type ImageService interface {
	// Upload stores the file, detects faces, and resolves each face
	// against known persons. Zero detected faces is a valid outcome.
	Upload(ctx context.Context, data []byte, contentType string) (*models.Image, error)

	// UploadBatch ingests each item independently; one failure never
	// affects the others.
	UploadBatch(ctx context.Context, items []UploadItem) []UploadResult

	GetImageFaces(ctx context.Context, imageID uuid.UUID) (*models.Image, error)

	// Search pages through non-sample images containing any of the given
	// persons. Empty personIDs lists every non-sample image, so images
	// whose faces are still unresolved can be found and labeled.
	Search(ctx context.Context, personIDs []uuid.UUID, page, size int) (*ImagePage, error)

	// SearchByName is Search keyed by a case-insensitive name substring.
	SearchByName(ctx context.Context, pattern string, page, size int) (*ImagePage, error)
}
