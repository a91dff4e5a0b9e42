package serviceimpl

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"face-search/domain/models"
	"face-search/domain/repositories"
	"face-search/domain/services"
	"face-search/infrastructure/faceapi"
	"face-search/infrastructure/storage"
	"face-search/infrastructure/worker"
	"face-search/pkg/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ImageServiceImpl struct {
	imageRepo repositories.ImageRepository
	faceRepo  repositories.FaceRepository
	tx        repositories.Transactor
	detector  *worker.DetectionPool
	store     storage.Storage
	matcher   *Matcher
	dim       int
}

func NewImageService(
	imageRepo repositories.ImageRepository,
	faceRepo repositories.FaceRepository,
	tx repositories.Transactor,
	detector *worker.DetectionPool,
	store storage.Storage,
	matcher *Matcher,
	dim int,
) services.ImageService {
	return &ImageServiceImpl{
		imageRepo: imageRepo,
		faceRepo:  faceRepo,
		tx:        tx,
		detector:  detector,
		store:     store,
		matcher:   matcher,
		dim:       dim,
	}
}

// Upload stores the blob, runs detection, and resolves every detected
// face against known persons in one transaction. An upload with zero
// faces still produces an image row. Detection failure leaves nothing
// behind, including the blob.
func (s *ImageServiceImpl) Upload(ctx context.Context, data []byte, contentType string) (*models.Image, error) {
	locator, err := s.store.Save(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	detected, err := s.detector.Detect(ctx, data, contentType)
	if err != nil {
		s.cleanupBlob(ctx, locator)
		return nil, fmt.Errorf("%w: %v", services.ErrDetectionFailed, err)
	}

	if err := s.validateEmbeddings(detected); err != nil {
		s.cleanupBlob(ctx, locator)
		return nil, err
	}

	image := &models.Image{FilePath: locator}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.imageRepo.Create(ctx, image); err != nil {
			return fmt.Errorf("failed to create image: %w", err)
		}

		// Each face is resolved on its own; one upload can contain
		// faces of several persons.
		for _, d := range detected {
			face := &models.Face{
				ImageID:   image.ID,
				Embedding: pgvector.NewVector(d.Embedding),
				BoxX1:     d.Box[0],
				BoxY1:     d.Box[1],
				BoxX2:     d.Box[2],
				BoxY2:     d.Box[3],
			}

			match, err := s.matcher.Match(ctx, face.Embedding)
			if err != nil {
				return err
			}
			if match != nil && match.Matched {
				personID := match.PersonID
				face.PersonID = &personID
			}

			if err := s.faceRepo.Create(ctx, face); err != nil {
				return fmt.Errorf("failed to create face: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.cleanupBlob(ctx, locator)
		return nil, err
	}

	logger.Ingest("image_uploaded", "Image ingested", map[string]interface{}{
		"image_id": image.ID.String(),
		"faces":    len(detected),
	})

	return s.GetImageFaces(ctx, image.ID)
}

// UploadBatch ingests each item independently. A failed item reports
// its error without touching its siblings.
func (s *ImageServiceImpl) UploadBatch(ctx context.Context, items []services.UploadItem) []services.UploadResult {
	results := make([]services.UploadResult, 0, len(items))
	for _, item := range items {
		image, err := s.Upload(ctx, item.Data, item.ContentType)
		results = append(results, services.UploadResult{
			FileName: item.FileName,
			Image:    image,
			Err:      err,
		})
	}
	return results
}

func (s *ImageServiceImpl) GetImageFaces(ctx context.Context, imageID uuid.UUID) (*models.Image, error) {
	image, err := s.imageRepo.GetWithFaces(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return image, nil
}

func (s *ImageServiceImpl) Search(ctx context.Context, personIDs []uuid.UUID, page, size int) (*services.ImagePage, error) {
	page, size = normalizePage(page, size)

	images, total, err := s.imageRepo.SearchByPersonIDs(ctx, personIDs, (page-1)*size, size)
	if err != nil {
		return nil, fmt.Errorf("failed to search images: %w", err)
	}

	return buildPage(images, total, page, size), nil
}

func (s *ImageServiceImpl) SearchByName(ctx context.Context, pattern string, page, size int) (*services.ImagePage, error) {
	page, size = normalizePage(page, size)

	images, total, err := s.imageRepo.SearchByPersonName(ctx, pattern, (page-1)*size, size)
	if err != nil {
		return nil, fmt.Errorf("failed to search images by name: %w", err)
	}

	return buildPage(images, total, page, size), nil
}

// validateEmbeddings rejects the whole upload before any row exists
// when the model returns a wrong-sized vector.
func (s *ImageServiceImpl) validateEmbeddings(detected []faceapi.DetectedFace) error {
	for _, d := range detected {
		if len(d.Embedding) != s.dim {
			return fmt.Errorf("%w: got %d, want %d", services.ErrInvalidEmbedding, len(d.Embedding), s.dim)
		}
	}
	return nil
}

func (s *ImageServiceImpl) cleanupBlob(ctx context.Context, locator string) {
	if err := s.store.Delete(ctx, locator); err != nil {
		logger.StorageError("blob_cleanup_failed", "Failed to delete orphaned blob", err, map[string]interface{}{
			"locator": locator,
		})
	}
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func buildPage(images []models.Image, total int64, page, size int) *services.ImagePage {
	pages := int((total + int64(size) - 1) / int64(size))
	return &services.ImagePage{
		Items: images,
		Total: total,
		Page:  page,
		Size:  size,
		Pages: pages,
	}
}
