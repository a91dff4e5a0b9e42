package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"face-search/domain/models"
	"face-search/domain/repositories"
)

type ImageRepositoryImpl struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) repositories.ImageRepository {
	return &ImageRepositoryImpl{db: db}
}

func (r *ImageRepositoryImpl) Create(ctx context.Context, image *models.Image) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Create(image).Error
}

func (r *ImageRepositoryImpl) GetWithFaces(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	var image models.Image
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Faces", func(db *gorm.DB) *gorm.DB {
			return db.Order("faces.created_at ASC, faces.id ASC")
		}).
		Preload("Faces.Person").
		Where("id = ?", id).
		First(&image).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// SearchByPersonIDs pages through non-sample images with at least one
// face linked to any of the given persons. An image with several
// matching faces appears once. Empty ids mean no person filter at all:
// every non-sample image is listed, including those whose faces are
// still unresolved, so they can be found and labeled.
func (r *ImageRepositoryImpl) SearchByPersonIDs(ctx context.Context, personIDs []uuid.UUID, offset, limit int) ([]models.Image, int64, error) {
	base := func() *gorm.DB {
		q := dbFromContext(ctx, r.db).WithContext(ctx).
			Model(&models.Image{}).
			Where("images.is_sample = ?", false)
		if len(personIDs) > 0 {
			q = q.Joins("JOIN faces f ON f.image_id = images.id").
				Where("f.person_id IN ?", personIDs)
		}
		return q
	}

	return r.searchPage(ctx, base, offset, limit)
}

// SearchByPersonName is the same query keyed by a case-insensitive
// substring of the linked person's name.
func (r *ImageRepositoryImpl) SearchByPersonName(ctx context.Context, pattern string, offset, limit int) ([]models.Image, int64, error) {
	base := func() *gorm.DB {
		return dbFromContext(ctx, r.db).WithContext(ctx).
			Model(&models.Image{}).
			Joins("JOIN faces f ON f.image_id = images.id").
			Joins("JOIN persons p ON f.person_id = p.id").
			Where("images.is_sample = ?", false).
			Where("p.name ILIKE ?", "%"+pattern+"%")
	}

	return r.searchPage(ctx, base, offset, limit)
}

// searchPage deduplicates the join by grouping on image id, counts the
// distinct images, then loads the page newest first.
func (r *ImageRepositoryImpl) searchPage(ctx context.Context, base func() *gorm.DB, offset, limit int) ([]models.Image, int64, error) {
	var total int64
	if err := base().Distinct("images.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []uuid.UUID
	err := base().
		Select("images.id").
		Group("images.id").
		Order("MAX(images.created_at) DESC").
		Offset(offset).
		Limit(limit).
		Scan(&ids).Error
	if err != nil {
		return nil, 0, err
	}

	images, err := r.loadOrdered(ctx, ids)
	return images, total, err
}

// loadOrdered fetches images with their faces, keeping the id order of
// the search query.
func (r *ImageRepositoryImpl) loadOrdered(ctx context.Context, ids []uuid.UUID) ([]models.Image, error) {
	if len(ids) == 0 {
		return []models.Image{}, nil
	}

	var images []models.Image
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Faces", func(db *gorm.DB) *gorm.DB {
			return db.Order("faces.created_at ASC, faces.id ASC")
		}).
		Preload("Faces.Person").
		Where("id IN ?", ids).
		Find(&images).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Image, len(images))
	for _, img := range images {
		byID[img.ID] = img
	}

	ordered := make([]models.Image, 0, len(ids))
	for _, id := range ids {
		if img, ok := byID[id]; ok {
			ordered = append(ordered, img)
		}
	}
	return ordered, nil
}
