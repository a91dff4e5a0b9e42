package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"face-search/domain/models"
	"face-search/domain/repositories"
)

type PersonRepositoryImpl struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) repositories.PersonRepository {
	return &PersonRepositoryImpl{db: db}
}

func (r *PersonRepositoryImpl) Create(ctx context.Context, person *models.Person) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Create(person).Error
}

func (r *PersonRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	var person models.Person
	err := dbFromContext(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&person).Error
	if err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *PersonRepositoryImpl) GetByName(ctx context.Context, name string) (*models.Person, error) {
	var person models.Person
	err := dbFromContext(ctx, r.db).WithContext(ctx).Where("name = ?", name).First(&person).Error
	if err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *PersonRepositoryImpl) List(ctx context.Context, nameFilter string, offset, limit int) ([]models.Person, int64, error) {
	var persons []models.Person
	var total int64

	query := dbFromContext(ctx, r.db).WithContext(ctx).Model(&models.Person{})
	if nameFilter != "" {
		query = query.Where("name ILIKE ?", "%"+nameFilter+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&persons).Error

	return persons, total, err
}

func (r *PersonRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&models.Person{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
