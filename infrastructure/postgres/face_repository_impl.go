package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"face-search/domain/models"
	"face-search/domain/repositories"
)

type FaceRepositoryImpl struct {
	db *gorm.DB
}

func NewFaceRepository(db *gorm.DB) repositories.FaceRepository {
	return &FaceRepositoryImpl{db: db}
}

func (r *FaceRepositoryImpl) Create(ctx context.Context, face *models.Face) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Create(face).Error
}

func (r *FaceRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Face, error) {
	var face models.Face
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Person").
		Where("id = ?", id).
		First(&face).Error
	if err != nil {
		return nil, err
	}
	return &face, nil
}

// NearestLinked finds the closest faces that already belong to a person,
// using pgvector cosine distance. Equal distances resolve by insertion
// order so results are deterministic.
func (r *FaceRepositoryImpl) NearestLinked(ctx context.Context, embedding pgvector.Vector, limit int) ([]repositories.LinkedMatch, error) {
	var matches []repositories.LinkedMatch

	rows, err := dbFromContext(ctx, r.db).WithContext(ctx).Raw(`
		SELECT
			f.id, f.person_id, p.name as person_name,
			f.embedding <=> ? as distance
		FROM faces f
		JOIN persons p ON f.person_id = p.id
		ORDER BY f.embedding <=> ?, f.created_at ASC, f.id ASC
		LIMIT ?
	`, embedding, embedding, limit).Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m repositories.LinkedMatch
		if err := rows.Scan(&m.FaceID, &m.PersonID, &m.PersonName, &m.Distance); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// NearestUnlinked finds unassigned faces within maxDistance of the
// embedding, excluding the face being labeled.
func (r *FaceRepositoryImpl) NearestUnlinked(ctx context.Context, embedding pgvector.Vector, excludeID uuid.UUID, maxDistance float64) ([]repositories.UnlinkedMatch, error) {
	var matches []repositories.UnlinkedMatch

	rows, err := dbFromContext(ctx, r.db).WithContext(ctx).Raw(`
		SELECT
			f.id, f.embedding <=> ? as distance
		FROM faces f
		WHERE f.person_id IS NULL
		AND f.id <> ?
		AND f.embedding <=> ? < ?
		ORDER BY f.embedding <=> ?, f.created_at ASC, f.id ASC
	`, embedding, excludeID, embedding, maxDistance, embedding).Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m repositories.UnlinkedMatch
		if err := rows.Scan(&m.FaceID, &m.Distance); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

func (r *FaceRepositoryImpl) SetPersonID(ctx context.Context, id uuid.UUID, personID *uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.Face{}).
		Where("id = ?", id).
		Update("person_id", personID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *FaceRepositoryImpl) ClearPerson(ctx context.Context, personID uuid.UUID) (int64, error) {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.Face{}).
		Where("person_id = ?", personID).
		Update("person_id", nil)
	return result.RowsAffected, result.Error
}

func (r *FaceRepositoryImpl) CountByPerson(ctx context.Context, personID uuid.UUID) (int64, error) {
	var count int64
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.Face{}).
		Where("person_id = ?", personID).
		Count(&count).Error
	return count, err
}
