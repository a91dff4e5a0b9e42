package memory

import (
	"context"

	"github.com/google/uuid"

	"face-search/domain/models"
	"face-search/domain/repositories"
)

// Faces returns the store's FaceRepository view.
func (s *Store) Faces() repositories.FaceRepository {
	return s
}

// Persons returns the store's PersonRepository view.
func (s *Store) Persons() repositories.PersonRepository {
	return personRepo{s}
}

// Images returns the store's ImageRepository view.
func (s *Store) Images() repositories.ImageRepository {
	return imageRepo{s}
}

type personRepo struct {
	s *Store
}

func (r personRepo) Create(ctx context.Context, person *models.Person) error {
	return r.s.CreatePerson(ctx, person)
}

func (r personRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	return r.s.GetPersonByID(ctx, id)
}

func (r personRepo) GetByName(ctx context.Context, name string) (*models.Person, error) {
	return r.s.GetPersonByName(ctx, name)
}

func (r personRepo) List(ctx context.Context, nameFilter string, offset, limit int) ([]models.Person, int64, error) {
	return r.s.ListPersons(ctx, nameFilter, offset, limit)
}

func (r personRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.DeletePerson(ctx, id)
}

type imageRepo struct {
	s *Store
}

func (r imageRepo) Create(ctx context.Context, image *models.Image) error {
	return r.s.CreateImage(ctx, image)
}

func (r imageRepo) GetWithFaces(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	return r.s.GetImageWithFaces(ctx, id)
}

func (r imageRepo) SearchByPersonIDs(ctx context.Context, personIDs []uuid.UUID, offset, limit int) ([]models.Image, int64, error) {
	return r.s.SearchByPersonIDs(ctx, personIDs, offset, limit)
}

func (r imageRepo) SearchByPersonName(ctx context.Context, pattern string, offset, limit int) ([]models.Image, int64, error) {
	return r.s.SearchByPersonName(ctx, pattern, offset, limit)
}
