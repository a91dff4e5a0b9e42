// Package memory provides an in-process implementation of the
// repository interfaces for tests. Query semantics mirror the postgres
// implementation, including strict distance filtering and tie-breaking
// by insertion order; WithinTransaction has no rollback, so the store
// is not a substitute for postgres outside a test.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"face-search/domain/models"
	"face-search/domain/repositories"
	"face-search/domain/services"
	"face-search/pkg/vector"
)

type Store struct {
	mu  sync.RWMutex
	dim int

	persons map[uuid.UUID]models.Person
	images  map[uuid.UUID]models.Image
	faces   map[uuid.UUID]models.Face

	// Insertion order, used for deterministic tie-breaking and
	// newest-first listings.
	personOrder []uuid.UUID
	imageOrder  []uuid.UUID
	faceOrder   []uuid.UUID
}

// NewStore creates an empty store validating embeddings of the given
// dimension.
func NewStore(dim int) *Store {
	return &Store{
		dim:     dim,
		persons: make(map[uuid.UUID]models.Person),
		images:  make(map[uuid.UUID]models.Image),
		faces:   make(map[uuid.UUID]models.Face),
	}
}

// Counts reports the number of stored persons, images, and faces.
func (s *Store) Counts() (persons, images, faces int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.persons), len(s.images), len(s.faces)
}

// WithinTransaction satisfies repositories.Transactor. The store has no
// rollback; each repository call is atomic under the store mutex.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- FaceRepository ---

func (s *Store) Create(ctx context.Context, face *models.Face) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[face.ImageID]; !ok {
		return services.ErrImageNotFound
	}
	if len(face.Embedding.Slice()) != s.dim {
		return services.ErrInvalidEmbedding
	}

	if face.ID == uuid.Nil {
		face.ID = uuid.New()
	}
	if face.CreatedAt.IsZero() {
		face.CreatedAt = time.Now()
	}

	s.faces[face.ID] = *face
	s.faceOrder = append(s.faceOrder, face.ID)
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*models.Face, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	face, ok := s.faces[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s.attachPerson(&face)
	return &face, nil
}

func (s *Store) NearestLinked(ctx context.Context, embedding pgvector.Vector, limit int) ([]repositories.LinkedMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []repositories.LinkedMatch
	for _, id := range s.faceOrder {
		face := s.faces[id]
		if face.PersonID == nil {
			continue
		}
		person, ok := s.persons[*face.PersonID]
		if !ok {
			continue
		}
		matches = append(matches, repositories.LinkedMatch{
			FaceID:     face.ID,
			PersonID:   person.ID,
			PersonName: person.Name,
			Distance:   vector.CosineDistance(face.Embedding.Slice(), embedding.Slice()),
		})
	}

	// Stable sort keeps insertion order for equal distances
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *Store) NearestUnlinked(ctx context.Context, embedding pgvector.Vector, excludeID uuid.UUID, maxDistance float64) ([]repositories.UnlinkedMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []repositories.UnlinkedMatch
	for _, id := range s.faceOrder {
		face := s.faces[id]
		if face.PersonID != nil || face.ID == excludeID {
			continue
		}
		d := vector.CosineDistance(face.Embedding.Slice(), embedding.Slice())
		if d < maxDistance {
			matches = append(matches, repositories.UnlinkedMatch{FaceID: face.ID, Distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches, nil
}

func (s *Store) SetPersonID(ctx context.Context, id uuid.UUID, personID *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	face, ok := s.faces[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	face.PersonID = personID
	s.faces[id] = face
	return nil
}

func (s *Store) ClearPerson(ctx context.Context, personID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, face := range s.faces {
		if face.PersonID != nil && *face.PersonID == personID {
			face.PersonID = nil
			s.faces[id] = face
			n++
		}
	}
	return n, nil
}

func (s *Store) CountByPerson(ctx context.Context, personID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, face := range s.faces {
		if face.PersonID != nil && *face.PersonID == personID {
			n++
		}
	}
	return n, nil
}

// --- PersonRepository ---

func (s *Store) CreatePerson(ctx context.Context, person *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.persons {
		if p.Name == person.Name {
			return gorm.ErrDuplicatedKey
		}
	}

	if person.ID == uuid.Nil {
		person.ID = uuid.New()
	}
	if person.CreatedAt.IsZero() {
		person.CreatedAt = time.Now()
	}

	s.persons[person.ID] = *person
	s.personOrder = append(s.personOrder, person.ID)
	return nil
}

func (s *Store) GetPersonByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	person, ok := s.persons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &person, nil
}

func (s *Store) GetPersonByName(ctx context.Context, name string) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.personOrder {
		if person := s.persons[id]; person.Name == name {
			return &person, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *Store) ListPersons(ctx context.Context, nameFilter string, offset, limit int) ([]models.Person, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []models.Person
	// Newest first
	for i := len(s.personOrder) - 1; i >= 0; i-- {
		person := s.persons[s.personOrder[i]]
		if nameFilter != "" && !strings.Contains(strings.ToLower(person.Name), strings.ToLower(nameFilter)) {
			continue
		}
		all = append(all, person)
	}

	total := int64(len(all))
	return page(all, offset, limit), total, nil
}

func (s *Store) DeletePerson(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.persons[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.persons, id)
	for i, pid := range s.personOrder {
		if pid == id {
			s.personOrder = append(s.personOrder[:i], s.personOrder[i+1:]...)
			break
		}
	}
	return nil
}

// --- ImageRepository ---

func (s *Store) CreateImage(ctx context.Context, image *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	if image.CreatedAt.IsZero() {
		image.CreatedAt = time.Now()
	}

	s.images[image.ID] = *image
	s.imageOrder = append(s.imageOrder, image.ID)
	return nil
}

func (s *Store) GetImageWithFaces(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	image, ok := s.images[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	image.Faces = s.facesOfLocked(id)
	return &image, nil
}

func (s *Store) SearchByPersonIDs(ctx context.Context, personIDs []uuid.UUID, offset, limit int) ([]models.Image, int64, error) {
	// No ids means no person filter: list every non-sample image so
	// unresolved faces stay discoverable.
	if len(personIDs) == 0 {
		return s.search(nil, offset, limit)
	}

	idSet := make(map[uuid.UUID]bool, len(personIDs))
	for _, id := range personIDs {
		idSet[id] = true
	}

	return s.search(func(face models.Face) bool {
		return face.PersonID != nil && idSet[*face.PersonID]
	}, offset, limit)
}

func (s *Store) SearchByPersonName(ctx context.Context, pattern string, offset, limit int) ([]models.Image, int64, error) {
	lowered := strings.ToLower(pattern)

	return s.search(func(face models.Face) bool {
		if face.PersonID == nil {
			return false
		}
		person, ok := s.persons[*face.PersonID]
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(person.Name), lowered)
	}, offset, limit)
}

// search collects non-sample images with at least one matching face,
// each image once, newest first. A nil match keeps every non-sample
// image regardless of its faces.
func (s *Store) search(match func(models.Face) bool, offset, limit int) ([]models.Image, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []models.Image
	for i := len(s.imageOrder) - 1; i >= 0; i-- {
		image := s.images[s.imageOrder[i]]
		if image.IsSample {
			continue
		}

		hit := match == nil
		for _, faceID := range s.faceOrder {
			if hit {
				break
			}
			face := s.faces[faceID]
			if face.ImageID == image.ID && match(face) {
				hit = true
			}
		}
		if !hit {
			continue
		}

		image.Faces = s.facesOfLocked(image.ID)
		all = append(all, image)
	}

	total := int64(len(all))
	return page(all, offset, limit), total, nil
}

// facesOfLocked returns the faces of an image in insertion order with
// person links attached. Caller must hold the mutex.
func (s *Store) facesOfLocked(imageID uuid.UUID) []models.Face {
	var faces []models.Face
	for _, id := range s.faceOrder {
		face := s.faces[id]
		if face.ImageID != imageID {
			continue
		}
		s.attachPerson(&face)
		faces = append(faces, face)
	}
	return faces
}

func (s *Store) attachPerson(face *models.Face) {
	if face.PersonID == nil {
		return
	}
	if person, ok := s.persons[*face.PersonID]; ok {
		face.Person = &person
	}
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
