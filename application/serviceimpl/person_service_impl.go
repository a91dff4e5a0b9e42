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
	"face-search/infrastructure/storage"
	"face-search/infrastructure/worker"
	"face-search/pkg/logger"
)

type PersonServiceImpl struct {
	personRepo repositories.PersonRepository
	faceRepo   repositories.FaceRepository
	imageRepo  repositories.ImageRepository
	tx         repositories.Transactor
	detector   *worker.DetectionPool
	store      storage.Storage
	matcher    *Matcher
	dim        int
}

func NewPersonService(
	personRepo repositories.PersonRepository,
	faceRepo repositories.FaceRepository,
	imageRepo repositories.ImageRepository,
	tx repositories.Transactor,
	detector *worker.DetectionPool,
	store storage.Storage,
	matcher *Matcher,
	dim int,
) services.PersonService {
	return &PersonServiceImpl{
		personRepo: personRepo,
		faceRepo:   faceRepo,
		imageRepo:  imageRepo,
		tx:         tx,
		detector:   detector,
		store:      store,
		matcher:    matcher,
		dim:        dim,
	}
}

func (s *PersonServiceImpl) Create(ctx context.Context, name string) (*models.Person, error) {
	if err := s.checkNameFree(ctx, name); err != nil {
		return nil, err
	}

	person := &models.Person{Name: name}
	if err := s.createPerson(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

// CreateFromFace names an unassigned face. In one transaction the
// person is created, the target face linked, and every unlinked face
// close enough to the labeled embedding linked as well. The cascade is
// a single pass against the original embedding; it never chains through
// the faces it links.
func (s *PersonServiceImpl) CreateFromFace(ctx context.Context, faceID uuid.UUID, name string) (*models.Person, error) {
	face, err := s.faceRepo.GetByID(ctx, faceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrFaceNotFound
		}
		return nil, fmt.Errorf("failed to get face: %w", err)
	}

	if face.PersonID != nil {
		return nil, services.ErrFaceAlreadyAssigned
	}

	if err := s.checkNameFree(ctx, name); err != nil {
		return nil, err
	}

	person := &models.Person{Name: name}
	threshold := s.matcher.Threshold()
	linked := 0

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.createPerson(ctx, person); err != nil {
			return err
		}

		if err := s.faceRepo.SetPersonID(ctx, face.ID, &person.ID); err != nil {
			return fmt.Errorf("failed to link labeled face: %w", err)
		}

		candidates, err := s.faceRepo.NearestUnlinked(ctx, face.Embedding, face.ID, threshold)
		if err != nil {
			return fmt.Errorf("failed to scan unlinked faces: %w", err)
		}

		for _, c := range candidates {
			if c.Distance >= threshold {
				continue
			}
			if err := s.faceRepo.SetPersonID(ctx, c.FaceID, &person.ID); err != nil {
				return fmt.Errorf("failed to link face %s: %w", c.FaceID, err)
			}
			linked++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Face("person_labeled", "Person created from face", map[string]interface{}{
		"person_id": person.ID.String(),
		"face_id":   face.ID.String(),
		"cascaded":  linked,
	})

	return person, nil
}

func (s *PersonServiceImpl) Get(ctx context.Context, id uuid.UUID) (*services.PersonWithCount, error) {
	person, err := s.personRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to get person: %w", err)
	}

	count, err := s.faceRepo.CountByPerson(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count faces: %w", err)
	}

	return &services.PersonWithCount{Person: *person, FaceCount: count}, nil
}

func (s *PersonServiceImpl) List(ctx context.Context, nameFilter string, page, size int) ([]services.PersonWithCount, int64, error) {
	page, size = normalizePage(page, size)

	persons, total, err := s.personRepo.List(ctx, nameFilter, (page-1)*size, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list persons: %w", err)
	}

	result := make([]services.PersonWithCount, 0, len(persons))
	for _, person := range persons {
		count, err := s.faceRepo.CountByPerson(ctx, person.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count faces: %w", err)
		}
		result = append(result, services.PersonWithCount{Person: person, FaceCount: count})
	}
	return result, total, nil
}

// Delete removes the person. Their faces survive as unlinked faces and
// can be labeled again later.
func (s *PersonServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.personRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.ErrPersonNotFound
		}
		return fmt.Errorf("failed to get person: %w", err)
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		unlinked, err := s.faceRepo.ClearPerson(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to unlink faces: %w", err)
		}

		if err := s.personRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete person: %w", err)
		}

		logger.Face("person_deleted", "Person deleted", map[string]interface{}{
			"person_id": id.String(),
			"unlinked":  unlinked,
		})
		return nil
	})
}

// AddSampleImage enrolls a reference photo for a person. The largest
// detected face becomes a sample face linked to the person; sample
// images never show up in search results.
func (s *PersonServiceImpl) AddSampleImage(ctx context.Context, personID uuid.UUID, data []byte, contentType string) (*services.EnrollResult, error) {
	if _, err := s.personRepo.GetByID(ctx, personID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to get person: %w", err)
	}

	locator, err := s.store.Save(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	detected, err := s.detector.Detect(ctx, data, contentType)
	if err != nil {
		s.cleanupBlob(ctx, locator)
		return nil, fmt.Errorf("%w: %v", services.ErrDetectionFailed, err)
	}
	if len(detected) == 0 {
		s.cleanupBlob(ctx, locator)
		return nil, services.ErrNoFaceDetected
	}

	// The most prominent face is assumed to be the enrolled person
	best := detected[0]
	for _, d := range detected[1:] {
		if boxArea(d.Box) > boxArea(best.Box) {
			best = d
		}
	}

	if len(best.Embedding) != s.dim {
		s.cleanupBlob(ctx, locator)
		return nil, fmt.Errorf("%w: got %d, want %d", services.ErrInvalidEmbedding, len(best.Embedding), s.dim)
	}

	image := &models.Image{FilePath: locator, IsSample: true}
	face := &models.Face{
		PersonID:  &personID,
		Embedding: pgvector.NewVector(best.Embedding),
		BoxX1:     best.Box[0],
		BoxY1:     best.Box[1],
		BoxX2:     best.Box[2],
		BoxY2:     best.Box[3],
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.imageRepo.Create(ctx, image); err != nil {
			return fmt.Errorf("failed to create sample image: %w", err)
		}
		face.ImageID = image.ID
		if err := s.faceRepo.Create(ctx, face); err != nil {
			return fmt.Errorf("failed to create sample face: %w", err)
		}
		return nil
	})
	if err != nil {
		s.cleanupBlob(ctx, locator)
		return nil, err
	}

	logger.Face("sample_enrolled", "Sample image enrolled", map[string]interface{}{
		"person_id": personID.String(),
		"image_id":  image.ID.String(),
		"face_id":   face.ID.String(),
	})

	return &services.EnrollResult{ImageID: image.ID, FaceID: face.ID}, nil
}

// createPerson inserts the person, mapping a unique violation to
// ErrPersonNameTaken. The name check in checkNameFree runs before the
// insert, so a concurrent create with the same name can still lose the
// race to the unique index.
func (s *PersonServiceImpl) createPerson(ctx context.Context, person *models.Person) error {
	if err := s.personRepo.Create(ctx, person); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return services.ErrPersonNameTaken
		}
		return fmt.Errorf("failed to create person: %w", err)
	}
	return nil
}

func (s *PersonServiceImpl) checkNameFree(ctx context.Context, name string) error {
	_, err := s.personRepo.GetByName(ctx, name)
	if err == nil {
		return services.ErrPersonNameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check person name: %w", err)
	}
	return nil
}

func (s *PersonServiceImpl) cleanupBlob(ctx context.Context, locator string) {
	if err := s.store.Delete(ctx, locator); err != nil {
		logger.StorageError("blob_cleanup_failed", "Failed to delete orphaned blob", err, map[string]interface{}{
			"locator": locator,
		})
	}
}

func boxArea(box [4]int) int {
	w := box[2] - box[0]
	h := box[3] - box[1]
	if w < 0 || h < 0 {
		return 0
	}
	return w * h
}
