//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"face-search/domain/models"
)

func setupTestContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	db, err := NewDatabase(DatabaseConfig{
		Host:     host,
		Port:     port.Port(),
		User:     "test",
		Password: "test",
		DBName:   "testdb",
		SSLMode:  "disable",
	})
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to connect: %v", err)
	}

	if err := Migrate(db); err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to migrate: %v", err)
	}

	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		container.Terminate(ctx)
	}

	return db, cleanup
}

// testVec returns a 512-dim unit vector at approximately the given
// cosine distance from refVec.
func testVec(d float64) pgvector.Vector {
	v := make([]float32, 512)
	x := 1 - d
	v[0] = float32(x)
	v[1] = float32(math.Sqrt(1 - x*x))
	return pgvector.NewVector(v)
}

func refVec() pgvector.Vector {
	v := make([]float32, 512)
	v[0] = 1
	return pgvector.NewVector(v)
}

// boundaryVec is at exactly cosine distance 0.5 from refVec.
func boundaryVec() pgvector.Vector {
	v := make([]float32, 512)
	v[0], v[1], v[2], v[3] = 1, 1, 1, 1
	return pgvector.NewVector(v)
}

func createImage(t *testing.T, db *gorm.DB, isSample bool) *models.Image {
	t.Helper()
	image := &models.Image{FilePath: uuid.NewString() + ".jpg", IsSample: isSample}
	if err := NewImageRepository(db).Create(context.Background(), image); err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	return image
}

func createFace(t *testing.T, db *gorm.DB, imageID uuid.UUID, personID *uuid.UUID, embedding pgvector.Vector) *models.Face {
	t.Helper()
	face := &models.Face{
		ImageID:   imageID,
		PersonID:  personID,
		Embedding: embedding,
		BoxX1:     10, BoxY1: 20, BoxX2: 110, BoxY2: 140,
	}
	if err := NewFaceRepository(db).Create(context.Background(), face); err != nil {
		t.Fatalf("Failed to create face: %v", err)
	}
	return face
}

func TestFaceRepositoryIntegration(t *testing.T) {
	db, cleanup := setupTestContainer(t)
	if db == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	faces := NewFaceRepository(db)
	persons := NewPersonRepository(db)

	alice := &models.Person{Name: "Alice"}
	if err := persons.Create(ctx, alice); err != nil {
		t.Fatalf("Failed to create person: %v", err)
	}
	bob := &models.Person{Name: "Bob"}
	if err := persons.Create(ctx, bob); err != nil {
		t.Fatalf("Failed to create person: %v", err)
	}

	image := createImage(t, db, false)
	createFace(t, db, image.ID, &alice.ID, refVec())
	createFace(t, db, image.ID, &bob.ID, testVec(0.8))

	t.Run("NearestLinkedOrdersByDistance", func(t *testing.T) {
		matches, err := faces.NearestLinked(ctx, testVec(0.1), 10)
		if err != nil {
			t.Fatalf("Failed to search linked: %v", err)
		}
		if len(matches) != 2 {
			t.Fatalf("Expected 2 matches, got %d", len(matches))
		}
		if matches[0].PersonName != "Alice" {
			t.Errorf("Expected Alice first, got %s", matches[0].PersonName)
		}
		if matches[0].Distance > matches[1].Distance {
			t.Errorf("Distances not sorted: %v > %v", matches[0].Distance, matches[1].Distance)
		}
		if math.Abs(matches[0].Distance-0.1) > 0.01 {
			t.Errorf("Expected distance ~0.1, got %v", matches[0].Distance)
		}
	})

	t.Run("NearestLinkedHonorsLimit", func(t *testing.T) {
		matches, err := faces.NearestLinked(ctx, refVec(), 1)
		if err != nil {
			t.Fatalf("Failed to search linked: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("Expected 1 match, got %d", len(matches))
		}
		if matches[0].PersonID != alice.ID {
			t.Errorf("Expected Alice, got %s", matches[0].PersonName)
		}
	})

	t.Run("NearestUnlinkedIsStrict", func(t *testing.T) {
		labeled := createFace(t, db, image.ID, nil, refVec())
		near := createFace(t, db, image.ID, nil, testVec(0.3))
		createFace(t, db, image.ID, nil, boundaryVec())
		createFace(t, db, image.ID, nil, testVec(0.7))

		matches, err := faces.NearestUnlinked(ctx, labeled.Embedding, labeled.ID, 0.5)
		if err != nil {
			t.Fatalf("Failed to search unlinked: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("Expected 1 match within strict threshold, got %d", len(matches))
		}
		if matches[0].FaceID != near.ID {
			t.Errorf("Expected the 0.3 face, got %s", matches[0].FaceID)
		}
	})

	t.Run("SetPersonIDUnknownFace", func(t *testing.T) {
		err := faces.SetPersonID(ctx, uuid.New(), &alice.ID)
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("Expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("ClearPersonReportsCount", func(t *testing.T) {
		carol := &models.Person{Name: "Carol"}
		if err := persons.Create(ctx, carol); err != nil {
			t.Fatalf("Failed to create person: %v", err)
		}
		createFace(t, db, image.ID, &carol.ID, testVec(0.2))
		createFace(t, db, image.ID, &carol.ID, testVec(0.25))

		n, err := faces.ClearPerson(ctx, carol.ID)
		if err != nil {
			t.Fatalf("Failed to clear person: %v", err)
		}
		if n != 2 {
			t.Errorf("Expected 2 cleared faces, got %d", n)
		}

		count, err := faces.CountByPerson(ctx, carol.ID)
		if err != nil {
			t.Fatalf("Failed to count: %v", err)
		}
		if count != 0 {
			t.Errorf("Expected 0 remaining faces, got %d", count)
		}
	})
}

func TestPersonRepositoryIntegration(t *testing.T) {
	db, cleanup := setupTestContainer(t)
	if db == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	persons := NewPersonRepository(db)

	for _, name := range []string{"Alice", "Alicia", "Bob"} {
		if err := persons.Create(ctx, &models.Person{Name: name}); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}

	t.Run("UniqueName", func(t *testing.T) {
		err := persons.Create(ctx, &models.Person{Name: "Alice"})
		if err == nil {
			t.Error("Expected unique violation, got nil")
		}
	})

	t.Run("GetByName", func(t *testing.T) {
		person, err := persons.GetByName(ctx, "Bob")
		if err != nil {
			t.Fatalf("Failed to get by name: %v", err)
		}
		if person.Name != "Bob" {
			t.Errorf("Expected Bob, got %s", person.Name)
		}

		_, err = persons.GetByName(ctx, "Nobody")
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("Expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("ListFiltersCaseInsensitive", func(t *testing.T) {
		list, total, err := persons.List(ctx, "ALI", 0, 10)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if total != 2 || len(list) != 2 {
			t.Errorf("Expected 2 persons, got %d (total %d)", len(list), total)
		}
	})
}

func TestImageSearchIntegration(t *testing.T) {
	db, cleanup := setupTestContainer(t)
	if db == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	images := NewImageRepository(db)
	persons := NewPersonRepository(db)

	alice := &models.Person{Name: "Alice"}
	if err := persons.Create(ctx, alice); err != nil {
		t.Fatalf("Failed to create person: %v", err)
	}

	// Two linked faces in one image must not duplicate it.
	multi := createImage(t, db, false)
	createFace(t, db, multi.ID, &alice.ID, testVec(0.1))
	createFace(t, db, multi.ID, &alice.ID, testVec(0.2))

	// Sample images stay out of search results.
	sample := createImage(t, db, true)
	createFace(t, db, sample.ID, &alice.ID, refVec())

	// Unlinked faces never match person searches.
	plain := createImage(t, db, false)
	createFace(t, db, plain.ID, nil, testVec(0.9))

	t.Run("SearchByPersonIDs", func(t *testing.T) {
		result, total, err := images.SearchByPersonIDs(ctx, []uuid.UUID{alice.ID}, 0, 10)
		if err != nil {
			t.Fatalf("Failed to search: %v", err)
		}
		if total != 1 || len(result) != 1 {
			t.Fatalf("Expected 1 image, got %d (total %d)", len(result), total)
		}
		if result[0].ID != multi.ID {
			t.Errorf("Expected image %s, got %s", multi.ID, result[0].ID)
		}
		if len(result[0].Faces) != 2 {
			t.Errorf("Expected 2 preloaded faces, got %d", len(result[0].Faces))
		}
	})

	t.Run("SearchUnfiltered", func(t *testing.T) {
		// No ids: every non-sample image, including the one whose only
		// face is unresolved.
		result, total, err := images.SearchByPersonIDs(ctx, nil, 0, 10)
		if err != nil {
			t.Fatalf("Failed to search: %v", err)
		}
		if total != 2 || len(result) != 2 {
			t.Fatalf("Expected 2 non-sample images, got %d (total %d)", len(result), total)
		}
		for _, img := range result {
			if img.ID == sample.ID {
				t.Errorf("Sample image leaked into unfiltered search")
			}
		}
	})

	t.Run("SearchByPersonName", func(t *testing.T) {
		_, total, err := images.SearchByPersonName(ctx, "ali", 0, 10)
		if err != nil {
			t.Fatalf("Failed to search by name: %v", err)
		}
		if total != 1 {
			t.Errorf("Expected 1 image, got %d", total)
		}

		_, total, err = images.SearchByPersonName(ctx, "nobody", 0, 10)
		if err != nil {
			t.Fatalf("Failed to search by name: %v", err)
		}
		if total != 0 {
			t.Errorf("Expected 0 images, got %d", total)
		}
	})
}

func TestTransactorRollback(t *testing.T) {
	db, cleanup := setupTestContainer(t)
	if db == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	tx := NewTransactor(db)
	persons := NewPersonRepository(db)

	sentinel := fmt.Errorf("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := persons.Create(ctx, &models.Person{Name: "Ghost"}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Expected sentinel error, got %v", err)
	}

	_, err = persons.GetByName(ctx, "Ghost")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected rollback, person still exists (err = %v)", err)
	}
}
