package serviceimpl

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"face-search/domain/services"
)

func TestUploadFirstFaceStaysUnlinked(t *testing.T) {
	env := newTestEnv(t)

	image := env.mustUpload(t, face(defaultBox, baseVec()))

	if len(image.Faces) != 1 {
		t.Fatalf("got %d faces, want 1", len(image.Faces))
	}
	if image.Faces[0].PersonID != nil {
		t.Errorf("first ever face got linked to %s, want unlinked", *image.Faces[0].PersonID)
	}
	if got := image.Faces[0].Box(); got != defaultBox {
		t.Errorf("Box() = %v, want %v", got, defaultBox)
	}
}

func TestUploadLinksMatchingFace(t *testing.T) {
	env := newTestEnv(t)
	alice := env.enroll(t, "Alice", baseVec())

	image := env.mustUpload(t, face(defaultBox, vecAt(0.2)))

	if len(image.Faces) != 1 {
		t.Fatalf("got %d faces, want 1", len(image.Faces))
	}
	got := image.Faces[0]
	if got.PersonID == nil || *got.PersonID != alice.ID {
		t.Fatalf("face not linked to Alice, PersonID = %v", got.PersonID)
	}
	if got.Person == nil || got.Person.Name != "Alice" {
		t.Errorf("Person = %+v, want Alice preloaded", got.Person)
	}
}

func TestUploadBoundaryDistanceStaysUnlinked(t *testing.T) {
	env := newTestEnv(t)
	env.enroll(t, "Alice", baseVec())

	// Distance to Alice's sample is exactly the threshold.
	image := env.mustUpload(t, face(defaultBox, halfVec()))

	if image.Faces[0].PersonID != nil {
		t.Errorf("face at threshold distance got linked, want unlinked")
	}
}

func TestUploadResolvesEachFaceIndependently(t *testing.T) {
	env := newTestEnv(t)
	alice := env.enroll(t, "Alice", baseVec())
	bob := env.enroll(t, "Bob", vecAt(0.9))

	image := env.mustUpload(t,
		face([4]int{0, 0, 50, 50}, vecAt(0.1)),
		face([4]int{60, 0, 110, 50}, vecAt(0.9)),
		face([4]int{120, 0, 170, 50}, farVec()),
	)

	if len(image.Faces) != 3 {
		t.Fatalf("got %d faces, want 3", len(image.Faces))
	}
	if got := image.Faces[0].PersonID; got == nil || *got != alice.ID {
		t.Errorf("face 0 PersonID = %v, want Alice", got)
	}
	if got := image.Faces[1].PersonID; got == nil || *got != bob.ID {
		t.Errorf("face 1 PersonID = %v, want Bob", got)
	}
	if got := image.Faces[2].PersonID; got != nil {
		t.Errorf("face 2 PersonID = %v, want unlinked", *got)
	}
}

func TestUploadZeroFaces(t *testing.T) {
	env := newTestEnv(t)

	image := env.mustUpload(t)

	if len(image.Faces) != 0 {
		t.Fatalf("got %d faces, want 0", len(image.Faces))
	}
	if env.blobCount(t) != 1 {
		t.Errorf("blob count = %d, want 1", env.blobCount(t))
	}
}

func TestUploadDetectionFailureLeavesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.faceSrv.failNext()

	_, err := env.images.Upload(context.Background(), []byte("img"), "image/jpeg")
	if !errors.Is(err, services.ErrDetectionFailed) {
		t.Fatalf("Upload() error = %v, want ErrDetectionFailed", err)
	}

	persons, images, faces := env.store.Counts()
	if persons != 0 || images != 0 || faces != 0 {
		t.Errorf("store has %d/%d/%d rows after failed upload, want none", persons, images, faces)
	}
	if env.blobCount(t) != 0 {
		t.Errorf("blob count = %d, want 0 after cleanup", env.blobCount(t))
	}
}

func TestUploadRejectsWrongEmbeddingDimension(t *testing.T) {
	env := newTestEnv(t)
	env.faceSrv.queue(face(defaultBox, []float32{1, 0, 0}))

	_, err := env.images.Upload(context.Background(), []byte("img"), "image/jpeg")
	if !errors.Is(err, services.ErrInvalidEmbedding) {
		t.Fatalf("Upload() error = %v, want ErrInvalidEmbedding", err)
	}

	_, images, faces := env.store.Counts()
	if images != 0 || faces != 0 {
		t.Errorf("store has %d images / %d faces, want none", images, faces)
	}
	if env.blobCount(t) != 0 {
		t.Errorf("blob count = %d, want 0 after cleanup", env.blobCount(t))
	}
}

func TestUploadBatchIsolatesFailures(t *testing.T) {
	env := newTestEnv(t)
	env.faceSrv.queue(face(defaultBox, baseVec()))
	env.faceSrv.failNext()
	env.faceSrv.queue(face(defaultBox, vecAt(0.9)))

	results := env.images.UploadBatch(context.Background(), []services.UploadItem{
		{FileName: "a.jpg", Data: []byte("a"), ContentType: "image/jpeg"},
		{FileName: "b.jpg", Data: []byte("b"), ContentType: "image/jpeg"},
		{FileName: "c.jpg", Data: []byte("c"), ContentType: "image/jpeg"},
	})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Err != nil || results[0].Image == nil {
		t.Errorf("item a: err = %v, image = %v", results[0].Err, results[0].Image)
	}
	if !errors.Is(results[1].Err, services.ErrDetectionFailed) {
		t.Errorf("item b: err = %v, want ErrDetectionFailed", results[1].Err)
	}
	if results[2].Err != nil || results[2].Image == nil {
		t.Errorf("item c: err = %v, image = %v", results[2].Err, results[2].Image)
	}

	_, images, faces := env.store.Counts()
	if images != 2 || faces != 2 {
		t.Errorf("store has %d images / %d faces, want 2/2", images, faces)
	}
}

func TestGetImageFacesNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.images.GetImageFaces(context.Background(), uuid.New())
	if !errors.Is(err, services.ErrImageNotFound) {
		t.Fatalf("GetImageFaces() error = %v, want ErrImageNotFound", err)
	}
}

func TestSearchDeduplicatesAndOrdersNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	alice := env.enroll(t, "Alice", baseVec())

	first := env.mustUpload(t, face(defaultBox, vecAt(0.2)))
	// Two matching faces in one image must not duplicate the image.
	second := env.mustUpload(t,
		face([4]int{0, 0, 50, 50}, vecAt(0.1)),
		face([4]int{60, 0, 110, 50}, vecAt(0.3)),
	)
	// Unlinked face only, excluded from per-person searches.
	third := env.mustUpload(t, face(defaultBox, vecAt(0.9)))

	page, err := env.images.Search(context.Background(), nil, 1, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if page.Total != 3 || len(page.Items) != 3 {
		t.Fatalf("Search() total = %d, items = %d, want 3/3", page.Total, len(page.Items))
	}
	want := []uuid.UUID{third.ID, second.ID, first.ID}
	for i, img := range page.Items {
		if img.ID != want[i] {
			t.Errorf("item %d = %s, want %s (newest first)", i, img.ID, want[i])
		}
	}

	page, err = env.images.Search(context.Background(), []uuid.UUID{alice.ID}, 1, 10)
	if err != nil {
		t.Fatalf("Search(alice) error = %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Search(alice) total = %d, want 2", page.Total)
	}
}

func TestSearchListsImagesWithUnresolvedFaces(t *testing.T) {
	env := newTestEnv(t)

	// An image whose only face is unresolved must still show up in the
	// unfiltered listing, otherwise its face can never be found and
	// labeled once the upload response is gone.
	image := env.mustUpload(t, face(defaultBox, baseVec()))

	page, err := env.images.Search(context.Background(), nil, 1, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("Search() total = %d, items = %d, want 1/1", page.Total, len(page.Items))
	}
	if page.Items[0].ID != image.ID {
		t.Errorf("item = %s, want %s", page.Items[0].ID, image.ID)
	}
	if len(page.Items[0].Faces) != 1 || page.Items[0].Faces[0].PersonID != nil {
		t.Fatalf("faces = %+v, want one unresolved face", page.Items[0].Faces)
	}

	// Filtering by a person still excludes it.
	page, err = env.images.Search(context.Background(), []uuid.UUID{uuid.New()}, 1, 10)
	if err != nil {
		t.Fatalf("Search(person) error = %v", err)
	}
	if page.Total != 0 {
		t.Errorf("Search(person) total = %d, want 0", page.Total)
	}
}

func TestSearchExcludesSampleImages(t *testing.T) {
	env := newTestEnv(t)
	env.enroll(t, "Alice", baseVec())

	page, err := env.images.Search(context.Background(), nil, 1, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if page.Total != 0 {
		t.Errorf("Search() total = %d, want 0 (sample images are hidden)", page.Total)
	}
}

func TestSearchByName(t *testing.T) {
	env := newTestEnv(t)
	env.enroll(t, "Alice", baseVec())
	env.enroll(t, "Bob", vecAt(0.9))

	env.mustUpload(t, face(defaultBox, vecAt(0.1)))
	env.mustUpload(t, face(defaultBox, vecAt(0.9)))

	tests := []struct {
		pattern string
		want    int64
	}{
		{"ali", 1},
		{"ALICE", 1},
		{"bob", 1},
		{"nobody", 0},
	}

	for _, tt := range tests {
		page, err := env.images.SearchByName(context.Background(), tt.pattern, 1, 10)
		if err != nil {
			t.Fatalf("SearchByName(%q) error = %v", tt.pattern, err)
		}
		if page.Total != tt.want {
			t.Errorf("SearchByName(%q) total = %d, want %d", tt.pattern, page.Total, tt.want)
		}
	}
}

func TestSearchPagination(t *testing.T) {
	env := newTestEnv(t)
	env.enroll(t, "Alice", baseVec())

	for i := 0; i < 3; i++ {
		env.mustUpload(t, face(defaultBox, vecAt(0.1)))
	}

	page, err := env.images.Search(context.Background(), nil, 2, 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if page.Total != 3 || page.Pages != 3 || page.Page != 2 || page.Size != 1 {
		t.Errorf("page = %d/%d size %d total %d, want 2/3 size 1 total 3",
			page.Page, page.Pages, page.Size, page.Total)
	}
	if len(page.Items) != 1 {
		t.Errorf("got %d items, want 1", len(page.Items))
	}

	// Out-of-range pages and sizes fall back to sane values.
	page, err = env.images.Search(context.Background(), nil, 0, -5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if page.Page != 1 || page.Size != defaultPageSize {
		t.Errorf("normalized page/size = %d/%d, want 1/%d", page.Page, page.Size, defaultPageSize)
	}
}
