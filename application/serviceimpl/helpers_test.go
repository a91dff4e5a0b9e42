package serviceimpl

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"face-search/domain/models"
	"face-search/domain/services"
	"face-search/infrastructure/faceapi"
	"face-search/infrastructure/memory"
	"face-search/infrastructure/storage"
	"face-search/infrastructure/worker"
)

const testDim = 4

// fakeFaceServer serves canned detection replies in FIFO order.
type fakeFaceServer struct {
	mu      sync.Mutex
	replies []fakeReply
	server  *httptest.Server
}

type fakeReply struct {
	status int
	faces  []faceapi.DetectedFace
}

func newFakeFaceServer(t *testing.T) *fakeFaceServer {
	f := &fakeFaceServer{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		if len(f.replies) == 0 {
			f.mu.Unlock()
			t.Errorf("unexpected detection call %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		reply := f.replies[0]
		f.replies = f.replies[1:]
		f.mu.Unlock()

		if reply.status != 0 {
			w.WriteHeader(reply.status)
			return
		}
		json.NewEncoder(w).Encode(faceapi.DetectResponse{Faces: reply.faces})
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeFaceServer) queue(faces ...faceapi.DetectedFace) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, fakeReply{faces: faces})
}

func (f *fakeFaceServer) failNext() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, fakeReply{status: http.StatusInternalServerError})
}

// testEnv wires the services against the in-memory store, a real local
// storage directory, and a real detection pool talking to the fake
// model server.
type testEnv struct {
	store      *memory.Store
	storageDir string
	faceSrv    *fakeFaceServer
	matcher    *Matcher

	images  services.ImageService
	persons services.PersonService
	recog   services.RecognitionService
}

func newTestEnv(t *testing.T) *testEnv {
	store := memory.NewStore(testDim)
	faceSrv := newFakeFaceServer(t)

	pool := worker.NewDetectionPool(faceapi.NewFaceClient(faceSrv.server.URL), 2)
	pool.Start()
	t.Cleanup(pool.Stop)

	dir := t.TempDir()
	blobs, err := storage.NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	matcher := NewMatcher(store.Faces(), 0.5)

	return &testEnv{
		store:      store,
		storageDir: dir,
		faceSrv:    faceSrv,
		matcher:    matcher,
		images:     NewImageService(store.Images(), store.Faces(), store, pool, blobs, matcher, testDim),
		persons:    NewPersonService(store.Persons(), store.Faces(), store.Images(), store, pool, blobs, matcher, testDim),
		recog:      NewRecognitionService(pool, matcher, testDim),
	}
}

// blobCount counts files in the storage directory.
func (e *testEnv) blobCount(t *testing.T) int {
	entries, err := os.ReadDir(e.storageDir)
	if err != nil {
		t.Fatalf("failed to read storage dir: %v", err)
	}
	return len(entries)
}

// face builds a detection reply with the given box and embedding.
func face(box [4]int, embedding []float32) faceapi.DetectedFace {
	return faceapi.DetectedFace{Box: box, Embedding: embedding}
}

var defaultBox = [4]int{10, 20, 110, 140}

// baseVec is the reference embedding the distance helpers are relative
// to.
func baseVec() []float32 {
	return []float32{1, 0, 0, 0}
}

// vecAt returns an embedding at approximately the given cosine distance
// from baseVec.
func vecAt(d float64) []float32 {
	x := 1 - d
	y := math.Sqrt(1 - x*x)
	return []float32{float32(x), float32(y), 0, 0}
}

// farVec is orthogonal to baseVec and to every vecAt embedding, cosine
// distance 1.0 from all of them.
func farVec() []float32 {
	return []float32{0, 0, 1, 0}
}

// halfVec is at exactly cosine distance 0.5 from baseVec: the dot
// product is 1 and the norms are 1 and 2, all exact in floating point.
func halfVec() []float32 {
	return []float32{1, 1, 1, 1}
}

// enroll creates a person and registers one sample face for them.
func (e *testEnv) enroll(t *testing.T, name string, embedding []float32) *models.Person {
	t.Helper()
	person, err := e.persons.Create(context.Background(), name)
	if err != nil {
		t.Fatalf("Create(%q) error = %v", name, err)
	}
	e.faceSrv.queue(face(defaultBox, embedding))
	if _, err := e.persons.AddSampleImage(context.Background(), person.ID, []byte("sample"), "image/jpeg"); err != nil {
		t.Fatalf("AddSampleImage() error = %v", err)
	}
	return person
}

// mustUpload ingests an image expecting success.
func (e *testEnv) mustUpload(t *testing.T, faces ...faceapi.DetectedFace) *models.Image {
	t.Helper()
	e.faceSrv.queue(faces...)
	image, err := e.images.Upload(context.Background(), []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	return image
}
