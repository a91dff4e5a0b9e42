package worker

import (
	"context"
	"errors"
	"sync"

	"face-search/infrastructure/faceapi"
	"face-search/pkg/logger"
)

// ErrPoolStopped is returned by Detect once the pool has been stopped.
var ErrPoolStopped = errors.New("detection pool is stopped")

// DetectionPool bounds concurrent calls to the face API with a fixed
// set of workers. Callers block while submitting a task and while
// waiting for its result; a cancelled caller walks away and the worker
// finishes the call into a buffered channel nobody reads.
type DetectionPool struct {
	client  *faceapi.FaceClient
	tasks   chan detectTask
	done    chan struct{}
	workers int

	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

type detectTask struct {
	ctx         context.Context
	data        []byte
	contentType string
	result      chan detectResult
}

type detectResult struct {
	faces []faceapi.DetectedFace
	err   error
}

// NewDetectionPool creates a pool with the given worker count
func NewDetectionPool(client *faceapi.FaceClient, workers int) *DetectionPool {
	if workers < 1 {
		workers = 1
	}
	return &DetectionPool{
		client:  client,
		tasks:   make(chan detectTask),
		done:    make(chan struct{}),
		workers: workers,
	}
}

// Start starts the pool workers
func (p *DetectionPool) Start() {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = true
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}

	logger.Startup("detection_pool_started", "Detection pool started", map[string]interface{}{
		"workers": p.workers,
	})
}

// Stop stops the pool after in-flight tasks finish. The pool is not
// restartable; Detect calls from then on return ErrPoolStopped.
func (p *DetectionPool) Stop() {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = false
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()
	logger.Startup("detection_pool_stopped", "Detection pool stopped", nil)
}

// IsRunning returns whether the pool is running
func (p *DetectionPool) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isRunning
}

// Detect submits an image to the pool and waits for the result. When
// ctx is cancelled before a worker picks the task up, or while waiting
// for the result, Detect returns the context error immediately. On a
// stopped pool Detect returns ErrPoolStopped.
func (p *DetectionPool) Detect(ctx context.Context, data []byte, contentType string) ([]faceapi.DetectedFace, error) {
	task := detectTask{
		ctx:         ctx,
		data:        data,
		contentType: contentType,
		result:      make(chan detectResult, 1),
	}

	select {
	case p.tasks <- task:
	case <-p.done:
		return nil, ErrPoolStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-task.result:
		return res.faces, res.err
	case <-ctx.Done():
		// The worker still runs the call; the buffered channel lets it
		// deliver a result nobody reads.
		return nil, ctx.Err()
	}
}

// run is the worker loop
func (p *DetectionPool) run() {
	defer p.wg.Done()

	for {
		var task detectTask
		select {
		case task = <-p.tasks:
		case <-p.done:
			return
		}

		// Skip the API call if the caller is already gone
		if err := task.ctx.Err(); err != nil {
			task.result <- detectResult{err: err}
			continue
		}

		// The call runs on a fresh context: once started it completes
		// even if the submitting caller has given up.
		faces, err := p.client.Detect(context.Background(), task.data, task.contentType)
		if err != nil {
			logger.FaceError("detect_failed", "Face detection call failed", err, nil)
		}
		task.result <- detectResult{faces: faces, err: err}
	}
}
