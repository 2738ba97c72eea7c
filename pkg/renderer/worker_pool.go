package renderer

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// RowTask asks a worker to render one scanline
type RowTask struct {
	Row int // Scan row index, 0 = bottom of the image
}

// RowResult reports a finished scanline
type RowResult struct {
	Row      int
	WorkerID int
	Samples  int
	Duration time.Duration
}

// WorkerPool manages parallel row rendering
type WorkerPool struct {
	taskQueue   chan RowTask
	resultQueue chan RowResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker renders rows pulled from the shared task queue
type Worker struct {
	ID          int
	raytracer   *Raytracer
	frame       *Frame
	taskQueue   chan RowTask
	resultQueue chan RowResult
}

// NewWorkerPool creates a worker pool writing into frame
func NewWorkerPool(raytracer *Raytracer, frame *Frame, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan RowTask, frame.Height),   // Buffer for every row
		resultQueue: make(chan RowResult, frame.Height), // Buffer for every result
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			raytracer:   raytracer,
			frame:       frame,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers. Workers skip remaining rows once ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(ctx, &wp.wg)
	}
}

// Stop closes the task queue, waits for workers and then closes the result queue
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask submits a row task to the worker pool
func (wp *WorkerPool) SubmitTask(task RowTask) {
	wp.taskQueue <- task
}

// Results returns the channel of finished rows. It is closed by Stop.
func (wp *WorkerPool) Results() <-chan RowResult {
	return wp.resultQueue
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

func (w *Worker) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		if ctx.Err() != nil {
			continue // drain without rendering
		}

		start := time.Now()
		// Each row owns its random stream so the image does not depend on scheduling
		sampler := core.NewStreamSampler(w.raytracer.config.Seed, task.Row)
		samples := w.raytracer.RenderRow(task.Row, sampler, w.frame.scanRow(task.Row))

		w.resultQueue <- RowResult{
			Row:      task.Row,
			WorkerID: w.ID,
			Samples:  samples,
			Duration: time.Since(start),
		}
	}
}
