package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/df07/go-progressive-pathtracer/pkg/rng"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile     *Tile
	Renderer *TileRenderer
	Params   FrameParameters
	Store    *rng.Store // Read-only during the frame
	TaskID   int        // For deterministic ordering
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Output TileOutput
	Stats  RenderStats
	Error  error
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual tile rendering tasks
type Worker struct {
	ID          int
	taskQueue   chan TileTask
	resultQueue chan TileResult
}

// NewWorkerPool creates a worker pool with the specified number of workers,
// buffered for numTiles tasks per frame
func NewWorkerPool(numTiles int, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, numTiles),   // Buffer for all tiles
		resultQueue: make(chan TileResult, numTiles), // Buffer for all results
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:          i,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		w.resultQueue <- w.render(task)
	}
}

// render renders one tile. A panic from an out-of-range scene read becomes
// the tile's error instead of taking down the process.
func (w *Worker) render(task TileTask) (result TileResult) {
	result.TaskID = task.TaskID

	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				result.Error = fmt.Errorf("tile %d: %w", task.TaskID, err)
			} else {
				result.Error = fmt.Errorf("tile %d: panic: %v", task.TaskID, r)
			}
			result.Output = TileOutput{}
		}
	}()

	output, stats, err := task.Renderer.RenderTileBounds(task.Tile.Bounds, task.Params, task.Store)
	if err != nil {
		result.Error = fmt.Errorf("tile %d: %w", task.TaskID, err)
		return result
	}

	result.Output = output
	result.Stats = stats
	return result
}
