package renderer

import (
	"errors"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/rng"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

func runPool(t *testing.T, mock *MockIntegrator, numWorkers int) []TileResult {
	t.Helper()
	tr := newTestTileRenderer(t, mock, 8, 8)
	tiles := NewTileGrid(8, 8, 4)

	store := rng.NewStore(8, 8)
	store.SeedAll(3)
	params := FrameParameters{Width: 8, Height: 8, SampleCount: 1, MaxDepth: 4, Weight: 1}

	pool := NewWorkerPool(len(tiles), numWorkers)
	pool.Start()
	defer pool.Stop()

	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, Renderer: tr, Params: params, Store: store, TaskID: i})
	}

	results := make([]TileResult, len(tiles))
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			t.Fatal("Result queue closed early")
		}
		results[result.TaskID] = result
	}
	return results
}

func TestWorkerPool_DefaultsToCPUCount(t *testing.T) {
	pool := NewWorkerPool(4, 0)
	if pool.GetNumWorkers() <= 0 {
		t.Errorf("Expected at least one worker, got %d", pool.GetNumWorkers())
	}
}

func TestWorkerPool_RendersEveryTile(t *testing.T) {
	mock := &MockIntegrator{returnColor: core.NewVec3(1, 1, 1)}
	results := runPool(t, mock, 3)

	for i, result := range results {
		if result.Error != nil {
			t.Errorf("Tile %d failed: %v", i, result.Error)
		}
		if len(result.Output.Colors) != 16 {
			t.Errorf("Tile %d: expected 16 pixels, got %d", i, len(result.Output.Colors))
		}
	}
}

func TestWorkerPool_RecoversPanics(t *testing.T) {
	mock := &MockIntegrator{}
	mock.panicWith.Store(&panicValue{value: &world.IndexError{Table: "sphere", Index: 9, Len: 4}})
	results := runPool(t, mock, 2)

	for i, result := range results {
		var indexErr *world.IndexError
		if !errors.As(result.Error, &indexErr) {
			t.Errorf("Tile %d: expected *world.IndexError, got %v", i, result.Error)
		}
		if len(result.Output.Colors) != 0 {
			t.Errorf("Tile %d: a failed tile must not carry output", i)
		}
	}
}
