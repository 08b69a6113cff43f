package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/rng"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// ErrClosed is returned when rendering on a renderer whose workers have stopped
var ErrClosed = errors.New("renderer closed")

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize   int         // Size of each tile (64x64 recommended)
	NumWorkers int         // Number of parallel workers (0 = use CPU count)
	MaxFrames  int         // Frames rendered by RenderProgressive
	Seed       uint64      // Seed for the per-pixel generators
	Policy     BlendPolicy // Frame blend weight; nil means CumulativeMean
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:   64,
		NumWorkers: 0, // Auto-detect CPU count
		MaxFrames:  16,
		Seed:       1,
		Policy:     CumulativeMean{},
	}
}

// ProgressiveRenderer renders frames of a scene and blends them into a
// persistent accumulation buffer. Frames are data-parallel across tiles and
// strictly ordered with respect to each other.
type ProgressiveRenderer struct {
	mu sync.Mutex

	scene         *scene.Scene
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile
	integrator    integrator.Integrator
	tileRenderer  *TileRenderer
	store         *rng.Store          // Per-pixel generator state
	buffer        *AccumulationBuffer // Committed frame history
	workerPool    *WorkerPool
	started       bool
	closed        bool
	logger        core.Logger
}

// NewProgressiveRenderer creates a renderer for a width x height image
func NewProgressiveRenderer(s *scene.Scene, width, height int, config ProgressiveConfig, logger core.Logger) (*ProgressiveRenderer, error) {
	if s == nil || s.Repository == nil {
		return nil, fmt.Errorf("renderer: scene has no repository")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrInvalidFrame, width, height)
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultProgressiveConfig().TileSize
	}
	if config.Policy == nil {
		config.Policy = CumulativeMean{}
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	tiles := NewTileGrid(width, height, config.TileSize)

	pr := &ProgressiveRenderer{
		width:      width,
		height:     height,
		config:     config,
		tiles:      tiles,
		integrator: integrator.NewPathTracingIntegrator(integrator.DefaultConfig()),
		store:      rng.NewStore(width, height),
		buffer:     NewAccumulationBuffer(width, height),
		workerPool: NewWorkerPool(len(tiles), config.NumWorkers),
		logger:     logger,
	}
	pr.setScene(s)
	return pr, nil
}

// SetIntegrator replaces the light transport integrator and resets history
func (pr *ProgressiveRenderer) SetIntegrator(integ integrator.Integrator) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.integrator = integ
	pr.setScene(pr.scene)
}

// SetScene switches to a new scene and discards accumulated history
func (pr *ProgressiveRenderer) SetScene(s *scene.Scene) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.setScene(s)
}

func (pr *ProgressiveRenderer) setScene(s *scene.Scene) {
	pr.scene = s
	pr.tileRenderer = NewTileRenderer(s.Repository, s.NewCamera(pr.width, pr.height), pr.integrator)
	pr.reset()
}

// Reset discards accumulated history and reseeds every pixel's generator
func (pr *ProgressiveRenderer) Reset() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.reset()
}

func (pr *ProgressiveRenderer) reset() {
	pr.buffer.Reset()
	pr.store.SeedAll(pr.config.Seed)
}

// Buffer returns the accumulation buffer. It must not be read while a frame
// is rendering.
func (pr *ProgressiveRenderer) Buffer() *AccumulationBuffer {
	return pr.buffer
}

// Scene returns the scene being rendered
func (pr *ProgressiveRenderer) Scene() *scene.Scene {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.scene
}

// NextFrameParameters builds the parameters for the next frame from the
// scene's sampling config and the blend policy
func (pr *ProgressiveRenderer) NextFrameParameters() FrameParameters {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	sampling := pr.scene.SamplingConfig
	return FrameParameters{
		Width:       pr.width,
		Height:      pr.height,
		SampleCount: uint32(max(1, sampling.SamplesPerPixel)),
		MaxDepth:    uint32(max(0, sampling.MaxDepth)),
		Weight:      pr.config.Policy.Weight(pr.buffer.Frames() + 1),
	}
}

// Close stops the worker pool. Further frames fail with ErrClosed.
func (pr *ProgressiveRenderer) Close() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.closed {
		return
	}
	pr.closed = true
	if pr.started {
		pr.workerPool.Stop()
	}
}

// RenderFrame renders one frame with the given parameters and blends it into
// the accumulation buffer. If any tile fails the whole frame is discarded:
// neither the buffer nor the generator store changes.
func (pr *ProgressiveRenderer) RenderFrame(params FrameParameters) (*image.RGBA, RenderStats, error) {
	return pr.renderFrame(params, nil)
}

func (pr *ProgressiveRenderer) renderFrame(params FrameParameters, tileCallback func(TileCompletionResult)) (*image.RGBA, RenderStats, error) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if pr.closed {
		return nil, RenderStats{}, ErrClosed
	}
	if err := params.Validate(pr.width, pr.height); err != nil {
		return nil, RenderStats{}, err
	}
	if !pr.started {
		pr.workerPool.Start()
		pr.started = true
	}

	startTime := time.Now()
	frameNumber := pr.buffer.Frames() + 1

	pr.logger.Printf("Frame %d: %d samples per pixel, depth %d, weight %.4f (using %d workers)...\n",
		frameNumber, params.SampleCount, params.MaxDepth, params.Weight, pr.workerPool.GetNumWorkers())

	for taskID, tile := range pr.tiles {
		pr.workerPool.SubmitTask(TileTask{
			Tile:     tile,
			Renderer: pr.tileRenderer,
			Params:   params,
			Store:    pr.store,
			TaskID:   taskID,
		})
	}

	// Barrier: collect every tile before touching shared state
	outputs := make([]TileOutput, len(pr.tiles))
	stats := RenderStats{
		Frame:           frameNumber,
		SamplesPerPixel: int(params.SampleCount),
		Weight:          params.Weight,
	}
	var firstErr error
	previews := 0
	for i := 0; i < len(pr.tiles); i++ {
		result, ok := pr.workerPool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}

		outputs[result.TaskID] = result.Output
		stats.merge(result.Stats)

		tile := pr.tiles[result.TaskID]
		if tileCallback != nil && firstErr == nil {
			tileCallback(TileCompletionResult{
				TileX:       tile.Bounds.Min.X / pr.config.TileSize,
				TileY:       tile.Bounds.Min.Y / pr.config.TileSize,
				TileImage:   pr.previewTile(result.Output, params.Weight),
				FrameNumber: frameNumber,
				TileNumber:  i + 1,
				TotalTiles:  len(pr.tiles),
			})
			previews++
		}
	}

	if firstErr != nil {
		if previews > 0 {
			tileCallback(TileCompletionResult{
				FrameNumber: frameNumber,
				TotalTiles:  len(pr.tiles),
				Discarded:   true,
			})
		}
		pr.logger.Printf("Frame %d discarded: %v\n", frameNumber, firstErr)
		return nil, RenderStats{}, fmt.Errorf("frame %d discarded: %w", frameNumber, firstErr)
	}

	pr.commit(outputs, params.Weight)
	for _, tile := range pr.tiles {
		tile.FramesCompleted++
	}

	stats.MeanLuminance = MeanLuminance(pr.buffer)
	stats.Elapsed = time.Since(startTime)

	return BufferImage(pr.buffer), stats, nil
}

// commit writes every tile's staged colors and generator states
func (pr *ProgressiveRenderer) commit(outputs []TileOutput, weight float32) {
	for _, out := range outputs {
		k := 0
		for y := out.Bounds.Min.Y; y < out.Bounds.Max.Y; y++ {
			for x := out.Bounds.Min.X; x < out.Bounds.Max.X; x++ {
				pr.buffer.Blend(x, y, out.Colors[k], weight)
				pr.store.Put(x, y, out.States[k])
				k++
			}
		}
	}
	pr.buffer.frames++
}

// previewTile renders what the tile will look like once the frame commits
func (pr *ProgressiveRenderer) previewTile(out TileOutput, weight float32) *image.RGBA {
	bounds := out.Bounds
	tileImage := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	k := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			blended := core.Lerp(pr.buffer.Color(x, y), out.Colors[k], weight)
			tileImage.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, ColorToRGBA(blended))
			k++
		}
	}

	return tileImage
}

// FrameResult contains the result of a single frame
type FrameResult struct {
	FrameNumber int
	Image       *image.RGBA
	Stats       RenderStats
	IsLast      bool
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX       int // Tile coordinates (not pixel coordinates)
	TileY       int
	TileImage   *image.RGBA // Preview of the tile as it will be after this frame
	FrameNumber int

	// Progress information
	TileNumber int // Current tile number in this frame (1-based)
	TotalTiles int // Total number of tiles in the image

	// Discarded marks the frame as failed. Previews already sent for
	// FrameNumber never reached the buffer. No tile image is attached.
	Discarded bool
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// RenderProgressive renders config.MaxFrames frames with channel-based
// communication. The caller should read from these channels in separate
// goroutines. The context is checked between frames only; a frame in flight
// always completes. The worker pool is stopped when rendering ends.
func (pr *ProgressiveRenderer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan FrameResult, <-chan TileCompletionResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	tileChan := make(chan TileCompletionResult, 100) // Buffer for tiles
	errChan := make(chan error, 1)

	// If tile updates are disabled, close the channel immediately
	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(frameChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)
		defer pr.Close()

		pr.logger.Printf("Starting progressive rendering with %d frames...\n", pr.config.MaxFrames)

		for frame := 1; frame <= pr.config.MaxFrames; frame++ {
			// Check if client disconnected before starting this frame
			select {
			case <-ctx.Done():
				pr.logger.Printf("Rendering cancelled before frame %d\n", frame)
				errChan <- ctx.Err()
				return
			default:
			}

			var tileCallback func(TileCompletionResult)
			if options.TileUpdates {
				tileCallback = func(result TileCompletionResult) {
					if result.Discarded {
						select {
						case tileChan <- result:
						case <-ctx.Done():
						}
						return
					}
					select {
					case tileChan <- result:
					case <-ctx.Done():
					default:
						// Channel full, drop the preview
					}
				}
			}

			img, stats, err := pr.renderFrame(pr.NextFrameParameters(), tileCallback)
			if err != nil {
				errChan <- err
				return
			}

			pr.logger.Printf("Frame %d completed in %v (%d samples, mean luminance %.4f)\n",
				stats.Frame, stats.Elapsed, stats.TotalSamples, stats.MeanLuminance)

			result := FrameResult{
				FrameNumber: frame,
				Image:       img,
				Stats:       stats,
				IsLast:      frame == pr.config.MaxFrames,
			}

			select {
			case frameChan <- result:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frameChan, tileChan, errChan
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID              int             // Unique tile identifier
	Bounds          image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	FramesCompleted int             // Number of frames committed for this tile
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1)))
			tileID++
		}
	}

	return tiles
}
