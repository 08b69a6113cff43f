package renderer

import (
	"fmt"
	"image"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/rng"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

// TileRenderer renders the pixels of one tile using an integrator
type TileRenderer struct {
	repo       *world.Repository
	camera     *geometry.Camera
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer for a scene repository and camera
func NewTileRenderer(repo *world.Repository, camera *geometry.Camera, integratorInst integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		repo:       repo,
		camera:     camera,
		integrator: integratorInst,
	}
}

// TileOutput holds a tile's staged writes: the frame estimate and the
// advanced generator state of every pixel, row-major within Bounds.
// Nothing is written to the shared buffer or store until the whole frame
// succeeds.
type TileOutput struct {
	Bounds image.Rectangle
	Colors []core.Vec3
	States []rng.State
}

// RenderTileBounds renders pixels within bounds. The store is only read.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, params FrameParameters, store *rng.Store) (TileOutput, RenderStats, error) {
	pixelCount := bounds.Dx() * bounds.Dy()
	out := TileOutput{
		Bounds: bounds,
		Colors: make([]core.Vec3, 0, pixelCount),
		States: make([]rng.State, 0, pixelCount),
	}
	stats := RenderStats{
		TotalPixels:     pixelCount,
		SamplesPerPixel: int(params.SampleCount),
	}

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			var state rng.State
			if params.Reseed != nil {
				state = store.LoadReseeded(i, j, *params.Reseed)
			} else {
				state = store.Load(i, j)
			}

			color, err := tr.samplePixel(i, j, &state, params, &stats)
			if err != nil {
				return TileOutput{}, stats, fmt.Errorf("pixel (%d,%d): %w", i, j, err)
			}

			out.Colors = append(out.Colors, color)
			out.States = append(out.States, state)
		}
	}

	return out, stats, nil
}

// samplePixel averages SampleCount jittered samples through pixel (i, j)
func (tr *TileRenderer) samplePixel(i, j int, state *rng.State, params FrameParameters, stats *RenderStats) (core.Vec3, error) {
	var ps PixelStats
	for s := uint32(0); s < params.SampleCount; s++ {
		jitterX := state.NextF32()
		jitterY := state.NextF32()
		ray := tr.camera.GetRay(i, j, jitterX, jitterY)

		color, err := tr.integrator.TraceWithStats(ray, tr.repo, state, params.MaxDepth, &stats.Trace)
		if err != nil {
			return core.Vec3{}, err
		}
		ps.AddSample(color)
	}
	stats.TotalSamples += ps.SampleCount
	return ps.GetColor(), nil
}
