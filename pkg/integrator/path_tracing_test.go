package integrator

import (
	"errors"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/rng"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

const tolerance = 1e-5

func vecApproxEqual(a, b core.Vec3) bool {
	return a.Sub(b).Len() <= tolerance
}

// createTestScene returns a diffuse sphere on a large diffuse ground
func createTestScene(t *testing.T) *world.Repository {
	t.Helper()
	b := world.NewBuilder()
	ground := b.AddLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := b.AddLambertian(core.NewVec3(0.7, 0.3, 0.3))
	b.AddSphere(core.NewVec3(0, -100.5, -1), 100, ground)
	b.AddSphere(core.NewVec3(0, 0, -1), 0.5, center)
	repo, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return repo
}

func TestSkyColor(t *testing.T) {
	pt := NewPathTracingIntegrator(DefaultConfig())

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"straight up", core.NewVec3(0, 1, 0), core.NewVec3(0.5, 0.7, 1.0)},
		{"straight down", core.NewVec3(0, -1, 0), core.NewVec3(1, 1, 1)},
		{"horizon", core.NewVec3(1, 0, 0), core.NewVec3(0.75, 0.85, 1.0)},
		{"unnormalized up", core.NewVec3(0, 10, 0), core.NewVec3(0.5, 0.7, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pt.SkyColor(tt.direction)
			if !vecApproxEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTrace_MissReturnsSky(t *testing.T) {
	b := world.NewBuilder()
	m := b.AddLambertian(core.NewVec3(0.5, 0.5, 0.5))
	b.AddSphere(core.NewVec3(0, 0, -1), 0.5, m)
	repo := b.MustBuild()

	pt := NewPathTracingIntegrator(DefaultConfig())
	state := rng.Seed(1)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))
	color, err := pt.Trace(ray, repo, &state, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !vecApproxEqual(color, core.NewVec3(0.75, 0.85, 1.0)) {
		t.Errorf("Expected horizon sky, got %v", color)
	}
}

func TestTrace_EmptySceneIgnoresHorizontalDirection(t *testing.T) {
	repo := &world.Repository{}
	pt := NewPathTracingIntegrator(DefaultConfig())
	state := rng.Seed(1)

	for _, y := range []float32{-0.8, -0.2, 0, 0.3, 0.9} {
		reference := pt.SkyColor(core.NewVec3(0, y, -1))
		for _, dir := range []core.Vec3{
			core.NewVec3(0, y, -1),
			core.NewVec3(1, y, 0),
			core.NewVec3(-0.6, y, 0.8),
		} {
			color, err := pt.Trace(core.NewRay(core.Vec3{}, dir), repo, &state, 5)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !vecApproxEqual(color, reference) {
				t.Errorf("Direction %v: expected %v, got %v", dir, reference, color)
			}
		}
	}
}

func TestTrace_ZeroDepthIsBlack(t *testing.T) {
	pt := NewPathTracingIntegrator(DefaultConfig())
	state := rng.Seed(1)

	color, err := pt.Trace(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0)), &world.Repository{}, &state, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if color != (core.Vec3{}) {
		t.Errorf("Expected black with no bounces allowed, got %v", color)
	}
}

func TestTrace_TruncationIsBlack(t *testing.T) {
	repo := createTestScene(t)
	pt := NewPathTracingIntegrator(DefaultConfig())
	state := rng.Seed(1)
	stats := TraceStats{}

	// Every path hits the ground and has no bounce left to escape
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0))
	color, err := pt.TraceWithStats(ray, repo, &state, 1, &stats)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if color != (core.Vec3{}) {
		t.Errorf("Expected black after truncation, got %v", color)
	}
	if stats.Truncations != 1 || stats.Paths != 1 {
		t.Errorf("Expected one truncated path, got %+v", stats)
	}
}

func TestTrace_AbsorptionIsBlack(t *testing.T) {
	// Built by hand; Validate rejects spheres without a material
	repo := &world.Repository{
		Spheres: world.SphereSet{
			Centers:   []core.Vec3{core.NewVec3(0, 0, -1)},
			Radii:     []float32{0.5},
			Materials: []world.MaterialRef{{Kind: world.KindNone}},
		},
	}
	pt := NewPathTracingIntegrator(DefaultConfig())
	state := rng.Seed(1)

	path, err := pt.TracePath(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), repo, &state, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if path.Color != (core.Vec3{}) || path.Outcome != OutcomeAbsorbed {
		t.Errorf("Expected absorbed black path, got %v (%s)", path.Color, path.Outcome)
	}
	if len(path.Vertices) != 1 {
		t.Errorf("Expected one vertex, got %d", len(path.Vertices))
	}
}

func TestTrace_MirrorReflectsSky(t *testing.T) {
	b := world.NewBuilder()
	mirror := b.AddMetal(core.NewVec3(0.8, 0.6, 0.2), 0)
	b.AddSphere(core.NewVec3(0, 0, -1), 0.5, mirror)
	repo := b.MustBuild()

	pt := NewPathTracingIntegrator(DefaultConfig())
	state := rng.Seed(1)

	// Head-on reflection returns along +Z, which is horizontal
	color, err := pt.Trace(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), repo, &state, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := core.MultiplyVec(core.NewVec3(0.8, 0.6, 0.2), core.NewVec3(0.75, 0.85, 1.0))
	if !vecApproxEqual(color, expected) {
		t.Errorf("Expected %v, got %v", expected, color)
	}
}

func TestTrace_EnergyNeverIncreases(t *testing.T) {
	b := world.NewBuilder()
	ground := b.AddLambertian(core.NewVec3(0.9, 0.9, 0.9))
	gold := b.AddMetal(core.NewVec3(1.0, 0.8, 0.4), 0.4)
	white := b.AddLambertian(core.NewVec3(1, 1, 1))
	b.AddSphere(core.NewVec3(0, -100.5, -1), 100, ground)
	b.AddSphere(core.NewVec3(0.6, 0, -1), 0.5, gold)
	b.AddSphere(core.NewVec3(-0.6, 0, -1), 0.5, white)
	repo := b.MustBuild()

	pt := NewPathTracingIntegrator(DefaultConfig())
	state := rng.Seed(99)

	for i := 0; i < 500; i++ {
		dir := core.NewVec3(state.NextSigned(), state.NextSigned()*0.5, -1)
		path, err := pt.TracePath(core.NewRay(core.Vec3{}, dir), repo, &state, 16)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		previous := core.NewVec3(1, 1, 1)
		for depth, v := range path.Vertices {
			for c := 0; c < 3; c++ {
				if v.Throughput[c] > previous[c] {
					t.Fatalf("Path %d bounce %d: channel %d grew from %g to %g", i, depth, c, previous[c], v.Throughput[c])
				}
			}
			previous = v.Throughput
		}
		for c := 0; c < 3; c++ {
			if path.Color[c] > 1 || path.Color[c] < 0 {
				t.Fatalf("Path %d: channel %d out of [0,1]: %g", i, c, path.Color[c])
			}
		}
	}
}

func TestTrace_Deterministic(t *testing.T) {
	repo := createTestScene(t)
	pt := NewPathTracingIntegrator(DefaultConfig())
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0.1, -0.2, -1))

	s1, s2 := rng.Seed(5), rng.Seed(5)
	for i := 0; i < 20; i++ {
		c1, err1 := pt.Trace(ray, repo, &s1, 8)
		c2, err2 := pt.Trace(ray, repo, &s2, 8)
		if err1 != nil || err2 != nil {
			t.Fatalf("Unexpected errors: %v, %v", err1, err2)
		}
		if c1 != c2 {
			t.Fatalf("Trace %d diverged: %v vs %v", i, c1, c2)
		}
	}
	if s1 != s2 {
		t.Error("Generator states diverged")
	}
}

func TestTrace_FatalErrors(t *testing.T) {
	pt := NewPathTracingIntegrator(DefaultConfig())
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

	t.Run("unknown material", func(t *testing.T) {
		repo := &world.Repository{
			Spheres: world.SphereSet{
				Centers:   []core.Vec3{core.NewVec3(0, 0, -1)},
				Radii:     []float32{0.5},
				Materials: []world.MaterialRef{{Kind: 7}},
			},
		}
		state := rng.Seed(1)
		if _, err := pt.Trace(ray, repo, &state, 4); !errors.Is(err, material.ErrUnknownMaterial) {
			t.Errorf("Expected ErrUnknownMaterial, got %v", err)
		}
	})

	t.Run("exhausted generator", func(t *testing.T) {
		repo := createTestScene(t)
		var state rng.State
		if _, err := pt.Trace(ray, repo, &state, 4); !errors.Is(err, rng.ErrRejectionExhausted) {
			t.Errorf("Expected ErrRejectionExhausted, got %v", err)
		}
	})
}

func TestTraceStats(t *testing.T) {
	var s TraceStats
	s.Record(OutcomeMiss, 2)
	s.Record(OutcomeAbsorbed, 1)
	s.Record(OutcomeTruncated, 3)

	var total TraceStats
	total.Merge(s)
	total.Merge(s)

	if total.Paths != 6 || total.Misses != 2 || total.Absorptions != 2 || total.Truncations != 2 {
		t.Errorf("Unexpected totals %+v", total)
	}
	if total.AverageBounces() != 2 {
		t.Errorf("Expected 2 average bounces, got %g", total.AverageBounces())
	}
}
