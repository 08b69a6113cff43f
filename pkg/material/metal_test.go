package material

import (
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/rng"
)

const tolerance = 1e-6

func TestNewMetal_FuzznessClamp(t *testing.T) {
	tests := []struct {
		name             string
		inputFuzzness    float32
		expectedFuzzness float32
	}{
		{"Valid fuzzness 0.0", 0.0, 0.0},
		{"Valid fuzzness 0.5", 0.5, 0.5},
		{"Valid fuzzness 1.0", 1.0, 1.0},
		{"Clamp above 1.0", 1.5, 1.0},
		{"Clamp below 0.0", -0.5, 0.0},
	}

	albedo := core.NewVec3(0.8, 0.8, 0.8)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metal := NewMetal(albedo, tt.inputFuzzness)
			if metal.Fuzzness != tt.expectedFuzzness {
				t.Errorf("Expected fuzzness %f, got %f", tt.expectedFuzzness, metal.Fuzzness)
			}
		})
	}
}

func TestMetal_PerfectReflection(t *testing.T) {
	albedo := core.NewVec3(0.9, 0.9, 0.9)
	metal := NewMetal(albedo, 0.0)

	tests := []struct {
		name     string
		incoming core.Vec3
		normal   core.Vec3
	}{
		{"head-on", core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1)},
		{"45 degrees", core.NormalizeOrZero(core.NewVec3(0, -1, -1)), core.NewVec3(0, 0, 1)},
		{"oblique", core.NormalizeOrZero(core.NewVec3(0.3, -0.8, 0.1)), core.NewVec3(0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := rng.Seed(42)
			before := state

			rayIn := core.NewRay(core.NewVec3(0, 0, 1), tt.incoming)
			hit := geometry.Hit{Position: core.NewVec3(0, 0, 0), Normal: tt.normal}

			scatter, didScatter, err := metal.Scatter(rayIn, hit, &state)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !didScatter {
				t.Fatal("Metal should scatter")
			}

			expected := core.Reflect(tt.incoming, tt.normal)
			if scatter.Scattered.Direction.Sub(expected).Len() > tolerance {
				t.Errorf("Perfect reflection failed: expected %v, got %v", expected, scatter.Scattered.Direction)
			}
			if scatter.Attenuation != albedo {
				t.Errorf("Attenuation should equal albedo: expected %v, got %v", albedo, scatter.Attenuation)
			}
			if state != before {
				t.Error("A perfect mirror must not consume random numbers")
			}
		})
	}
}

func TestMetal_FuzzyReflection(t *testing.T) {
	albedo := core.NewVec3(0.8, 0.8, 0.8)
	metal := NewMetal(albedo, 0.5)
	state := rng.Seed(42)

	rayIn := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))
	hit := geometry.Hit{Position: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 0, 1)}
	perfect := core.NewVec3(0, 0, 1)

	for i := 0; i < 200; i++ {
		scatter, didScatter, err := metal.Scatter(rayIn, hit, &state)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !didScatter {
			continue
		}
		// Perturbation is at most fuzz in length
		if d := scatter.Scattered.Direction.Sub(perfect).Len(); d > 0.5+tolerance {
			t.Errorf("Perturbation %f exceeds fuzz 0.5", d)
		}
		if scatter.Scattered.Direction.Dot(hit.Normal) <= 0 {
			t.Error("Scattered ray must leave the surface")
		}
	}
}

func TestMetal_AbsorbsBelowSurface(t *testing.T) {
	metal := NewMetal(core.NewVec3(1, 1, 1), 1.0)
	state := rng.Seed(9)

	// Grazing incidence: the mirror direction lies in the surface, so about
	// half of the fuzzed directions point into it
	rayIn := core.NewRay(core.NewVec3(-1, 0, 0), core.NewVec3(1, 0, 0))
	hit := geometry.Hit{Normal: core.NewVec3(0, 1, 0)}

	absorbed := 0
	for i := 0; i < 1000; i++ {
		_, didScatter, err := metal.Scatter(rayIn, hit, &state)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !didScatter {
			absorbed++
		}
	}

	if absorbed < 300 || absorbed > 700 {
		t.Errorf("Expected roughly half the grazing rays absorbed, got %d/1000", absorbed)
	}
}
