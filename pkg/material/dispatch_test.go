package material

import (
	"errors"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/rng"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

func createTestRepository() *world.Repository {
	b := world.NewBuilder()
	b.AddLambertian(core.NewVec3(0.1, 0.2, 0.3))
	b.AddMetal(core.NewVec3(0.9, 0.8, 0.7), 0)
	return b.MustBuild()
}

func TestScatter_Dispatch(t *testing.T) {
	repo := createTestRepository()
	rayIn := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))

	tests := []struct {
		name          string
		ref           world.MaterialRef
		expectScatter bool
		attenuation   core.Vec3
	}{
		{"lambertian", world.Lambertian(0), true, core.NewVec3(0.1, 0.2, 0.3)},
		{"metal", world.Metal(0), true, core.NewVec3(0.9, 0.8, 0.7)},
		{"none absorbs", world.MaterialRef{Kind: world.KindNone}, false, core.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := rng.Seed(1)
			hit := geometry.Hit{Normal: core.NewVec3(0, 0, 1), Material: tt.ref}

			scatter, didScatter, err := Scatter(repo, rayIn, hit, &state)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if didScatter != tt.expectScatter {
				t.Fatalf("Expected scatter=%v, got %v", tt.expectScatter, didScatter)
			}
			if scatter.Attenuation != tt.attenuation {
				t.Errorf("Expected attenuation %v, got %v", tt.attenuation, scatter.Attenuation)
			}
		})
	}
}

func TestScatter_UnknownKindIsFatal(t *testing.T) {
	repo := createTestRepository()
	state := rng.Seed(1)
	hit := geometry.Hit{Normal: core.NewVec3(0, 0, 1), Material: world.MaterialRef{Kind: 42}}
	rayIn := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))

	_, didScatter, err := Scatter(repo, rayIn, hit, &state)
	if !errors.Is(err, ErrUnknownMaterial) {
		t.Errorf("Expected ErrUnknownMaterial, got %v", err)
	}
	if didScatter {
		t.Error("Unknown material must not scatter")
	}
}

func TestScatter_OutOfRangeIndexPanics(t *testing.T) {
	repo := createTestRepository()
	state := rng.Seed(1)
	hit := geometry.Hit{Normal: core.NewVec3(0, 0, 1), Material: world.Metal(5)}
	rayIn := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))

	defer func() {
		if _, ok := recover().(*world.IndexError); !ok {
			t.Error("Expected *world.IndexError panic")
		}
	}()
	Scatter(repo, rayIn, hit, &state)
}
