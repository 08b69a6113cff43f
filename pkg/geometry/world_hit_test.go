package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

func TestWorldHit_NearestWins(t *testing.T) {
	// Two overlapping spheres along -Z: near surface of A at t=1, of B at t=1.5
	tests := []struct {
		name  string
		order []int
	}{
		{"near sphere first", []int{0, 1}},
		{"far sphere first", []int{1, 0}},
	}

	centers := []core.Vec3{core.NewVec3(0, 0, -2), core.NewVec3(0, 0, -2.5)}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := world.NewBuilder()
			near := b.AddLambertian(core.NewVec3(1, 0, 0))
			far := b.AddLambertian(core.NewVec3(0, 1, 0))
			refs := []world.MaterialRef{near, far}
			for _, i := range tt.order {
				b.AddSphere(centers[i], 1, refs[i])
			}
			repo := b.MustBuild()

			ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
			hit, isHit := WorldHit(repo, ray, 0.001, 1e4)
			if !isHit {
				t.Fatal("Expected hit")
			}
			if !mgl32.FloatEqualThreshold(hit.T, 1, tolerance) {
				t.Errorf("Expected nearest t=1, got %f", hit.T)
			}
			if hit.Material != near {
				t.Errorf("Expected material %v, got %v", near, hit.Material)
			}
		})
	}
}

func TestWorldHit_EmptyScene(t *testing.T) {
	repo := world.NewBuilder().MustBuild()
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if _, isHit := WorldHit(repo, ray, 0.001, 1e4); isHit {
		t.Error("Expected miss in empty scene")
	}
}

func TestWorldHit_RespectsUpperBound(t *testing.T) {
	b := world.NewBuilder()
	m := b.AddLambertian(core.NewVec3(0.5, 0.5, 0.5))
	b.AddSphere(core.NewVec3(0, 0, -10), 1, m)
	repo := b.MustBuild()

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	if _, isHit := WorldHit(repo, ray, 0.001, 5); isHit {
		t.Error("Expected miss beyond tSup")
	}
	if _, isHit := WorldHit(repo, ray, 0.001, 1e4); !isHit {
		t.Error("Expected hit within tSup")
	}
}
