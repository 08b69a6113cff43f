package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/rng"
)

// Metal represents a metallic material with specular reflection
type Metal struct {
	Albedo   core.Vec3 // Metal color
	Fuzzness float32   // 0.0 = perfect mirror, 1.0 = very fuzzy
}

// NewMetal creates a new metal material
func NewMetal(albedo core.Vec3, fuzzness float32) Metal {
	// Clamp fuzzness to valid range
	if fuzzness > 1.0 {
		fuzzness = 1.0
	}
	if fuzzness < 0.0 {
		fuzzness = 0.0
	}
	return Metal{Albedo: albedo, Fuzzness: fuzzness}
}

// Scatter reflects the ray about the normal and perturbs it by fuzzness times
// a unit-ball sample. A perturbed ray that ends up at or below the surface is
// absorbed.
func (m Metal) Scatter(rayIn core.Ray, hit geometry.Hit, state *rng.State) (ScatterResult, bool, error) {
	reflected := core.Reflect(core.NormalizeOrZero(rayIn.Direction), hit.Normal)

	// A perfect mirror draws nothing from the generator
	if m.Fuzzness > 0 {
		perturbation, err := state.NextUnitBall()
		if err != nil {
			return ScatterResult{}, false, err
		}
		reflected = reflected.Add(perturbation.Mul(m.Fuzzness))
	}

	if reflected.Dot(hit.Normal) <= 0 {
		return ScatterResult{}, false, nil
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Position, reflected),
		Attenuation: m.Albedo,
	}, true, nil
}
