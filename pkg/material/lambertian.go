package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/rng"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3 // Base color/reflectance
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) Lambertian {
	return Lambertian{Albedo: albedo}
}

// Scatter sends the ray toward normal + a point on the unit sphere, which is
// cosine-distributed about the normal. Always scatters.
func (l Lambertian) Scatter(rayIn core.Ray, hit geometry.Hit, state *rng.State) (ScatterResult, bool, error) {
	offset, err := state.NextUnitSphere()
	if err != nil {
		return ScatterResult{}, false, err
	}

	scatterDirection := hit.Normal.Add(offset)

	// The sample can land exactly opposite the normal
	if core.LengthSquared(scatterDirection) == 0 {
		scatterDirection = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Position, scatterDirection),
		Attenuation: l.Albedo,
	}, true, nil
}
