package material

import (
	"fmt"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/rng"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

// Scatter dispatches on the hit material's kind. It returns false when the
// ray is absorbed, and an error only for fatal conditions: an unknown kind or
// an exhausted rejection sampler. KindNone always absorbs.
func Scatter(repo *world.Repository, rayIn core.Ray, hit geometry.Hit, state *rng.State) (ScatterResult, bool, error) {
	ref := hit.Material

	switch ref.Kind {
	case world.KindLambertian:
		return Lambertian{Albedo: repo.LoadAlbedo(ref)}.Scatter(rayIn, hit, state)

	case world.KindMetal:
		m := Metal{Albedo: repo.LoadAlbedo(ref), Fuzzness: repo.LoadFuzz(ref)}
		return m.Scatter(rayIn, hit, state)

	case world.KindNone:
		return ScatterResult{}, false, nil

	default:
		return ScatterResult{}, false, fmt.Errorf("%w: %s", ErrUnknownMaterial, ref)
	}
}
