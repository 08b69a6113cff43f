package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

// WorldHit returns the nearest sphere hit with t in [tMin, tSup).
// Every sphere is tested; tSup shrinks to each confirmed hit so later
// candidates only need to beat the closest one so far.
func WorldHit(repo *world.Repository, ray core.Ray, tMin, tSup float32) (Hit, bool) {
	var closestHit Hit
	closestSoFar := tSup
	hitAnything := false

	for i := 0; i < repo.SphereCount(); i++ {
		if hit, isHit := LoadSphere(repo, i).Hit(ray, tMin, closestSoFar); isHit {
			hitAnything = true
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, hitAnything
}
