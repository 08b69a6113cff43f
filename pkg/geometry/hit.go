package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

// Hit contains information about a ray-sphere intersection
type Hit struct {
	Position  core.Vec3         // Point of intersection
	T         float32           // Parameter t along the ray
	Normal    core.Vec3         // Unit normal, always facing against the incoming ray
	FrontFace bool              // Whether the ray hit the outward-facing side
	Material  world.MaterialRef // Material of the hit sphere
}

// SetFaceNormal orients the normal against the incoming ray and records
// which side was hit. A ray grazing the surface counts as front-facing.
func (h *Hit) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = outwardNormal.Dot(ray.Direction) <= 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Mul(-1)
	}
}
