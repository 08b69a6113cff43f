package geometry

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

// Sphere is a value view of one sphere record in the repository
type Sphere struct {
	Center   core.Vec3
	Radius   float32
	Material world.MaterialRef
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float32, material world.MaterialRef) Sphere {
	return Sphere{
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// LoadSphere reads sphere i from the repository
func LoadSphere(repo *world.Repository, i int) Sphere {
	return Sphere{
		Center:   repo.LoadCenter(i),
		Radius:   repo.LoadRadius(i),
		Material: repo.LoadMaterial(i),
	}
}

// Hit tests if a ray intersects the sphere with t in [tMin, tSup)
func (s Sphere) Hit(ray core.Ray, tMin, tSup float32) (Hit, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Sub(s.Center)

	// Quadratic equation coefficients: a·t² + 2b·t + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return Hit{}, false
	}
	sqrtD := math32.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if !(root >= tMin && root < tSup) {
		// Try the farther intersection point
		root = (-halfB + sqrtD) / a
		if !(root >= tMin && root < tSup) {
			return Hit{}, false
		}
	}

	hit := Hit{
		T:        root,
		Position: ray.At(root),
		Material: s.Material,
	}

	// Outward normal (from center to hit point)
	outwardNormal := hit.Position.Sub(s.Center).Mul(1 / s.Radius)
	hit.SetFaceNormal(ray, outwardNormal)

	return hit, true
}

// SphereHit tests sphere against ray over [tMin, tSup)
func SphereHit(s Sphere, ray core.Ray, tMin, tSup float32) (Hit, bool) {
	return s.Hit(ray, tMin, tSup)
}
