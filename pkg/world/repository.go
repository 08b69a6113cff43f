// Package world holds the scene repository: flat, read-only parameter tables
// for spheres and materials. Indices into the tables are validated once when
// the repository is built or unpacked; per-access checks only guard against
// producer bugs and panic with an *IndexError.
package world

import (
	"errors"
	"fmt"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// ErrInvalidScene is wrapped by every validation failure
var ErrInvalidScene = errors.New("invalid scene")

// IndexError is the panic value for an out-of-range table read
type IndexError struct {
	Table string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("world: %s index %d out of range [0,%d)", e.Table, e.Index, e.Len)
}

// SphereSet stores spheres as parallel arrays
type SphereSet struct {
	Centers   []core.Vec3
	Radii     []float32
	Materials []MaterialRef
}

// Len returns the number of spheres
func (s *SphereSet) Len() int { return len(s.Centers) }

// LambertianSet stores diffuse material parameters
type LambertianSet struct {
	Albedo []core.Vec3
}

// Len returns the number of lambertian materials
func (s *LambertianSet) Len() int { return len(s.Albedo) }

// MetalSet stores metal material parameters
type MetalSet struct {
	Albedo []core.Vec3
	Fuzz   []float32 // 0.0 = perfect mirror, 1.0 = very fuzzy
}

// Len returns the number of metal materials
func (s *MetalSet) Len() int { return len(s.Albedo) }

// Repository is the immutable-per-frame scene parameter store
type Repository struct {
	Spheres     SphereSet
	Lambertians LambertianSet
	Metals      MetalSet
}

// SphereCount returns the number of spheres in the scene
func (r *Repository) SphereCount() int {
	return r.Spheres.Len()
}

// LoadCenter returns the center of sphere i
func (r *Repository) LoadCenter(i int) core.Vec3 {
	r.checkSphere(i)
	return r.Spheres.Centers[i]
}

// LoadRadius returns the radius of sphere i
func (r *Repository) LoadRadius(i int) float32 {
	r.checkSphere(i)
	return r.Spheres.Radii[i]
}

// LoadMaterial returns the material reference of sphere i
func (r *Repository) LoadMaterial(i int) MaterialRef {
	r.checkSphere(i)
	return r.Spheres.Materials[i]
}

// LoadAlbedo returns the albedo of a lambertian or metal material
func (r *Repository) LoadAlbedo(ref MaterialRef) core.Vec3 {
	switch ref.Kind {
	case KindLambertian:
		checkIndex("lambertian", int(ref.Index), r.Lambertians.Len())
		return r.Lambertians.Albedo[ref.Index]
	case KindMetal:
		checkIndex("metal", int(ref.Index), r.Metals.Len())
		return r.Metals.Albedo[ref.Index]
	default:
		panic(&IndexError{Table: ref.Kind.String(), Index: int(ref.Index), Len: 0})
	}
}

// LoadFuzz returns the fuzz of a metal material
func (r *Repository) LoadFuzz(ref MaterialRef) float32 {
	if ref.Kind != KindMetal {
		panic(&IndexError{Table: ref.Kind.String() + " fuzz", Index: int(ref.Index), Len: 0})
	}
	checkIndex("metal", int(ref.Index), r.Metals.Len())
	return r.Metals.Fuzz[ref.Index]
}

func (r *Repository) checkSphere(i int) {
	checkIndex("sphere", i, r.Spheres.Len())
}

func checkIndex(table string, i, n int) {
	if i < 0 || i >= n {
		panic(&IndexError{Table: table, Index: i, Len: n})
	}
}

// Validate checks the repository invariants: parallel arrays agree in length,
// radii are positive, fuzz lies in [0,1] and every sphere references an
// existing lambertian or metal material.
func (r *Repository) Validate() error {
	n := r.Spheres.Len()
	if len(r.Spheres.Radii) != n || len(r.Spheres.Materials) != n {
		return fmt.Errorf("%w: sphere arrays disagree in length (%d centers, %d radii, %d materials)",
			ErrInvalidScene, n, len(r.Spheres.Radii), len(r.Spheres.Materials))
	}
	if len(r.Metals.Fuzz) != r.Metals.Len() {
		return fmt.Errorf("%w: metal arrays disagree in length (%d albedo, %d fuzz)",
			ErrInvalidScene, r.Metals.Len(), len(r.Metals.Fuzz))
	}

	for i := 0; i < n; i++ {
		if !(r.Spheres.Radii[i] > 0) {
			return fmt.Errorf("%w: sphere %d has non-positive radius %g", ErrInvalidScene, i, r.Spheres.Radii[i])
		}
		if !core.IsFinite(r.Spheres.Centers[i]) {
			return fmt.Errorf("%w: sphere %d has non-finite center %v", ErrInvalidScene, i, r.Spheres.Centers[i])
		}

		ref := r.Spheres.Materials[i]
		var limit int
		switch ref.Kind {
		case KindLambertian:
			limit = r.Lambertians.Len()
		case KindMetal:
			limit = r.Metals.Len()
		default:
			return fmt.Errorf("%w: sphere %d has material kind %s", ErrInvalidScene, i, ref.Kind)
		}
		if int(ref.Index) >= limit {
			return fmt.Errorf("%w: sphere %d references %s but only %d exist", ErrInvalidScene, i, ref, limit)
		}
	}

	for i, fuzz := range r.Metals.Fuzz {
		if !(fuzz >= 0 && fuzz <= 1) {
			return fmt.Errorf("%w: metal %d has fuzz %g outside [0,1]", ErrInvalidScene, i, fuzz)
		}
	}

	return nil
}
