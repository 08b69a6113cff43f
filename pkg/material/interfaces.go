// Package material scatters rays off sphere surfaces. Materials are closed
// over {Lambertian, Metal}; Scatter dispatches on the reference's kind tag and
// reads parameters from the repository table that tag selects.
package material

import (
	"errors"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// ErrUnknownMaterial reports a material tag outside the known kinds
var ErrUnknownMaterial = errors.New("material: unknown material kind")

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The outgoing ray, not normalized
	Attenuation core.Vec3 // Color attenuation
}
