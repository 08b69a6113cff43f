// Package scene holds the built-in scene catalogue and file-backed scenes.
package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Repository     *world.Repository // Spheres and material tables, read-only while rendering
	CameraConfig   geometry.CameraConfig
	SamplingConfig SamplingConfig
}

// SamplingConfig contains the recommended frame parameters for a scene
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Rays per pixel per frame
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig is used for any field a scene leaves at zero
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 4,
		MaxDepth:        50,
	}
}

// MergeSamplingConfig overlays the non-zero fields of override onto base
func MergeSamplingConfig(base, override SamplingConfig) SamplingConfig {
	result := base
	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.Height != 0 {
		result.Height = override.Height
	}
	if override.SamplesPerPixel != 0 {
		result.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth != 0 {
		result.MaxDepth = override.MaxDepth
	}
	return result
}

// NewCamera builds the scene's camera for an image of the given size
func (s *Scene) NewCamera(width, height int) *geometry.Camera {
	return geometry.NewCamera(s.CameraConfig, width, height)
}

// GetPrimitiveCount returns the number of spheres in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.Repository.SphereCount()
}
