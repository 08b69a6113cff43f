package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// CameraConfig contains all parameters needed to create a camera
type CameraConfig struct {
	Center      core.Vec3 // Camera position
	LookAt      core.Vec3 // Point the camera is looking at
	Up          core.Vec3 // Up direction (usually (0,1,0))
	VFov        float32   // Vertical field of view in degrees
	FocalLength float32   // Distance from the eye to the image plane
}

// DefaultCameraConfig is a pinhole at the origin looking down -Z with a
// viewport two units tall at focal length one
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		FocalLength: 1,
	}
}

// MergeCameraConfig overlays the non-zero fields of override onto base
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if !core.IsZero(override.Center) {
		result.Center = override.Center
	}
	if !core.IsZero(override.LookAt) {
		result.LookAt = override.LookAt
	}
	if !core.IsZero(override.Up) {
		result.Up = override.Up
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.FocalLength != 0 {
		result.FocalLength = override.FocalLength
	}
	return result
}

// Camera generates primary rays for a fixed image size
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	width, height   int
}

// NewCamera creates a camera for a width x height image. The aspect ratio
// follows the image.
func NewCamera(config CameraConfig, width, height int) *Camera {
	if config.FocalLength == 0 {
		config.FocalLength = 1
	}
	aspectRatio := float32(width) / float32(height)

	theta := mgl32.DegToRad(config.VFov)
	viewportHeight := 2 * math32.Tan(theta/2) * config.FocalLength
	viewportWidth := aspectRatio * viewportHeight

	// Orthonormal camera basis
	w := core.NormalizeOrZero(config.Center.Sub(config.LookAt))
	u := core.NormalizeOrZero(config.Up.Cross(w))
	v := w.Cross(u)

	horizontal := u.Mul(viewportWidth)
	vertical := v.Mul(viewportHeight)
	lowerLeftCorner := config.Center.
		Sub(horizontal.Mul(0.5)).
		Sub(vertical.Mul(0.5)).
		Sub(w.Mul(config.FocalLength))

	return &Camera{
		origin:          config.Center,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		width:           width,
		height:          height,
	}
}

// GetRay returns the ray through pixel (x, y) offset by (jitterX, jitterY)
// within the pixel, both in [0,1). Row 0 is the top of the image.
// The direction is not normalized.
func (c *Camera) GetRay(x, y int, jitterX, jitterY float32) core.Ray {
	s := (float32(x) + jitterX) / float32(c.width)
	t := (float32(c.height-1-y) + jitterY) / float32(c.height)

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Mul(s)).
		Add(c.vertical.Mul(t)).
		Sub(c.origin)

	return core.NewRay(c.origin, direction)
}

// GetCenterRay returns the ray through the middle of pixel (x, y)
func (c *Camera) GetCenterRay(x, y int) core.Ray {
	return c.GetRay(x, y, 0.5, 0.5)
}

// Size returns the image size the camera was built for
func (c *Camera) Size() (width, height int) {
	return c.width, c.height
}
