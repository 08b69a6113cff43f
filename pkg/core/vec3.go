package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 represents a 3D vector or an RGB color
type Vec3 = mgl32.Vec3

// NewVec3 creates a new Vec3
func NewVec3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// Splat returns a vector with all components set to v
func Splat(v float32) Vec3 {
	return Vec3{v, v, v}
}

// MultiplyVec returns component-wise multiplication of two vectors
func MultiplyVec(a, b Vec3) Vec3 {
	return Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// LengthSquared returns the squared magnitude of the vector
func LengthSquared(v Vec3) float32 {
	return v.Dot(v)
}

// IsZero reports whether every component is exactly zero
func IsZero(v Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// NormalizeOrZero returns a unit vector in the same direction, or the zero
// vector when v has no length. mgl32's Normalize divides by zero instead.
func NormalizeOrZero(v Vec3) Vec3 {
	lenSq := v.Dot(v)
	if lenSq == 0 {
		return Vec3{}
	}
	return v.Mul(1 / math32.Sqrt(lenSq))
}

// Lerp linearly interpolates between a and b: a + (b-a)*t
func Lerp(a, b Vec3, t float32) Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Reflect calculates the reflection of v off a surface with normal n
func Reflect(v, n Vec3) Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// Clamp returns a vector with components clamped to [minVal, maxVal]
func Clamp(v Vec3, minVal, maxVal float32) Vec3 {
	return Vec3{
		mgl32.Clamp(v[0], minVal, maxVal),
		mgl32.Clamp(v[1], minVal, maxVal),
		mgl32.Clamp(v[2], minVal, maxVal),
	}
}

// Luminance returns the perceptual luminance of an RGB color
// Uses Rec. 709 weights: 0.2126*R + 0.7152*G + 0.0722*B
func Luminance(v Vec3) float32 {
	return 0.2126*v[0] + 0.7152*v[1] + 0.0722*v[2]
}

// IsFinite reports whether no component is NaN or infinite
func IsFinite(v Vec3) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Ray represents a ray with an origin and direction
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a new ray
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}
