// Package rng implements the per-pixel xoshiro128+ generator used by the path
// tracer. Every pixel owns one State; the state is loaded at the start of a
// frame, mutated by every draw and written back when the frame commits.
package rng

import (
	"errors"
	"math/bits"

	"github.com/chewxy/math32"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// MaxRejectionAttempts bounds the unit-ball rejection loop. The acceptance
// rate is pi/6, so a well-mixed state needs about two attempts.
const MaxRejectionAttempts = 64

// ErrRejectionExhausted reports that the unit-ball sampler hit its attempt
// cap. It only happens for a corrupted or degenerate state.
var ErrRejectionExhausted = errors.New("rng: unit-ball rejection sampling exhausted")

// State is a xoshiro128+ generator state (period 2^128-1).
// The all-zero state is a fixed point and must never be used.
type State [4]uint32

// NextU32 returns s[0]+s[3] and advances the state
func (s *State) NextU32() uint32 {
	result := s[0] + s[3]
	t := s[1] << 9

	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]

	s[2] ^= t
	s[3] = bits.RotateLeft32(s[3], 11)

	return result
}

// NextF32 returns a float32 in [0, 1) built from the top 24 bits of NextU32.
// The low bits of xoshiro128+ are weak, and 24 bits is the float32 mantissa.
func (s *State) NextF32() float32 {
	return float32(s.NextU32()>>8) * (1.0 / (1 << 24))
}

// NextSigned returns a float32 in [-1, 1)
func (s *State) NextSigned() float32 {
	return 2*s.NextF32() - 1
}

// NextUnitBall returns a point uniformly distributed inside the unit ball
func (s *State) NextUnitBall() (core.Vec3, error) {
	for attempt := 0; attempt < MaxRejectionAttempts; attempt++ {
		// Generate random point in [-1,1]³ cube
		p := core.NewVec3(s.NextSigned(), s.NextSigned(), s.NextSigned())
		// Accept if inside unit sphere
		if p.Dot(p) <= 1 {
			return p, nil
		}
	}
	return core.Vec3{}, ErrRejectionExhausted
}

// NextUnitSphere returns a point uniformly distributed on the unit sphere.
// A ball sample of exactly zero cannot be normalized and maps to +Y.
func (s *State) NextUnitSphere() (core.Vec3, error) {
	p, err := s.NextUnitBall()
	if err != nil {
		return core.Vec3{}, err
	}

	lenSq := p.Dot(p)
	if lenSq == 0 {
		return core.NewVec3(0, 1, 0), nil
	}
	return p.Mul(1 / math32.Sqrt(lenSq)), nil
}

// IsZero reports whether the state is the degenerate all-zero state
func (s State) IsZero() bool {
	return s == State{}
}

// Seed expands a 64-bit seed into a generator state using splitmix64
func Seed(seed uint64) State {
	sm := seed
	a := splitmix64(&sm)
	b := splitmix64(&sm)

	state := State{uint32(a), uint32(a >> 32), uint32(b), uint32(b >> 32)}
	if state.IsZero() {
		state[0] = 1
	}
	return state
}

func splitmix64(x *uint64) uint64 {
	*x += 0x9E3779B97F4A7C15
	z := *x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
