// Package integrator estimates the radiance carried back along a camera ray.
package integrator

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/rng"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// Trace returns the radiance estimate for one sample ray. Errors are
	// fatal for the frame: an unknown material tag or an exhausted sampler.
	Trace(ray core.Ray, repo *world.Repository, state *rng.State, maxDepth uint32) (core.Vec3, error)

	// TraceWithStats is Trace that also records how the path ended
	TraceWithStats(ray core.Ray, repo *world.Repository, state *rng.State, maxDepth uint32, stats *TraceStats) (core.Vec3, error)
}

// Config holds the integrator constants
type Config struct {
	TMin      float32   // Lower bound of the hit interval, excludes self-intersection
	TFar      float32   // Upper bound of the hit interval
	SkyTop    core.Vec3 // Sky color straight up
	SkyBottom core.Vec3 // Sky color straight down
}

// DefaultConfig returns the standard integrator constants
func DefaultConfig() Config {
	return Config{
		TMin:      0.001,
		TFar:      1e4,
		SkyTop:    core.NewVec3(0.5, 0.7, 1.0),
		SkyBottom: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// Outcome is how a traced path ended
type Outcome int

const (
	OutcomeMiss      Outcome = iota // Escaped to the sky
	OutcomeAbsorbed                 // A material absorbed the ray
	OutcomeTruncated                // Ran out of bounces
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMiss:
		return "miss"
	case OutcomeAbsorbed:
		return "absorbed"
	case OutcomeTruncated:
		return "truncated"
	}
	return "unknown"
}

// TraceStats counts path outcomes across many traces
type TraceStats struct {
	Paths       int
	Bounces     int
	Misses      int
	Absorptions int
	Truncations int
}

// Record adds one finished path
func (s *TraceStats) Record(outcome Outcome, bounces int) {
	s.Paths++
	s.Bounces += bounces
	switch outcome {
	case OutcomeMiss:
		s.Misses++
	case OutcomeAbsorbed:
		s.Absorptions++
	case OutcomeTruncated:
		s.Truncations++
	}
}

// Merge adds other's counts into s
func (s *TraceStats) Merge(other TraceStats) {
	s.Paths += other.Paths
	s.Bounces += other.Bounces
	s.Misses += other.Misses
	s.Absorptions += other.Absorptions
	s.Truncations += other.Truncations
}

// AverageBounces returns the mean number of surface interactions per path
func (s TraceStats) AverageBounces() float64 {
	if s.Paths == 0 {
		return 0
	}
	return float64(s.Bounces) / float64(s.Paths)
}
