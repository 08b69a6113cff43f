package integrator

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/rng"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

// PathTracingIntegrator implements unidirectional path tracing with a sky
// gradient as the only light source
type PathTracingIntegrator struct {
	config Config
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config Config) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// Config returns the integrator constants
func (pt *PathTracingIntegrator) Config() Config {
	return pt.config
}

// Vertex is one surface interaction along a recorded path
type Vertex struct {
	Hit        geometry.Hit
	Throughput core.Vec3 // Accumulated attenuation after scattering here
}

// Path is a fully recorded trace, used for inspection
type Path struct {
	Vertices []Vertex
	Outcome  Outcome
	Color    core.Vec3
}

// Trace follows the ray for at most maxDepth bounces and returns its radiance
func (pt *PathTracingIntegrator) Trace(ray core.Ray, repo *world.Repository, state *rng.State, maxDepth uint32) (core.Vec3, error) {
	color, _, _, err := pt.trace(ray, repo, state, maxDepth, nil)
	return color, err
}

// TraceWithStats is Trace that also records the path outcome into stats
func (pt *PathTracingIntegrator) TraceWithStats(ray core.Ray, repo *world.Repository, state *rng.State, maxDepth uint32, stats *TraceStats) (core.Vec3, error) {
	color, outcome, bounces, err := pt.trace(ray, repo, state, maxDepth, nil)
	if err != nil {
		return color, err
	}
	stats.Record(outcome, bounces)
	return color, nil
}

// TracePath is Trace that records every surface interaction
func (pt *PathTracingIntegrator) TracePath(ray core.Ray, repo *world.Repository, state *rng.State, maxDepth uint32) (Path, error) {
	var path Path
	color, outcome, _, err := pt.trace(ray, repo, state, maxDepth, &path.Vertices)
	path.Color = color
	path.Outcome = outcome
	return path, err
}

func (pt *PathTracingIntegrator) trace(ray core.Ray, repo *world.Repository, state *rng.State, maxDepth uint32, vertices *[]Vertex) (core.Vec3, Outcome, int, error) {
	throughput := core.NewVec3(1, 1, 1)
	black := core.Vec3{}

	for bounces := uint32(0); bounces < maxDepth; bounces++ {
		hit, isHit := geometry.WorldHit(repo, ray, pt.config.TMin, pt.config.TFar)
		if !isHit {
			return core.MultiplyVec(throughput, pt.SkyColor(ray.Direction)), OutcomeMiss, int(bounces), nil
		}

		scatter, didScatter, err := material.Scatter(repo, ray, hit, state)
		if err != nil {
			return black, OutcomeAbsorbed, int(bounces), err
		}
		if !didScatter {
			if vertices != nil {
				*vertices = append(*vertices, Vertex{Hit: hit, Throughput: black})
			}
			return black, OutcomeAbsorbed, int(bounces) + 1, nil
		}

		throughput = core.MultiplyVec(throughput, scatter.Attenuation)
		if vertices != nil {
			*vertices = append(*vertices, Vertex{Hit: hit, Throughput: throughput})
		}

		ray = core.NewRay(scatter.Scattered.Origin, core.NormalizeOrZero(scatter.Scattered.Direction))
	}

	// Energy still in flight after maxDepth bounces is dropped
	return black, OutcomeTruncated, int(maxDepth), nil
}

// SkyColor returns the background gradient for a ray direction. Only the
// vertical component of the normalized direction matters.
func (pt *PathTracingIntegrator) SkyColor(direction core.Vec3) core.Vec3 {
	unitDirection := core.NormalizeOrZero(direction)
	a := 0.5*unitDirection.Y() + 0.5
	return core.Lerp(pt.config.SkyBottom, pt.config.SkyTop, a)
}
