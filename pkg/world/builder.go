package world

import "github.com/df07/go-progressive-pathtracer/pkg/core"

// Builder assembles a repository one material and sphere at a time
type Builder struct {
	repo Repository
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{}
}

// AddLambertian appends a diffuse material and returns its reference
func (b *Builder) AddLambertian(albedo core.Vec3) MaterialRef {
	b.repo.Lambertians.Albedo = append(b.repo.Lambertians.Albedo, albedo)
	return Lambertian(b.repo.Lambertians.Len() - 1)
}

// AddMetal appends a metal material and returns its reference.
// Fuzz is clamped to [0,1].
func (b *Builder) AddMetal(albedo core.Vec3, fuzz float32) MaterialRef {
	if fuzz > 1.0 {
		fuzz = 1.0
	}
	if fuzz < 0.0 {
		fuzz = 0.0
	}
	b.repo.Metals.Albedo = append(b.repo.Metals.Albedo, albedo)
	b.repo.Metals.Fuzz = append(b.repo.Metals.Fuzz, fuzz)
	return Metal(b.repo.Metals.Len() - 1)
}

// AddSphere appends a sphere and returns its index
func (b *Builder) AddSphere(center core.Vec3, radius float32, material MaterialRef) int {
	b.repo.Spheres.Centers = append(b.repo.Spheres.Centers, center)
	b.repo.Spheres.Radii = append(b.repo.Spheres.Radii, radius)
	b.repo.Spheres.Materials = append(b.repo.Spheres.Materials, material)
	return b.repo.Spheres.Len() - 1
}

// Build validates and returns the repository. The builder must not be reused.
func (b *Builder) Build() (*Repository, error) {
	repo := b.repo
	if err := repo.Validate(); err != nil {
		return nil, err
	}
	return &repo, nil
}

// MustBuild is like Build but panics on invalid input. Used for built-in scenes.
func (b *Builder) MustBuild() *Repository {
	repo, err := b.Build()
	if err != nil {
		panic(err)
	}
	return repo
}
