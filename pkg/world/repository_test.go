package world

import (
	"errors"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

func createTestRepository(t *testing.T) *Repository {
	t.Helper()
	b := NewBuilder()
	ground := b.AddLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := b.AddLambertian(core.NewVec3(0.1, 0.2, 0.5))
	gold := b.AddMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)

	b.AddSphere(core.NewVec3(0, -100.5, -1), 100, ground)
	b.AddSphere(core.NewVec3(0, 0, -1), 0.5, center)
	b.AddSphere(core.NewVec3(1, 0, -1), 0.5, gold)

	repo, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return repo
}

func TestRepositoryLoads(t *testing.T) {
	repo := createTestRepository(t)

	if repo.SphereCount() != 3 {
		t.Fatalf("Expected 3 spheres, got %d", repo.SphereCount())
	}
	if got := repo.LoadCenter(1); got != core.NewVec3(0, 0, -1) {
		t.Errorf("Expected center (0,0,-1), got %v", got)
	}
	if got := repo.LoadRadius(0); got != 100 {
		t.Errorf("Expected radius 100, got %g", got)
	}

	ref := repo.LoadMaterial(2)
	if ref != Metal(0) {
		t.Errorf("Expected metal[0], got %v", ref)
	}
	if got := repo.LoadAlbedo(ref); got != core.NewVec3(0.8, 0.6, 0.2) {
		t.Errorf("Expected gold albedo, got %v", got)
	}
	if got := repo.LoadFuzz(ref); got != 0.3 {
		t.Errorf("Expected fuzz 0.3, got %g", got)
	}
	if got := repo.LoadAlbedo(repo.LoadMaterial(1)); got != core.NewVec3(0.1, 0.2, 0.5) {
		t.Errorf("Expected blue albedo, got %v", got)
	}
}

func TestRepositoryOutOfRangePanics(t *testing.T) {
	repo := createTestRepository(t)

	tests := []struct {
		name  string
		table string
		load  func()
	}{
		{"sphere center", "sphere", func() { repo.LoadCenter(3) }},
		{"negative sphere", "sphere", func() { repo.LoadRadius(-1) }},
		{"lambertian albedo", "lambertian", func() { repo.LoadAlbedo(Lambertian(2)) }},
		{"metal fuzz", "metal", func() { repo.LoadFuzz(Metal(1)) }},
		{"fuzz of lambertian", "lambertian fuzz", func() { repo.LoadFuzz(Lambertian(0)) }},
		{"albedo of none", "none", func() { repo.LoadAlbedo(MaterialRef{}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("Expected panic")
				}
				indexErr, ok := r.(*IndexError)
				if !ok {
					t.Fatalf("Expected *IndexError panic, got %T: %v", r, r)
				}
				if indexErr.Table != tt.table {
					t.Errorf("Expected table %q, got %q", tt.table, indexErr.Table)
				}
			}()
			tt.load()
		})
	}
}

func TestRepositoryValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Repository)
	}{
		{"zero radius", func(r *Repository) { r.Spheres.Radii[0] = 0 }},
		{"negative radius", func(r *Repository) { r.Spheres.Radii[1] = -0.5 }},
		{"dangling lambertian", func(r *Repository) { r.Spheres.Materials[0] = Lambertian(5) }},
		{"dangling metal", func(r *Repository) { r.Spheres.Materials[2] = Metal(1) }},
		{"none material", func(r *Repository) { r.Spheres.Materials[1] = MaterialRef{} }},
		{"unknown kind", func(r *Repository) { r.Spheres.Materials[1] = MaterialRef{Kind: 9} }},
		{"fuzz above one", func(r *Repository) { r.Metals.Fuzz[0] = 1.5 }},
		{"ragged spheres", func(r *Repository) { r.Spheres.Radii = r.Spheres.Radii[:2] }},
		{"ragged metals", func(r *Repository) { r.Metals.Fuzz = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := createTestRepository(t)
			tt.mutate(repo)
			err := repo.Validate()
			if !errors.Is(err, ErrInvalidScene) {
				t.Errorf("Expected ErrInvalidScene, got %v", err)
			}
		})
	}

	if err := createTestRepository(t).Validate(); err != nil {
		t.Errorf("Valid repository failed validation: %v", err)
	}
}

func TestBuilderClampsFuzz(t *testing.T) {
	b := NewBuilder()
	rough := b.AddMetal(core.NewVec3(1, 1, 1), 3)
	smooth := b.AddMetal(core.NewVec3(1, 1, 1), -1)
	b.AddSphere(core.NewVec3(0, 0, 0), 1, rough)
	repo := b.MustBuild()

	if repo.LoadFuzz(rough) != 1 || repo.LoadFuzz(smooth) != 0 {
		t.Errorf("Expected fuzz clamped to [0,1], got %g and %g", repo.LoadFuzz(rough), repo.LoadFuzz(smooth))
	}
}

func TestParseMaterialKind(t *testing.T) {
	for _, kind := range []MaterialKind{KindNone, KindLambertian, KindMetal} {
		parsed, err := ParseMaterialKind(kind.String())
		if err != nil || parsed != kind {
			t.Errorf("ParseMaterialKind(%q) = %v, %v", kind.String(), parsed, err)
		}
	}
	if _, err := ParseMaterialKind("glass"); err == nil {
		t.Error("Expected error for unsupported kind")
	}
}
