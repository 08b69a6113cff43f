package loaders

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

// SceneFile is the on-disk JSON form of a scene. Materials and spheres may
// be given as typed lists, or as a packed parameter block, but not both.
type SceneFile struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Group       string `json:"group,omitempty"`

	Camera   *CameraJSON   `json:"camera,omitempty"`
	Sampling *SamplingJSON `json:"sampling,omitempty"`

	Lambertians []LambertianJSON `json:"lambertians,omitempty"`
	Metals      []MetalJSON      `json:"metals,omitempty"`
	Spheres     []SphereJSON     `json:"spheres,omitempty"`

	Block *BlockJSON `json:"block,omitempty"`
}

// CameraJSON mirrors geometry.CameraConfig. Absent fields keep the default;
// present fields are used as written, zero included.
type CameraJSON struct {
	Center      *core.Vec3 `json:"center,omitempty"`
	LookAt      *core.Vec3 `json:"look_at,omitempty"`
	Up          *core.Vec3 `json:"up,omitempty"`
	VFov        *float32   `json:"vfov,omitempty"`
	FocalLength *float32   `json:"focal_length,omitempty"`
}

// config fills the absent fields from geometry.DefaultCameraConfig
func (c *CameraJSON) config() geometry.CameraConfig {
	config := geometry.DefaultCameraConfig()
	if c == nil {
		return config
	}
	if c.Center != nil {
		config.Center = *c.Center
	}
	if c.LookAt != nil {
		config.LookAt = *c.LookAt
	}
	if c.Up != nil {
		config.Up = *c.Up
	}
	if c.VFov != nil {
		config.VFov = *c.VFov
	}
	if c.FocalLength != nil {
		config.FocalLength = *c.FocalLength
	}
	return config
}

// SamplingJSON holds the recommended frame parameters for the scene
type SamplingJSON struct {
	Width           int `json:"width"`
	Height          int `json:"height"`
	SamplesPerPixel int `json:"samples"`
	MaxDepth        int `json:"max_depth"`
}

type LambertianJSON struct {
	Albedo core.Vec3 `json:"albedo"`
}

type MetalJSON struct {
	Albedo core.Vec3 `json:"albedo"`
	Fuzz   float32   `json:"fuzz"`
}

type MaterialRefJSON struct {
	Kind  string `json:"kind"`
	Index uint32 `json:"index"`
}

type SphereJSON struct {
	Center   core.Vec3       `json:"center"`
	Radius   float32         `json:"radius"`
	Material MaterialRefJSON `json:"material"`
}

// BlockJSON is a packed scene parameter block. Each range is [base, length].
type BlockJSON struct {
	Data        []float32 `json:"data"`
	Spheres     [2]int32  `json:"spheres"`
	Lambertians [2]int32  `json:"lambertians"`
	Metals      [2]int32  `json:"metals"`
}

// LoadedScene is a decoded and validated scene file
type LoadedScene struct {
	Name        string
	Description string
	Group       string
	Camera      geometry.CameraConfig // Complete, defaults applied
	Sampling    SamplingJSON
	Repository  *world.Repository
}

// LoadSceneFile reads and validates a JSON scene file
func LoadSceneFile(filename string) (*LoadedScene, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	loaded, err := DecodeScene(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return loaded, nil
}

// DecodeScene reads a JSON scene from r
func DecodeScene(r io.Reader) (*LoadedScene, error) {
	var sf SceneFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}

	repo, err := sf.repository()
	if err != nil {
		return nil, err
	}

	loaded := &LoadedScene{
		Name:        sf.Name,
		Description: sf.Description,
		Group:       sf.Group,
		Camera:      sf.Camera.config(),
		Repository:  repo,
	}
	if sf.Sampling != nil {
		loaded.Sampling = *sf.Sampling
	}
	return loaded, nil
}

// repository builds the scene repository from whichever form the file uses
func (sf *SceneFile) repository() (*world.Repository, error) {
	typed := len(sf.Lambertians) > 0 || len(sf.Metals) > 0 || len(sf.Spheres) > 0

	if sf.Block != nil {
		if typed {
			return nil, fmt.Errorf("%w: scene has both a block and typed lists", world.ErrInvalidScene)
		}
		return world.Unpack(world.Block{
			Data:        sf.Block.Data,
			Spheres:     world.Range{Base: sf.Block.Spheres[0], Length: sf.Block.Spheres[1]},
			Lambertians: world.Range{Base: sf.Block.Lambertians[0], Length: sf.Block.Lambertians[1]},
			Metals:      world.Range{Base: sf.Block.Metals[0], Length: sf.Block.Metals[1]},
		})
	}

	repo := &world.Repository{}
	for _, l := range sf.Lambertians {
		repo.Lambertians.Albedo = append(repo.Lambertians.Albedo, l.Albedo)
	}
	for _, m := range sf.Metals {
		repo.Metals.Albedo = append(repo.Metals.Albedo, m.Albedo)
		repo.Metals.Fuzz = append(repo.Metals.Fuzz, m.Fuzz)
	}
	for i, s := range sf.Spheres {
		kind, err := world.ParseMaterialKind(s.Material.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: sphere %d: %v", world.ErrInvalidScene, i, err)
		}
		repo.Spheres.Centers = append(repo.Spheres.Centers, s.Center)
		repo.Spheres.Radii = append(repo.Spheres.Radii, s.Radius)
		repo.Spheres.Materials = append(repo.Spheres.Materials, world.MaterialRef{Kind: kind, Index: s.Material.Index})
	}

	if err := repo.Validate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// NewSceneFile converts a repository and its settings to the typed file form
func NewSceneFile(name string, repo *world.Repository, camera geometry.CameraConfig, sampling SamplingJSON) *SceneFile {
	sf := &SceneFile{
		Name: name,
		Camera: &CameraJSON{
			Center:      &camera.Center,
			LookAt:      &camera.LookAt,
			Up:          &camera.Up,
			VFov:        &camera.VFov,
			FocalLength: &camera.FocalLength,
		},
		Sampling: &sampling,
	}
	for _, a := range repo.Lambertians.Albedo {
		sf.Lambertians = append(sf.Lambertians, LambertianJSON{Albedo: a})
	}
	for i, a := range repo.Metals.Albedo {
		sf.Metals = append(sf.Metals, MetalJSON{Albedo: a, Fuzz: repo.Metals.Fuzz[i]})
	}
	for i, c := range repo.Spheres.Centers {
		m := repo.Spheres.Materials[i]
		sf.Spheres = append(sf.Spheres, SphereJSON{
			Center:   c,
			Radius:   repo.Spheres.Radii[i],
			Material: MaterialRefJSON{Kind: m.Kind.String(), Index: m.Index},
		})
	}
	return sf
}

// SaveSceneFile writes a scene file as indented JSON
func SaveSceneFile(filename string, sf *SceneFile) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sf); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}
