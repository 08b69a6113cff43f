package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/loaders"
)

// ErrUnknownScene reports a scene name that is neither built in nor a file
var ErrUnknownScene = errors.New("unknown scene")

// FileScenePrefix marks scene IDs that refer to JSON files in the scenes directory
const FileScenePrefix = "file:"

type builtinScene struct {
	info SceneInfo
	new  func(...geometry.CameraConfig) *Scene
}

var builtinScenes = []builtinScene{
	{
		info: SceneInfo{
			ID:          "default",
			Name:        "Default Scene",
			DisplayName: "Default Scene",
			Description: "Diffuse sphere between a mirror and brushed gold",
		},
		new: NewDefaultScene,
	},
	{
		info: SceneInfo{
			ID:          "spheregrid",
			Name:        "Sphere Grid",
			DisplayName: "Sphere Grid",
			Description: "10x10 grid of rainbow-colored spheres",
		},
		new: NewSphereGridScene,
	},
	{
		info: SceneInfo{
			ID:          "mirror",
			Name:        "Mirror Ring",
			DisplayName: "Mirror Ring",
			Description: "Ring of chrome and copper mirrors around a red sphere",
		},
		new: NewMirrorScene,
	},
}

// Names returns the IDs of the built-in scenes
func Names() []string {
	names := make([]string, len(builtinScenes))
	for i, b := range builtinScenes {
		names[i] = b.info.ID
	}
	return names
}

// New creates a scene by ID. Built-in IDs come from Names; IDs with the
// "file:" prefix name a JSON file in the scenes directory.
func New(id string, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	for _, b := range builtinScenes {
		if b.info.ID == id {
			return b.new(cameraOverrides...), nil
		}
	}

	if name, ok := strings.CutPrefix(id, FileScenePrefix); ok {
		dir := FindScenesDir()
		if dir == "" || name != filepath.Base(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
		}
		return NewFileScene(filepath.Join(dir, name+".json"), cameraOverrides...)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
}

// NewFileScene loads a scene from a JSON scene file
func NewFileScene(path string, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	loaded, err := loaders.LoadSceneFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene file: %w", err)
	}

	cameraConfig := loaded.Camera
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	name := loaded.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return &Scene{
		Name:         name,
		Repository:   loaded.Repository,
		CameraConfig: cameraConfig,
		SamplingConfig: MergeSamplingConfig(DefaultSamplingConfig(), SamplingConfig{
			Width:           loaded.Sampling.Width,
			Height:          loaded.Sampling.Height,
			SamplesPerPixel: loaded.Sampling.SamplesPerPixel,
			MaxDepth:        loaded.Sampling.MaxDepth,
		}),
	}, nil
}

// Save writes the scene as a JSON scene file
func (s *Scene) Save(path string) error {
	sf := loaders.NewSceneFile(s.Name, s.Repository, s.CameraConfig, loaders.SamplingJSON{
		Width:           s.SamplingConfig.Width,
		Height:          s.SamplingConfig.Height,
		SamplesPerPixel: s.SamplingConfig.SamplesPerPixel,
		MaxDepth:        s.SamplingConfig.MaxDepth,
	})
	return loaders.SaveSceneFile(path, sf)
}
