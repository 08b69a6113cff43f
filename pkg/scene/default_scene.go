package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

// NewDefaultScene creates the classic scene: a diffuse sphere on a large
// diffuse ground sphere, flanked by a silver mirror and brushed gold
func NewDefaultScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	// Pinhole at the origin, viewport two units tall at focal length one
	cameraConfig := geometry.DefaultCameraConfig()
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	b := world.NewBuilder()

	lambertianGround := b.AddLambertian(core.NewVec3(0.8, 0.8, 0.0))
	lambertianBlue := b.AddLambertian(core.NewVec3(0.1, 0.2, 0.5))
	metalSilver := b.AddMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0)
	metalGold := b.AddMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)

	b.AddSphere(core.NewVec3(0, -100.5, -1), 100, lambertianGround)
	b.AddSphere(core.NewVec3(0, 0, -1), 0.5, lambertianBlue)
	b.AddSphere(core.NewVec3(-1, 0, -1), 0.5, metalSilver)
	b.AddSphere(core.NewVec3(1, 0, -1), 0.5, metalGold)

	return &Scene{
		Name:           "default",
		Repository:     b.MustBuild(),
		CameraConfig:   cameraConfig,
		SamplingConfig: DefaultSamplingConfig(),
	}
}
