package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

// NewMirrorScene creates a ring of perfect and brushed mirrors around a
// diffuse red sphere, so most paths bounce several times before escaping
func NewMirrorScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(0, 1.5, 3),
		LookAt:      core.NewVec3(0, 0.3, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        50,
		FocalLength: 1,
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	samplingConfig := DefaultSamplingConfig()
	samplingConfig.MaxDepth = 64

	b := world.NewBuilder()

	ground := b.AddMetal(core.NewVec3(0.6, 0.6, 0.65), 0.05)
	red := b.AddLambertian(core.NewVec3(0.7, 0.1, 0.1))
	chrome := b.AddMetal(core.NewVec3(0.95, 0.95, 0.95), 0.0)
	copper := b.AddMetal(core.NewVec3(0.95, 0.64, 0.54), 0.15)

	b.AddSphere(core.NewVec3(0, -100.5, -1), 100, ground)
	b.AddSphere(core.NewVec3(0, 0.1, -1), 0.6, red)

	const ringSize = 6
	for i := 0; i < ringSize; i++ {
		angle := mgl32.DegToRad(float32(i) * 360 / ringSize)
		center := core.NewVec3(1.5*math32.Cos(angle), 0, -1+1.5*math32.Sin(angle))
		ref := chrome
		if i%2 == 1 {
			ref = copper
		}
		b.AddSphere(center, 0.5, ref)
	}

	return &Scene{
		Name:           "mirror",
		Repository:     b.MustBuild(),
		CameraConfig:   cameraConfig,
		SamplingConfig: samplingConfig,
	}
}
