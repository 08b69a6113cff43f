package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

// oklchToRGB converts OKLCH color values to linear RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float32) core.Vec3 {
	hRad := mgl32.DegToRad(h)

	// OKLCH to OKLAB
	a := c * math32.Cos(hRad)
	b := c * math32.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.Clamp(core.NewVec3(r, g, blue), 0, 1)
}

// NewSphereGridScene creates a grid of small spheres on a large ground sphere.
// Hue varies across X and chroma across Z; every third sphere is diffuse.
func NewSphereGridScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(4.5, 6, 18),    // Back and above the grid
		LookAt:      core.NewVec3(4.5, 0.8, 4.5), // Center of grid, slightly lower
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40.0,
		FocalLength: 1,
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	samplingConfig := DefaultSamplingConfig()
	samplingConfig.MaxDepth = 40

	b := world.NewBuilder()

	ground := b.AddLambertian(core.NewVec3(0.5, 0.5, 0.5))
	b.AddSphere(core.NewVec3(4.5, -1000, 4.5), 1000, ground)

	const gridSize = 10
	const targetArea = 9.0
	spacing := float32(targetArea) / (gridSize - 1)
	sphereRadius := mgl32.Clamp(spacing*0.35, 0.02, 0.35)

	// OKLCH parameters for color variation
	baseLightness := float32(0.65)
	minChroma := float32(0.05)
	maxChroma := float32(0.25)

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float32(i)*spacing - targetArea/2 + 4.5
			z := float32(j)*spacing - targetArea/2 + 4.5

			hue := float32(i) / (gridSize - 1) * 360
			chroma := minChroma + float32(j)/(gridSize-1)*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math32.Sin(float32(i+j)*0.5)
			color := oklchToRGB(lightness, chroma, hue)

			var ref world.MaterialRef
			if (i+j)%3 == 0 {
				ref = b.AddLambertian(color)
			} else {
				roughness := 0.05 + 0.1*float32((i+j)%3)/2
				ref = b.AddMetal(color, roughness)
			}

			b.AddSphere(core.NewVec3(x, sphereRadius, z), sphereRadius, ref)
		}
	}

	return &Scene{
		Name:           "spheregrid",
		Repository:     b.MustBuild(),
		CameraConfig:   cameraConfig,
		SamplingConfig: samplingConfig,
	}
}
