package renderer

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// ToSRGB applies the sRGB transfer function to a linear channel value
func ToSRGB(c float32) float32 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math32.Pow(c, 1/2.4) - 0.055
}

// ColorToRGBA converts a linear color to an 8-bit sRGB pixel
func ColorToRGBA(c core.Vec3) color.RGBA {
	c = core.Clamp(c, 0, 1)
	return color.RGBA{
		R: toByte(ToSRGB(c.X())),
		G: toByte(ToSRGB(c.Y())),
		B: toByte(ToSRGB(c.Z())),
		A: 255,
	}
}

func toByte(s float32) uint8 {
	return uint8(min(max(s*256, 0), 255))
}

// BufferImage encodes the accumulation buffer as an sRGB image
func BufferImage(b *AccumulationBuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			img.SetRGBA(x, y, ColorToRGBA(b.pixels[y*b.width+x]))
		}
	}
	return img
}
