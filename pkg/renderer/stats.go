package renderer

import (
	"image"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
)

// RenderStats contains statistics about a rendered frame
type RenderStats struct {
	Frame           int     // Frames committed since the last reset, including this one
	TotalPixels     int     // Total number of pixels rendered
	TotalSamples    int     // Total number of samples taken
	SamplesPerPixel int     // Samples per pixel this frame
	Weight          float32 // Blend weight used for this frame
	MeanLuminance   float64 // Mean linear luminance of the accumulation buffer
	Elapsed         time.Duration
	Trace           integrator.TraceStats
}

// merge adds a tile's counts into the frame totals
func (s *RenderStats) merge(tile RenderStats) {
	s.TotalPixels += tile.TotalPixels
	s.TotalSamples += tile.TotalSamples
	s.Trace.Merge(tile.Trace)
}

// PixelStats tracks sampling statistics for a single pixel within a frame
type PixelStats struct {
	ColorAccum       core.Vec3 // RGB accumulator
	LuminanceAccum   float64   // Luminance accumulator
	LuminanceSqAccum float64   // Luminance squared for variance
	SampleCount      int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	luminance := float64(core.Luminance(color))
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{}
	}
	return ps.ColorAccum.Mul(1 / float32(ps.SampleCount))
}

// Variance returns the sample variance of the pixel's luminance
func (ps *PixelStats) Variance() float64 {
	if ps.SampleCount == 0 {
		return 0
	}
	mean := ps.LuminanceAccum / float64(ps.SampleCount)
	meanSq := ps.LuminanceSqAccum / float64(ps.SampleCount)
	return max(0, meanSq-mean*mean)
}

// PixelVariance returns the luminance variance of each pixel across a set of
// buffers of equal size, averaged over all pixels. Renders of the same scene
// with different seeds converge when this tends to zero.
func PixelVariance(buffers []*AccumulationBuffer) float64 {
	if len(buffers) == 0 {
		return 0
	}
	width, height := buffers[0].Size()
	if width*height == 0 {
		return 0
	}

	var total float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var ps PixelStats
			for _, b := range buffers {
				ps.AddSample(b.Color(x, y))
			}
			total += ps.Variance()
		}
	}
	return total / float64(width*height)
}

// MeanLuminance returns the average linear luminance of the buffer
func MeanLuminance(b *AccumulationBuffer) float64 {
	var total float64
	for _, c := range b.pixels {
		total += float64(core.Luminance(c))
	}
	if len(b.pixels) == 0 {
		return 0
	}
	return total / float64(len(b.pixels))
}

// CalculateAverageLuminance returns the average Rec.709 luminance of an
// encoded image, with channels scaled to [0,1]
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	pixelCount := bounds.Dx() * bounds.Dy()
	if pixelCount == 0 {
		return 0
	}

	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			total += 0.2126*float64(r)/0xffff + 0.7152*float64(g)/0xffff + 0.0722*float64(b)/0xffff
		}
	}
	return total / float64(pixelCount)
}
