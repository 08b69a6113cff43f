package renderer

import (
	"fmt"
	"strings"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// AccumulationBuffer is the persistent per-pixel running color, blended into
// once per committed frame
type AccumulationBuffer struct {
	width, height int
	pixels        []core.Vec3
	frames        int
}

// NewAccumulationBuffer creates a black buffer
func NewAccumulationBuffer(width, height int) *AccumulationBuffer {
	return &AccumulationBuffer{
		width:  width,
		height: height,
		pixels: make([]core.Vec3, width*height),
	}
}

// Size returns the buffer dimensions
func (b *AccumulationBuffer) Size() (width, height int) {
	return b.width, b.height
}

// Blend sets pixel (x, y) to lerp(current, color, weight)
func (b *AccumulationBuffer) Blend(x, y int, color core.Vec3, weight float32) {
	i := b.index(x, y)
	b.pixels[i] = core.Lerp(b.pixels[i], color, weight)
}

// Color returns the accumulated color of pixel (x, y)
func (b *AccumulationBuffer) Color(x, y int) core.Vec3 {
	return b.pixels[b.index(x, y)]
}

// Frames returns the number of frames committed since the last reset
func (b *AccumulationBuffer) Frames() int {
	return b.frames
}

// Reset discards all accumulated history
func (b *AccumulationBuffer) Reset() {
	clear(b.pixels)
	b.frames = 0
}

func (b *AccumulationBuffer) index(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		panic(fmt.Sprintf("renderer: pixel (%d,%d) outside %dx%d buffer", x, y, b.width, b.height))
	}
	return y*b.width + x
}

// BlendPolicy chooses the weight of frame frameIndex (1-based) when blended
// into the accumulation buffer
type BlendPolicy interface {
	Weight(frameIndex int) float32
	String() string
}

// CumulativeMean weights frame n by 1/n, so the buffer holds the exact mean
// of every frame since the last reset
type CumulativeMean struct{}

func (CumulativeMean) Weight(frameIndex int) float32 {
	if frameIndex < 1 {
		return 1
	}
	return 1 / float32(frameIndex)
}

func (CumulativeMean) String() string { return "mean" }

// ExponentialDecay keeps a sliding window by never letting the weight fall
// below Alpha. Early frames use 1/n so the first frame is not blended with
// the black buffer.
type ExponentialDecay struct {
	Alpha float32
}

func (e ExponentialDecay) Weight(frameIndex int) float32 {
	return max(e.Alpha, CumulativeMean{}.Weight(frameIndex))
}

func (e ExponentialDecay) String() string { return fmt.Sprintf("decay(%g)", e.Alpha) }

// FixedWeight blends every frame with the same weight
type FixedWeight struct {
	W float32
}

func (f FixedWeight) Weight(int) float32 { return f.W }

func (f FixedWeight) String() string { return fmt.Sprintf("fixed(%g)", f.W) }

// ParseBlendPolicy maps a policy name to a policy. Alpha is the decay floor
// or the fixed weight and must be in (0,1] for those policies.
func ParseBlendPolicy(name string, alpha float32) (BlendPolicy, error) {
	switch strings.ToLower(name) {
	case "", "mean":
		return CumulativeMean{}, nil
	case "decay":
		if !(alpha > 0 && alpha <= 1) {
			return nil, fmt.Errorf("decay alpha %g outside (0,1]", alpha)
		}
		return ExponentialDecay{Alpha: alpha}, nil
	case "fixed":
		if !(alpha > 0 && alpha <= 1) {
			return nil, fmt.Errorf("fixed weight %g outside (0,1]", alpha)
		}
		return FixedWeight{W: alpha}, nil
	default:
		return nil, fmt.Errorf("unknown blend policy %q (want mean, decay or fixed)", name)
	}
}
