package renderer

import (
	"errors"
	"fmt"
)

// ErrInvalidFrame reports frame parameters the renderer cannot honor
var ErrInvalidFrame = errors.New("invalid frame parameters")

// FrameParameters is the read-only input for one frame
type FrameParameters struct {
	Width, Height int
	SampleCount   uint32     // Rays per pixel this frame, at least 1
	MaxDepth      uint32     // Bounce limit; 0 renders black
	Reseed        *[4]uint32 // Optional xor perturbation of every pixel's generator
	Weight        float32    // Blend weight of this frame into the buffer, in (0,1]
}

// Validate checks the parameters against an image of the given size
func (p FrameParameters) Validate(width, height int) error {
	if p.Width != width || p.Height != height {
		return fmt.Errorf("%w: frame is %dx%d, buffer is %dx%d", ErrInvalidFrame, p.Width, p.Height, width, height)
	}
	if p.SampleCount < 1 {
		return fmt.Errorf("%w: sample count must be at least 1", ErrInvalidFrame)
	}
	// Written so that NaN fails too
	if !(p.Weight > 0 && p.Weight <= 1) {
		return fmt.Errorf("%w: weight %g outside (0,1]", ErrInvalidFrame, p.Weight)
	}
	return nil
}
