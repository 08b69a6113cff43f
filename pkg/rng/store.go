package rng

import "fmt"

// Store holds one generator state per pixel, row-major, and persists across
// frames. Within a frame each pixel's slot is touched by exactly one worker.
type Store struct {
	width, height int
	states        []State
}

// NewStore creates an unseeded store for a width x height image
func NewStore(width, height int) *Store {
	return &Store{
		width:  width,
		height: height,
		states: make([]State, width*height),
	}
}

// Width returns the store width in pixels
func (s *Store) Width() int { return s.width }

// Height returns the store height in pixels
func (s *Store) Height() int { return s.height }

// SeedAll seeds every pixel from seed and the pixel's index, discarding
// whatever state the store held
func (s *Store) SeedAll(seed uint64) {
	for i := range s.states {
		s.states[i] = Seed(seed ^ (uint64(i+1) * 0xD1B54A32D192ED03))
	}
}

// Reseed perturbs every pixel by xoring in v. A pixel that would collapse to
// the zero state is reseeded from its index instead.
func (s *Store) Reseed(v [4]uint32) {
	for i := range s.states {
		s.states[i] = perturb(s.states[i], v, i)
	}
}

// LoadReseeded returns the state at pixel (x, y) as Reseed(v) would leave it,
// without modifying the store
func (s *Store) LoadReseeded(x, y int, v [4]uint32) State {
	i := s.index(x, y)
	return perturb(s.states[i], v, i)
}

func perturb(st State, v [4]uint32, index int) State {
	for w := range st {
		st[w] ^= v[w]
	}
	if st.IsZero() {
		st = Seed(uint64(index + 1))
	}
	return st
}

// Load returns a copy of the state at pixel (x, y)
func (s *Store) Load(x, y int) State {
	return s.states[s.index(x, y)]
}

// Put writes the state for pixel (x, y)
func (s *Store) Put(x, y int, state State) {
	s.states[s.index(x, y)] = state
}

// At returns the state slot for pixel (x, y). The caller must own the pixel.
func (s *Store) At(x, y int) *State {
	return &s.states[s.index(x, y)]
}

func (s *Store) index(x, y int) int {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		panic(fmt.Sprintf("rng: pixel (%d,%d) outside %dx%d store", x, y, s.width, s.height))
	}
	return y*s.width + x
}
