package world

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Record strides, in float32 words
const (
	SphereStride     = 6 // cx, cy, cz, radius, kind, index
	LambertianStride = 3 // r, g, b
	MetalStride      = 4 // r, g, b, fuzz
)

// maxExactIndex is the largest integer a float32 word holds exactly
const maxExactIndex = 1 << 24

// Range addresses Length consecutive records starting at word Base
type Range struct {
	Base   int32
	Length int32
}

// end returns the first word past the range for the given stride
func (r Range) end(stride int) int {
	return int(r.Base) + int(r.Length)*stride
}

// Block is the packed scene parameter block exchanged with external scene
// producers: one flat word array plus a range per record kind.
type Block struct {
	Data        []float32
	Spheres     Range
	Lambertians Range
	Metals      Range
}

// Pack lays the repository out as a block: spheres, then lambertians, then metals
func Pack(r *Repository) Block {
	var b Block
	b.Data = make([]float32, 0,
		r.Spheres.Len()*SphereStride+r.Lambertians.Len()*LambertianStride+r.Metals.Len()*MetalStride)

	b.Spheres = Range{Base: int32(len(b.Data)), Length: int32(r.Spheres.Len())}
	for i, c := range r.Spheres.Centers {
		m := r.Spheres.Materials[i]
		b.Data = append(b.Data, c[0], c[1], c[2], r.Spheres.Radii[i], float32(m.Kind), float32(m.Index))
	}

	b.Lambertians = Range{Base: int32(len(b.Data)), Length: int32(r.Lambertians.Len())}
	for _, a := range r.Lambertians.Albedo {
		b.Data = append(b.Data, a[0], a[1], a[2])
	}

	b.Metals = Range{Base: int32(len(b.Data)), Length: int32(r.Metals.Len())}
	for i, a := range r.Metals.Albedo {
		b.Data = append(b.Data, a[0], a[1], a[2], r.Metals.Fuzz[i])
	}

	return b
}

// Unpack decodes a block into typed tables and validates the result.
// Ranges may appear in any order and may leave gaps, but must lie within Data.
func Unpack(b Block) (*Repository, error) {
	if err := b.checkRange("spheres", b.Spheres, SphereStride); err != nil {
		return nil, err
	}
	if err := b.checkRange("lambertians", b.Lambertians, LambertianStride); err != nil {
		return nil, err
	}
	if err := b.checkRange("metals", b.Metals, MetalStride); err != nil {
		return nil, err
	}

	r := &Repository{}

	n := int(b.Spheres.Length)
	r.Spheres = SphereSet{
		Centers:   make([]core.Vec3, n),
		Radii:     make([]float32, n),
		Materials: make([]MaterialRef, n),
	}
	for i := 0; i < n; i++ {
		w := b.Data[int(b.Spheres.Base)+i*SphereStride:]
		kind, err := wordToIndex(w[4])
		if err != nil {
			return nil, fmt.Errorf("%w: sphere %d kind: %v", ErrInvalidScene, i, err)
		}
		index, err := wordToIndex(w[5])
		if err != nil {
			return nil, fmt.Errorf("%w: sphere %d material index: %v", ErrInvalidScene, i, err)
		}
		r.Spheres.Centers[i] = core.NewVec3(w[0], w[1], w[2])
		r.Spheres.Radii[i] = w[3]
		r.Spheres.Materials[i] = MaterialRef{Kind: MaterialKind(kind), Index: index}
	}

	n = int(b.Lambertians.Length)
	r.Lambertians.Albedo = make([]core.Vec3, n)
	for i := 0; i < n; i++ {
		w := b.Data[int(b.Lambertians.Base)+i*LambertianStride:]
		r.Lambertians.Albedo[i] = core.NewVec3(w[0], w[1], w[2])
	}

	n = int(b.Metals.Length)
	r.Metals = MetalSet{
		Albedo: make([]core.Vec3, n),
		Fuzz:   make([]float32, n),
	}
	for i := 0; i < n; i++ {
		w := b.Data[int(b.Metals.Base)+i*MetalStride:]
		r.Metals.Albedo[i] = core.NewVec3(w[0], w[1], w[2])
		r.Metals.Fuzz[i] = w[3]
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (b Block) checkRange(name string, r Range, stride int) error {
	if r.Base < 0 || r.Length < 0 {
		return fmt.Errorf("%w: %s range %+v is negative", ErrInvalidScene, name, r)
	}
	if r.end(stride) > len(b.Data) {
		return fmt.Errorf("%w: %s range %+v exceeds block of %d words", ErrInvalidScene, name, r, len(b.Data))
	}
	return nil
}

func wordToIndex(w float32) (uint32, error) {
	if w < 0 || w >= maxExactIndex || math32.Trunc(w) != w {
		return 0, fmt.Errorf("word %g is not a valid index", w)
	}
	return uint32(w), nil
}
