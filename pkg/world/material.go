package world

import (
	"fmt"
	"strings"
)

// MaterialKind tags which parameter table a MaterialRef indexes
type MaterialKind uint32

const (
	KindNone MaterialKind = iota
	KindLambertian
	KindMetal
)

// String returns the lowercase name used in scene files
func (k MaterialKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindLambertian:
		return "lambertian"
	case KindMetal:
		return "metal"
	default:
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
}

// ParseMaterialKind parses a kind name as produced by String
func ParseMaterialKind(name string) (MaterialKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return KindNone, nil
	case "lambertian", "diffuse":
		return KindLambertian, nil
	case "metal":
		return KindMetal, nil
	default:
		return KindNone, fmt.Errorf("unknown material kind %q", name)
	}
}

// MaterialRef is a tagged handle into one of the per-kind parameter tables
type MaterialRef struct {
	Kind  MaterialKind
	Index uint32
}

// Lambertian returns a reference to the i-th lambertian material
func Lambertian(i int) MaterialRef {
	return MaterialRef{Kind: KindLambertian, Index: uint32(i)}
}

// Metal returns a reference to the i-th metal material
func Metal(i int) MaterialRef {
	return MaterialRef{Kind: KindMetal, Index: uint32(i)}
}

func (r MaterialRef) String() string {
	return fmt.Sprintf("%s[%d]", r.Kind, r.Index)
}
