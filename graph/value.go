package graph

import (
	"fmt"

	"github.com/glimmerfx/glimmer/graphics"
)

// ValueKind discriminates the closed set of value types that flow between
// nodes. KindAny is only legal as an input-slot type; no value has it.
type ValueKind int

const (
	KindAny ValueKind = iota
	KindColor
	KindFloat
	KindFloat2
	KindFloat4
	KindText
	KindTexture1D
	KindTexture2D
)

var valueKindNames = map[ValueKind]string{
	KindAny:       "any",
	KindColor:     "color",
	KindFloat:     "float",
	KindFloat2:    "float2",
	KindFloat4:    "float4",
	KindText:      "text",
	KindTexture1D: "texture_1d",
	KindTexture2D: "texture_2d",
}

func (k ValueKind) String() string {
	if s, ok := valueKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// ParseValueKind maps a configuration type name to a ValueKind. KindAny is
// not parseable; it never appears in configurations.
func ParseValueKind(s string) (ValueKind, error) {
	for k, name := range valueKindNames {
		if k != KindAny && name == s {
			return k, nil
		}
	}
	return KindAny, fmt.Errorf("unknown value type %q", s)
}

// Value is one element of the union. Values are immutable once emitted;
// texture values share the underlying GPU resource by handle.
type Value interface {
	Kind() ValueKind
}

type (
	// Color is an RGBA quadruple in [0,1].
	Color [4]float32
	// Float is a plain scalar.
	Float float32
	// Float2 is a fixed 2-vector.
	Float2 [2]float32
	// Float4 is a fixed 4-vector.
	Float4 [4]float32
	// Text is a string value.
	Text string
	// Texture2D wraps a shared 2-D texture handle.
	Texture2D struct{ Tex *graphics.Texture }
	// Texture1D wraps a shared 1-D texture handle.
	Texture1D struct{ Tex *graphics.Texture }
)

func (Color) Kind() ValueKind     { return KindColor }
func (Float) Kind() ValueKind     { return KindFloat }
func (Float2) Kind() ValueKind    { return KindFloat2 }
func (Float4) Kind() ValueKind    { return KindFloat4 }
func (Text) Kind() ValueKind      { return KindText }
func (Texture2D) Kind() ValueKind { return KindTexture2D }
func (Texture1D) Kind() ValueKind { return KindTexture1D }

// TextureOf returns the handle held by a texture value, or nil for other
// kinds.
func TextureOf(v Value) *graphics.Texture {
	switch t := v.(type) {
	case Texture2D:
		return t.Tex
	case Texture1D:
		return t.Tex
	}
	return nil
}
