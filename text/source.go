package text

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/go-fonts/latin-modern/lmmono10regular"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Glyph is one rasterized character: an alpha coverage buffer (bottom row
// first, ready for GL upload) plus the metrics needed to place it.
type Glyph struct {
	Buffer     []byte
	Width      int
	Height     int
	BearingX   int // left side bearing in pixels
	BearingY   int // distance from baseline to glyph top in pixels
	Advance    float32
	LineHeight float32
}

// Source rasterizes single characters. The glyph cache is its only caller.
type Source interface {
	Load(r rune) (Glyph, error)
}

// FaceSource rasterizes through an OpenType face. It is not safe for
// concurrent use, matching the single render thread.
type FaceSource struct {
	face       font.Face
	lineHeight float32
}

// NewSource opens the font at path at the given pixel size. An empty path
// selects the embedded Latin Modern Mono face.
func NewSource(path string, size float64) (*FaceSource, error) {
	data := lmmono10regular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font %q: %w", path, err)
		}
		data = b
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %q: %w", path, err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("open font face %q at %g: %w", path, size, err)
	}
	return &FaceSource{
		face: face,
		// 26.6 fixed point: 64 units per pixel.
		lineHeight: float32(face.Metrics().Height) / 64,
	}, nil
}

// Load rasterizes r with the dot at the origin.
func (s *FaceSource) Load(r rune) (Glyph, error) {
	dr, mask, maskp, advance, ok := s.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return Glyph{}, fmt.Errorf("font has no glyph for %q", r)
	}

	g := Glyph{
		Width:      dr.Dx(),
		Height:     dr.Dy(),
		BearingX:   dr.Min.X,
		BearingY:   -dr.Min.Y,
		Advance:    float32(advance) / 64,
		LineHeight: s.lineHeight,
	}
	if g.Width == 0 || g.Height == 0 {
		return g, nil
	}

	// Copy the coverage rows bottom-up so the buffer matches the atlas's
	// lower-left origin.
	g.Buffer = make([]byte, g.Width*g.Height)
	alpha := toAlpha(mask)
	for y := 0; y < g.Height; y++ {
		srcY := maskp.Y + y
		src := alpha.Pix[(srcY-alpha.Rect.Min.Y)*alpha.Stride+(maskp.X-alpha.Rect.Min.X):]
		dst := g.Buffer[(g.Height-1-y)*g.Width:]
		copy(dst[:g.Width], src[:g.Width])
	}
	return g, nil
}

// toAlpha normalizes the face's mask image. opentype hands back
// *image.Alpha; anything else is converted.
func toAlpha(m image.Image) *image.Alpha {
	if a, ok := m.(*image.Alpha); ok {
		return a
	}
	a := image.NewAlpha(m.Bounds())
	draw.Draw(a, a.Bounds(), m, m.Bounds().Min, draw.Src)
	return a
}
