package text

import (
	"fmt"

	"github.com/glimmerfx/glimmer/graphics"
)

// Atlas dimensions start here and double (at least) on every growth.
const initialAtlasSize = 512

// GlyphData locates one cached glyph in the atlas and carries its placement
// metrics. Zero-sized glyphs (space) keep a zero Rect.
type GlyphData struct {
	Rect       graphics.Rect // atlas region; zero for empty glyphs
	Width      int
	Height     int
	BearingX   int
	BearingY   int
	Advance    float32
	LineHeight float32
}

// Cache rasterizes glyphs on demand into a single growable luminance atlas.
// All visible ASCII is inserted up front so steady-state text rendering
// never allocates. The cache owns one reference to the atlas texture;
// growth replaces the texture after blitting the old contents into the
// lower-left of the new one, so previously returned rects stay valid.
type Cache struct {
	backend graphics.Backend
	source  Source
	atlas   *graphics.Texture
	packer  *Packer
	glyphs  map[rune]GlyphData
}

// NewCache builds a cache over an initial 512x512 single-channel atlas and
// pre-inserts ASCII 32..126.
func NewCache(backend graphics.Backend, source Source) (*Cache, error) {
	atlas, err := graphics.NewTexture2D(backend, initialAtlasSize, initialAtlasSize, graphics.FormatR8)
	if err != nil {
		return nil, err
	}
	c := &Cache{
		backend: backend,
		source:  source,
		atlas:   atlas,
		packer:  NewPacker(initialAtlasSize, initialAtlasSize),
		glyphs:  make(map[rune]GlyphData),
	}
	for r := rune(' '); r <= '~'; r++ {
		if _, err := c.insert(r); err != nil {
			c.Destroy()
			return nil, err
		}
	}
	return c, nil
}

// Atlas returns the current atlas texture. The handle changes when the
// atlas grows, so callers must not retain it across Get calls.
func (c *Cache) Atlas() *graphics.Texture { return c.atlas }

// Get returns the cached glyph, rasterizing and packing it on first use.
func (c *Cache) Get(r rune) (GlyphData, error) {
	if g, ok := c.glyphs[r]; ok {
		return g, nil
	}
	return c.insert(r)
}

func (c *Cache) insert(r rune) (GlyphData, error) {
	glyph, err := c.source.Load(r)
	if err != nil {
		return GlyphData{}, err
	}

	data := GlyphData{
		Width:      glyph.Width,
		Height:     glyph.Height,
		BearingX:   glyph.BearingX,
		BearingY:   glyph.BearingY,
		Advance:    glyph.Advance,
		LineHeight: glyph.LineHeight,
	}
	if glyph.Width == 0 || glyph.Height == 0 {
		c.glyphs[r] = data
		return data, nil
	}

	if !c.packer.Fits(glyph.Width, glyph.Height) {
		if err := c.grow(glyph.Width, glyph.Height); err != nil {
			return GlyphData{}, err
		}
	}
	rect, ok := c.packer.Pack(glyph.Width, glyph.Height)
	if !ok {
		return GlyphData{}, fmt.Errorf("atlas packer rejected %dx%d glyph after growth", glyph.Width, glyph.Height)
	}
	if err := c.atlas.Upload(rect, glyph.Buffer); err != nil {
		return GlyphData{}, err
	}

	data.Rect = rect
	c.glyphs[r] = data
	return data, nil
}

// grow doubles the atlas (or more if the glyph demands it), preserving the
// packed contents in the lower-left of the new texture.
func (c *Cache) grow(glyphW, glyphH int) error {
	oldW, oldH := c.atlas.Width(), c.atlas.Height()
	newW := max(oldW+glyphW, 2*oldW)
	newH := max(oldH+glyphH, 2*oldH)

	next, err := graphics.NewTexture2D(c.backend, newW, newH, graphics.FormatR8)
	if err != nil {
		return fmt.Errorf("grow atlas to %dx%d: %w", newW, newH, err)
	}
	if err := c.backend.CopyTexture2D(c.atlas.ID(), next.ID(), graphics.Rect{W: oldW, H: oldH}, 0, 0); err != nil {
		next.Release()
		return fmt.Errorf("preserve atlas contents: %w", err)
	}

	c.packer.Grow(newW, newH)
	c.atlas.Release()
	c.atlas = next
	return nil
}

// Destroy releases the atlas.
func (c *Cache) Destroy() {
	c.atlas.Release()
	c.atlas = nil
	c.glyphs = nil
}
