package text

import "github.com/glimmerfx/glimmer/graphics"

// Packer is a shelf bin-packer over the glyph atlas. Glyphs are placed on
// horizontal shelves from the bottom of the atlas up; growing the packer
// never moves a placed rectangle, which is what lets the cache blit the old
// atlas into the lower-left of the new one.
type Packer struct {
	width, height int
	shelves       []shelf
	top           int // y of the next new shelf
}

type shelf struct {
	y, height int
	x         int // next free x on this shelf
}

// NewPacker creates a packer over a width x height area.
func NewPacker(width, height int) *Packer {
	return &Packer{width: width, height: height}
}

func (p *Packer) Width() int  { return p.width }
func (p *Packer) Height() int { return p.height }

// Fits reports whether a w x h rectangle can currently be packed.
func (p *Packer) Fits(w, h int) bool {
	if w > p.width {
		return false
	}
	for _, s := range p.shelves {
		if h <= s.height && s.x+w <= p.width {
			return true
		}
	}
	return p.top+h <= p.height
}

// Pack places a w x h rectangle and returns its position. The second return
// is false when no space is left; callers grow the packer first.
func (p *Packer) Pack(w, h int) (graphics.Rect, bool) {
	if w > p.width {
		return graphics.Rect{}, false
	}
	for i := range p.shelves {
		s := &p.shelves[i]
		if h <= s.height && s.x+w <= p.width {
			r := graphics.Rect{X: s.x, Y: s.y, W: w, H: h}
			s.x += w
			return r, true
		}
	}
	if p.top+h > p.height {
		return graphics.Rect{}, false
	}
	p.shelves = append(p.shelves, shelf{y: p.top, height: h, x: w})
	r := graphics.Rect{X: 0, Y: p.top, W: w, H: h}
	p.top += h
	return r, true
}

// Grow extends the packable area. Existing shelves keep their position and
// gain the new width; the area above the old top becomes available for new
// shelves. Shrinking is not supported.
func (p *Packer) Grow(width, height int) {
	if width > p.width {
		p.width = width
	}
	if height > p.height {
		p.height = height
	}
}
