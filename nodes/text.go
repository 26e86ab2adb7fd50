package nodes

import (
	"github.com/glimmerfx/glimmer/graph"
	"github.com/glimmerfx/glimmer/graphics"
	"github.com/glimmerfx/glimmer/shader"
	"github.com/glimmerfx/glimmer/text"
)

// Text draws a string into a transparent framebuffer-sized texture, one
// alpha-blended quad per glyph out of the shared atlas. Position is the
// pixel offset of the text block from the top-left corner.
type Text struct {
	backend  graphics.Backend
	quad     graphics.BufferID
	program  graphics.ProgramID
	cache    *text.Cache
	value    string
	position [2]float32
	color    [4]float32
	width    int
	height   int
	out      *graphics.Texture
}

func NewText(env *Env, value string, position [2]float32, color [4]float32, fontPath string, fontSize float64) (*Text, error) {
	source, err := text.NewSource(fontPath, fontSize)
	if err != nil {
		return nil, err
	}
	cache, err := text.NewCache(env.Backend, source)
	if err != nil {
		return nil, err
	}
	program, err := env.Backend.CompileProgram(shader.GlyphVertex(), shader.GlyphFragment())
	if err != nil {
		cache.Destroy()
		return nil, err
	}
	return &Text{
		backend:  env.Backend,
		quad:     env.Quad,
		program:  program,
		cache:    cache,
		value:    value,
		position: position,
		color:    color,
		width:    env.Width,
		height:   env.Height,
	}, nil
}

// SetText replaces the string drawn on the next render.
func (n *Text) SetText(s string) { n.value = s }

func (n *Text) Resize(width, height int) { n.width, n.height = width, height }

func (n *Text) Render(graph.Inputs) (graph.Outputs, error) {
	if n.out == nil || n.out.Width() != n.width || n.out.Height() != n.height {
		n.out.Release()
		n.out = nil
		t, err := graphics.NewTexture2D(n.backend, n.width, n.height, graphics.FormatRGBA32F)
		if err != nil {
			return nil, err
		}
		n.out = t
	}
	if err := n.backend.ClearTexture(n.out.ID(), [4]float32{}); err != nil {
		return nil, err
	}

	lineHeight := float32(0)
	if g, err := n.cache.Get('M'); err == nil {
		lineHeight = g.LineHeight
	}

	penX := n.position[0]
	// First baseline sits one line below the top-left anchor.
	penY := float32(n.height) - n.position[1] - lineHeight
	for _, r := range n.value {
		if r == '\n' {
			penX = n.position[0]
			penY -= lineHeight
			continue
		}
		g, err := n.cache.Get(r)
		if err != nil {
			if g, err = n.cache.Get('?'); err != nil {
				continue
			}
		}
		if g.Rect.W > 0 {
			if err := n.drawGlyph(g, penX, penY); err != nil {
				return nil, err
			}
		}
		penX += g.Advance
	}
	return graph.Outputs{"texture": graph.Texture2D{Tex: n.out}}, nil
}

func (n *Text) drawGlyph(g text.GlyphData, penX, penY float32) error {
	// The atlas handle must be fetched per glyph: a Get may have grown it.
	atlas := n.cache.Atlas()
	aw, ah := float32(atlas.Width()), float32(atlas.Height())
	op := graphics.DrawOp{
		Program: n.program,
		Buffer:  n.quad,
		Target:  n.out,
		Width:   n.width,
		Height:  n.height,
		Uniforms: map[string]graphics.Uniform{
			"u_rect": graphics.Vec4Uniform([4]float32{
				penX + float32(g.BearingX),
				penY + float32(g.BearingY-g.Height),
				float32(g.Width),
				float32(g.Height),
			}),
			"u_screen": graphics.Vec2Uniform([2]float32{float32(n.width), float32(n.height)}),
			"u_uv_rect": graphics.Vec4Uniform([4]float32{
				float32(g.Rect.X) / aw,
				float32(g.Rect.Y) / ah,
				float32(g.Rect.W) / aw,
				float32(g.Rect.H) / ah,
			}),
			"u_color": graphics.Vec4Uniform(n.color),
			"u_atlas": graphics.SamplerUniform(atlas),
		},
		Blend: true,
	}
	return n.backend.Draw(op)
}

func (n *Text) Destroy() {
	n.out.Release()
	n.out = nil
	n.cache.Destroy()
	n.backend.DeleteProgram(n.program)
}
