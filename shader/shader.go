// Package shader holds the GLSL sources the runtime compiles: the shared
// full-screen quad vertex shader, the pass-through program the output node
// presents with, the glyph-quad program text nodes blit with, and the
// generated blend reductions.
package shader

import (
	"fmt"
	"strings"
)

const vertexSource = `#version 410 core
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const passFragmentSource = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// Glyph quads reuse the unit quad: the vertex stage places it at u_rect
// (pixels, lower-left origin) inside a u_screen sized target and samples
// the u_uv_rect region of the atlas.
const glyphVertexSource = `#version 410 core
layout (location = 0) in vec2 in_vert;
uniform vec4 u_rect;
uniform vec2 u_screen;
uniform vec4 u_uv_rect;
out vec2 frag_uv;
void main() {
    vec2 unit = in_vert * 0.5 + 0.5;
    vec2 pos = (u_rect.xy + unit * u_rect.zw) / u_screen * 2.0 - 1.0;
    frag_uv = u_uv_rect.xy + unit * u_uv_rect.zw;
    gl_Position = vec4(pos, 0.0, 1.0);
}
`

const glyphFragmentSource = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_atlas;
uniform vec4 u_color;
void main() { fragColor = vec4(u_color.rgb, u_color.a * texture(u_atlas, frag_uv).r); }
`

// Vertex returns the shared full-screen quad vertex shader.
func Vertex() string { return vertexSource }

// PassFragment returns the trivial sampler the output node presents with.
func PassFragment() string { return passFragmentSource }

// GlyphVertex returns the vertex stage for glyph quads.
func GlyphVertex() string { return glyphVertexSource }

// GlyphFragment returns the fragment stage for glyph quads.
func GlyphFragment() string { return glyphFragmentSource }

// BlendOp is a componentwise reduction over blend inputs.
type BlendOp int

const (
	BlendMin BlendOp = iota
	BlendMax
	BlendAdd
	BlendSub
)

var blendOpNames = map[BlendOp]string{
	BlendMin: "min",
	BlendMax: "max",
	BlendAdd: "add",
	BlendSub: "sub",
}

func (op BlendOp) String() string {
	if s, ok := blendOpNames[op]; ok {
		return s
	}
	return fmt.Sprintf("BlendOp(%d)", int(op))
}

// ParseBlendOp maps a configuration operation name to a BlendOp.
func ParseBlendOp(s string) (BlendOp, error) {
	for op, name := range blendOpNames {
		if name == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown blend operation %q", s)
}

// expr applies the reduction to the accumulator and one sampled input.
func (op BlendOp) expr(sample string) string {
	switch op {
	case BlendMin:
		return fmt.Sprintf("min(color, %s)", sample)
	case BlendMax:
		return fmt.Sprintf("max(color, %s)", sample)
	case BlendAdd:
		return fmt.Sprintf("color + %s", sample)
	default:
		return fmt.Sprintf("color - %s", sample)
	}
}

// BlendFragment generates a fragment program that seeds the accumulator from
// input0 and folds the remaining inputs in with op. count must be at least 1.
func BlendFragment(op BlendOp, count int) string {
	var b strings.Builder
	b.WriteString("#version 410 core\n")
	b.WriteString("in vec2 frag_uv;\n")
	b.WriteString("out vec4 fragColor;\n")
	for i := 0; i < count; i++ {
		fmt.Fprintf(&b, "uniform sampler2D input%d;\n", i)
	}
	b.WriteString("void main() {\n")
	b.WriteString("    vec4 color = texture(input0, frag_uv);\n")
	for i := 1; i < count; i++ {
		fmt.Fprintf(&b, "    color = %s;\n", op.expr(fmt.Sprintf("texture(input%d, frag_uv)", i)))
	}
	b.WriteString("    fragColor = color;\n")
	b.WriteString("}\n")
	return b.String()
}
