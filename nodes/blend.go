package nodes

import (
	"fmt"

	"github.com/glimmerfx/glimmer/graph"
	"github.com/glimmerfx/glimmer/graphics"
	"github.com/glimmerfx/glimmer/shader"
)

// Blend folds its texture inputs with a componentwise reduction. The
// fragment program is generated for the configured operation and input
// count at construction; like the shader node it draws into a fresh
// framebuffer-sized target each frame.
type Blend struct {
	backend graphics.Backend
	quad    graphics.BufferID
	program graphics.ProgramID
	count   int
	width   int
	height  int
	out     *graphics.Texture
}

func NewBlend(env *Env, op shader.BlendOp, count int) (*Blend, error) {
	program, err := env.Backend.CompileProgram(shader.Vertex(), shader.BlendFragment(op, count))
	if err != nil {
		return nil, fmt.Errorf("compile %s blend over %d inputs: %w", op, count, err)
	}
	return &Blend{
		backend: env.Backend,
		quad:    env.Quad,
		program: program,
		count:   count,
		width:   env.Width,
		height:  env.Height,
	}, nil
}

func (n *Blend) Resize(width, height int) { n.width, n.height = width, height }

func (n *Blend) Render(in graph.Inputs) (graph.Outputs, error) {
	uniforms := make(map[string]graphics.Uniform, n.count)
	for i := 0; i < n.count; i++ {
		slot := fmt.Sprintf("input%d", i)
		tex := graph.TextureOf(in[slot])
		if tex == nil {
			return nil, fmt.Errorf("%s carries no texture", slot)
		}
		uniforms[slot] = graphics.SamplerUniform(tex)
	}

	target, err := graphics.NewTexture2D(n.backend, n.width, n.height, graphics.FormatRGBA32F)
	if err != nil {
		return nil, err
	}
	op := graphics.DrawOp{
		Program:  n.program,
		Buffer:   n.quad,
		Target:   target,
		Width:    n.width,
		Height:   n.height,
		Uniforms: uniforms,
		Clear:    true,
	}
	if err := n.backend.Draw(op); err != nil {
		target.Release()
		return nil, err
	}

	n.out.Release()
	n.out = target
	return graph.Outputs{"texture": graph.Texture2D{Tex: target}}, nil
}

func (n *Blend) Destroy() {
	n.out.Release()
	n.out = nil
	n.backend.DeleteProgram(n.program)
}
