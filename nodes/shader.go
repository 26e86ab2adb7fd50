package nodes

import (
	"fmt"
	"os"

	"github.com/glimmerfx/glimmer/graph"
	"github.com/glimmerfx/glimmer/graphics"
	"github.com/glimmerfx/glimmer/shader"
)

// Shader runs a user fragment program over the full-screen quad into a
// framebuffer-sized RGBA32F texture. Each connected input binds to the
// uniform named by its slot. The target is reallocated every frame so a
// feedback node can hold last frame's texture without it being overdrawn.
type Shader struct {
	backend graphics.Backend
	quad    graphics.BufferID
	program graphics.ProgramID
	width   int
	height  int
	out     *graphics.Texture
}

func NewShader(env *Env, vertexPath, fragmentPath string) (*Shader, error) {
	vsrc := shader.Vertex()
	if vertexPath != "" {
		b, err := os.ReadFile(vertexPath)
		if err != nil {
			return nil, fmt.Errorf("read vertex shader %q: %w", vertexPath, err)
		}
		vsrc = string(b)
	}
	fsrc, err := os.ReadFile(fragmentPath)
	if err != nil {
		return nil, fmt.Errorf("read fragment shader %q: %w", fragmentPath, err)
	}
	program, err := env.Backend.CompileProgram(vsrc, string(fsrc))
	if err != nil {
		return nil, fmt.Errorf("compile shader %q: %w", fragmentPath, err)
	}
	return &Shader{
		backend: env.Backend,
		quad:    env.Quad,
		program: program,
		width:   env.Width,
		height:  env.Height,
	}, nil
}

func (n *Shader) Resize(width, height int) { n.width, n.height = width, height }

func (n *Shader) Render(in graph.Inputs) (graph.Outputs, error) {
	uniforms := make(map[string]graphics.Uniform, len(in))
	for name, v := range in {
		u, err := uniformFor(v)
		if err != nil {
			return nil, fmt.Errorf("uniform %q: %w", name, err)
		}
		uniforms[name] = u
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

func (n *Shader) Destroy() {
	n.out.Release()
	n.out = nil
	n.backend.DeleteProgram(n.program)
}

// uniformFor maps a graph value onto its GPU uniform representation. Text
// has none.
func uniformFor(v graph.Value) (graphics.Uniform, error) {
	switch t := v.(type) {
	case graph.Float:
		return graphics.FloatUniform(float32(t)), nil
	case graph.Float2:
		return graphics.Vec2Uniform([2]float32(t)), nil
	case graph.Float4:
		return graphics.Vec4Uniform([4]float32(t)), nil
	case graph.Color:
		return graphics.Vec4Uniform([4]float32(t)), nil
	case graph.Texture2D:
		return graphics.SamplerUniform(t.Tex), nil
	case graph.Texture1D:
		return graphics.SamplerUniform(t.Tex), nil
	}
	return graphics.Uniform{}, fmt.Errorf("value of kind %s cannot bind to a uniform", v.Kind())
}
