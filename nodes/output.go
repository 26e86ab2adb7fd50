package nodes

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/glimmerfx/glimmer/graph"
	"github.com/glimmerfx/glimmer/graphics"
	"github.com/glimmerfx/glimmer/shader"
)

// Output presents its input texture to the default framebuffer and swaps.
// It retains the last presented texture so a snapshot or an encoder can
// read the frame back after evaluation.
type Output struct {
	backend graphics.Backend
	quad    graphics.BufferID
	program graphics.ProgramID
	width   int
	height  int
	last    *graphics.Texture
}

func NewOutput(env *Env) (*Output, error) {
	program, err := env.Backend.CompileProgram(shader.Vertex(), shader.PassFragment())
	if err != nil {
		return nil, fmt.Errorf("compile present program: %w", err)
	}
	return &Output{
		backend: env.Backend,
		quad:    env.Quad,
		program: program,
		width:   env.Width,
		height:  env.Height,
	}, nil
}

func (n *Output) Resize(width, height int) { n.width, n.height = width, height }

func (n *Output) Render(in graph.Inputs) (graph.Outputs, error) {
	tex := graph.TextureOf(in["texture"])
	if tex == nil {
		return nil, fmt.Errorf("no texture wired to present")
	}
	op := graphics.DrawOp{
		Program:  n.program,
		Buffer:   n.quad,
		Width:    n.width,
		Height:   n.height,
		Uniforms: map[string]graphics.Uniform{"u_texture": graphics.SamplerUniform(tex)},
		Clear:    true,
	}
	if err := n.backend.Draw(op); err != nil {
		return nil, err
	}
	n.backend.SwapBuffers()

	tex.Retain()
	n.last.Release()
	n.last = tex
	return graph.Outputs{}, nil
}

// LastFrame returns the most recently presented texture, nil before the
// first frame. The encoder reads it back between frames.
func (n *Output) LastFrame() *graphics.Texture { return n.last }

// Snapshot writes the last presented frame as a PNG.
func (n *Output) Snapshot(path string) error {
	if n.last == nil {
		return fmt.Errorf("no frame presented yet")
	}
	w, h := n.last.Width(), n.last.Height()
	pix, err := n.backend.ReadTexture2D(n.last.ID(), w, h)
	if err != nil {
		return err
	}

	// Readback rows come bottom-up; the encoder wants top-down.
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+w*4], pix[(h-1-y)*w*4:(h-y)*w*4])
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (n *Output) Destroy() {
	n.last.Release()
	n.last = nil
	n.backend.DeleteProgram(n.program)
}
