// Package graphicstest provides an in-memory graphics.Backend for tests.
// Textures are plain byte buffers so upload, copy, clear, and read-back are
// pixel-exact; draw calls are recorded rather than executed.
package graphicstest

import (
	"fmt"

	"github.com/glimmerfx/glimmer/graphics"
)

type texture struct {
	width, height int
	format        graphics.TextureFormat
	oneD          bool
	pixels        []byte
	texels        []float32 // 1-D contents
	deleted       bool
}

type program struct {
	vertex, fragment string
}

// Backend records resource traffic and keeps texture contents in memory.
type Backend struct {
	Width, Height int // reported framebuffer size

	textures map[graphics.TextureID]*texture
	programs map[graphics.ProgramID]program
	nextID   uint32

	// Draws holds every DrawOp passed to Draw, in order.
	Draws []graphics.DrawOp
	// Swaps counts SwapBuffers calls.
	Swaps int
	// CompileErr, when set, is returned from CompileProgram.
	CompileErr error
}

func New(width, height int) *Backend {
	return &Backend{
		Width:    width,
		Height:   height,
		textures: make(map[graphics.TextureID]*texture),
		programs: make(map[graphics.ProgramID]program),
	}
}

func (b *Backend) id() uint32 {
	b.nextID++
	return b.nextID
}

func (b *Backend) NewTexture2D(width, height int, format graphics.TextureFormat) (graphics.TextureID, error) {
	id := graphics.TextureID(b.id())
	b.textures[id] = &texture{
		width:  width,
		height: height,
		format: format,
		pixels: make([]byte, width*height*format.BytesPerPixel()),
	}
	return id, nil
}

func (b *Backend) NewTexture1D(length int, format graphics.TextureFormat) (graphics.TextureID, error) {
	id := graphics.TextureID(b.id())
	b.textures[id] = &texture{
		width:  length,
		height: 1,
		format: format,
		oneD:   true,
		pixels: make([]byte, length*format.BytesPerPixel()),
		texels: make([]float32, length),
	}
	return id, nil
}

func (b *Backend) tex(id graphics.TextureID) (*texture, error) {
	t, ok := b.textures[id]
	if !ok || t.deleted {
		return nil, fmt.Errorf("unknown texture %d", id)
	}
	return t, nil
}

func (b *Backend) UploadTexture2D(id graphics.TextureID, r graphics.Rect, pixels []byte) error {
	t, err := b.tex(id)
	if err != nil {
		return err
	}
	bpp := t.format.BytesPerPixel()
	if r.X < 0 || r.Y < 0 || r.X+r.W > t.width || r.Y+r.H > t.height {
		return fmt.Errorf("upload rect %+v outside %dx%d texture", r, t.width, t.height)
	}
	for row := 0; row < r.H; row++ {
		dst := ((r.Y+row)*t.width + r.X) * bpp
		src := row * r.W * bpp
		copy(t.pixels[dst:dst+r.W*bpp], pixels[src:src+r.W*bpp])
	}
	return nil
}

func (b *Backend) UploadTexture1D(id graphics.TextureID, data []float32) error {
	t, err := b.tex(id)
	if err != nil {
		return err
	}
	if len(data) > t.width {
		return fmt.Errorf("upload of %d texels into 1-D texture of length %d", len(data), t.width)
	}
	copy(t.texels, data)
	return nil
}

// Texels returns the contents of a 1-D texture.
func (b *Backend) Texels(id graphics.TextureID) []float32 {
	t, err := b.tex(id)
	if err != nil {
		return nil
	}
	return t.texels
}

func (b *Backend) CopyTexture2D(src, dst graphics.TextureID, srcRect graphics.Rect, dstX, dstY int) error {
	s, err := b.tex(src)
	if err != nil {
		return err
	}
	d, err := b.tex(dst)
	if err != nil {
		return err
	}
	if s.format != d.format {
		return fmt.Errorf("copy between mismatched formats")
	}
	bpp := s.format.BytesPerPixel()
	for row := 0; row < srcRect.H; row++ {
		from := ((srcRect.Y+row)*s.width + srcRect.X) * bpp
		to := ((dstY+row)*d.width + dstX) * bpp
		copy(d.pixels[to:to+srcRect.W*bpp], s.pixels[from:from+srcRect.W*bpp])
	}
	return nil
}

func (b *Backend) ReadTexture2D(id graphics.TextureID, width, height int) ([]byte, error) {
	t, err := b.tex(id)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(t.pixels))
	copy(out, t.pixels)
	return out, nil
}

func (b *Backend) ClearTexture(id graphics.TextureID, color [4]float32) error {
	t, err := b.tex(id)
	if err != nil {
		return err
	}
	for i := range t.pixels {
		t.pixels[i] = 0
	}
	return nil
}

func (b *Backend) DeleteTexture(id graphics.TextureID) {
	if t, ok := b.textures[id]; ok {
		t.deleted = true
	}
}

// Alive reports whether the texture has been allocated and not yet deleted.
func (b *Backend) Alive(id graphics.TextureID) bool {
	t, ok := b.textures[id]
	return ok && !t.deleted
}

// Pixels returns the raw contents of a texture.
func (b *Backend) Pixels(id graphics.TextureID) []byte {
	t, err := b.tex(id)
	if err != nil {
		return nil
	}
	return t.pixels
}

func (b *Backend) CompileProgram(vertexSrc, fragmentSrc string) (graphics.ProgramID, error) {
	if b.CompileErr != nil {
		return 0, b.CompileErr
	}
	id := graphics.ProgramID(b.id())
	b.programs[id] = program{vertex: vertexSrc, fragment: fragmentSrc}
	return id, nil
}

// FragmentSource returns the fragment source a program was compiled from.
func (b *Backend) FragmentSource(id graphics.ProgramID) string {
	return b.programs[id].fragment
}

func (b *Backend) DeleteProgram(id graphics.ProgramID) {
	delete(b.programs, id)
}

func (b *Backend) NewQuadBuffer() (graphics.BufferID, error) {
	return graphics.BufferID(b.id()), nil
}

func (b *Backend) DeleteBuffer(id graphics.BufferID) {}

func (b *Backend) Draw(op graphics.DrawOp) error {
	b.Draws = append(b.Draws, op)
	return nil
}

// LastDraw returns the most recent draw op, or a zero op when none happened.
func (b *Backend) LastDraw() graphics.DrawOp {
	if len(b.Draws) == 0 {
		return graphics.DrawOp{}
	}
	return b.Draws[len(b.Draws)-1]
}

func (b *Backend) FramebufferSize() (int, int) { return b.Width, b.Height }

func (b *Backend) SwapBuffers() { b.Swaps++ }
