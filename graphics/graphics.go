package graphics

// TextureFormat selects the internal storage of a texture.
type TextureFormat int

const (
	FormatRGBA8 TextureFormat = iota
	FormatRGBA32F
	FormatR8
	FormatR32F
)

// BytesPerPixel returns the size of one texel in bytes.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case FormatRGBA8:
		return 4
	case FormatRGBA32F:
		return 16
	case FormatR8:
		return 1
	case FormatR32F:
		return 4
	}
	return 0
}

// Opaque resource identifiers handed out by a Backend.
type (
	TextureID uint32
	ProgramID uint32
	BufferID  uint32
)

// Rect is a pixel rectangle with its origin at the lower-left.
type Rect struct {
	X, Y, W, H int
}

// UniformKind discriminates the GPU type of a bound uniform.
type UniformKind int

const (
	UniformFloat UniformKind = iota
	UniformVec2
	UniformVec4
	UniformSampler1D
	UniformSampler2D
)

// Uniform is a single named shader input value.
type Uniform struct {
	Kind    UniformKind
	Float   float32
	Vec2    [2]float32
	Vec4    [4]float32
	Texture *Texture
}

func FloatUniform(v float32) Uniform   { return Uniform{Kind: UniformFloat, Float: v} }
func Vec2Uniform(v [2]float32) Uniform { return Uniform{Kind: UniformVec2, Vec2: v} }
func Vec4Uniform(v [4]float32) Uniform { return Uniform{Kind: UniformVec4, Vec4: v} }

func SamplerUniform(t *Texture) Uniform {
	if t != nil && t.oneD {
		return Uniform{Kind: UniformSampler1D, Texture: t}
	}
	return Uniform{Kind: UniformSampler2D, Texture: t}
}

// DrawOp describes one full-screen-quad draw call.
type DrawOp struct {
	Program  ProgramID
	Buffer   BufferID
	Target   *Texture // nil renders to the default framebuffer
	Width    int      // viewport; Target dimensions when Target != nil
	Height   int
	Uniforms map[string]Uniform
	Clear    bool
	Blend    bool // enable standard alpha blending
}

// Backend abstracts the GPU API the runtime draws with. All calls must be
// made from the thread that owns the GL context.
type Backend interface {
	NewTexture2D(width, height int, format TextureFormat) (TextureID, error)
	NewTexture1D(length int, format TextureFormat) (TextureID, error)
	UploadTexture2D(id TextureID, r Rect, pixels []byte) error
	UploadTexture1D(id TextureID, data []float32) error
	// CopyTexture2D blits srcRect of src onto dst at (dstX, dstY) with
	// nearest filtering.
	CopyTexture2D(src, dst TextureID, srcRect Rect, dstX, dstY int) error
	// ReadTexture2D returns the texture contents as tightly packed RGBA8,
	// bottom row first.
	ReadTexture2D(id TextureID, width, height int) ([]byte, error)
	ClearTexture(id TextureID, color [4]float32) error
	DeleteTexture(id TextureID)

	CompileProgram(vertexSrc, fragmentSrc string) (ProgramID, error)
	DeleteProgram(id ProgramID)

	NewQuadBuffer() (BufferID, error)
	DeleteBuffer(id BufferID)

	Draw(op DrawOp) error

	FramebufferSize() (int, int)
	SwapBuffers()
}
