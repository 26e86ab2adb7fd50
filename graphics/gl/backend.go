// Package gl implements the graphics.Backend on OpenGL 4.1 core via go-gl.
package gl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/glimmerfx/glimmer/graphics"
)

// Backend talks to OpenGL. It must only be used from the thread holding the
// GL context. The window owns the default framebuffer; Draw with a nil
// target renders there.
type Backend struct {
	window Window
	fbos   map[graphics.TextureID]uint32
}

// Window is the slice of the host window the backend needs: the size of the
// default framebuffer and the buffer swap.
type Window interface {
	FramebufferSize() (int, int)
	SwapBuffers()
}

// New initialises OpenGL for the current context and returns a backend.
func New(window Window) (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initialize opengl: %w", err)
	}
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	return &Backend{
		window: window,
		fbos:   make(map[graphics.TextureID]uint32),
	}, nil
}

func formatTriple(format graphics.TextureFormat) (internal int32, pixFormat, pixType uint32) {
	switch format {
	case graphics.FormatRGBA32F:
		return gl.RGBA32F, gl.RGBA, gl.FLOAT
	case graphics.FormatR8:
		return gl.R8, gl.RED, gl.UNSIGNED_BYTE
	case graphics.FormatR32F:
		return gl.R32F, gl.RED, gl.FLOAT
	default:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	}
}

func (b *Backend) NewTexture2D(width, height int, format graphics.TextureFormat) (graphics.TextureID, error) {
	internal, pixFormat, pixType := formatTriple(format)
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(width), int32(height), 0, pixFormat, pixType, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("allocate %dx%d texture: gl error 0x%x", width, height, glErr)
	}
	return graphics.TextureID(tex), nil
}

func (b *Backend) NewTexture1D(length int, format graphics.TextureFormat) (graphics.TextureID, error) {
	internal, pixFormat, pixType := formatTriple(format)
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_1D, tex)
	gl.TexImage1D(gl.TEXTURE_1D, 0, internal, int32(length), 0, pixFormat, pixType, nil)
	gl.TexParameteri(gl.TEXTURE_1D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_1D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_1D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_1D, 0)
	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("allocate 1-D texture of length %d: gl error 0x%x", length, glErr)
	}
	return graphics.TextureID(tex), nil
}

func (b *Backend) UploadTexture2D(id graphics.TextureID, r graphics.Rect, pixels []byte) error {
	gl.BindTexture(gl.TEXTURE_2D, uint32(id))
	var internal int32
	gl.GetTexLevelParameteriv(gl.TEXTURE_2D, 0, gl.TEXTURE_INTERNAL_FORMAT, &internal)
	pixFormat := uint32(gl.RGBA)
	if internal == gl.R8 || internal == gl.R32F {
		pixFormat = gl.RED
	}
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(r.X), int32(r.Y), int32(r.W), int32(r.H), pixFormat, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		return fmt.Errorf("upload to texture %d: gl error 0x%x", id, glErr)
	}
	return nil
}

func (b *Backend) UploadTexture1D(id graphics.TextureID, data []float32) error {
	gl.BindTexture(gl.TEXTURE_1D, uint32(id))
	gl.TexSubImage1D(gl.TEXTURE_1D, 0, 0, int32(len(data)), gl.RED, gl.FLOAT, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_1D, 0)
	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		return fmt.Errorf("upload to 1-D texture %d: gl error 0x%x", id, glErr)
	}
	return nil
}

// fbo returns a framebuffer with the texture attached, creating and caching
// it on first use.
func (b *Backend) fbo(id graphics.TextureID) (uint32, error) {
	if fbo, ok := b.fbos[id]; ok {
		return fbo, nil
	}
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, uint32(id), 0)
	if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.DeleteFramebuffers(1, &fbo)
		return 0, fmt.Errorf("framebuffer for texture %d is not complete", id)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	b.fbos[id] = fbo
	return fbo, nil
}

func (b *Backend) CopyTexture2D(src, dst graphics.TextureID, srcRect graphics.Rect, dstX, dstY int) error {
	srcFBO, err := b.fbo(src)
	if err != nil {
		return err
	}
	dstFBO, err := b.fbo(dst)
	if err != nil {
		return err
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, srcFBO)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, dstFBO)
	gl.BlitFramebuffer(
		int32(srcRect.X), int32(srcRect.Y), int32(srcRect.X+srcRect.W), int32(srcRect.Y+srcRect.H),
		int32(dstX), int32(dstY), int32(dstX+srcRect.W), int32(dstY+srcRect.H),
		gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		return fmt.Errorf("blit texture %d -> %d: gl error 0x%x", src, dst, glErr)
	}
	return nil
}

func (b *Backend) ReadTexture2D(id graphics.TextureID, width, height int) ([]byte, error) {
	fbo, err := b.fbo(id)
	if err != nil {
		return nil, err
	}
	pixels := make([]byte, width*height*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fbo)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		return nil, fmt.Errorf("read back texture %d: gl error 0x%x", id, glErr)
	}
	return pixels, nil
}

func (b *Backend) ClearTexture(id graphics.TextureID, color [4]float32) error {
	fbo, err := b.fbo(id)
	if err != nil {
		return err
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

func (b *Backend) DeleteTexture(id graphics.TextureID) {
	if fbo, ok := b.fbos[id]; ok {
		gl.DeleteFramebuffers(1, &fbo)
		delete(b.fbos, id)
	}
	tex := uint32(id)
	gl.DeleteTextures(1, &tex)
}

func (b *Backend) CompileProgram(vertexSrc, fragmentSrc string) (graphics.ProgramID, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))
		return 0, fmt.Errorf("failed to link program: %v", infoLog)
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)
	return graphics.ProgramID(program), nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}

func (b *Backend) DeleteProgram(id graphics.ProgramID) {
	gl.DeleteProgram(uint32(id))
}

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// NewQuadBuffer creates the full-screen quad every draw call runs over. The
// returned ID is the vertex array object.
func (b *Backend) NewQuadBuffer() (graphics.BufferID, error) {
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		return 0, fmt.Errorf("create quad buffer: gl error 0x%x", glErr)
	}
	return graphics.BufferID(vao), nil
}

func (b *Backend) DeleteBuffer(id graphics.BufferID) {
	vao := uint32(id)
	gl.DeleteVertexArrays(1, &vao)
}

func (b *Backend) Draw(op graphics.DrawOp) error {
	if op.Target != nil {
		fbo, err := b.fbo(op.Target.ID())
		if err != nil {
			return err
		}
		gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}

	gl.Viewport(0, 0, int32(op.Width), int32(op.Height))
	if op.Clear {
		gl.ClearColor(0, 0, 0, 0)
		gl.Clear(gl.COLOR_BUFFER_BIT)
	}
	if op.Blend {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}

	gl.UseProgram(uint32(op.Program))
	unit := uint32(0)
	for name, u := range op.Uniforms {
		loc := gl.GetUniformLocation(uint32(op.Program), gl.Str(name+"\x00"))
		if loc == -1 {
			continue
		}
		switch u.Kind {
		case graphics.UniformFloat:
			gl.Uniform1f(loc, u.Float)
		case graphics.UniformVec2:
			gl.Uniform2f(loc, u.Vec2[0], u.Vec2[1])
		case graphics.UniformVec4:
			gl.Uniform4f(loc, u.Vec4[0], u.Vec4[1], u.Vec4[2], u.Vec4[3])
		case graphics.UniformSampler1D:
			gl.ActiveTexture(gl.TEXTURE0 + unit)
			gl.BindTexture(gl.TEXTURE_1D, uint32(u.Texture.ID()))
			gl.Uniform1i(loc, int32(unit))
			unit++
		case graphics.UniformSampler2D:
			gl.ActiveTexture(gl.TEXTURE0 + unit)
			gl.BindTexture(gl.TEXTURE_2D, uint32(u.Texture.ID()))
			gl.Uniform1i(loc, int32(unit))
			unit++
		}
	}

	gl.BindVertexArray(uint32(op.Buffer))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		return fmt.Errorf("draw: gl error 0x%x", glErr)
	}
	return nil
}

func (b *Backend) FramebufferSize() (int, int) {
	return b.window.FramebufferSize()
}

func (b *Backend) SwapBuffers() {
	b.window.SwapBuffers()
}
