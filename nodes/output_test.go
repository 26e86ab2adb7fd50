package nodes_test

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimmerfx/glimmer/graph"
	"github.com/glimmerfx/glimmer/graphics"
	"github.com/glimmerfx/glimmer/graphics/graphicstest"
	"github.com/glimmerfx/glimmer/nodes"
)

func TestOutputPresentsToDefaultFramebuffer(t *testing.T) {
	backend := graphicstest.New(640, 360)
	env := testEnv(backend)
	out, err := nodes.NewOutput(env)
	require.NoError(t, err)
	defer out.Destroy()

	tex, err := graphics.NewTexture2D(backend, 640, 360, graphics.FormatRGBA32F)
	require.NoError(t, err)
	defer tex.Release()

	res := render(t, out, graph.Inputs{"texture": graph.Texture2D{Tex: tex}})
	assert.Empty(t, res, "the output node has no output ports")

	op := backend.LastDraw()
	assert.Nil(t, op.Target, "present draws to the default framebuffer")
	assert.Equal(t, 640, op.Width)
	assert.Equal(t, graphics.UniformSampler2D, op.Uniforms["u_texture"].Kind)
	assert.Equal(t, 1, backend.Swaps)

	assert.Equal(t, tex, out.LastFrame())
}

func TestOutputRetainsLastFrameForReadback(t *testing.T) {
	backend := graphicstest.New(64, 64)
	env := testEnv(backend)
	out, err := nodes.NewOutput(env)
	require.NoError(t, err)

	tex, err := graphics.NewTexture2D(backend, 64, 64, graphics.FormatRGBA8)
	require.NoError(t, err)
	render(t, out, graph.Inputs{"texture": graph.Texture2D{Tex: tex}})

	tex.Release()
	assert.True(t, backend.Alive(tex.ID()), "the presented frame stays readable")

	next, err := graphics.NewTexture2D(backend, 64, 64, graphics.FormatRGBA8)
	require.NoError(t, err)
	defer next.Release()
	render(t, out, graph.Inputs{"texture": graph.Texture2D{Tex: next}})
	assert.False(t, backend.Alive(tex.ID()), "presenting a new frame drops the old one")

	out.Destroy()
	assert.True(t, backend.Alive(next.ID()))
}

func TestOutputRequiresTextureInput(t *testing.T) {
	env := testEnv(graphicstest.New(64, 64))
	out, err := nodes.NewOutput(env)
	require.NoError(t, err)
	defer out.Destroy()

	_, err = out.Render(graph.Inputs{})
	require.Error(t, err)
}

func TestOutputSnapshotWritesTopDownPNG(t *testing.T) {
	backend := graphicstest.New(1, 2)
	env := testEnv(backend)
	out, err := nodes.NewOutput(env)
	require.NoError(t, err)
	defer out.Destroy()

	tex, err := graphics.NewTexture2D(backend, 1, 2, graphics.FormatRGBA8)
	require.NoError(t, err)
	defer tex.Release()
	// Row 0 (bottom) red, row 1 (top) blue.
	require.NoError(t, tex.Upload(graphics.Rect{W: 1, H: 2}, []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}))

	render(t, out, graph.Inputs{"texture": graph.Texture2D{Tex: tex}})

	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, out.Snapshot(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	r, _, b, _ := img.At(0, 0).RGBA()
	assert.Zero(t, r>>8)
	assert.EqualValues(t, 255, b>>8, "the texture's top row becomes the image's top row")

	r, _, b, _ = img.At(0, 1).RGBA()
	assert.EqualValues(t, 255, r>>8)
	assert.Zero(t, b>>8)
}

func TestOutputSnapshotBeforeFirstFrame(t *testing.T) {
	env := testEnv(graphicstest.New(64, 64))
	out, err := nodes.NewOutput(env)
	require.NoError(t, err)
	defer out.Destroy()

	err = out.Snapshot(filepath.Join(t.TempDir(), "never.png"))
	require.Error(t, err)
}
