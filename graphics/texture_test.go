package graphics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimmerfx/glimmer/graphics"
	"github.com/glimmerfx/glimmer/graphics/graphicstest"
)

func TestTextureReleasedAtZeroReferences(t *testing.T) {
	backend := graphicstest.New(64, 64)
	tex, err := graphics.NewTexture2D(backend, 8, 8, graphics.FormatRGBA8)
	require.NoError(t, err)
	assert.True(t, backend.Alive(tex.ID()))

	tex.Retain()
	tex.Release()
	assert.True(t, backend.Alive(tex.ID()), "one reference remains")

	tex.Release()
	assert.False(t, backend.Alive(tex.ID()))
}

func TestNilTextureReleaseIsSafe(t *testing.T) {
	var tex *graphics.Texture
	assert.NotPanics(t, func() { tex.Release() })
}

func TestTextureUpload(t *testing.T) {
	backend := graphicstest.New(64, 64)
	tex, err := graphics.NewTexture2D(backend, 2, 2, graphics.FormatRGBA8)
	require.NoError(t, err)

	require.NoError(t, tex.Upload(graphics.Rect{X: 1, Y: 1, W: 1, H: 1}, []byte{9, 9, 9, 9}))
	pix := backend.Pixels(tex.ID())
	assert.Equal(t, []byte{9, 9, 9, 9}, pix[(1*2+1)*4:(1*2+1)*4+4])
	assert.Equal(t, byte(0), pix[0])
}

func TestTexture1DMetadata(t *testing.T) {
	backend := graphicstest.New(64, 64)
	tex, err := graphics.NewTexture1D(backend, 128, graphics.FormatR32F)
	require.NoError(t, err)
	assert.True(t, tex.OneD())
	assert.Equal(t, 128, tex.Width())
	assert.Equal(t, 1, tex.Height())
}

func TestTexture1DUploadRoundTrip(t *testing.T) {
	backend := graphicstest.New(64, 64)
	tex, err := graphics.NewTexture1D(backend, 4, graphics.FormatR32F)
	require.NoError(t, err)

	require.NoError(t, backend.UploadTexture1D(tex.ID(), []float32{0.1, 0.5, 0.9, 1}))
	assert.Equal(t, []float32{0.1, 0.5, 0.9, 1}, backend.Texels(tex.ID()))

	err = backend.UploadTexture1D(tex.ID(), make([]float32, 5))
	require.Error(t, err, "uploads longer than the texture are rejected")
}
