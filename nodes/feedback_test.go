package nodes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimmerfx/glimmer/graph"
	"github.com/glimmerfx/glimmer/graphics"
	"github.com/glimmerfx/glimmer/graphics/graphicstest"
	"github.com/glimmerfx/glimmer/nodes"
)

func TestFeedbackSeedsEverySlotKind(t *testing.T) {
	backend := graphicstest.New(64, 64)
	env := testEnv(backend)
	f, err := nodes.NewFeedback(env, []graph.Slot{
		{Name: "c", Kind: graph.KindColor},
		{Name: "f", Kind: graph.KindFloat},
		{Name: "v2", Kind: graph.KindFloat2},
		{Name: "v4", Kind: graph.KindFloat4},
		{Name: "s", Kind: graph.KindText},
		{Name: "t2", Kind: graph.KindTexture2D},
		{Name: "t1", Kind: graph.KindTexture1D},
	})
	require.NoError(t, err)
	defer f.Destroy()

	prev := f.Previous()
	assert.Equal(t, graph.Color{}, prev["c"])
	assert.Equal(t, graph.Float(0), prev["f"])
	assert.Equal(t, graph.Text(""), prev["s"])

	seed := graph.TextureOf(prev["t2"])
	require.NotNil(t, seed)
	assert.Equal(t, 1, seed.Width())
	assert.Equal(t, 1, seed.Height())
	assert.True(t, backend.Alive(seed.ID()))

	oneD := graph.TextureOf(prev["t1"])
	require.NotNil(t, oneD)
	assert.True(t, oneD.OneD())
}

func TestFeedbackCommitRetainsAndReleases(t *testing.T) {
	backend := graphicstest.New(64, 64)
	env := testEnv(backend)
	f, err := nodes.NewFeedback(env, []graph.Slot{{Name: "prev", Kind: graph.KindTexture2D}})
	require.NoError(t, err)

	seed := graph.TextureOf(f.Previous()["prev"])

	frame1, err := graphics.NewTexture2D(backend, 4, 4, graphics.FormatRGBA8)
	require.NoError(t, err)
	f.Commit(graph.Outputs{"prev": graph.Texture2D{Tex: frame1}})

	assert.False(t, backend.Alive(seed.ID()), "the seed is released on first commit")
	assert.Equal(t, frame1, graph.TextureOf(f.Previous()["prev"]))

	// Drop the producer's reference; the snapshot keeps the texture alive.
	frame1.Release()
	assert.True(t, backend.Alive(frame1.ID()))

	frame2, err := graphics.NewTexture2D(backend, 4, 4, graphics.FormatRGBA8)
	require.NoError(t, err)
	f.Commit(graph.Outputs{"prev": graph.Texture2D{Tex: frame2}})
	assert.False(t, backend.Alive(frame1.ID()))

	f.Destroy()
	assert.True(t, backend.Alive(frame2.ID()), "the producer's reference survives Destroy")
	frame2.Release()
	assert.False(t, backend.Alive(frame2.ID()))
}

func TestFeedbackRecommitSameHandle(t *testing.T) {
	backend := graphicstest.New(64, 64)
	env := testEnv(backend)
	f, err := nodes.NewFeedback(env, []graph.Slot{{Name: "prev", Kind: graph.KindTexture2D}})
	require.NoError(t, err)
	defer f.Destroy()

	tex, err := graphics.NewTexture2D(backend, 4, 4, graphics.FormatRGBA8)
	require.NoError(t, err)
	defer tex.Release()

	f.Commit(graph.Outputs{"prev": graph.Texture2D{Tex: tex}})
	f.Commit(graph.Outputs{"prev": graph.Texture2D{Tex: tex}})
	assert.True(t, backend.Alive(tex.ID()))
}

func TestFeedbackRenderEmitsStoredValues(t *testing.T) {
	env := testEnv(graphicstest.New(64, 64))
	f, err := nodes.NewFeedback(env, []graph.Slot{{Name: "gain", Kind: graph.KindFloat}})
	require.NoError(t, err)
	defer f.Destroy()

	out := render(t, f, nil)
	assert.Equal(t, graph.Float(0), out["gain"])

	f.Commit(graph.Outputs{"gain": graph.Float(2)})
	out = render(t, f, nil)
	assert.Equal(t, graph.Float(2), out["gain"])
}
