package nodes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimmerfx/glimmer/config"
	"github.com/glimmerfx/glimmer/graph"
	"github.com/glimmerfx/glimmer/graphics"
	"github.com/glimmerfx/glimmer/graphics/graphicstest"
	"github.com/glimmerfx/glimmer/nodes"
	"github.com/glimmerfx/glimmer/options"
)

func buildGraph(t *testing.T, cfg *config.Config, env *nodes.Env) *graph.Graph {
	t.Helper()
	specs, err := nodes.Specs(cfg, env)
	require.NoError(t, err)
	g, err := graph.New(specs)
	require.NoError(t, err)
	return g
}

func TestDefaultPipelineRendersAndPresents(t *testing.T) {
	backend := graphicstest.New(640, 360)
	env := testEnv(backend)
	frag := writeTempFile(t, "plasma.frag", []byte(dummyFragment))

	cfg, err := config.FromOptions(&options.Options{Fragment: frag, ShowFPS: true})
	require.NoError(t, err)
	g := buildGraph(t, cfg, env)
	defer g.Destroy()

	assert.Equal(t, []string{"info", "shader", "fps", "mix", "output"}, g.Order())

	require.NoError(t, g.Render())
	assert.Equal(t, 1, backend.Swaps)

	// The shader saw the info node's ambient uniforms.
	var shaderDraw graphics.DrawOp
	for _, op := range backend.Draws {
		if _, ok := op.Uniforms["resolution"]; ok {
			shaderDraw = op
		}
	}
	assert.Equal(t, graphics.Vec2Uniform([2]float32{640, 360}), shaderDraw.Uniforms["resolution"])
	assert.Contains(t, shaderDraw.Uniforms, "time")
	assert.Contains(t, shaderDraw.Uniforms, "pointer")

	// The present pass targets the default framebuffer.
	assert.Nil(t, backend.LastDraw().Target)
}

func TestBlendSpecWiresNumberedSlots(t *testing.T) {
	backend := graphicstest.New(64, 64)
	env := testEnv(backend)
	frag := writeTempFile(t, "s.frag", []byte(dummyFragment))

	cfg := &config.Config{Nodes: []config.Node{
		{Name: "a", Type: "shader", Fragment: frag},
		{Name: "b", Type: "shader", Fragment: frag},
		{Name: "mix", Type: "blend", Operation: "add", BlendInputs: []string{"a", "b"}},
		{Name: "out", Type: "output", BlendInputs: []string{"mix"}},
	}}
	g := buildGraph(t, cfg, env)
	defer g.Destroy()

	require.NoError(t, g.Render())

	var blendDraw graphics.DrawOp
	for _, op := range backend.Draws {
		if _, ok := op.Uniforms["input0"]; ok {
			blendDraw = op
		}
	}
	require.Contains(t, blendDraw.Uniforms, "input1")
	src := backend.FragmentSource(blendDraw.Program)
	assert.Contains(t, src, "uniform sampler2D input1;")
	assert.Contains(t, src, "color + texture(input1, frag_uv)")
}

func TestFeedbackPipelineDelaysOneFrame(t *testing.T) {
	backend := graphicstest.New(64, 64)
	env := testEnv(backend)
	frag := writeTempFile(t, "echo.frag", []byte(dummyFragment))

	cfg := &config.Config{Nodes: []config.Node{
		{Name: "f", Type: "feedback", FeedbackInputs: []config.FeedbackInput{
			{Name: "prev", Type: "texture_2d", Node: "s", Port: "texture"},
		}},
		{Name: "s", Type: "shader", Fragment: frag, ShaderInputs: []config.ShaderInput{
			{Node: "f", Port: "prev", Name: "prev"},
		}},
		{Name: "out", Type: "output", BlendInputs: []string{"s"}},
	}}
	g := buildGraph(t, cfg, env)
	defer g.Destroy()

	shaderDraw := func() graphics.DrawOp {
		for _, op := range backend.Draws {
			if _, ok := op.Uniforms["prev"]; ok {
				return op
			}
		}
		t.Fatal("no shader draw recorded")
		return graphics.DrawOp{}
	}

	require.NoError(t, g.Render())
	frame1 := shaderDraw()
	seed := frame1.Uniforms["prev"].Texture
	require.NotNil(t, seed)
	assert.Equal(t, 1, seed.Width(), "frame 0 reads the 1x1 seed")
	frame1Target := frame1.Target

	backend.Draws = nil
	require.NoError(t, g.Render())
	frame2 := shaderDraw()
	assert.Equal(t, frame1Target, frame2.Uniforms["prev"].Texture,
		"frame N reads frame N-1's shader output")
	assert.False(t, backend.Alive(seed.ID()), "the seed is dropped after the first commit")
}

func TestFeedbackSurvivesGraphTeardown(t *testing.T) {
	backend := graphicstest.New(64, 64)
	env := testEnv(backend)
	frag := writeTempFile(t, "echo.frag", []byte(dummyFragment))

	cfg := &config.Config{Nodes: []config.Node{
		{Name: "f", Type: "feedback", FeedbackInputs: []config.FeedbackInput{
			{Name: "prev", Type: "texture_2d", Node: "s", Port: "texture"},
		}},
		{Name: "s", Type: "shader", Fragment: frag, ShaderInputs: []config.ShaderInput{
			{Node: "f", Port: "prev", Name: "prev"},
		}},
		{Name: "out", Type: "output", BlendInputs: []string{"s"}},
	}}
	g := buildGraph(t, cfg, env)
	require.NoError(t, g.Render())
	require.NoError(t, g.Render())
	g.Destroy()

	for id := graphics.TextureID(1); id <= 64; id++ {
		assert.False(t, backend.Alive(id), "texture %d leaked past Destroy", id)
	}
}

func TestSpecRejectsBadConfigurations(t *testing.T) {
	env := testEnv(graphicstest.New(64, 64))

	cases := map[string]config.Node{
		"unknown type":         {Name: "x", Type: "warp"},
		"blend without inputs": {Name: "x", Type: "blend", Operation: "max"},
		"blend bad operation":  {Name: "x", Type: "blend", Operation: "xor", BlendInputs: []string{"a"}},
		"output without input": {Name: "x", Type: "output"},
		"output two inputs":    {Name: "x", Type: "output", BlendInputs: []string{"a", "b"}},
		"feedback no inputs":   {Name: "x", Type: "feedback"},
		"feedback bad type":    {Name: "x", Type: "feedback", FeedbackInputs: []config.FeedbackInput{{Name: "p", Type: "texture_3d"}}},
		"shader unnamed input": {Name: "x", Type: "shader", Fragment: "a.frag", ShaderInputs: []config.ShaderInput{{Node: "a", Port: "texture"}}},
	}
	for name, node := range cases {
		_, err := nodes.Spec(node, env)
		require.Error(t, err, name)
		assert.Equal(t, graph.ErrConfiguration, graph.KindOf(err), name)
	}
}

func TestSpecAcceptsDottedReferences(t *testing.T) {
	env := testEnv(graphicstest.New(64, 64))
	spec, err := nodes.Spec(config.Node{
		Name: "out", Type: "output", BlendInputs: []string{"mix.texture"},
	}, env)
	require.NoError(t, err)
	require.Len(t, spec.Inputs, 1)
	assert.Equal(t, "mix", spec.Inputs[0].Source)
	assert.Equal(t, "texture", spec.Inputs[0].Port)
}
