package graph_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimmerfx/glimmer/graph"
)

// stubNode renders canned outputs and appends its name to a shared log.
type stubNode struct {
	name      string
	outputs   graph.Outputs
	renderErr error
	log       *[]string
	destroyed bool
}

func (n *stubNode) Render(graph.Inputs) (graph.Outputs, error) {
	if n.log != nil {
		*n.log = append(*n.log, n.name)
	}
	return n.outputs, n.renderErr
}

func (n *stubNode) Destroy() { n.destroyed = true }

// funcNode renders through a closure.
type funcNode struct {
	fn func(graph.Inputs) (graph.Outputs, error)
}

func (n *funcNode) Render(in graph.Inputs) (graph.Outputs, error) { return n.fn(in) }
func (n *funcNode) Destroy()                                      {}

// stubFeedback implements the feedback contract over a plain value map.
type stubFeedback struct {
	values  graph.Outputs
	commits int
}

func (f *stubFeedback) Render(graph.Inputs) (graph.Outputs, error) { return f.values, nil }
func (f *stubFeedback) Previous() graph.Outputs                    { return f.values }
func (f *stubFeedback) Destroy()                                   {}

func (f *stubFeedback) Commit(values graph.Outputs) {
	f.commits++
	for k, v := range values {
		f.values[k] = v
	}
}

// resizerNode also implements Resizer and EventSink.
type resizerNode struct {
	stubNode
	w, h int
	evs  chan graph.Event
}

func (n *resizerNode) Resize(width, height int)    { n.w, n.h = width, height }
func (n *resizerNode) Events() chan<- graph.Event { return n.evs }

func spec(name string, kind graph.NodeKind, node graph.Node) graph.NodeSpec {
	return graph.NodeSpec{
		Name: name,
		Kind: kind,
		Build: func() (graph.Node, error) {
			return node, nil
		},
	}
}

func outputSpec(source string) graph.NodeSpec {
	s := spec("out", graph.NodeOutput, &stubNode{name: "out"})
	s.Slots = []graph.Slot{{Name: "texture", Kind: graph.KindAny, Required: true}}
	s.Inputs = []graph.Connection{{Source: source, Port: "value", Slot: "texture"}}
	return s
}

func floatSource(name string, v float32) graph.NodeSpec {
	s := spec(name, graph.NodeShader, &stubNode{name: name, outputs: graph.Outputs{"value": graph.Float(v)}})
	s.Outputs = map[string]graph.ValueKind{"value": graph.KindFloat}
	return s
}

func kindOf(t *testing.T, err error) graph.ErrorKind {
	t.Helper()
	var ge *graph.Error
	require.ErrorAs(t, err, &ge)
	return ge.Kind
}

func TestNewRequiresExactlyOneOutput(t *testing.T) {
	_, err := graph.New([]graph.NodeSpec{floatSource("a", 1)})
	require.Error(t, err)
	assert.Equal(t, graph.ErrConfiguration, kindOf(t, err))
	assert.Contains(t, err.Error(), "no output node")

	specs := []graph.NodeSpec{floatSource("a", 1), outputSpec("a")}
	two := spec("out2", graph.NodeOutput, &stubNode{name: "out2"})
	two.Slots = []graph.Slot{{Name: "texture", Kind: graph.KindAny, Required: true}}
	two.Inputs = []graph.Connection{{Source: "a", Port: "value", Slot: "texture"}}
	_, err = graph.New(append(specs, two))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one output")
}

func TestNewRejectsDuplicateAndEmptyNames(t *testing.T) {
	_, err := graph.New([]graph.NodeSpec{floatSource("a", 1), floatSource("a", 2), outputSpec("a")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate node name")

	_, err = graph.New([]graph.NodeSpec{floatSource("", 1), outputSpec("")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty name")
}

func TestNewRejectsBadConnections(t *testing.T) {
	t.Run("unknown source", func(t *testing.T) {
		_, err := graph.New([]graph.NodeSpec{floatSource("a", 1), outputSpec("ghost")})
		require.Error(t, err)
		assert.Equal(t, graph.ErrConfiguration, kindOf(t, err))
		assert.Contains(t, err.Error(), `unknown node "ghost"`)
	})

	t.Run("unknown port", func(t *testing.T) {
		out := outputSpec("a")
		out.Inputs[0].Port = "nope"
		_, err := graph.New([]graph.NodeSpec{floatSource("a", 1), out})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no output port "nope"`)
	})

	t.Run("unknown slot", func(t *testing.T) {
		out := outputSpec("a")
		out.Inputs[0].Slot = "nope"
		_, err := graph.New([]graph.NodeSpec{floatSource("a", 1), out})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no input slot "nope"`)
	})

	t.Run("type mismatch", func(t *testing.T) {
		out := outputSpec("a")
		out.Slots[0].Kind = graph.KindTexture2D
		_, err := graph.New([]graph.NodeSpec{floatSource("a", 1), out})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expects texture_2d")
		assert.Contains(t, err.Error(), "produces float")
	})

	t.Run("output as source", func(t *testing.T) {
		mid := floatSource("b", 2)
		mid.Slots = []graph.Slot{{Name: "in", Kind: graph.KindAny}}
		mid.Inputs = []graph.Connection{{Source: "out", Port: "value", Slot: "in"}}
		_, err := graph.New([]graph.NodeSpec{floatSource("a", 1), mid, outputSpec("a")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot feed other nodes")
	})

	t.Run("required slot unconnected", func(t *testing.T) {
		out := outputSpec("a")
		out.Inputs = nil
		_, err := graph.New([]graph.NodeSpec{floatSource("a", 1), out})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `required input "texture" is not connected`)
	})
}

func TestEvaluationOrderBreaksTiesByDeclaration(t *testing.T) {
	var log []string
	src := func(name string) graph.NodeSpec {
		s := spec(name, graph.NodeShader, &stubNode{
			name:    name,
			outputs: graph.Outputs{"value": graph.Float(0)},
			log:     &log,
		})
		s.Outputs = map[string]graph.ValueKind{"value": graph.KindFloat}
		return s
	}
	merge := spec("m", graph.NodeBlend, &stubNode{
		name:    "m",
		outputs: graph.Outputs{"value": graph.Float(0)},
		log:     &log,
	})
	merge.Outputs = map[string]graph.ValueKind{"value": graph.KindFloat}
	merge.Slots = []graph.Slot{
		{Name: "input0", Kind: graph.KindFloat, Required: true},
		{Name: "input1", Kind: graph.KindFloat, Required: true},
	}
	merge.Inputs = []graph.Connection{
		{Source: "b", Port: "value", Slot: "input0"},
		{Source: "a", Port: "value", Slot: "input1"},
	}
	out := outputSpec("m")
	out.Inputs[0].Port = "value"

	g, err := graph.New([]graph.NodeSpec{src("a"), src("b"), merge, out})
	require.NoError(t, err)
	require.NoError(t, g.Render())

	assert.Equal(t, []string{"a", "b", "m"}, log[:3])
	assert.Equal(t, []string{"a", "b", "m", "out"}, g.Order())
}

func TestCycleDiagnosticNamesTheCycle(t *testing.T) {
	a := floatSource("a", 1)
	a.Slots = []graph.Slot{{Name: "in", Kind: graph.KindFloat}}
	a.Inputs = []graph.Connection{{Source: "b", Port: "value", Slot: "in"}}
	b := floatSource("b", 2)
	b.Slots = []graph.Slot{{Name: "in", Kind: graph.KindFloat}}
	b.Inputs = []graph.Connection{{Source: "a", Port: "value", Slot: "in"}}

	_, err := graph.New([]graph.NodeSpec{a, b, outputSpec("a")})
	require.Error(t, err)
	assert.Equal(t, graph.ErrConfiguration, kindOf(t, err))
	assert.Contains(t, err.Error(), "cycle:")
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")
}

func TestFeedbackBreaksCycleWithOneFrameDelay(t *testing.T) {
	fb := &stubFeedback{values: graph.Outputs{"prev": graph.Float(0)}}
	f := spec("f", graph.NodeFeedback, fb)
	f.Outputs = map[string]graph.ValueKind{"prev": graph.KindFloat}
	f.Slots = []graph.Slot{{Name: "prev", Kind: graph.KindFloat, Required: true}}
	f.Inputs = []graph.Connection{{Source: "s", Port: "value", Slot: "prev"}}

	s := spec("s", graph.NodeShader, &funcNode{fn: func(in graph.Inputs) (graph.Outputs, error) {
		prev := in["prev"].(graph.Float)
		return graph.Outputs{"value": prev + 1}, nil
	}})
	s.Outputs = map[string]graph.ValueKind{"value": graph.KindFloat}
	s.Slots = []graph.Slot{{Name: "prev", Kind: graph.KindFloat, Required: true}}
	s.Inputs = []graph.Connection{{Source: "f", Port: "prev", Slot: "prev"}}

	g, err := graph.New([]graph.NodeSpec{f, s, outputSpec("s")})
	require.NoError(t, err)

	for want := 1; want <= 3; want++ {
		require.NoError(t, g.Render())
		assert.Equal(t, graph.Float(want), g.Outputs("s")["value"])
	}
	assert.Equal(t, 3, fb.commits)
}

func TestFeedbackSlotsMustBeConcrete(t *testing.T) {
	fb := &stubFeedback{values: graph.Outputs{"prev": graph.Float(0)}}
	f := spec("f", graph.NodeFeedback, fb)
	f.Outputs = map[string]graph.ValueKind{"prev": graph.KindFloat}
	f.Slots = []graph.Slot{{Name: "prev", Kind: graph.KindAny, Required: true}}
	f.Inputs = []graph.Connection{{Source: "a", Port: "value", Slot: "prev"}}

	_, err := graph.New([]graph.NodeSpec{floatSource("a", 1), f, outputSpec("a")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concrete type")
}

func TestRenderErrorAbortsFrameBeforeCommit(t *testing.T) {
	fb := &stubFeedback{values: graph.Outputs{"prev": graph.Float(0)}}
	f := spec("f", graph.NodeFeedback, fb)
	f.Outputs = map[string]graph.ValueKind{"prev": graph.KindFloat}
	f.Slots = []graph.Slot{{Name: "prev", Kind: graph.KindFloat, Required: true}}
	f.Inputs = []graph.Connection{{Source: "s", Port: "value", Slot: "prev"}}

	boom := errors.New("shader exploded")
	s := spec("s", graph.NodeShader, &stubNode{name: "s", renderErr: boom})
	s.Outputs = map[string]graph.ValueKind{"value": graph.KindFloat}

	g, err := graph.New([]graph.NodeSpec{f, s, outputSpec("s")})
	require.NoError(t, err)

	err = g.Render()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, graph.ErrRuntime, kindOf(t, err))
	assert.Contains(t, err.Error(), `"s"`)
	assert.Equal(t, 0, fb.commits, "failed frames must not commit feedback")
}

func TestBuildFailureDestroysPartialGraph(t *testing.T) {
	built := &stubNode{name: "a", outputs: graph.Outputs{"value": graph.Float(0)}}
	a := spec("a", graph.NodeShader, built)
	a.Outputs = map[string]graph.ValueKind{"value": graph.KindFloat}
	bad := outputSpec("a")
	bad.Build = func() (graph.Node, error) {
		return nil, fmt.Errorf("shader compile failed")
	}

	_, err := graph.New([]graph.NodeSpec{a, bad})
	require.Error(t, err)
	assert.Equal(t, graph.ErrResource, kindOf(t, err))
	assert.True(t, built.destroyed, "nodes built before the failure must be destroyed")
}

func TestResizeReachesResizersAndMailboxes(t *testing.T) {
	r := &resizerNode{
		stubNode: stubNode{name: "a", outputs: graph.Outputs{"value": graph.Float(0)}},
		evs:      make(chan graph.Event, 4),
	}
	a := graph.NodeSpec{
		Name:    "a",
		Kind:    graph.NodeShader,
		Outputs: map[string]graph.ValueKind{"value": graph.KindFloat},
		Build:   func() (graph.Node, error) { return r, nil },
	}

	g, err := graph.New([]graph.NodeSpec{a, outputSpec("a")})
	require.NoError(t, err)

	g.Resize(1920, 1080)
	assert.Equal(t, 1920, r.w)
	assert.Equal(t, 1080, r.h)
	ev := <-r.evs
	assert.Equal(t, graph.EventResize, ev.Kind)
	assert.Equal(t, 1920, ev.Width)
}

func TestDestroyReachesEveryNode(t *testing.T) {
	a := &stubNode{name: "a", outputs: graph.Outputs{"value": graph.Float(0)}}
	o := &stubNode{name: "out"}
	as := spec("a", graph.NodeShader, a)
	as.Outputs = map[string]graph.ValueKind{"value": graph.KindFloat}
	outSpec := outputSpec("a")
	outSpec.Build = func() (graph.Node, error) { return o, nil }

	g, err := graph.New([]graph.NodeSpec{as, outSpec})
	require.NoError(t, err)
	g.Destroy()
	assert.True(t, a.destroyed)
	assert.True(t, o.destroyed)
}
