package nodes

import (
	"fmt"

	"github.com/glimmerfx/glimmer/graph"
	"github.com/glimmerfx/glimmer/graphics"
)

// FeedbackState holds last frame's values for its declared slots. It emits
// the stored values before its sources run and snapshots their new values
// after the frame commits, which is what lets the graph evaluate cycles.
// Texture slots start as 1x1 transparent black so frame 0 consumers see a
// defined value.
type FeedbackState struct {
	values graph.Outputs
}

func NewFeedback(env *Env, slots []graph.Slot) (*FeedbackState, error) {
	n := &FeedbackState{values: make(graph.Outputs, len(slots))}
	for _, s := range slots {
		v, err := seedValue(env, s.Kind)
		if err != nil {
			n.Destroy()
			return nil, fmt.Errorf("slot %q: %w", s.Name, err)
		}
		n.values[s.Name] = v
	}
	return n, nil
}

// seedValue builds the frame-0 value for a slot kind.
func seedValue(env *Env, k graph.ValueKind) (graph.Value, error) {
	switch k {
	case graph.KindColor:
		return graph.Color{}, nil
	case graph.KindFloat:
		return graph.Float(0), nil
	case graph.KindFloat2:
		return graph.Float2{}, nil
	case graph.KindFloat4:
		return graph.Float4{}, nil
	case graph.KindText:
		return graph.Text(""), nil
	case graph.KindTexture2D:
		t, err := graphics.NewTexture2D(env.Backend, 1, 1, graphics.FormatRGBA8)
		if err != nil {
			return nil, err
		}
		if err := t.Upload(graphics.Rect{W: 1, H: 1}, []byte{0, 0, 0, 0}); err != nil {
			t.Release()
			return nil, err
		}
		return graph.Texture2D{Tex: t}, nil
	case graph.KindTexture1D:
		t, err := graphics.NewTexture1D(env.Backend, 1, graphics.FormatR32F)
		if err != nil {
			return nil, err
		}
		if err := env.Backend.UploadTexture1D(t.ID(), []float32{0}); err != nil {
			t.Release()
			return nil, err
		}
		return graph.Texture1D{Tex: t}, nil
	}
	return nil, fmt.Errorf("no seed value for kind %s", k)
}

func (n *FeedbackState) Render(graph.Inputs) (graph.Outputs, error) {
	out := make(graph.Outputs, len(n.values))
	for name, v := range n.values {
		out[name] = v
	}
	return out, nil
}

// Previous returns the snapshot from the last committed frame.
func (n *FeedbackState) Previous() graph.Outputs { return n.values }

// Commit replaces the stored values with this frame's. New textures are
// retained before old ones release, so recommitting the same handle is a
// no-op.
func (n *FeedbackState) Commit(values graph.Outputs) {
	for name, v := range values {
		if t := graph.TextureOf(v); t != nil {
			t.Retain()
		}
		if old, ok := n.values[name]; ok {
			if t := graph.TextureOf(old); t != nil {
				t.Release()
			}
		}
		n.values[name] = v
	}
}

func (n *FeedbackState) Destroy() {
	for _, v := range n.values {
		if t := graph.TextureOf(v); t != nil {
			t.Release()
		}
	}
	n.values = nil
}
