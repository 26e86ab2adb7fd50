// Package nodes implements the node kinds the graph evaluates and the
// factory that turns configuration entries into graph.NodeSpec values. The
// construction environment (backend, quad, clocks) is captured in Build
// closures so the graph package never sees a GPU type.
package nodes

import (
	"fmt"
	"strings"

	"github.com/glimmerfx/glimmer/config"
	"github.com/glimmerfx/glimmer/graph"
	"github.com/glimmerfx/glimmer/shader"
)

// Specs translates every configured node into a buildable spec, preserving
// declaration order.
func Specs(cfg *config.Config, env *Env) ([]graph.NodeSpec, error) {
	specs := make([]graph.NodeSpec, 0, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		spec, err := Spec(n, env)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Spec builds one node's spec: its typed output ports, its input slots and
// wiring, and a constructor closure over env.
func Spec(n config.Node, env *Env) (graph.NodeSpec, error) {
	kind, err := graph.ParseNodeKind(n.Type)
	if err != nil {
		return graph.NodeSpec{}, graph.Wrap(graph.ErrConfiguration, n.Name, err)
	}
	spec := graph.NodeSpec{Name: n.Name, Kind: kind}

	switch kind {
	case graph.NodeInfo:
		spec.Outputs = map[string]graph.ValueKind{
			"time":       graph.KindFloat,
			"resolution": graph.KindFloat2,
			"pointer":    graph.KindFloat4,
		}
		spec.Build = func() (graph.Node, error) { return NewInfo(env), nil }

	case graph.NodeImage:
		path := n.Path
		spec.Outputs = map[string]graph.ValueKind{"texture": graph.KindTexture2D}
		spec.Build = func() (graph.Node, error) { return NewImage(env, path) }

	case graph.NodeShader:
		for _, in := range n.ShaderInputs {
			if in.Name == "" {
				return graph.NodeSpec{}, graph.Errorf(graph.ErrConfiguration, n.Name,
					"shader input from %s.%s has no uniform name", in.Node, in.Port)
			}
			spec.Slots = append(spec.Slots, graph.Slot{Name: in.Name, Kind: graph.KindAny, Required: true})
			spec.Inputs = append(spec.Inputs, graph.Connection{Source: in.Node, Port: in.Port, Slot: in.Name})
		}
		vertex, fragment := n.Vertex, n.Fragment
		spec.Outputs = map[string]graph.ValueKind{"texture": graph.KindTexture2D}
		spec.Build = func() (graph.Node, error) { return NewShader(env, vertex, fragment) }

	case graph.NodeBlend:
		if len(n.BlendInputs) == 0 {
			return graph.NodeSpec{}, graph.Errorf(graph.ErrConfiguration, n.Name, "blend node has no inputs")
		}
		op, err := shader.ParseBlendOp(n.Operation)
		if err != nil {
			return graph.NodeSpec{}, graph.Wrap(graph.ErrConfiguration, n.Name, err)
		}
		count := len(n.BlendInputs)
		for i, ref := range n.BlendInputs {
			src, port := splitRef(ref)
			slot := fmt.Sprintf("input%d", i)
			spec.Slots = append(spec.Slots, graph.Slot{Name: slot, Kind: graph.KindTexture2D, Required: true})
			spec.Inputs = append(spec.Inputs, graph.Connection{Source: src, Port: port, Slot: slot})
		}
		spec.Outputs = map[string]graph.ValueKind{"texture": graph.KindTexture2D}
		spec.Build = func() (graph.Node, error) { return NewBlend(env, op, count) }

	case graph.NodeText:
		p := n
		spec.Outputs = map[string]graph.ValueKind{"texture": graph.KindTexture2D}
		spec.Build = func() (graph.Node, error) {
			return NewText(env, p.Text, p.Position, p.Color, p.FontName, p.FontSize)
		}

	case graph.NodeFPS:
		p := n
		spec.Outputs = map[string]graph.ValueKind{"texture": graph.KindTexture2D}
		spec.Build = func() (graph.Node, error) {
			return NewFPS(env, p.Position, p.Color, p.FontName, p.FontSize, p.Interval)
		}

	case graph.NodeAudio:
		spec.Outputs = map[string]graph.ValueKind{"spectrum": graph.KindTexture1D}
		spec.Build = func() (graph.Node, error) { return NewAudio(env) }

	case graph.NodeFeedback:
		if len(n.FeedbackInputs) == 0 {
			return graph.NodeSpec{}, graph.Errorf(graph.ErrConfiguration, n.Name, "feedback node has no inputs")
		}
		spec.Outputs = make(map[string]graph.ValueKind, len(n.FeedbackInputs))
		for _, in := range n.FeedbackInputs {
			vk, err := graph.ParseValueKind(in.Type)
			if err != nil {
				return graph.NodeSpec{}, graph.Wrap(graph.ErrConfiguration, n.Name, err)
			}
			if in.Node == "" {
				return graph.NodeSpec{}, graph.Errorf(graph.ErrConfiguration, n.Name,
					"feedback input %q has no source node", in.Name)
			}
			spec.Slots = append(spec.Slots, graph.Slot{Name: in.Name, Kind: vk, Required: true})
			spec.Inputs = append(spec.Inputs, graph.Connection{Source: in.Node, Port: in.Port, Slot: in.Name})
			spec.Outputs[in.Name] = vk
		}
		slots := spec.Slots
		spec.Build = func() (graph.Node, error) { return NewFeedback(env, slots) }

	case graph.NodeOutput:
		if len(n.BlendInputs) != 1 {
			return graph.NodeSpec{}, graph.Errorf(graph.ErrConfiguration, n.Name,
				"output node needs exactly one input, got %d", len(n.BlendInputs))
		}
		src, port := splitRef(n.BlendInputs[0])
		spec.Slots = []graph.Slot{{Name: "texture", Kind: graph.KindTexture2D, Required: true}}
		spec.Inputs = []graph.Connection{{Source: src, Port: port, Slot: "texture"}}
		spec.Build = func() (graph.Node, error) { return NewOutput(env) }
	}
	return spec, nil
}

// splitRef resolves a "node" or "node.port" reference; a bare node name
// means its "texture" port.
func splitRef(ref string) (node, port string) {
	if i := strings.LastIndex(ref, "."); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, "texture"
}
