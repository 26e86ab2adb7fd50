package graph

import (
	"log"
	"strings"
)

// Graph owns the nodes of one pipeline, keyed by name, and evaluates them
// once per frame in topological order over the strong (non-feedback) edges.
// Nodes never hold references to each other; every cross-node lookup goes
// through the graph, which makes a reload a container swap.
type Graph struct {
	names  []string // declaration order
	index  map[string]int
	specs  []NodeSpec
	nodes  []Node
	order  []int // topological order of strong edges, declaration-order ties
	output int   // index of the output node

	frame map[string]Outputs // outputs of the frame being (or just) evaluated
}

// New validates the configuration and instantiates the nodes. It either
// returns a usable graph or a configuration/resource error naming the first
// violating node or edge.
func New(specs []NodeSpec) (*Graph, error) {
	g := &Graph{
		index:  make(map[string]int, len(specs)),
		specs:  specs,
		output: -1,
	}

	for i, s := range specs {
		if s.Name == "" {
			return nil, Errorf(ErrConfiguration, "", "node %d has an empty name", i)
		}
		if _, dup := g.index[s.Name]; dup {
			return nil, Errorf(ErrConfiguration, s.Name, "duplicate node name %q", s.Name)
		}
		g.index[s.Name] = i
		g.names = append(g.names, s.Name)
		if s.Kind == NodeOutput {
			if g.output >= 0 {
				return nil, Errorf(ErrConfiguration, s.Name, "more than one output node (%q and %q)", g.names[g.output], s.Name)
			}
			g.output = i
		}
	}
	if g.output < 0 {
		return nil, Errorf(ErrConfiguration, "", "no output node declared")
	}

	if err := g.checkConnections(); err != nil {
		return nil, err
	}

	order, err := g.sort()
	if err != nil {
		return nil, err
	}
	g.order = order

	g.nodes = make([]Node, len(specs))
	for _, i := range g.order {
		node, err := g.specs[i].Build()
		if err != nil {
			g.destroyPartial()
			return nil, Wrap(ErrResource, g.names[i], err)
		}
		g.nodes[i] = node
		if g.specs[i].Kind == NodeFeedback {
			if _, ok := node.(Feedback); !ok {
				g.destroyPartial()
				return nil, Errorf(ErrConfiguration, g.names[i], "feedback node does not implement the feedback contract")
			}
		}
	}
	return g, nil
}

// checkConnections resolves every edge and type-checks it against the
// destination slot.
func (g *Graph) checkConnections() error {
	for i := range g.specs {
		dst := &g.specs[i]
		connected := make(map[string]bool, len(dst.Inputs))
		for _, c := range dst.Inputs {
			srcIdx, ok := g.index[c.Source]
			if !ok {
				return Errorf(ErrConfiguration, dst.Name, "input %q references unknown node %q", c.Slot, c.Source)
			}
			src := &g.specs[srcIdx]
			if src.Kind == NodeOutput {
				return Errorf(ErrConfiguration, dst.Name, "output node %q cannot feed other nodes", c.Source)
			}
			portKind, ok := src.Outputs[c.Port]
			if !ok {
				return Errorf(ErrConfiguration, dst.Name, "node %q has no output port %q", c.Source, c.Port)
			}
			slot, ok := dst.slot(c.Slot)
			if !ok {
				return Errorf(ErrConfiguration, dst.Name, "no input slot %q", c.Slot)
			}
			if dst.Kind == NodeFeedback && slot.Kind == KindAny {
				return Errorf(ErrConfiguration, dst.Name, "feedback slot %q must declare a concrete type", c.Slot)
			}
			if slot.Kind != KindAny && slot.Kind != portKind {
				return Errorf(ErrConfiguration, dst.Name,
					"input %q expects %s but %s.%s produces %s",
					c.Slot, slot.Kind, c.Source, c.Port, portKind)
			}
			connected[c.Slot] = true
		}
		for _, slot := range dst.Slots {
			if slot.Required && !connected[slot.Name] {
				return Errorf(ErrConfiguration, dst.Name, "required input %q is not connected", slot.Name)
			}
		}
	}
	return nil
}

// strongEdges returns adjacency and indegree over the connection graph with
// feedback-destination edges removed.
func (g *Graph) strongEdges() (adj [][]int, indegree []int) {
	adj = make([][]int, len(g.specs))
	indegree = make([]int, len(g.specs))
	for i := range g.specs {
		if g.specs[i].Kind == NodeFeedback {
			continue // edges into a feedback node break the cycle
		}
		for _, c := range g.specs[i].Inputs {
			src := g.index[c.Source]
			adj[src] = append(adj[src], i)
			indegree[i]++
		}
	}
	return adj, indegree
}

// sort runs Kahn's algorithm over the strong edges. Ties are broken by
// declaration order so evaluation is deterministic.
func (g *Graph) sort() ([]int, error) {
	adj, indegree := g.strongEdges()
	done := make([]bool, len(g.specs))
	order := make([]int, 0, len(g.specs))
	for len(order) < len(g.specs) {
		next := -1
		for i := range g.specs {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, Errorf(ErrConfiguration, "", "%s", g.describeCycle(done))
		}
		done[next] = true
		order = append(order, next)
		for _, dst := range adj[next] {
			indegree[dst]--
		}
	}
	return order, nil
}

// describeCycle walks the strong edges among the unsorted remainder and
// reports one cycle by name.
func (g *Graph) describeCycle(done []bool) string {
	start := -1
	for i := range g.specs {
		if !done[i] {
			start = i
			break
		}
	}
	seen := make(map[int]int) // node -> position in path
	var path []int
	cur := start
	for {
		if at, ok := seen[cur]; ok {
			path = append(path[at:], cur)
			names := make([]string, len(path))
			for i, n := range path {
				names[i] = g.names[n]
			}
			return "cycle: " + strings.Join(names, " -> ")
		}
		seen[cur] = len(path)
		path = append(path, cur)
		advanced := false
		for _, c := range g.specs[cur].Inputs {
			src := g.index[c.Source]
			if !done[src] && g.specs[cur].Kind != NodeFeedback {
				cur = src
				advanced = true
				break
			}
		}
		if !advanced {
			return "cycle involving node " + g.names[start]
		}
	}
}

// Render evaluates the graph once. A frame is all-or-nothing: on the first
// node error evaluation stops, no feedback snapshots are committed, and the
// error is surfaced to the driver.
func (g *Graph) Render() error {
	frame := make(map[string]Outputs, len(g.nodes))
	for _, i := range g.order {
		spec := &g.specs[i]
		var in Inputs
		if spec.Kind != NodeFeedback {
			in = make(Inputs, len(spec.Inputs))
			for _, c := range spec.Inputs {
				src := g.index[c.Source]
				var vals Outputs
				if g.specs[src].Kind == NodeFeedback {
					vals = g.nodes[src].(Feedback).Previous()
				} else {
					vals = frame[c.Source]
				}
				v, ok := vals[c.Port]
				if !ok {
					return Errorf(ErrRuntime, spec.Name, "source %q produced no %q output", c.Source, c.Port)
				}
				in[c.Slot] = v
			}
		}
		out, err := g.nodes[i].Render(in)
		if err != nil {
			return Wrap(ErrRuntime, spec.Name, err)
		}
		frame[spec.Name] = out
	}
	g.frame = frame

	// End of frame: feedback nodes snapshot this frame's values for their
	// connected inputs so the next frame reads them as previous values.
	for i, spec := range g.specs {
		if spec.Kind != NodeFeedback {
			continue
		}
		vals := make(Outputs, len(spec.Inputs))
		for _, c := range spec.Inputs {
			if v, ok := frame[c.Source][c.Port]; ok {
				vals[c.Slot] = v
			}
		}
		g.nodes[i].(Feedback).Commit(vals)
	}
	return nil
}

// Outputs returns the named node's outputs from the last completed frame.
func (g *Graph) Outputs(node string) Outputs {
	return g.frame[node]
}

// Node returns the named node, or nil.
func (g *Graph) Node(name string) Node {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.nodes[i]
}

// OutputNode returns the graph's single output node.
func (g *Graph) OutputNode() Node {
	return g.nodes[g.output]
}

// Order returns node names in evaluation order.
func (g *Graph) Order() []string {
	names := make([]string, len(g.order))
	for i, n := range g.order {
		names[i] = g.names[n]
	}
	return names
}

// Resize informs every node of the new framebuffer dimensions: nodes with
// framebuffer-sized textures reallocate via Resizer, nodes with event
// mailboxes get a resize event to drain on their next render.
func (g *Graph) Resize(width, height int) {
	for _, n := range g.nodes {
		if r, ok := n.(Resizer); ok {
			r.Resize(width, height)
		}
	}
	g.PostEvent(Event{Kind: EventResize, Width: width, Height: height})
}

// PostEvent delivers ev to every node mailbox without blocking.
func (g *Graph) PostEvent(ev Event) {
	for i, n := range g.nodes {
		if sink, ok := n.(EventSink); ok {
			select {
			case sink.Events() <- ev:
			default:
				log.Printf("dropping event for node %q: mailbox full", g.names[i])
			}
		}
	}
}

// PostPointer delivers a pointer event to every pointer sink without
// blocking.
func (g *Graph) PostPointer(ev PointerEvent) {
	for i, n := range g.nodes {
		if sink, ok := n.(PointerSink); ok {
			select {
			case sink.Pointer() <- ev:
			default:
				log.Printf("dropping pointer event for node %q: mailbox full", g.names[i])
			}
		}
	}
}

// Destroy releases every node's resources, dropping all texture references.
func (g *Graph) Destroy() {
	for _, n := range g.nodes {
		if n != nil {
			n.Destroy()
		}
	}
	g.nodes = nil
	g.frame = nil
}

func (g *Graph) destroyPartial() {
	for _, n := range g.nodes {
		if n != nil {
			n.Destroy()
		}
	}
	g.nodes = nil
}
