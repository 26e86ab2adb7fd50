package graph

import "fmt"

// NodeKind tags the closed set of node types. The kinds are fixed at
// configuration-parse time, so dispatch is a tag match rather than open
// polymorphism.
type NodeKind int

const (
	NodeInfo NodeKind = iota
	NodeImage
	NodeShader
	NodeBlend
	NodeText
	NodeFPS
	NodeAudio
	NodeFeedback
	NodeOutput
)

var nodeKindNames = map[NodeKind]string{
	NodeInfo:     "info",
	NodeImage:    "image",
	NodeShader:   "shader",
	NodeBlend:    "blend",
	NodeText:     "text",
	NodeFPS:      "fps",
	NodeAudio:    "audio",
	NodeFeedback: "feedback",
	NodeOutput:   "output",
}

func (k NodeKind) String() string {
	if s, ok := nodeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// ParseNodeKind maps a configuration type name to a NodeKind.
func ParseNodeKind(s string) (NodeKind, error) {
	for k, name := range nodeKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown node type %q", s)
}

// Outputs maps output-port names to the values a node produced this frame.
type Outputs map[string]Value

// Inputs maps a node's input-slot names to the values wired to them. A node
// only ever sees values from nodes it is connected to.
type Inputs map[string]Value

// Node is the uniform contract every node implements. Render is called at
// most once per frame, on the render thread, in topological order.
type Node interface {
	Render(in Inputs) (Outputs, error)
	Destroy()
}

// Resizer is implemented by nodes whose textures track the host framebuffer.
// The graph calls it when the surface changes size.
type Resizer interface {
	Resize(width, height int)
}

// EventSink is implemented by nodes that react to host events through an
// inbound mailbox filled by the driver.
type EventSink interface {
	Events() chan<- Event
}

// PointerSink is implemented by the info node, which drains pointer events
// on each Render.
type PointerSink interface {
	Pointer() chan<- PointerEvent
}

// Feedback is implemented by feedback nodes. Previous returns the stored
// snapshot from the last completed frame; Commit replaces it after the
// current frame finishes.
type Feedback interface {
	Node
	Previous() Outputs
	Commit(values Outputs)
}

// Snapshotter is implemented by the output node; it writes the last
// presented frame to an image file.
type Snapshotter interface {
	Snapshot(path string) error
}

// Connection wires a source node's output port to one of this node's input
// slots.
type Connection struct {
	Source string // source node name
	Port   string // source output port
	Slot   string // destination input-slot name
}

// Slot declares an input slot's static type. KindAny accepts every value
// kind; feedback nodes never declare KindAny slots.
type Slot struct {
	Name     string
	Kind     ValueKind
	Required bool
}

// NodeSpec is one entry of the parsed configuration: identity, typing
// surface, wiring, and a constructor. The construction environment (GPU
// backend, fonts, decoders) is captured in the Build closure by the caller,
// keeping the graph itself backend-free.
type NodeSpec struct {
	Name    string
	Kind    NodeKind
	Inputs  []Connection
	Outputs map[string]ValueKind
	Slots   []Slot
	Build   func() (Node, error)
}

func (s *NodeSpec) slot(name string) (Slot, bool) {
	for _, sl := range s.Slots {
		if sl.Name == name {
			return sl, true
		}
	}
	return Slot{}, false
}
