package nodes

import (
	"math"

	"github.com/glimmerfx/glimmer/graph"
)

const (
	pointerMailbox = 64
	eventMailbox   = 16
)

// Info publishes the ambient frame inputs: virtual time, framebuffer
// resolution, and pointer state. Time wraps at 4096 seconds so float32
// uniforms keep sub-frame precision over long runs. Pointer coordinates are
// republished with a bottom-left origin to match the texture space. Both
// mailboxes are drained at the start of each render.
type Info struct {
	clock  *Clock
	width  int
	height int

	events  chan graph.Event
	pointer chan graph.PointerEvent
	x, y    float32
	downX   float32
	downY   float32
}

func NewInfo(env *Env) *Info {
	return &Info{
		clock:   env.Clock,
		width:   env.Width,
		height:  env.Height,
		events:  make(chan graph.Event, eventMailbox),
		pointer: make(chan graph.PointerEvent, pointerMailbox),
	}
}

func (n *Info) Events() chan<- graph.Event { return n.events }

func (n *Info) Pointer() chan<- graph.PointerEvent { return n.pointer }

func (n *Info) Render(graph.Inputs) (graph.Outputs, error) {
	n.drain()
	var t float64
	if n.clock != nil {
		t = n.clock.Seconds()
	}
	return graph.Outputs{
		"time":       graph.Float(math.Mod(t, 4096)),
		"resolution": graph.Float2{float32(n.width), float32(n.height)},
		"pointer":    graph.Float4{n.x, n.y, n.downX, n.downY},
	}, nil
}

// drain folds all pending events into the current state. The zw half of the
// pointer vector holds the press position while the button is down and
// zeroes on release.
func (n *Info) drain() {
	for {
		select {
		case ev := <-n.events:
			if ev.Kind == graph.EventResize {
				n.width, n.height = ev.Width, ev.Height
			}
		case ev := <-n.pointer:
			switch ev.Kind {
			case graph.PointerMove:
				n.x = ev.X
				n.y = float32(n.height) - ev.Y
			case graph.PointerPress:
				n.downX, n.downY = n.x, n.y
			case graph.PointerRelease:
				n.downX, n.downY = 0, 0
			}
		default:
			return
		}
	}
}

func (n *Info) Destroy() {}
