package nodes

import (
	"time"

	"github.com/glimmerfx/glimmer/graphics"
)

// Clock is the driver's virtual time. It advances only while rendering is
// unpaused, so pausing freezes every time-driven node.
type Clock struct {
	seconds float64
}

// Advance adds dt seconds of virtual time.
func (c *Clock) Advance(dt float64) { c.seconds += dt }

// Seconds returns the accumulated virtual time.
func (c *Clock) Seconds() float64 { return c.seconds }

// Env is the construction environment shared by all nodes of one graph:
// the GPU backend, the shared full-screen quad, the framebuffer dimensions
// at construction time, and the clocks. Tests substitute the fake backend
// and a canned Now.
type Env struct {
	Backend graphics.Backend
	Quad    graphics.BufferID
	Width   int
	Height  int
	Clock   *Clock
	Decode  FrameDecoder
	Now     func() time.Time
}

func (e *Env) nowFunc() func() time.Time {
	if e.Now != nil {
		return e.Now
	}
	return time.Now
}

func (e *Env) decode(data []byte) ([]Frame, error) {
	if e.Decode != nil {
		return e.Decode(data)
	}
	return DecodeFrames(data)
}
