package nodes

import (
	"fmt"
	"time"

	"github.com/glimmerfx/glimmer/graph"
)

// Counter estimates frames per second by counting ticks over a sampling
// interval of wall time.
type Counter struct {
	interval float64
	started  bool
	last     time.Time
	elapsed  float64
	frames   int
	fps      float64
}

func NewCounter(interval float64) *Counter {
	if interval <= 0 {
		interval = 1
	}
	return &Counter{interval: interval}
}

// Tick records one frame at the given instant. The first tick only arms
// the counter.
func (c *Counter) Tick(now time.Time) {
	if !c.started {
		c.started = true
		c.last = now
		return
	}
	c.elapsed += now.Sub(c.last).Seconds()
	c.last = now
	c.frames++
	if c.elapsed >= c.interval {
		c.fps = float64(c.frames) / c.elapsed
		c.frames = 0
		c.elapsed = 0
	}
}

// FPS returns the estimate from the last completed interval.
func (c *Counter) FPS() float64 { return c.fps }

// FPS is a text node that redraws itself with the current frame-rate
// estimate. It ticks on wall time, not virtual time, so the readout stays
// live while rendering is paused-and-resumed.
type FPS struct {
	*Text
	counter *Counter
	now     func() time.Time
}

func NewFPS(env *Env, position [2]float32, color [4]float32, fontPath string, fontSize, interval float64) (*FPS, error) {
	t, err := NewText(env, "FPS: --", position, color, fontPath, fontSize)
	if err != nil {
		return nil, err
	}
	return &FPS{Text: t, counter: NewCounter(interval), now: env.nowFunc()}, nil
}

func (n *FPS) Render(in graph.Inputs) (graph.Outputs, error) {
	n.counter.Tick(n.now())
	n.SetText(fmt.Sprintf("FPS: %.1f", n.counter.FPS()))
	return n.Text.Render(in)
}
