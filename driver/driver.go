// Package driver runs the frame loop: it polls the host, routes events and
// signals into the graph, advances virtual time while unpaused, and
// evaluates the graph once per iteration.
package driver

import (
	"log"
	"os"
	"time"

	"github.com/glimmerfx/glimmer/config"
	"github.com/glimmerfx/glimmer/graph"
	"github.com/glimmerfx/glimmer/graphics"
	"github.com/glimmerfx/glimmer/nodes"
	"github.com/glimmerfx/glimmer/window"
)

// pausedIdle is how long the loop sleeps per iteration while paused.
const pausedIdle = 10 * time.Millisecond

// Driver owns one graph and the loop that evaluates it.
type Driver struct {
	backend    graphics.Backend
	win        *window.Window
	env        *nodes.Env
	graph      *graph.Graph
	configPath string

	clock  *nodes.Clock
	paused bool
	last   time.Time
	now    func() time.Time

	signals chan os.Signal
}

// New wraps an already-built graph. configPath may be empty, which disables
// reloading.
func New(backend graphics.Backend, win *window.Window, env *nodes.Env, g *graph.Graph, configPath string) *Driver {
	now := env.Now
	if now == nil {
		now = time.Now
	}
	return &Driver{
		backend:    backend,
		win:        win,
		env:        env,
		graph:      g,
		configPath: configPath,
		clock:      env.Clock,
		now:        now,
	}
}

// Graph returns the currently running graph; a reload swaps it.
func (d *Driver) Graph() *graph.Graph { return d.graph }

// Run loops until the window closes or a frame fails with an error that
// cannot be confined to that frame.
func (d *Driver) Run() error {
	d.last = d.now()
	for !d.win.ShouldClose() {
		d.win.Poll()
		d.drainSignals()
		d.drainWindow()

		if d.paused {
			// Keep presenting the last frame so the window stays live.
			d.win.SwapBuffers()
			time.Sleep(pausedIdle)
			d.last = d.now()
			continue
		}

		now := d.now()
		d.clock.Advance(now.Sub(d.last).Seconds())
		d.last = now

		if err := d.frameError(d.graph.Render()); err != nil {
			return err
		}
	}
	return nil
}

// frameError applies the per-frame propagation policy: runtime and transient
// errors abort only the frame that raised them and are logged, so the next
// iteration renders again. Configuration and resource errors end the run.
func (d *Driver) frameError(err error) error {
	if err == nil {
		return nil
	}
	switch graph.KindOf(err) {
	case graph.ErrRuntime, graph.ErrTransient:
		log.Printf("frame: %v", err)
		return nil
	}
	return err
}

func (d *Driver) drainWindow() {
	if w, h, ok := d.win.Resized(); ok {
		d.env.Width, d.env.Height = w, h
		d.graph.Resize(w, h)
	}
	for _, ev := range d.win.PointerEvents() {
		d.graph.PostPointer(ev)
	}
	for _, key := range d.win.Hotkeys() {
		switch key {
		case window.HotkeySnapshot:
			d.Snapshot()
		case window.HotkeyReload:
			d.Reload()
		case window.HotkeyPause:
			if d.paused {
				d.Resume()
			} else {
				d.Pause()
			}
		}
	}
}

// Pause stops graph evaluation; the window stays responsive.
func (d *Driver) Pause() { d.paused = true }

// Resume restarts evaluation without a virtual-time jump.
func (d *Driver) Resume() {
	d.paused = false
	d.last = d.now()
}

// Snapshot writes the last presented frame to a timestamped PNG in the
// working directory. Failures abort the snapshot, never the run.
func (d *Driver) Snapshot() {
	s, ok := d.graph.OutputNode().(graph.Snapshotter)
	if !ok {
		return
	}
	name := d.now().Format("2006-01-02_15:04:05") + ".png"
	if err := s.Snapshot(name); err != nil {
		log.Printf("snapshot: %v", err)
		return
	}
	log.Printf("snapshot written to %s", name)
	d.graph.PostEvent(graph.Event{Kind: graph.EventCapture})
}

// Reload re-reads the configuration and swaps in a freshly built graph. On
// any failure the running graph keeps going.
func (d *Driver) Reload() {
	if d.configPath == "" {
		log.Printf("reload: no configuration file to reload")
		return
	}
	cfg, err := config.Parse(d.configPath)
	if err != nil {
		log.Printf("reload: %v; keeping running graph", err)
		return
	}
	specs, err := nodes.Specs(cfg, d.env)
	if err != nil {
		log.Printf("reload: %v; keeping running graph", err)
		return
	}
	next, err := graph.New(specs)
	if err != nil {
		log.Printf("reload: %v; keeping running graph", err)
		return
	}

	d.graph.Destroy()
	d.graph = next
	w, h := d.backend.FramebufferSize()
	d.env.Width, d.env.Height = w, h
	next.Resize(w, h)
	next.PostEvent(graph.Event{Kind: graph.EventReload})
	log.Printf("reloaded %s", d.configPath)
}
