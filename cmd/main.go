package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/glimmerfx/glimmer/config"
	"github.com/glimmerfx/glimmer/driver"
	"github.com/glimmerfx/glimmer/graph"
	glbackend "github.com/glimmerfx/glimmer/graphics/gl"
	"github.com/glimmerfx/glimmer/nodes"
	"github.com/glimmerfx/glimmer/options"
	"github.com/glimmerfx/glimmer/window"
)

func init() {
	// The GL context is bound to the main thread for the process lifetime.
	runtime.LockOSThread()
}

func parseFlags() (*options.Options, error) {
	o := &options.Options{}
	flag.StringVar(&o.ConfigPath, "config", "", "pipeline configuration file")

	flag.StringVar(&o.Vertex, "vertex", "", "vertex shader for the default graph")
	flag.StringVar(&o.Fragment, "fragment", "", "fragment shader for the default graph")
	flag.StringVar(&o.Texture, "texture", "", "image fed to the default graph's shader")
	flag.BoolVar(&o.ShowFPS, "fps", false, "overlay a frame-rate counter on the default graph")
	flag.StringVar(&o.Font, "font", "", "font file for text overlays")

	flag.IntVar(&o.Width, "width", 800, "window width")
	flag.IntVar(&o.Height, "height", 450, "window height")
	flag.BoolVar(&o.Maximize, "maximize", false, "start maximized")
	flag.BoolVar(&o.Fullscreen, "fullscreen", false, "start fullscreen on the primary monitor")
	flag.BoolVar(&o.VSync, "vsync", true, "synchronize buffer swaps to the display")

	flag.BoolVar(&o.Root, "root", false, "undecorated unfocused window (unix)")
	flag.BoolVar(&o.OverrideRedirect, "override-redirect", false, "bypass window-manager decoration (unix)")
	flag.BoolVar(&o.Desktop, "desktop", false, "desktop-layer window (unix)")
	flag.BoolVar(&o.LowerWindow, "lower-window", false, "keep the window below others (unix)")

	flag.BoolVar(&o.Record, "record", false, "render offline into a video file instead of a window")
	flag.Float64Var(&o.Duration, "duration", 10, "seconds to record")
	flag.IntVar(&o.FPS, "framerate", 60, "recording frame rate")
	flag.StringVar(&o.Output, "output", "out.mp4", "recording output file")
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "vsync" {
			o.VSyncSet = true
		}
	})

	if o.ConfigPath != "" && (o.Vertex != "" || o.Fragment != "" || o.Texture != "" || o.ShowFPS) {
		return nil, fmt.Errorf("--config is mutually exclusive with the default-graph flags")
	}
	return o, nil
}

// mergeWindowOptions lets the configuration set window attributes. An
// explicit -vsync flag wins; otherwise the configuration's value governs,
// so a document declaring vsync false takes effect.
func mergeWindowOptions(o *options.Options, cfg *config.Config) {
	o.Maximize = o.Maximize || cfg.Maximize
	o.Fullscreen = o.Fullscreen || cfg.Fullscreen
	if !o.VSyncSet {
		o.VSync = cfg.VSync
	}
}

func run(o *options.Options) error {
	var cfg *config.Config
	var err error
	if o.ConfigPath != "" {
		cfg, err = config.Parse(o.ConfigPath)
	} else {
		cfg, err = config.FromOptions(o)
	}
	if err != nil {
		return err
	}
	mergeWindowOptions(o, cfg)

	if err := window.Init(); err != nil {
		return err
	}
	defer window.Terminate()

	win, err := window.New(o, !o.Record)
	if err != nil {
		return err
	}
	defer win.Destroy()

	backend, err := glbackend.New(win)
	if err != nil {
		return err
	}
	quad, err := backend.NewQuadBuffer()
	if err != nil {
		return err
	}
	defer backend.DeleteBuffer(quad)

	width, height := backend.FramebufferSize()
	env := &nodes.Env{
		Backend: backend,
		Quad:    quad,
		Width:   width,
		Height:  height,
		Clock:   &nodes.Clock{},
	}

	specs, err := nodes.Specs(cfg, env)
	if err != nil {
		return err
	}
	g, err := graph.New(specs)
	if err != nil {
		return err
	}

	d := driver.New(backend, win, env, g, o.ConfigPath)
	defer func() { d.Graph().Destroy() }()

	if o.Record {
		return d.Record(o.Duration, o.FPS, o.Output)
	}
	d.WatchSignals()
	return d.Run()
}

func main() {
	o, err := parseFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}
	if err := run(o); err != nil {
		log.Fatal(err)
	}
}
