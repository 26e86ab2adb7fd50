package driver

import (
	"fmt"

	"github.com/glimmerfx/glimmer/encoder"
	"github.com/glimmerfx/glimmer/graph"
	"github.com/glimmerfx/glimmer/graphics"
)

// frameSource is the output node's readback surface.
type frameSource interface {
	LastFrame() *graphics.Texture
}

// Record renders duration seconds at a fixed rate into a video file,
// driving virtual time by frame index instead of the wall clock so the
// encode is deterministic regardless of render speed.
func (d *Driver) Record(duration float64, fps int, path string) error {
	src, ok := d.graph.OutputNode().(frameSource)
	if !ok {
		return fmt.Errorf("output node cannot be read back")
	}

	width, height := d.backend.FramebufferSize()
	enc, err := encoder.New(path, width, height, fps)
	if err != nil {
		return err
	}

	frames := int(duration * float64(fps))
	step := 1.0 / float64(fps)
	for i := 0; i < frames; i++ {
		d.win.Poll()
		if err := d.graph.Render(); err != nil {
			enc.Close()
			return graph.Wrap(graph.ErrRuntime, "", err)
		}
		d.clock.Advance(step)

		tex := src.LastFrame()
		if tex == nil {
			continue
		}
		pix, err := d.backend.ReadTexture2D(tex.ID(), tex.Width(), tex.Height())
		if err != nil {
			enc.Close()
			return err
		}
		if err := enc.WriteFrame(pix); err != nil {
			enc.Close()
			return err
		}
	}
	return enc.Close()
}
