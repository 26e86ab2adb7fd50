package nodes

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"os"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/glimmerfx/glimmer/graph"
	"github.com/glimmerfx/glimmer/graphics"
)

// GIF frames with a zero delay advance at this rate instead.
const defaultFrameDelay = 100 * time.Millisecond

// Frame is one decoded image frame as tightly packed RGBA8 pixels, bottom
// row first, ready for upload.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
	Delay  time.Duration // zero for still images
}

// FrameDecoder turns an encoded image file into upload-ready frames. Tests
// substitute a canned decoder.
type FrameDecoder func(data []byte) ([]Frame, error)

// DecodeFrames decodes stills through the registered image codecs and
// animated GIFs frame by frame, compositing each frame over the previous
// canvas.
func DecodeFrames(data []byte) ([]Frame, error) {
	if g, err := gif.DecodeAll(bytes.NewReader(data)); err == nil && len(g.Image) > 1 {
		return decodeGIF(g)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return []Frame{rgbaFrame(img, 0)}, nil
}

func decodeGIF(g *gif.GIF) ([]Frame, error) {
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)
	frames := make([]Frame, 0, len(g.Image))
	for i, src := range g.Image {
		draw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)
		delay := time.Duration(g.Delay[i]) * 10 * time.Millisecond
		if delay == 0 {
			delay = defaultFrameDelay
		}
		frames = append(frames, rgbaFrame(canvas, delay))
	}
	return frames, nil
}

// rgbaFrame converts to RGBA and flips rows so row 0 is the bottom of the
// image, matching the texture origin.
func rgbaFrame(img image.Image, delay time.Duration) Frame {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	w, h := b.Dx(), b.Dy()
	flipped := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		copy(flipped[(h-1-y)*w*4:(h-y)*w*4], rgba.Pix[y*rgba.Stride:y*rgba.Stride+w*4])
	}
	return Frame{Pix: flipped, Width: w, Height: h, Delay: delay}
}

// Image uploads its decoded frames once at construction and emits the
// current frame's texture. Animated sources advance when the current
// frame's delay has elapsed.
type Image struct {
	textures   []*graphics.Texture
	delays     []time.Duration
	current    int
	frameStart time.Time
	now        func() time.Time
}

func NewImage(env *Env, path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %q: %w", path, err)
	}
	frames, err := env.decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", path, err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("image %q decoded to no frames", path)
	}

	n := &Image{now: env.nowFunc()}
	for _, f := range frames {
		tex, err := graphics.NewTexture2D(env.Backend, f.Width, f.Height, graphics.FormatRGBA8)
		if err != nil {
			n.Destroy()
			return nil, err
		}
		if err := tex.Upload(graphics.Rect{W: f.Width, H: f.Height}, f.Pix); err != nil {
			tex.Release()
			n.Destroy()
			return nil, fmt.Errorf("upload image %q: %w", path, err)
		}
		n.textures = append(n.textures, tex)
		n.delays = append(n.delays, f.Delay)
	}
	n.frameStart = n.now()
	return n, nil
}

func (n *Image) Render(graph.Inputs) (graph.Outputs, error) {
	if len(n.textures) > 1 {
		now := n.now()
		if now.Sub(n.frameStart) >= n.delays[n.current] {
			n.current = (n.current + 1) % len(n.textures)
			n.frameStart = now
		}
	}
	return graph.Outputs{"texture": graph.Texture2D{Tex: n.textures[n.current]}}, nil
}

func (n *Image) Destroy() {
	for _, t := range n.textures {
		t.Release()
	}
	n.textures = nil
}
