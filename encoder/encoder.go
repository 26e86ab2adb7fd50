// Package encoder muxes rendered frames into a video file by piping raw
// RGBA through an ffmpeg process.
package encoder

import (
	"fmt"
	"io"
	"runtime"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Encoder accepts tightly packed RGBA frames, bottom row first as read back
// from the GPU, and encodes them to H.264.
type Encoder struct {
	writer    *io.PipeWriter
	errc      chan error
	frameSize int
}

func New(path string, width, height, fps int) (*Encoder, error) {
	if width <= 0 || height <= 0 || fps <= 0 {
		return nil, fmt.Errorf("invalid encode geometry %dx%d at %d fps", width, height, fps)
	}
	reader, writer := io.Pipe()

	inputArgs := ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", width, height),
		"framerate": fps,
	}
	outputArgs := ffmpeg.KwArgs{
		"vf":      "vflip", // readback rows are bottom-up
		"c:v":     encoderName(),
		"pix_fmt": "yuv420p",
	}
	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(path, outputArgs).
		OverWriteOutput().WithInput(reader).ErrorToStdOut()

	e := &Encoder{
		writer:    writer,
		errc:      make(chan error, 1),
		frameSize: width * height * 4,
	}
	go func() {
		err := cmd.Run()
		reader.CloseWithError(err)
		e.errc <- err
	}()
	return e, nil
}

// encoderName prefers the platform hardware encoder and falls back to
// software x264.
func encoderName() string {
	switch runtime.GOOS {
	case "darwin":
		return "h264_videotoolbox"
	default:
		return "libx264"
	}
}

// WriteFrame submits one frame; its length must match the configured
// geometry.
func (e *Encoder) WriteFrame(pix []byte) error {
	if len(pix) != e.frameSize {
		return fmt.Errorf("frame is %d bytes, want %d", len(pix), e.frameSize)
	}
	_, err := e.writer.Write(pix)
	return err
}

// Close flushes the pipe and waits for ffmpeg to finalize the file.
func (e *Encoder) Close() error {
	e.writer.Close()
	return <-e.errc
}
