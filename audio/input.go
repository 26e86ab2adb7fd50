package audio

import (
	"fmt"
	"log"

	"github.com/gordonklaus/portaudio"
)

// InputDevice captures mono f32 samples from the default input device at
// its default rate and pushes them into the ring from the portaudio
// callback thread. Overruns are logged, not fatal.
type InputDevice struct {
	ring      *Ring
	stream    *portaudio.Stream
	rate      int
	streaming bool
	overruns  int64
}

// OpenInput initializes portaudio and opens (but does not start) the
// default input stream.
func OpenInput(ring *Ring) (*InputDevice, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	host, err := portaudio.DefaultHostApi()
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	if host.DefaultInputDevice == nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("no default audio input device")
	}

	d := &InputDevice{
		ring: ring,
		rate: int(host.DefaultInputDevice.DefaultSampleRate),
	}

	params := portaudio.HighLatencyParameters(host.DefaultInputDevice, nil)
	params.Input.Channels = 1
	params.SampleRate = host.DefaultInputDevice.DefaultSampleRate

	stream, err := portaudio.OpenStream(params, d.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	d.stream = stream
	return d, nil
}

// callback runs on the portaudio thread. It must not block, so a full ring
// means the chunk is dropped.
func (d *InputDevice) callback(in []float32) {
	if err := d.ring.Write(in); err != nil {
		d.overruns++
		if d.overruns&(d.overruns-1) == 0 { // log at powers of two, not every drop
			log.Printf("audio: dropped input chunk (%d overruns so far)", d.overruns)
		}
	}
}

func (d *InputDevice) Start() error {
	if err := d.stream.Start(); err != nil {
		return fmt.Errorf("failed to start audio stream: %w", err)
	}
	d.streaming = true
	return nil
}

func (d *InputDevice) Stop() error {
	if !d.streaming {
		return nil
	}
	d.streaming = false
	if err := d.stream.Close(); err != nil {
		portaudio.Terminate()
		return err
	}
	return portaudio.Terminate()
}

func (d *InputDevice) SampleRate() int { return d.rate }
