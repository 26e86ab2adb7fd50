package audio

// Capture devices need portaudio at build time:
// macos:	brew install portaudio
// debian:	sudo apt-get install portaudio19-dev
// windows:	pacman -S mingw-w64-x86_64-portaudio

// Device is a producer of mono f32 samples. Start begins delivery into the
// ring the device was constructed with; Stop tears the stream down.
type Device interface {
	Start() error
	Stop() error
	SampleRate() int
}

// NullDevice produces silence. It stands in when no capture device can be
// opened so audio nodes keep rendering a zero spectrum.
type NullDevice struct {
	rate int
}

func NewNullDevice(sampleRate int) *NullDevice {
	return &NullDevice{rate: sampleRate}
}

func (d *NullDevice) Start() error    { return nil }
func (d *NullDevice) Stop() error     { return nil }
func (d *NullDevice) SampleRate() int { return d.rate }
