package nodes

import (
	"log"
	"math"
	"math/cmplx"

	"github.com/glimmerfx/glimmer/audio"
	"github.com/glimmerfx/glimmer/graph"
	"github.com/glimmerfx/glimmer/graphics"
)

// SpectrumBins is the length of the audio node's 1-D output texture: the
// first half of the FFT window, up to the Nyquist bin.
const SpectrumBins = audio.WindowSize / 2

// Magnitudes are mapped from this dB range onto [0,1].
const (
	minDB = -100.0
	maxDB = -30.0
)

// Audio captures microphone input, runs it through the spectrum analyzer,
// and publishes the magnitudes as an R32F 1-D texture. When no capture
// device can be opened it degrades to silence rather than failing the
// graph.
type Audio struct {
	backend  graphics.Backend
	device   audio.Device
	analyzer *audio.Analyzer
	tex      *graphics.Texture
	levels   []float32
}

func NewAudio(env *Env) (*Audio, error) {
	ring := audio.NewRing(audio.WindowSize * 16)

	var device audio.Device
	if in, err := audio.OpenInput(ring); err != nil {
		log.Printf("audio: no capture device, rendering silence: %v", err)
		device = audio.NewNullDevice(44100)
	} else {
		device = in
	}
	if err := device.Start(); err != nil {
		log.Printf("audio: start capture: %v; rendering silence", err)
		device.Stop()
		device = audio.NewNullDevice(44100)
	}

	tex, err := graphics.NewTexture1D(env.Backend, SpectrumBins, graphics.FormatR32F)
	if err != nil {
		device.Stop()
		return nil, err
	}

	analyzer := audio.NewAnalyzer(ring)
	analyzer.Start()
	return &Audio{
		backend:  env.Backend,
		device:   device,
		analyzer: analyzer,
		tex:      tex,
		levels:   make([]float32, SpectrumBins),
	}, nil
}

func (n *Audio) Render(graph.Inputs) (graph.Outputs, error) {
	spectrum := n.analyzer.Spectrum()
	for i := 0; i < SpectrumBins && i < len(spectrum); i++ {
		mag := cmplx.Abs(spectrum[i]) * 2 / audio.WindowSize
		db := 20 * math.Log10(mag+1e-9)
		v := (db - minDB) / (maxDB - minDB)
		n.levels[i] = float32(math.Min(1, math.Max(0, v)))
	}
	if err := n.backend.UploadTexture1D(n.tex.ID(), n.levels); err != nil {
		return nil, err
	}
	return graph.Outputs{"spectrum": graph.Texture1D{Tex: n.tex}}, nil
}

func (n *Audio) Destroy() {
	n.analyzer.Stop()
	if err := n.device.Stop(); err != nil {
		log.Printf("audio: stop capture: %v", err)
	}
	n.tex.Release()
	n.tex = nil
}
