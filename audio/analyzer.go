package audio

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/mjibson/go-dsp/fft"
)

// WindowSize is the number of frames per analysis window.
const WindowSize = 256

// Analyzer owns the analysis thread: it reads fixed-size windows from the
// ring, applies a Blackman window, runs a real-to-complex FFT, and
// publishes the spectrum. Single writer (the analysis goroutine), many
// readers via Spectrum on the render thread.
type Analyzer struct {
	ring *Ring

	mu       sync.RWMutex
	spectrum []complex128

	done      chan struct{}
	wg        sync.WaitGroup
	underruns int64
}

func NewAnalyzer(ring *Ring) *Analyzer {
	return &Analyzer{
		ring:     ring,
		spectrum: make([]complex128, WindowSize),
		done:     make(chan struct{}),
	}
}

// Start spawns the analysis goroutine.
func (a *Analyzer) Start() {
	a.wg.Add(1)
	go a.run()
}

func (a *Analyzer) run() {
	defer a.wg.Done()
	window := blackmanWindow(WindowSize)
	samples := make([]float32, WindowSize)
	input := make([]float64, WindowSize)
	for {
		select {
		case <-a.done:
			return
		default:
		}
		if !a.ring.Read(samples) {
			a.underruns++
			if a.underruns&(a.underruns-1) == 0 {
				log.Printf("audio: analysis underrun (%d so far)", a.underruns)
			}
			time.Sleep(time.Millisecond)
			continue
		}
		for i, s := range samples {
			input[i] = float64(s) * window[i]
		}
		result := fft.FFTReal(input)

		a.mu.Lock()
		copy(a.spectrum, result)
		a.mu.Unlock()
	}
}

// Spectrum returns a copy of the latest complex spectrum.
func (a *Analyzer) Spectrum() []complex128 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]complex128, len(a.spectrum))
	copy(out, a.spectrum)
	return out
}

// Stop terminates the analysis goroutine and waits for it.
func (a *Analyzer) Stop() {
	close(a.done)
	a.wg.Wait()
}

// blackmanWindow generates the Blackman window applied before the FFT.
func blackmanWindow(size int) []float64 {
	window := make([]float64, size)
	a0 := 0.42
	a1 := 0.5
	a2 := 0.08
	invSize := 1.0 / float64(size-1)
	for i := range window {
		t := float64(i) * invSize
		window[i] = a0 - (a1 * math.Cos(2*math.Pi*t)) + (a2 * math.Cos(4*math.Pi*t))
	}
	return window
}
