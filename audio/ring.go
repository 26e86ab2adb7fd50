package audio

import (
	"errors"
	"sync/atomic"
)

// ErrOverrun is returned to the producer when the ring has no room for a
// full write. The chunk is dropped; audio capture is best effort.
var ErrOverrun = errors.New("audio: ring overrun")

// Ring is a bounded single-producer/single-consumer sample queue. The
// audio-callback thread writes, the analysis thread reads; the monotonic
// head/tail counters make both sides wait-free.
type Ring struct {
	buf  []float32
	mask int64
	head atomic.Int64 // total samples written
	tail atomic.Int64 // total samples read
}

// NewRing creates a ring holding at least capacity samples (rounded up to a
// power of two).
func NewRing(capacity int) *Ring {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &Ring{buf: make([]float32, size), mask: int64(size - 1)}
}

// Write enqueues all of samples or none of them.
func (r *Ring) Write(samples []float32) error {
	head := r.head.Load()
	tail := r.tail.Load()
	if int64(len(samples)) > int64(len(r.buf))-(head-tail) {
		return ErrOverrun
	}
	for i, s := range samples {
		r.buf[(head+int64(i))&r.mask] = s
	}
	r.head.Store(head + int64(len(samples)))
	return nil
}

// Read fills dst and reports success; it reads nothing when fewer than
// len(dst) samples are buffered.
func (r *Ring) Read(dst []float32) bool {
	head := r.head.Load()
	tail := r.tail.Load()
	if head-tail < int64(len(dst)) {
		return false
	}
	for i := range dst {
		dst[i] = r.buf[(tail+int64(i))&r.mask]
	}
	r.tail.Store(tail + int64(len(dst)))
	return true
}

// Len returns the number of buffered samples.
func (r *Ring) Len() int {
	return int(r.head.Load() - r.tail.Load())
}
