package audio

import (
	"sync"

	pkgerrors "pcmdeck/pkg/errors"
)

// DefaultRingSize mirrors the circular DMA geometry of the reference
// hardware: four descriptors of 4092 bytes each.
const DefaultRingSize = 4 * 4092

// Ring is the fixed-capacity byte ring standing in for the hardware's
// circular DMA buffer. The feed engine pushes scaled PCM into the free space;
// the playback drain consumes queued bytes at the output sample rate,
// zero-filling on underrun just as a DAC keeps clocking whether or not the
// engine kept up.
type Ring struct {
	mu       sync.Mutex
	buf      []byte
	readPos  int
	queued   int
	underrun uint64
	closed   bool
}

// NewRing creates a ring of the given capacity in bytes. Non-positive
// capacities fall back to DefaultRingSize.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &Ring{buf: make([]byte, capacity)}
}

// Available returns the free space in bytes. A closed ring accepts nothing.
func (r *Ring) Available() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	return len(r.buf) - r.queued
}

// Push writes up to the available free space from p and returns the number of
// bytes accepted.
func (r *Ring) Push(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, pkgerrors.ErrSinkClosed
	}

	n := len(r.buf) - r.queued
	if n > len(p) {
		n = len(p)
	}

	writePos := (r.readPos + r.queued) % len(r.buf)
	first := copy(r.buf[writePos:], p[:n])
	copy(r.buf, p[first:n])
	r.queued += n
	return n, nil
}

// Read fills p from the queued bytes, zero-filling whatever the engine has
// not yet supplied. It always fills all of p: the drain never stalls.
func (r *Ring) Read(p []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.queued
	if n > len(p) {
		n = len(p)
	}

	first := copy(p[:n], r.buf[r.readPos:])
	copy(p[first:n], r.buf)
	r.readPos = (r.readPos + n) % len(r.buf)
	r.queued -= n

	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	r.underrun += uint64(len(p) - n)
	return len(p)
}

// Queued returns the number of bytes waiting to be drained.
func (r *Ring) Queued() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queued
}

// Underruns returns the total count of zero-filled bytes handed to the drain.
func (r *Ring) Underruns() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.underrun
}

// Close makes all further pushes fail. Used on shutdown and by fault tests.
func (r *Ring) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}
