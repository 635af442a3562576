package audio

import (
	"encoding/binary"

	"github.com/faiface/beep"
)

// Ensure RingStreamer implements beep.Streamer at compile time
var _ beep.Streamer = (*RingStreamer)(nil)

// RingStreamer adapts the ring's drain side to beep's pull model: the speaker
// asks for frames at the configured sample rate, which makes the ring drain
// at exactly the hardware rate. Mono samples are duplicated to both output
// channels.
type RingStreamer struct {
	ring *Ring
	buf  []byte
}

// NewRingStreamer creates the drain streamer for a ring.
func NewRingStreamer(r *Ring) *RingStreamer {
	return &RingStreamer{ring: r}
}

// Stream fills samples from the ring, zero-filled on underrun. It never ends;
// the player runs until power-off.
func (s *RingStreamer) Stream(samples [][2]float64) (int, bool) {
	need := len(samples) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	b := s.buf[:need]
	s.ring.Read(b)

	for i := range samples {
		v := float64(int16(binary.LittleEndian.Uint16(b[i*2:]))) / (1 << 15)
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

// Err always returns nil; drain underruns surface as silence, not errors.
func (s *RingStreamer) Err() error {
	return nil
}
