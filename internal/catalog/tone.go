package catalog

import (
	"encoding/binary"
	"math"
	"time"
)

// toneAmplitude keeps synthesized tracks below full scale.
const toneAmplitude = 0.6

// ToneTrack synthesizes a sine-wave track so the catalog is never empty when
// no assets are present.
func ToneTrack(title string, freq float64, d time.Duration, sampleRate int) Track {
	frames := int(float64(sampleRate) * d.Seconds())
	if frames < 1 {
		frames = 1
	}
	pcm := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		v := math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
		s := int16(v * toneAmplitude * (1<<15 - 1))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	return Track{Title: title, PCM: pcm}
}
