package audio

import "encoding/binary"

// Scale writes gain-scaled copies of the little-endian signed 16-bit samples
// in src to dst, which must be at least as long. Each output sample is
// in*volume/100 computed in int32 and truncated back toward zero, so
// volume=100 is the identity and volume=0 is silence; no further clamping is
// needed because volume never exceeds 100. Scale is a stateless map and is
// restartable per chunk.
func Scale(dst, src []byte, volume uint8) {
	if volume > 100 {
		volume = 100
	}
	v := int32(volume)
	i := 0
	for ; i+1 < len(src); i += 2 {
		s := int16(binary.LittleEndian.Uint16(src[i:]))
		scaled := int16(int32(s) * v / 100)
		binary.LittleEndian.PutUint16(dst[i:], uint16(scaled))
	}
	// A trailing unpaired byte cannot be scaled; pass it through. The feed
	// engine only produces even chunk sizes.
	if i < len(src) {
		dst[i] = src[i]
	}
}
