package api

import "fmt"

// Direction is the rotation sense reported by the volume knob.
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

func (d Direction) String() string {
	switch d {
	case Clockwise:
		return "clockwise"
	case CounterClockwise:
		return "counter-clockwise"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Status is a point-in-time snapshot of the shared playback state. Each field
// is read from an independent atomic, so a snapshot is self-consistent per
// field but carries no cross-field guarantee: a reader may see Playing=true
// with a Progress that lags by one engine cycle.
type Status struct {
	Volume     uint8 // 0..100
	Playing    bool
	Progress   uint8 // 0..100, percentage of the current track consumed
	TrackIndex uint8
}
