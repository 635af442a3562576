package audio

import (
	"context"

	"github.com/rs/zerolog"

	"pcmdeck/api"
	"pcmdeck/internal/control"
)

// DefaultVolumeStep is the percentage applied per knob detent.
const DefaultVolumeStep = 5

// VolumeState is the gain-control consumer's handle on the shared state: it
// is the sole writer of the volume field.
type VolumeState interface {
	StepVolume(delta int) uint8
}

// VolumeConsumer drains knob rotation events in FIFO order and applies a
// fixed step per event to the shared volume, saturating at the 0..100
// boundaries. It suspends on the empty queue between events.
type VolumeConsumer struct {
	queue *control.RotationQueue
	state VolumeState
	step  int
	log   zerolog.Logger
}

// NewVolumeConsumer creates a consumer for the given queue. Non-positive
// steps fall back to DefaultVolumeStep.
func NewVolumeConsumer(queue *control.RotationQueue, st VolumeState, step int, logger zerolog.Logger) *VolumeConsumer {
	if step <= 0 {
		step = DefaultVolumeStep
	}
	return &VolumeConsumer{queue: queue, state: st, step: step, log: logger}
}

// Run consumes rotation events until the context is cancelled.
func (c *VolumeConsumer) Run(ctx context.Context) error {
	for {
		dir, err := c.queue.Receive(ctx)
		if err != nil {
			return err
		}

		delta := c.step
		if dir == api.CounterClockwise {
			delta = -delta
		}
		volume := c.state.StepVolume(delta)

		c.log.Info().
			Uint8("volume", volume).
			Str("direction", dir.String()).
			Msg("Volume changed")
	}
}
