package control

import (
	"context"

	"pcmdeck/api"
)

// RotationCapacity bounds the knob event queue. Producers suspend while the
// queue is full; events are never dropped.
const RotationCapacity = 10

// RotationQueue is the bounded multi-producer, single-consumer FIFO of knob
// rotation events. Delivery order is the authoritative ordering for volume
// changes.
type RotationQueue struct {
	ch chan api.Direction
}

// NewRotationQueue creates a queue with capacity RotationCapacity.
func NewRotationQueue() *RotationQueue {
	return &RotationQueue{ch: make(chan api.Direction, RotationCapacity)}
}

// Send enqueues a rotation event, blocking while the queue is full.
func (q *RotationQueue) Send(ctx context.Context, d api.Direction) error {
	select {
	case q.ch <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive dequeues the oldest rotation event, blocking while the queue is
// empty.
func (q *RotationQueue) Receive(ctx context.Context) (api.Direction, error) {
	select {
	case d := <-q.ch:
		return d, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Len returns the number of queued events.
func (q *RotationQueue) Len() int {
	return len(q.ch)
}
