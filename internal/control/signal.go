// Package control provides the cross-task communication channels: single-slot
// latest-wins mailboxes for transport commands and a bounded FIFO queue for
// volume knob rotation events. These are the only channels between tasks;
// no other shared mutable memory exists.
package control

import "sync/atomic"

// Signal is a single-slot mailbox for one transport command kind. Raising a
// signal that is already pending overwrites it, so at most one firing is ever
// pending per kind. There is no queuing and no ordering between kinds beyond
// the engine's fixed poll order.
type Signal struct {
	pending atomic.Bool
}

// NewSignal creates an empty signal mailbox.
func NewSignal() *Signal {
	return &Signal{}
}

// Raise marks the signal as pending, overwriting any unread firing.
func (s *Signal) Raise() {
	s.pending.Store(true)
}

// TryTake consumes the pending firing if present. It never blocks.
func (s *Signal) TryTake() bool {
	return s.pending.CompareAndSwap(true, false)
}

// Transport bundles the three transport mailboxes, listed in the engine's
// fixed poll order.
type Transport struct {
	PlayPause *Signal
	Next      *Signal
	Previous  *Signal
}

// NewTransport creates the three independent transport mailboxes.
func NewTransport() *Transport {
	return &Transport{
		PlayPause: NewSignal(),
		Next:      NewSignal(),
		Previous:  NewSignal(),
	}
}
