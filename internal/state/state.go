// Package state holds the playback fields shared between the feed engine, the
// gain-control consumer and the front panel. Every field is an independent
// atomic scalar with a single writing task; readers are lock-free and never
// observe torn updates. No atomicity across fields is promised or needed.
//
// Write ownership:
//   - volume: the gain-control consumer (StepVolume)
//   - playing, progress, trackIndex: the audio feed engine
package state

import (
	"sync/atomic"

	"pcmdeck/api"
)

// PlaybackState is constructed once at startup and passed by reference to
// every task. There are no package-level globals.
type PlaybackState struct {
	volume     atomic.Uint32
	playing    atomic.Bool
	progress   atomic.Uint32
	trackIndex atomic.Uint32
}

// New returns a PlaybackState initialized to the default volume, not playing,
// zero progress, track 0. Volumes above 100 are clamped.
func New(defaultVolume uint8) *PlaybackState {
	s := &PlaybackState{}
	if defaultVolume > 100 {
		defaultVolume = 100
	}
	s.volume.Store(uint32(defaultVolume))
	return s
}

// Volume returns the current volume percentage, 0..100.
func (s *PlaybackState) Volume() uint8 {
	return uint8(s.volume.Load())
}

// StepVolume adjusts the volume by delta as a single atomic read-modify-write,
// saturating at the 0 and 100 boundaries. It returns the resulting volume.
func (s *PlaybackState) StepVolume(delta int) uint8 {
	for {
		cur := s.volume.Load()
		next := int(cur) + delta
		if next < 0 {
			next = 0
		}
		if next > 100 {
			next = 100
		}
		if s.volume.CompareAndSwap(cur, uint32(next)) {
			return uint8(next)
		}
	}
}

// Playing reports whether the engine is in the Playing state.
func (s *PlaybackState) Playing() bool {
	return s.playing.Load()
}

// SetPlaying publishes the engine's play/pause state. Engine only.
func (s *PlaybackState) SetPlaying(playing bool) {
	s.playing.Store(playing)
}

// Progress returns the published progress percentage, 0..100.
func (s *PlaybackState) Progress() uint8 {
	return uint8(s.progress.Load())
}

// SetProgress publishes the progress percentage, clamped to 100. Engine only.
func (s *PlaybackState) SetProgress(percent uint8) {
	if percent > 100 {
		percent = 100
	}
	s.progress.Store(uint32(percent))
}

// TrackIndex returns the index of the currently loaded track.
func (s *PlaybackState) TrackIndex() uint8 {
	return uint8(s.trackIndex.Load())
}

// SetTrackIndex publishes the current track index, written immediately after
// a track switch commits. Engine only.
func (s *PlaybackState) SetTrackIndex(index uint8) {
	s.trackIndex.Store(uint32(index))
}

// Snapshot reads all fields for display polling. Each field is individually
// current; the set as a whole may straddle an engine cycle.
func (s *PlaybackState) Snapshot() api.Status {
	return api.Status{
		Volume:     s.Volume(),
		Playing:    s.Playing(),
		Progress:   s.Progress(),
		TrackIndex: s.TrackIndex(),
	}
}
