// Package catalog holds the ordered, fixed list of playable tracks. Tracks
// are built once at startup and never mutated afterwards.
package catalog

import (
	"fmt"

	pkgerrors "pcmdeck/pkg/errors"
)

// Track is one playable entry: raw 16-bit little-endian PCM at the output
// sample rate, plus a display title. Immutable after catalog construction.
type Track struct {
	Index int
	Title string
	PCM   []byte
}

// Catalog is an ordered sequence of tracks with dense indices 0..N. Next and
// Previous wrap around, so there is no end-of-catalog state.
type Catalog struct {
	tracks []Track
}

// New builds a catalog from the given tracks, reindexing them densely in
// order. It fails if the list is empty or any track has no PCM data; a
// non-zero track length is what keeps the progress arithmetic free of
// division faults.
func New(tracks []Track) (*Catalog, error) {
	if len(tracks) == 0 {
		return nil, pkgerrors.ErrNoTracks
	}
	out := make([]Track, len(tracks))
	for i, t := range tracks {
		if len(t.PCM) == 0 {
			return nil, fmt.Errorf("track %q: %w", t.Title, pkgerrors.ErrEmptyTrack)
		}
		t.Index = i
		out[i] = t
	}
	return &Catalog{tracks: out}, nil
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	return len(c.tracks)
}

// ByIndex returns the track at i. Out-of-range indices fall back to track 0
// rather than failing: a malformed index must never halt playback.
func (c *Catalog) ByIndex(i int) Track {
	if i < 0 || i >= len(c.tracks) {
		return c.tracks[0]
	}
	return c.tracks[i]
}

// Next returns the track after t, wrapping to the first.
func (c *Catalog) Next(t Track) Track {
	return c.tracks[(c.position(t)+1)%len(c.tracks)]
}

// Previous returns the track before t, wrapping to the last.
func (c *Catalog) Previous(t Track) Track {
	n := len(c.tracks)
	return c.tracks[(c.position(t)-1+n)%n]
}

// Titles returns the display titles in catalog order.
func (c *Catalog) Titles() []string {
	titles := make([]string, len(c.tracks))
	for i, t := range c.tracks {
		titles[i] = t.Title
	}
	return titles
}

func (c *Catalog) position(t Track) int {
	if t.Index < 0 || t.Index >= len(c.tracks) {
		return 0
	}
	return t.Index
}
