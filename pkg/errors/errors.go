package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNoTracks           = errors.New("catalog has no tracks")
	ErrEmptyTrack         = errors.New("track has no PCM data")
	ErrInvalidFormat      = errors.New("unsupported audio format")
	ErrSampleRateMismatch = errors.New("sample rate does not match output rate")
	ErrSinkClosed         = errors.New("audio sink is closed")
)

// FeedError wraps a fatal fault in the audio feed path with the operation and
// track it occurred on. Feed faults are never retried: an underrun deadline
// miss is not a recoverable I/O error.
type FeedError struct {
	Op    string // Operation that failed ("push", "available")
	Track string // Track title if applicable
	Err   error  // Underlying error
}

func (e *FeedError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("%s failed on track %q: %v", e.Op, e.Track, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// NewFeedError creates a new FeedError
func NewFeedError(op, track string, err error) *FeedError {
	return &FeedError{Op: op, Track: track, Err: err}
}

// LoadError represents an error while building the catalog from audio assets
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load error at %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
