// Package audio contains the real-time feed path: the gain stage, the
// DMA-style ring sink, the feed engine that keeps the sink full, and the
// gain-control consumer that applies knob events to the shared volume.
package audio

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"pcmdeck/internal/catalog"
	"pcmdeck/internal/control"
	pkgerrors "pcmdeck/pkg/errors"
)

// Feed geometry and pacing. chunkSize is the largest single push; the engine
// only fills while more than highWater bytes are free, so it never thrashes
// the sink with undersized writes.
const (
	chunkSize = 512
	highWater = 1024

	fillDelay = 5 * time.Millisecond
	idleDelay = 10 * time.Millisecond

	// restartThreshold is the played percentage above which Previous restarts
	// the current track instead of switching back.
	restartThreshold = 10

	progressInterval = time.Second
)

// Sink is the hardware audio output contract: query free space, push up to
// that many bytes of 16-bit little-endian PCM. Both are assumed infallible at
// steady state; a push error is a fatal fault with no recovery path.
type Sink interface {
	Available() int
	Push(p []byte) (int, error)
}

// Ensure Ring satisfies the sink contract at compile time
var _ Sink = (*Ring)(nil)

// PlaybackWriter is the engine's handle on the shared playback state. The
// engine is the sole writer of the playing, progress and track-index fields
// and only reads the knob-owned volume.
type PlaybackWriter interface {
	Volume() uint8
	TrackIndex() uint8
	SetPlaying(playing bool)
	SetProgress(percent uint8)
	SetTrackIndex(index uint8)
}

// cursor is the engine-local read position within the loaded track. It is
// replaced wholesale on every track switch, never partially migrated.
type cursor struct {
	track  catalog.Track
	offset int
	total  int
}

// Engine drives the control -> decision -> fill -> advance cycle that keeps
// the sink fed. It exclusively owns the sink handle and is the single
// consumer of the transport mailboxes; all shared state goes through the
// PlaybackWriter atomics.
type Engine struct {
	sink      Sink
	cat       *catalog.Catalog
	state     PlaybackWriter
	transport *control.Transport
	log       zerolog.Logger

	cur          cursor
	playing      bool
	lastProgress time.Time

	scratch [chunkSize]byte
	silence [chunkSize]byte

	now func() time.Time
}

// NewEngine creates the feed engine with the cursor at offset 0 of the track
// the shared state points at (a bad persisted index falls back to track 0).
func NewEngine(sink Sink, cat *catalog.Catalog, st PlaybackWriter, tr *control.Transport, logger zerolog.Logger) *Engine {
	e := &Engine{
		sink:      sink,
		cat:       cat,
		state:     st,
		transport: tr,
		log:       logger,
		now:       time.Now,
	}
	e.loadTrack(cat.ByIndex(int(st.TrackIndex())))
	return e
}

// Run drives feed cycles until the context is cancelled or the sink reports a
// fatal fault. There is no retry on sink errors: a missed feed deadline is
// audible and unrecoverable, so the whole feed subsystem is torn down.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info().
		Int("tracks", e.cat.Len()).
		Str("track", e.cur.track.Title).
		Msg("Audio feed engine started")

	for {
		delay, err := e.cycle()
		if err != nil {
			e.log.Error().Err(err).Msg("Fatal sink fault, stopping feed engine")
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// cycle performs one pass of the feed loop and returns how long to yield
// before the next pass: idleDelay while paused, fillDelay otherwise.
func (e *Engine) cycle() (time.Duration, error) {
	e.intake()

	avail := e.sink.Available()

	if !e.playing {
		// Keep the sink stocked with silence so stale buffer contents are
		// never replayed while paused.
		n := chunkSize
		if avail < n {
			n = avail
		}
		if _, err := e.sink.Push(e.silence[:n]); err != nil {
			return 0, pkgerrors.NewFeedError("push", e.cur.track.Title, err)
		}
		return idleDelay, nil
	}

	if avail > highWater {
		n := chunkSize
		if avail < n {
			n = avail
		}
		if remaining := e.cur.total - e.cur.offset; remaining < n {
			n = remaining
		}

		src := e.cur.track.PCM[e.cur.offset : e.cur.offset+n]
		Scale(e.scratch[:n], src, e.state.Volume())
		if _, err := e.sink.Push(e.scratch[:n]); err != nil {
			return 0, pkgerrors.NewFeedError("push", e.cur.track.Title, err)
		}
		e.cur.offset += n

		e.publishProgress()

		if e.cur.offset >= e.cur.total {
			e.cur.offset = 0
			e.playing = false
			e.state.SetPlaying(false)
			e.state.SetProgress(0)
			e.log.Info().Str("track", e.cur.track.Title).Msg("Track ended")
		}
	}

	return fillDelay, nil
}

// intake polls the transport mailboxes in fixed priority order: play/pause,
// next, previous. All three are checked every cycle regardless of state; two
// signals raised in the same cycle both fire, in that order, so the Previous
// threshold is evaluated against whatever track is current at that point.
func (e *Engine) intake() {
	if e.transport.PlayPause.TryTake() {
		e.playing = !e.playing
		e.log.Info().Bool("playing", e.playing).Msg("Play/pause")
	}

	if e.transport.Next.TryTake() {
		e.loadTrack(e.cat.Next(e.cur.track))
		e.playing = true
		e.log.Info().Str("track", e.cur.track.Title).Msg("Next track")
	}

	if e.transport.Previous.TryTake() {
		if e.cur.offset*100/e.cur.total > restartThreshold {
			// Restart the current track, keeping the prior play/pause state.
			e.cur.offset = 0
			e.state.SetProgress(0)
			e.log.Info().Str("track", e.cur.track.Title).Msg("Restarting current track")
		} else {
			e.loadTrack(e.cat.Previous(e.cur.track))
			e.playing = true
			e.log.Info().Str("track", e.cur.track.Title).Msg("Previous track")
		}
	}

	e.state.SetPlaying(e.playing)
}

// loadTrack commits a track switch: fresh cursor at offset 0, index and zero
// progress published immediately.
func (e *Engine) loadTrack(t catalog.Track) {
	e.cur = cursor{track: t, total: len(t.PCM)}
	e.state.SetTrackIndex(uint8(t.Index))
	e.state.SetProgress(0)
}

// publishProgress writes the played percentage at most once per second;
// per-cycle atomic writes would be redundant at display refresh rates.
func (e *Engine) publishProgress() {
	if e.now().Sub(e.lastProgress) < progressInterval {
		return
	}
	percent := e.cur.offset * 100 / e.cur.total
	if percent > 100 {
		percent = 100
	}
	e.state.SetProgress(uint8(percent))
	e.lastProgress = e.now()
	e.log.Debug().Int("percent", percent).Str("track", e.cur.track.Title).Msg("Playing")
}
