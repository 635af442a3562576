package audio

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pcmdeck/internal/catalog"
	"pcmdeck/internal/control"
	"pcmdeck/internal/state"
)

// Ensure the shared state satisfies the engine's writer handle at compile time
var _ PlaybackWriter = (*state.PlaybackState)(nil)

// fakeSink records pushes and reports a fixed amount of free space, standing
// in for the hardware ring during engine tests.
type fakeSink struct {
	free   int
	pushed [][]byte
	err    error
}

func (s *fakeSink) Available() int {
	return s.free
}

func (s *fakeSink) Push(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	s.pushed = append(s.pushed, cp)
	return len(p), nil
}

func (s *fakeSink) pushedBytes() []byte {
	var all []byte
	for _, p := range s.pushed {
		all = append(all, p...)
	}
	return all
}

func patternPCM(n int) []byte {
	pcm := make([]byte, n)
	for i := range pcm {
		pcm[i] = byte(i % 251)
	}
	return pcm
}

func newTestEngine(t *testing.T, trackLens ...int) (*Engine, *fakeSink, *state.PlaybackState, *control.Transport) {
	t.Helper()

	tracks := make([]catalog.Track, len(trackLens))
	for i, n := range trackLens {
		tracks[i] = catalog.Track{Title: string(rune('A' + i)), PCM: patternPCM(n)}
	}
	cat, err := catalog.New(tracks)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}

	sink := &fakeSink{free: 1 << 20}
	st := state.New(100)
	tr := control.NewTransport()
	return NewEngine(sink, cat, st, tr, zerolog.Nop()), sink, st, tr
}

func TestEngineStartsPausedOnTrackZero(t *testing.T) {
	e, _, _, _ := newTestEngine(t, 10000, 10000)

	if e.playing {
		t.Error("engine started in Playing state")
	}
	if e.cur.track.Index != 0 || e.cur.offset != 0 {
		t.Errorf("cursor = track %d offset %d, want track 0 offset 0", e.cur.track.Index, e.cur.offset)
	}
}

func TestEnginePausedPushesSilence(t *testing.T) {
	e, sink, _, _ := newTestEngine(t, 10000)

	delay, err := e.cycle()
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if delay != idleDelay {
		t.Errorf("delay = %v, want %v", delay, idleDelay)
	}

	if len(sink.pushed) != 1 {
		t.Fatalf("pushed %d chunks, want 1", len(sink.pushed))
	}
	chunk := sink.pushed[0]
	if len(chunk) != chunkSize {
		t.Errorf("silence chunk is %d bytes, want %d", len(chunk), chunkSize)
	}
	if !bytes.Equal(chunk, make([]byte, len(chunk))) {
		t.Error("paused push contains non-zero samples")
	}
	if e.cur.offset != 0 {
		t.Errorf("cursor advanced to %d while paused", e.cur.offset)
	}
}

func TestEnginePausedSilenceNeverExceedsAvailable(t *testing.T) {
	e, sink, _, _ := newTestEngine(t, 10000)
	sink.free = 100

	if _, err := e.cycle(); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if got := len(sink.pushed[0]); got != 100 {
		t.Errorf("silence chunk is %d bytes, want 100", got)
	}
}

func TestEngineTogglePlayPause(t *testing.T) {
	e, _, st, tr := newTestEngine(t, 10000)

	tr.PlayPause.Raise()
	e.cycle()
	if !e.playing || !st.Playing() {
		t.Fatal("first toggle did not start playback")
	}

	tr.PlayPause.Raise()
	e.cycle()
	if e.playing || st.Playing() {
		t.Fatal("second toggle did not pause playback")
	}
}

func TestEngineFillScalesByVolume(t *testing.T) {
	e, sink, st, tr := newTestEngine(t, 10000)
	st.StepVolume(-50) // 100 -> 50

	tr.PlayPause.Raise()
	if _, err := e.cycle(); err != nil {
		t.Fatalf("cycle: %v", err)
	}

	if len(sink.pushed) != 1 {
		t.Fatalf("pushed %d chunks, want 1", len(sink.pushed))
	}
	want := make([]byte, chunkSize)
	Scale(want, patternPCM(10000)[:chunkSize], 50)
	if !bytes.Equal(sink.pushed[0], want) {
		t.Error("pushed chunk is not the gain-scaled source")
	}
	if e.cur.offset != chunkSize {
		t.Errorf("cursor offset = %d, want %d", e.cur.offset, chunkSize)
	}
}

func TestEngineDoesNotFillBelowHighWater(t *testing.T) {
	e, sink, _, tr := newTestEngine(t, 10000)
	sink.free = highWater // not strictly greater, so no fill

	tr.PlayPause.Raise()
	delay, err := e.cycle()
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if len(sink.pushed) != 0 {
		t.Errorf("pushed %d chunks below the high-water mark, want 0", len(sink.pushed))
	}
	if delay != fillDelay {
		t.Errorf("delay = %v, want %v", delay, fillDelay)
	}
}

func TestEngineNextForcesPlayingAndResets(t *testing.T) {
	// Next while paused on track 0 of a 2-track catalog selects track 1 and
	// resumes playback regardless of the prior state.
	e, _, st, tr := newTestEngine(t, 10000, 8000)
	st.SetProgress(37)

	tr.Next.Raise()
	e.cycle()

	if st.TrackIndex() != 1 {
		t.Errorf("TrackIndex = %d, want 1", st.TrackIndex())
	}
	if !e.playing || !st.Playing() {
		t.Error("Next did not force Playing")
	}
	if e.cur.track.Index != 1 || e.cur.total != 8000 {
		t.Errorf("cursor = track %d total %d, want track 1 total 8000", e.cur.track.Index, e.cur.total)
	}
}

func TestEngineNextWrapsAtEndOfCatalog(t *testing.T) {
	e, _, st, tr := newTestEngine(t, 10000, 8000)
	e.loadTrack(e.cat.ByIndex(1))

	tr.Next.Raise()
	e.cycle()

	if st.TrackIndex() != 0 {
		t.Errorf("TrackIndex = %d, want 0 (wraparound)", st.TrackIndex())
	}
}

func TestEnginePreviousThresholdBoundary(t *testing.T) {
	// The restart branch is exclusive: exactly 10% played still switches to
	// the previous track, 11% restarts the current one.
	tests := []struct {
		name        string
		offset      int
		wantTrack   int
		wantPlaying bool
	}{
		{"at exactly 10 percent switches", 1000, 1, true},
		{"above 10 percent restarts", 1100, 0, false},
		{"at start switches", 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, st, tr := newTestEngine(t, 10000, 8000)
			e.cur.offset = tt.offset

			tr.Previous.Raise()
			e.cycle()

			if got := int(st.TrackIndex()); got != tt.wantTrack {
				t.Errorf("TrackIndex = %d, want %d", got, tt.wantTrack)
			}
			if e.cur.offset != 0 {
				t.Errorf("offset = %d, want 0", e.cur.offset)
			}
			if st.Progress() != 0 {
				t.Errorf("Progress = %d, want 0", st.Progress())
			}
			// A same-track restart preserves the prior play/pause state; only
			// a real switch forces playback.
			if e.playing != tt.wantPlaying {
				t.Errorf("playing = %v, want %v", e.playing, tt.wantPlaying)
			}
		})
	}
}

func TestEnginePreviousRestartPreservesPlayingState(t *testing.T) {
	e, _, st, tr := newTestEngine(t, 10000)
	tr.PlayPause.Raise()
	e.cycle() // now playing
	e.cur.offset = 5000

	tr.Previous.Raise()
	e.cycle()

	if !e.playing || !st.Playing() {
		t.Error("restart while playing did not stay in Playing")
	}
	if e.cur.track.Index != 0 {
		t.Errorf("restart switched track to %d", e.cur.track.Index)
	}
}

func TestEngineSameCycleNextThenPrevious(t *testing.T) {
	// Fixed intra-cycle priority: Next commits first, then Previous evaluates
	// its threshold against the already-switched track (offset 0 <= 10%), so
	// the pair nets out to the original track.
	e, _, st, tr := newTestEngine(t, 10000, 8000)

	tr.Next.Raise()
	tr.Previous.Raise()
	e.cycle()

	if st.TrackIndex() != 0 {
		t.Errorf("TrackIndex = %d, want 0", st.TrackIndex())
	}
	if !e.playing {
		t.Error("both signals forced track switches, playback should be on")
	}
}

func TestEngineEndOfTrack(t *testing.T) {
	// Track "A" of 10000 bytes at volume 50: after the cursor consumes the
	// whole track the engine pauses, resets, and stays on the same track.
	e, sink, st, tr := newTestEngine(t, 10000, 8000)
	st.StepVolume(-50)

	tr.PlayPause.Raise()
	for i := 0; i < 100; i++ {
		if _, err := e.cycle(); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
		if !e.playing {
			break
		}
	}

	if e.playing || st.Playing() {
		t.Error("engine still playing after end of track")
	}
	if e.cur.offset != 0 {
		t.Errorf("offset = %d, want 0", e.cur.offset)
	}
	if st.Progress() != 0 {
		t.Errorf("Progress = %d, want 0", st.Progress())
	}
	if st.TrackIndex() != 0 {
		t.Errorf("TrackIndex = %d, want 0 (unchanged)", st.TrackIndex())
	}

	// Every pushed byte was audio: 10000 bytes in ceil(10000/512) chunks,
	// the last one short.
	want := make([]byte, 10000)
	Scale(want, patternPCM(10000), 50)
	if got := sink.pushedBytes(); !bytes.Equal(got, want) {
		t.Errorf("sink received %d bytes, want the full scaled track (%d bytes)", len(got), len(want))
	}
	if last := sink.pushed[len(sink.pushed)-1]; len(last) != 10000%chunkSize {
		t.Errorf("final chunk = %d bytes, want %d", len(last), 10000%chunkSize)
	}
}

func TestEngineProgressThrottle(t *testing.T) {
	e, _, st, tr := newTestEngine(t, 100000)

	now := time.Unix(1000, 0)
	e.now = func() time.Time { return now }

	tr.PlayPause.Raise()
	e.cycle()
	first := st.Progress()

	// Within the throttle window nothing is republished.
	now = now.Add(500 * time.Millisecond)
	e.cycle()
	e.cycle()
	if st.Progress() != first {
		t.Errorf("Progress republished within one second: %d -> %d", first, st.Progress())
	}

	// Past the window the fresh percentage lands.
	now = now.Add(600 * time.Millisecond)
	e.cycle()
	want := uint8(e.cur.offset * 100 / e.cur.total)
	if st.Progress() != want {
		t.Errorf("Progress = %d, want %d", st.Progress(), want)
	}
}

func TestEngineFatalSinkFault(t *testing.T) {
	e, sink, _, tr := newTestEngine(t, 10000)
	sink.err = errors.New("dma transfer fault")

	tr.PlayPause.Raise()
	if _, err := e.cycle(); err == nil {
		t.Fatal("cycle with a failing sink returned nil error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.Run(ctx); err == nil || errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run = %v, want the wrapped sink fault", err)
	}
}

func TestEngineRunStopsOnCancel(t *testing.T) {
	e, _, _, _ := newTestEngine(t, 10000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestEngineBadStoredIndexFallsBackToTrackZero(t *testing.T) {
	cat, err := catalog.New([]catalog.Track{{Title: "only", PCM: patternPCM(100)}})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	st := state.New(50)
	st.SetTrackIndex(200)

	e := NewEngine(&fakeSink{free: 1 << 20}, cat, st, control.NewTransport(), zerolog.Nop())
	if e.cur.track.Index != 0 {
		t.Errorf("cursor track = %d, want fallback 0", e.cur.track.Index)
	}
	if st.TrackIndex() != 0 {
		t.Errorf("TrackIndex = %d, want clamped 0", st.TrackIndex())
	}
}
