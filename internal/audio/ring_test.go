package audio

import (
	"bytes"
	"errors"
	"testing"

	pkgerrors "pcmdeck/pkg/errors"
)

func TestRingPushRead(t *testing.T) {
	r := NewRing(8)

	if got := r.Available(); got != 8 {
		t.Fatalf("Available() = %d, want 8", got)
	}

	n, err := r.Push([]byte{1, 2, 3, 4, 5})
	if err != nil || n != 5 {
		t.Fatalf("Push = (%d, %v), want (5, nil)", n, err)
	}
	if got := r.Available(); got != 3 {
		t.Errorf("Available() = %d, want 3", got)
	}
	if got := r.Queued(); got != 5 {
		t.Errorf("Queued() = %d, want 5", got)
	}

	out := make([]byte, 5)
	r.Read(out)
	if !bytes.Equal(out, []byte{1, 2, 3, 4, 5}) {
		t.Errorf("Read = %v", out)
	}
	if got := r.Available(); got != 8 {
		t.Errorf("Available() after drain = %d, want 8", got)
	}
}

func TestRingPushTruncatesToFreeSpace(t *testing.T) {
	r := NewRing(4)

	n, err := r.Push([]byte{1, 2, 3, 4, 5, 6})
	if err != nil || n != 4 {
		t.Fatalf("Push = (%d, %v), want (4, nil)", n, err)
	}

	out := make([]byte, 4)
	r.Read(out)
	if !bytes.Equal(out, []byte{1, 2, 3, 4}) {
		t.Errorf("Read = %v", out)
	}
}

func TestRingWrapsAround(t *testing.T) {
	r := NewRing(4)

	r.Push([]byte{1, 2, 3})
	out := make([]byte, 2)
	r.Read(out) // readPos now 2

	if n, _ := r.Push([]byte{4, 5, 6}); n != 3 {
		t.Fatalf("Push after partial drain accepted %d bytes, want 3", n)
	}

	got := make([]byte, 4)
	r.Read(got)
	if !bytes.Equal(got, []byte{3, 4, 5, 6}) {
		t.Errorf("Read = %v, want [3 4 5 6]", got)
	}
}

func TestRingZeroFillsOnUnderrun(t *testing.T) {
	r := NewRing(8)
	r.Push([]byte{9, 9})

	out := []byte{7, 7, 7, 7}
	if n := r.Read(out); n != 4 {
		t.Fatalf("Read = %d, want 4 (the drain never stalls)", n)
	}
	if !bytes.Equal(out, []byte{9, 9, 0, 0}) {
		t.Errorf("Read = %v, want [9 9 0 0]", out)
	}
	if got := r.Underruns(); got != 2 {
		t.Errorf("Underruns() = %d, want 2", got)
	}
}

func TestRingClose(t *testing.T) {
	r := NewRing(8)
	r.Close()

	if got := r.Available(); got != 0 {
		t.Errorf("Available() on closed ring = %d, want 0", got)
	}
	if _, err := r.Push([]byte{1}); !errors.Is(err, pkgerrors.ErrSinkClosed) {
		t.Errorf("Push on closed ring error = %v, want ErrSinkClosed", err)
	}
}

func TestRingDefaultSize(t *testing.T) {
	r := NewRing(0)
	if got := r.Available(); got != DefaultRingSize {
		t.Errorf("Available() = %d, want %d", got, DefaultRingSize)
	}
}
