package cue

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// lockedBuffer is a bytes.Buffer safe for the playback goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func immediate(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func never(time.Duration) <-chan time.Time { return nil }

func TestDevicePlay(t *testing.T) {
	tests := []struct {
		cue   Cue
		bells int
	}{
		{WorkComplete, 5},
		{RestComplete, 5},
		{Warning, 1},
		{SessionComplete, 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.cue), func(t *testing.T) {
			out := &lockedBuffer{}
			d := Open(out, WithAfter(immediate))
			if err := d.Unlock(); err != nil {
				t.Fatalf("unlock: %v", err)
			}
			if err := d.Play(tt.cue); err != nil {
				t.Fatalf("play: %v", err)
			}
			// Let the pattern finish; Close would cancel the remaining tones.
			d.wg.Wait()
			_ = d.Close()

			if got := strings.Count(out.String(), bell); got != tt.bells {
				t.Errorf("expected %d bells, got %d", tt.bells, got)
			}
		})
	}
}

func TestDeviceLocked(t *testing.T) {
	out := &lockedBuffer{}
	d := Open(out, WithAfter(immediate))
	defer d.Close()

	if err := d.Play(Warning); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
	if out.String() != "" {
		t.Errorf("locked device wrote %q", out.String())
	}
}

func TestDeviceMuted(t *testing.T) {
	out := &lockedBuffer{}
	d := Open(out, WithAfter(immediate), WithMuted(true))
	if err := d.Unlock(); err != nil {
		t.Fatal(err)
	}
	if !d.Muted() {
		t.Fatal("expected muted device")
	}

	if err := d.Play(WorkComplete); err != nil {
		t.Errorf("muted play returned %v", err)
	}

	d.SetMuted(false)
	if err := d.Play(Warning); err != nil {
		t.Fatal(err)
	}
	_ = d.Close()

	if got := strings.Count(out.String(), bell); got != 1 {
		t.Errorf("expected only the unmuted warning, got %d bells", got)
	}
}

func TestDeviceCloseCancelsPending(t *testing.T) {
	out := &lockedBuffer{}
	d := Open(out, WithAfter(never))
	if err := d.Unlock(); err != nil {
		t.Fatal(err)
	}
	if err := d.Play(SessionComplete); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		_ = d.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("close blocked on pending tones")
	}

	if got := strings.Count(out.String(), bell); got != 1 {
		t.Errorf("expected only the first tone, got %d bells", got)
	}
	if err := d.Play(Warning); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := d.Unlock(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from unlock, got %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestDeviceUnlockError(t *testing.T) {
	d := Open(failingWriter{})
	defer d.Close()
	if err := d.Unlock(); err == nil {
		t.Error("expected unlock error")
	}
}

func TestDeviceUnknownCue(t *testing.T) {
	d := Open(&lockedBuffer{})
	defer d.Close()
	_ = d.Unlock()
	if err := d.Play("bogus"); err == nil {
		t.Error("expected error for unknown cue")
	}
}
