package cue

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Device errors.
var (
	ErrLocked = errors.New("audio device not unlocked")
	ErrClosed = errors.New("audio device closed")
)

// bell is the terminal bell; one pulse per tone.
const bell = "\a"

// Device plays cues as terminal bell pulses on a writer, keeping each
// pattern's timing. It must be unlocked before the first audible cue and
// closed by its owner.
type Device struct {
	mu       sync.Mutex
	w        io.Writer
	muted    bool
	unlocked bool
	closed   bool
	quit     chan struct{}
	wg       sync.WaitGroup
	after    func(time.Duration) <-chan time.Time
	logger   *slog.Logger
}

// DeviceOption configures a Device.
type DeviceOption func(*Device)

// WithMuted sets the initial mute state.
func WithMuted(muted bool) DeviceOption {
	return func(d *Device) {
		d.muted = muted
	}
}

// WithAfter replaces time.After for pattern scheduling (used by tests).
func WithAfter(fn func(time.Duration) <-chan time.Time) DeviceOption {
	return func(d *Device) {
		d.after = fn
	}
}

// WithLogger sets the device logger.
func WithLogger(logger *slog.Logger) DeviceOption {
	return func(d *Device) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Open creates a locked device writing to w.
func Open(w io.Writer, opts ...DeviceOption) *Device {
	d := &Device{
		w:      w,
		quit:   make(chan struct{}),
		after:  time.After,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Unlock primes the output with a silent write. Calling it again is a no-op.
func (d *Device) Unlock() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.unlocked {
		return nil
	}
	if _, err := d.w.Write(nil); err != nil {
		return fmt.Errorf("prime audio output: %w", err)
	}
	d.unlocked = true
	return nil
}

// SetMuted silences or restores cues. Patterns already playing finish.
func (d *Device) SetMuted(muted bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.muted = muted
}

// Muted reports the mute state.
func (d *Device) Muted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.muted
}

// Play schedules c and returns immediately. A muted device drops the cue.
func (d *Device) Play(c Cue) error {
	tones := Pattern(c)
	if tones == nil {
		return fmt.Errorf("unknown cue %q", c)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case d.closed:
		return ErrClosed
	case d.muted:
		return nil
	case !d.unlocked:
		return ErrLocked
	}

	d.logger.Debug("playing cue", "cue", c, "tones", len(tones))
	d.wg.Add(1)
	go d.play(tones)
	return nil
}

func (d *Device) play(tones []Tone) {
	defer d.wg.Done()

	var elapsed time.Duration
	for _, tone := range tones {
		if wait := tone.Offset - elapsed; wait > 0 {
			select {
			case <-d.after(wait):
			case <-d.quit:
				return
			}
			elapsed = tone.Offset
		}

		d.mu.Lock()
		_, err := io.WriteString(d.w, bell)
		d.mu.Unlock()
		if err != nil {
			d.logger.Warn("cue write failed", "error", err)
			return
		}
	}
}

// Close cancels pending tones and waits for playback goroutines to exit.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.quit)
	d.mu.Unlock()

	d.wg.Wait()
	return nil
}
