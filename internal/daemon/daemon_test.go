package daemon

import (
	"log/slog"
	"os"
	"testing"

	"github.com/npratt/hiit/internal/share"
)

func TestNew(t *testing.T) {
	session := share.Session{ID: "abc123XYZ0"}

	d := New(nil, nil, session, "/tmp/test.sock")

	if d == nil {
		t.Fatal("New() returned nil")
	}
	if d.SocketPath() != "/tmp/test.sock" {
		t.Errorf("expected sockPath /tmp/test.sock, got %s", d.SocketPath())
	}
	if d.Session().ID != session.ID {
		t.Errorf("expected session %s, got %s", session.ID, d.Session().ID)
	}
	if d.logger == nil {
		t.Error("logger should default to slog.Default()")
	}
	if d.hub == nil {
		t.Error("hub should default to a private hub")
	}
}

func TestNew_WithLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	d := New(nil, nil, share.Session{}, "", WithLogger(logger))

	if d.logger != logger {
		t.Error("logger not set correctly")
	}
}

func TestDaemon_Running_InitialState(t *testing.T) {
	d := New(nil, nil, share.Session{}, "")

	if d.Running() {
		t.Error("daemon should not be running initially")
	}
	if !d.StartTime().IsZero() {
		t.Error("start time should be zero before Start")
	}
}

func TestDecodeParams(t *testing.T) {
	var p SubscribeParams
	if err := decodeParams(map[string]any{"device_id": "dev-1"}, &p); err != nil {
		t.Fatalf("decodeParams() error: %v", err)
	}
	if p.DeviceID != "dev-1" {
		t.Errorf("expected device_id dev-1, got %q", p.DeviceID)
	}

	if err := decodeParams(nil, &p); err != nil {
		t.Errorf("nil params should be accepted, got %v", err)
	}
	if err := decodeParams("not an object", &p); err == nil {
		t.Error("expected error for non-object params")
	}
}
