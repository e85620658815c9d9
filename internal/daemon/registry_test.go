package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testInfo(runtimeDir, id string, pid int, start time.Time) *SessionInfo {
	return &SessionInfo{
		SessionID:  id,
		SocketPath: SocketPath(runtimeDir, id),
		HostID:     "host-" + id,
		PID:        pid,
		StartTime:  start,
		Config:     testConfig,
	}
}

func TestDefaultRuntimeDir(t *testing.T) {
	t.Run("uses XDG_RUNTIME_DIR", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
		if got := DefaultRuntimeDir(); got != "/run/user/1000/hiit" {
			t.Errorf("expected /run/user/1000/hiit, got %s", got)
		}
	})

	t.Run("falls back to temp dir", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "")
		got := DefaultRuntimeDir()
		if filepath.Dir(got) != filepath.Clean(os.TempDir()) {
			t.Errorf("expected a directory under %s, got %s", os.TempDir(), got)
		}
	})
}

func TestWriteReadSessionInfo(t *testing.T) {
	dir := t.TempDir()
	info := testInfo(dir, "abc123XYZ0", os.Getpid(), time.Now().UTC().Truncate(time.Second))

	if err := WriteSessionInfo(dir, info); err != nil {
		t.Fatalf("WriteSessionInfo() error: %v", err)
	}

	got, err := ReadSessionInfo(SessionInfoPath(dir, info.SessionID))
	if err != nil {
		t.Fatalf("ReadSessionInfo() error: %v", err)
	}
	if *got != *info {
		t.Errorf("expected %+v, got %+v", info, got)
	}

	if _, err := os.Stat(SessionInfoPath(dir, info.SessionID) + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after write")
	}
}

func TestReadSessionInfo_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSessionInfo(path); err == nil {
		t.Error("expected error for invalid json")
	}
}

func TestFindSession(t *testing.T) {
	dir := t.TempDir()

	t.Run("live host", func(t *testing.T) {
		info := testInfo(dir, "live000001", os.Getpid(), time.Now())
		if err := WriteSessionInfo(dir, info); err != nil {
			t.Fatal(err)
		}
		got, err := FindSession(dir, "live000001")
		if err != nil {
			t.Fatalf("FindSession() error: %v", err)
		}
		if got.HostID != info.HostID {
			t.Errorf("expected host %s, got %s", info.HostID, got.HostID)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := FindSession(dir, "nope000000")
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("stale entry is removed", func(t *testing.T) {
		info := testInfo(dir, "dead000001", 0, time.Now())
		if err := WriteSessionInfo(dir, info); err != nil {
			t.Fatal(err)
		}
		_, err := FindSession(dir, "dead000001")
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
		if _, err := os.Stat(SessionInfoPath(dir, "dead000001")); !os.IsNotExist(err) {
			t.Error("stale session info should be removed")
		}
	})
}

func TestListSessions(t *testing.T) {
	dir := t.TempDir()

	sessions, err := ListSessions(dir)
	if err != nil {
		t.Fatalf("ListSessions() on empty dir error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(sessions))
	}

	now := time.Now()
	for _, info := range []*SessionInfo{
		testInfo(dir, "second0001", os.Getpid(), now),
		testInfo(dir, "first00001", os.Getpid(), now.Add(-time.Minute)),
		testInfo(dir, "stale00001", 0, now.Add(-time.Hour)),
	} {
		if err := WriteSessionInfo(dir, info); err != nil {
			t.Fatal(err)
		}
	}
	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(SessionsDir(dir), "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	sessions, err = ListSessions(dir)
	if err != nil {
		t.Fatalf("ListSessions() error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 live sessions, got %d", len(sessions))
	}
	if sessions[0].SessionID != "first00001" || sessions[1].SessionID != "second0001" {
		t.Errorf("expected oldest first, got %s, %s", sessions[0].SessionID, sessions[1].SessionID)
	}
}

func TestRemoveSessionInfo(t *testing.T) {
	dir := t.TempDir()
	info := testInfo(dir, "gone000001", os.Getpid(), time.Now())
	if err := WriteSessionInfo(dir, info); err != nil {
		t.Fatal(err)
	}

	if err := RemoveSessionInfo(dir, info.SessionID); err != nil {
		t.Errorf("RemoveSessionInfo() error: %v", err)
	}
	if err := RemoveSessionInfo(dir, info.SessionID); err != nil {
		t.Errorf("removing twice should not fail, got %v", err)
	}
}

func TestIsProcessRunning(t *testing.T) {
	if !IsProcessRunning(os.Getpid()) {
		t.Error("current process should be running")
	}
	if IsProcessRunning(0) || IsProcessRunning(-1) {
		t.Error("non-positive pids should not be running")
	}
}
