package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := WriteFile(t, dir, "logs/events.log", SampleEventLog)

	if path != filepath.Join(dir, "logs", "events.log") {
		t.Errorf("unexpected path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != SampleEventLog {
		t.Errorf("expected sample log written, got %q", data)
	}
}

func TestSetupTestDir(t *testing.T) {
	dir := SetupTestDir(t)
	info, err := os.Stat(filepath.Join(dir, ".hiit"))
	if err != nil || !info.IsDir() {
		t.Fatalf("expected .hiit directory, got %v", err)
	}
}

func TestSetupTestDirWithConfig(t *testing.T) {
	dir := SetupTestDirWithConfig(t, SampleConfigYAML)
	data, err := os.ReadFile(filepath.Join(dir, ".hiit", "config.yaml"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != SampleConfigYAML {
		t.Errorf("expected sample config written, got %q", data)
	}
}

func TestChdir(t *testing.T) {
	dir := SetupTestDir(t)
	orig, _ := os.Getwd()

	t.Run("moves into dir", func(t *testing.T) {
		Chdir(t, dir)
		wd, _ := os.Getwd()
		want, _ := filepath.EvalSymlinks(dir)
		got, _ := filepath.EvalSymlinks(wd)
		if got != want {
			t.Errorf("expected working dir %q, got %q", want, got)
		}
		if os.Getenv("XDG_CONFIG_HOME") == "" {
			t.Error("expected XDG_CONFIG_HOME isolated")
		}
	})

	if wd, _ := os.Getwd(); wd != orig {
		t.Errorf("expected working dir restored to %q, got %q", orig, wd)
	}
}

func TestAssertCalled(t *testing.T) {
	mock := NewMockRunner()
	mock.SetOutput("notify-send", nil)
	_, _ = mock.Run(context.Background(), "notify-send", "Session Complete!", "You did it! 🎉")

	AssertCalled(t, mock, "notify-send", "Session Complete!", "You did it! 🎉")
}
