package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/viper"

	"github.com/npratt/hiit/internal/preset"
)

func TestWriteYAML_LoadsBack(t *testing.T) {
	chdirTemp(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	want := Default()
	want.Timer.Work = 40
	want.Timer.LeadIn = false
	want.Timer.Preset = "tabata"
	want.Timer.Tick = 500 * time.Millisecond
	want.Sound.Muted = true
	want.Notify.Command = "my-notify"
	want.Notify.Timeout = 2 * time.Second
	want.Share.BaseURL = "https://example.test"
	want.Paths.RuntimeDir = "/run/hiit-test"
	want.UserPresets = []preset.Preset{
		{ID: "emom", Name: "EMOM", WorkDuration: 40, RestDuration: 20, Rounds: 12},
	}

	var buf bytes.Buffer
	if err := want.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	if !strings.Contains(buf.String(), "tick: 500ms") {
		t.Errorf("expected durations written as strings, got:\n%s", buf.String())
	}

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	v := viper.New()
	v.Set("config", path)
	got, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config changed after write and load (-want +got):\n%s", diff)
	}
}
