package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// chdirTemp moves the test into an empty directory for the rest of the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
	return tmpDir
}

func writeProjectConfig(t *testing.T, content string) {
	t.Helper()
	if err := os.MkdirAll(ProjectConfigDir, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	configPath := filepath.Join(ProjectConfigDir, ProjectConfigFile)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	v := viper.New()
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	want := Default()
	if cfg.Timer != want.Timer {
		t.Errorf("Timer = %+v, want %+v", cfg.Timer, want.Timer)
	}
	if cfg.Notify != want.Notify {
		t.Errorf("Notify = %+v, want %+v", cfg.Notify, want.Notify)
	}
	if cfg.LogRotation != want.LogRotation {
		t.Errorf("LogRotation = %+v, want %+v", cfg.LogRotation, want.LogRotation)
	}
}

func TestLoadConfig_ProjectFile(t *testing.T) {
	chdirTemp(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	writeProjectConfig(t, `
timer:
  work: 20
  rest: 10
  rounds: 8
  lead_in: false
sound:
  muted: true
share:
  enabled: true
  base_url: "https://example.test"
presets:
  - id: emom
    name: EMOM
    work: 40
    rest: 20
    rounds: 12
`)

	v := viper.New()
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Timer.Work != 20 || cfg.Timer.Rest != 10 || cfg.Timer.Rounds != 8 {
		t.Errorf("Timer = %+v, want 20/10 x8", cfg.Timer)
	}
	if cfg.Timer.LeadIn {
		t.Error("Timer.LeadIn = true, want false from file")
	}
	if !cfg.Sound.Muted {
		t.Error("Sound.Muted = false, want true from file")
	}
	if !cfg.Sound.Warnings {
		t.Error("Sound.Warnings should keep its default")
	}
	if !cfg.Share.Enabled || cfg.Share.BaseURL != "https://example.test" {
		t.Errorf("Share = %+v", cfg.Share)
	}

	if len(cfg.UserPresets) != 1 {
		t.Fatalf("UserPresets has %d entries, want 1", len(cfg.UserPresets))
	}
	p := cfg.UserPresets[0]
	if p.ID != "emom" || p.Name != "EMOM" || p.WorkDuration != 40 || p.RestDuration != 20 || p.Rounds != 12 {
		t.Errorf("UserPresets[0] = %+v", p)
	}
}

func TestLoadConfig_GlobalThenProject(t *testing.T) {
	chdirTemp(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	globalDir := filepath.Join(xdg, GlobalConfigDir)
	if err := os.MkdirAll(globalDir, 0755); err != nil {
		t.Fatal(err)
	}
	global := "timer:\n  work: 60\n  rest: 30\n"
	if err := os.WriteFile(filepath.Join(globalDir, GlobalConfigFile), []byte(global), 0644); err != nil {
		t.Fatal(err)
	}
	writeProjectConfig(t, "timer:\n  rest: 5\n")

	cfg, err := LoadConfig(viper.New())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Timer.Work != 60 {
		t.Errorf("Timer.Work = %d, want 60 from global", cfg.Timer.Work)
	}
	if cfg.Timer.Rest != 5 {
		t.Errorf("Timer.Rest = %d, want 5 from project", cfg.Timer.Rest)
	}
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	chdirTemp(t)
	writeProjectConfig(t, "timer:\n  preset: hiit\n")

	configPath := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(configPath, []byte("timer:\n  preset: tabata\n"), 0644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	v := viper.New()
	v.Set("config", configPath)

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Timer.Preset != "tabata" {
		t.Errorf("Timer.Preset = %q, want %q", cfg.Timer.Preset, "tabata")
	}
}

func TestLoadConfig_ExplicitFileMissing(t *testing.T) {
	v := viper.New()
	v.Set("config", "/nonexistent/config.yaml")

	_, err := LoadConfig(v)
	if err == nil {
		t.Error("LoadConfig should fail for missing explicit config")
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	chdirTemp(t)
	writeProjectConfig(t, "timer:\n  rounds: 4\n")

	v := viper.New()
	v.SetEnvPrefix("HIIT")
	v.AutomaticEnv()

	// Simulate env var by setting directly in viper (env binding happens in CLI)
	v.Set("timer.rounds", 12)

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Timer.Rounds != 12 {
		t.Errorf("Timer.Rounds = %d, want 12", cfg.Timer.Rounds)
	}
}

func TestLoadConfig_DurationParsing(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		yaml    string
		wantDur time.Duration
		field   string
	}{
		{
			name:    "milliseconds",
			yaml:    "timer:\n  tick: 250ms",
			wantDur: 250 * time.Millisecond,
			field:   "timer.tick",
		},
		{
			name:    "seconds",
			yaml:    "notify:\n  timeout: 30s",
			wantDur: 30 * time.Second,
			field:   "notify.timeout",
		},
		{
			name:    "combined",
			yaml:    "notify:\n  timeout: 1m30s",
			wantDur: 90 * time.Second,
			field:   "notify.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(tmpDir, tt.name+".yaml")
			if err := os.WriteFile(configPath, []byte(tt.yaml), 0644); err != nil {
				t.Fatalf("write config failed: %v", err)
			}

			v := viper.New()
			v.Set("config", configPath)

			cfg, err := LoadConfig(v)
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}

			var got time.Duration
			switch tt.field {
			case "timer.tick":
				got = cfg.Timer.Tick
			case "notify.timeout":
				got = cfg.Notify.Timeout
			}

			if got != tt.wantDur {
				t.Errorf("got %v, want %v", got, tt.wantDur)
			}
		})
	}
}

func TestLoadConfig_PartialOverride(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(configPath, []byte("log_rotation:\n  max_size_mb: 50\n"), 0644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	v := viper.New()
	v.Set("config", configPath)

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.LogRotation.MaxSizeMB != 50 {
		t.Errorf("LogRotation.MaxSizeMB = %d, want 50", cfg.LogRotation.MaxSizeMB)
	}
	if cfg.LogRotation.MaxBackups != 3 {
		t.Errorf("LogRotation.MaxBackups = %d, want 3 (default)", cfg.LogRotation.MaxBackups)
	}
	if cfg.Paths.DebugLog != ".hiit/hiit-debug.log" {
		t.Errorf("Paths.DebugLog = %q, want %q (default)", cfg.Paths.DebugLog, ".hiit/hiit-debug.log")
	}
}

func TestGlobalConfigPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	if path := globalConfigPath(); path != "" {
		t.Errorf("globalConfigPath() = %q, want empty without a file", path)
	}

	dir := filepath.Join(xdg, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, GlobalConfigFile)
	if err := os.WriteFile(want, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if path := globalConfigPath(); path != want {
		t.Errorf("globalConfigPath() = %q, want %q", path, want)
	}
}

func TestProjectConfigPath(t *testing.T) {
	chdirTemp(t)

	if path := projectConfigPath(); path != "" {
		t.Errorf("projectConfigPath() = %q, want empty", path)
	}

	writeProjectConfig(t, "{}")
	if path := projectConfigPath(); path == "" {
		t.Error("projectConfigPath() should find .hiit/config.yaml")
	}
}

func TestLoadConfig_Normalize(t *testing.T) {
	chdirTemp(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	writeProjectConfig(t, `timer:
  tick: 0s
  preset: "  tabata "
notify:
  timeout: -1s
presets:
  - id: ""
    work: 10
    rest: 10
    rounds: 2
  - id: emom
    work: 40
    rest: 20
    rounds: 12
`)

	cfg, err := LoadConfig(viper.New())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Timer.Tick != time.Second {
		t.Errorf("Timer.Tick = %v, want default %v", cfg.Timer.Tick, time.Second)
	}
	if cfg.Notify.Timeout != 5*time.Second {
		t.Errorf("Notify.Timeout = %v, want default %v", cfg.Notify.Timeout, 5*time.Second)
	}
	if cfg.Timer.Preset != "tabata" {
		t.Errorf("Timer.Preset = %q, want trimmed %q", cfg.Timer.Preset, "tabata")
	}
	if len(cfg.UserPresets) != 1 {
		t.Fatalf("UserPresets has %d entries, want 1", len(cfg.UserPresets))
	}
	if p := cfg.UserPresets[0]; p.ID != "emom" || p.Name != "emom" {
		t.Errorf("UserPresets[0] = %+v, want emom named after its id", p)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(configPath, []byte("timer: [unclosed"), 0644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	v := viper.New()
	v.Set("config", configPath)

	if _, err := LoadConfig(v); err == nil {
		t.Error("LoadConfig should fail for malformed YAML")
	}
}
