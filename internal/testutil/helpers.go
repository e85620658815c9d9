package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/npratt/hiit/internal/config"
)

// WriteFile writes content to name under dir, creating parent directories,
// and returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// SetupTestDir returns a temporary project directory containing an empty
// config directory. It is removed when the test ends.
func SetupTestDir(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, config.ProjectConfigDir), 0755); err != nil {
		t.Fatal(err)
	}
	return dir
}

// SetupTestDirWithConfig is SetupTestDir with configYAML as the project
// config file.
func SetupTestDirWithConfig(t testing.TB, configYAML string) string {
	t.Helper()
	dir := SetupTestDir(t)
	WriteFile(t, dir, filepath.Join(config.ProjectConfigDir, config.ProjectConfigFile), configYAML)
	return dir
}

// Chdir moves the test into dir until it ends and points the global config
// lookup at an empty directory, so only dir's project config applies.
func Chdir(t testing.TB, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

// AssertCalled fails the test unless mock ran name with exactly args.
func AssertCalled(t testing.TB, mock *MockRunner, name string, args ...string) {
	t.Helper()
	calls := mock.Calls()
	for _, call := range calls {
		if call.Name == name && slices.Equal(call.Args, args) {
			return
		}
	}
	t.Errorf("expected call to %s %v not found in %v", name, args, calls)
}
