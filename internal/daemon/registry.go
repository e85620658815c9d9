package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/renameio/v2"

	"github.com/npratt/hiit/internal/timer"
)

// ErrSessionNotFound is returned when no live host is registered for an id.
var ErrSessionNotFound = errors.New("session not found")

const (
	sessionsDir   = "sessions"
	infoExt       = ".json"
	socketExt     = ".sock"
	runtimeSubdir = "hiit"
)

// SessionInfo is written to the registry by a host so other processes can
// find its socket.
type SessionInfo struct {
	SessionID  string       `json:"session_id"`
	SocketPath string       `json:"socket_path"`
	HostID     string       `json:"host_id"`
	ShareURL   string       `json:"share_url,omitempty"`
	PID        int          `json:"pid"`
	StartTime  time.Time    `json:"start_time"`
	Config     timer.Config `json:"config"`
}

// DefaultRuntimeDir returns $XDG_RUNTIME_DIR/hiit, falling back to a
// per-user directory under the system temp dir.
func DefaultRuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, runtimeSubdir)
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("%s-%d", runtimeSubdir, os.Getuid()))
}

// SessionsDir returns the registry directory under runtimeDir.
func SessionsDir(runtimeDir string) string {
	return filepath.Join(runtimeDir, sessionsDir)
}

// SessionInfoPath returns the registry file for session id.
func SessionInfoPath(runtimeDir, id string) string {
	return filepath.Join(SessionsDir(runtimeDir), id+infoExt)
}

// SocketPath returns the socket a host of session id listens on.
func SocketPath(runtimeDir, id string) string {
	return filepath.Join(runtimeDir, id+socketExt)
}

// WriteSessionInfo registers info. The file is replaced atomically so
// readers and watchers never see a partial write.
func WriteSessionInfo(runtimeDir string, info *SessionInfo) error {
	dir := SessionsDir(runtimeDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session info: %w", err)
	}

	// Watchers and `hiit sessions` never see a half-written file.
	path := SessionInfoPath(runtimeDir, info.SessionID)
	if err := renameio.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write session info: %w", err)
	}
	return nil
}

// ReadSessionInfo reads a registry file.
func ReadSessionInfo(path string) (*SessionInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session info: %w", err)
	}

	var info SessionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("unmarshal session info: %w", err)
	}
	return &info, nil
}

// RemoveSessionInfo unregisters session id.
func RemoveSessionInfo(runtimeDir, id string) error {
	if err := os.Remove(SessionInfoPath(runtimeDir, id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session info: %w", err)
	}
	return nil
}

// FindSession returns the registered host of session id. Entries left
// behind by a host that crashed are removed and reported as not found.
func FindSession(runtimeDir, id string) (*SessionInfo, error) {
	info, err := ReadSessionInfo(SessionInfoPath(runtimeDir, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, err
	}
	if !IsProcessRunning(info.PID) {
		cleanupStale(runtimeDir, info)
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return info, nil
}

// ListSessions returns every live registered session, oldest first.
func ListSessions(runtimeDir string) ([]SessionInfo, error) {
	entries, err := os.ReadDir(SessionsDir(runtimeDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var sessions []SessionInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), infoExt) {
			continue
		}
		info, err := ReadSessionInfo(filepath.Join(SessionsDir(runtimeDir), entry.Name()))
		if err != nil {
			continue
		}
		if !IsProcessRunning(info.PID) {
			cleanupStale(runtimeDir, info)
			continue
		}
		sessions = append(sessions, *info)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})
	return sessions, nil
}

// cleanupStale removes the registry entry and socket of a dead host.
func cleanupStale(runtimeDir string, info *SessionInfo) {
	_ = RemoveSessionInfo(runtimeDir, info.SessionID)
	if info.SocketPath != "" {
		_ = os.Remove(info.SocketPath)
	}
}

// IsProcessRunning checks if the given PID represents a running process.
// On Unix, this sends signal 0 to check process existence.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix, FindProcess always succeeds - send signal 0 to check existence
	err = process.Signal(syscall.Signal(0))
	return err == nil
}
