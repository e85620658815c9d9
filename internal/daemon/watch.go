package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind describes a registry change.
type ChangeKind string

const (
	SessionAdded   ChangeKind = "added"
	SessionRemoved ChangeKind = "removed"
)

// SessionChange is one registry change seen by WatchSessions.
type SessionChange struct {
	Kind      ChangeKind
	SessionID string
	// Info is set for SessionAdded.
	Info *SessionInfo
}

// WatchSessions streams registry changes under runtimeDir until ctx is
// cancelled. Sessions already registered are reported as added first.
func WatchSessions(ctx context.Context, runtimeDir string, logger *slog.Logger) (<-chan SessionChange, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir := SessionsDir(runtimeDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create registry directory: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	// Listing after Add means a session registered in between is seen by
	// one or both; known dedupes.
	existing, err := ListSessions(runtimeDir)
	if err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	out := make(chan SessionChange)
	go func() {
		defer close(out)
		defer func() { _ = fsWatcher.Close() }()

		known := make(map[string]bool)
		send := func(c SessionChange) bool {
			select {
			case out <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for i := range existing {
			info := existing[i]
			known[info.SessionID] = true
			if !send(SessionChange{Kind: SessionAdded, SessionID: info.SessionID, Info: &info}) {
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-fsWatcher.Events:
				if !ok {
					return
				}
				name := filepath.Base(event.Name)
				if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, infoExt) {
					continue
				}
				id := strings.TrimSuffix(name, infoExt)

				switch {
				case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
					if known[id] {
						continue
					}
					info, err := ReadSessionInfo(event.Name)
					if err != nil {
						logger.Debug("skipping unreadable session info", "path", event.Name, "error", err)
						continue
					}
					known[id] = true
					if !send(SessionChange{Kind: SessionAdded, SessionID: id, Info: info}) {
						return
					}

				case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
					if !known[id] {
						continue
					}
					delete(known, id)
					if !send(SessionChange{Kind: SessionRemoved, SessionID: id}) {
						return
					}
				}

			case err, ok := <-fsWatcher.Errors:
				if !ok {
					return
				}
				logger.Warn("session watcher error", "error", err)
			}
		}
	}()

	return out, nil
}
