package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/npratt/hiit/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// fileLog is a logger writing to a rotating file.
type fileLog struct {
	Logger *slog.Logger
	Path   string
	out    io.WriteCloser
}

// Close closes the log file.
func (l *fileLog) Close() error {
	if l.out == nil {
		return nil
	}
	return l.out.Close()
}

// openFileLog returns a logger that writes to a rotating file at path
// instead of stderr, for the terminal UI and for detached session hosts.
// Every record carries role and pid since several hiit processes can share
// one file.
func openFileLog(path string, level slog.Leveler, rotation config.LogRotationConfig, role string) (*fileLog, error) {
	if path == "" {
		return nil, fmt.Errorf("no debug log path configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create debug log directory: %w", err)
	}

	out := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		Compress:   rotation.Compress,
	}

	return &fileLog{
		Logger: newLogger(out, level).With("role", role, "pid", os.Getpid()),
		Path:   path,
		out:    out,
	}, nil
}

// newLogger returns the JSON logger every hiit command uses.
func newLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
