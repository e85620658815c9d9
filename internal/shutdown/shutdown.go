// Package shutdown runs a headless session host until it finishes, its
// context ends, or the process is interrupted.
package shutdown

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// signals end a headless session.
var signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// RunWithGracefulShutdown calls runner and blocks until it returns. If a
// stop signal arrives or ctx ends first, runner's context is cancelled and
// shutdown (when non-nil) gets at most timeout to wind things down. A
// runner error is returned unless it is just the cancellation.
func RunWithGracefulShutdown(
	ctx context.Context,
	logger *slog.Logger,
	timeout time.Duration,
	runner func(ctx context.Context) error,
	shutdown func(ctx context.Context) error,
) error {
	sigCtx, stopSignals := signal.NotifyContext(ctx, signals...)
	defer stopSignals()

	runCtx, cancelRun := context.WithCancel(sigCtx)
	defer cancelRun()

	done := make(chan error, 1)
	go func() { done <- runner(runCtx) }()

	var (
		runErr   error
		finished bool
	)
	select {
	case runErr = <-done:
		if sigCtx.Err() == nil {
			return runErr
		}
		finished = true
	case <-sigCtx.Done():
	}

	if ctx.Err() != nil {
		logger.Info("session host cancelled, shutting down")
	} else {
		logger.Info("stop signal received, shutting down")
	}
	cancelRun()

	graceCtx, cancelGrace := context.WithTimeout(context.Background(), timeout)
	defer cancelGrace()

	if shutdown != nil {
		if err := shutdown(graceCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}

	if !finished {
		select {
		case runErr = <-done:
		case <-graceCtx.Done():
			logger.Warn("session host did not stop in time", "timeout", timeout)
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
