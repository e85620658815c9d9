package daemon

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const (
	// daemonEnvVar is set in the child process to mark it as the detached
	// session host.
	daemonEnvVar = "HIIT_DAEMONIZED"

	// socketWaitTimeout is how long the parent waits for the socket.
	socketWaitTimeout = 2 * time.Second

	// socketCheckInterval is how often to check for socket availability.
	socketCheckInterval = 50 * time.Millisecond
)

// ErrHostExited is returned when a detached host exits before its socket
// comes up.
var ErrHostExited = errors.New("session host exited during startup")

// Daemonize re-executes the current command as a detached background
// process. env is appended to the child's environment.
//
// In the parent it returns shouldExit=true with the child's pid once the
// child is listening on socketPath (or the wait times out; ready reports
// which). A child that exits first is reported as ErrHostExited. In the
// child it returns shouldExit=false and the caller carries on hosting the
// session.
func Daemonize(socketPath string, env ...string) (shouldExit, ready bool, pid int, err error) {
	if IsDaemonized() {
		return false, true, os.Getpid(), nil
	}

	executable, err := os.Executable()
	if err != nil {
		return false, false, 0, fmt.Errorf("get executable path: %w", err)
	}

	cmd := exec.Command(executable, os.Args[1:]...)
	cmd.Env = append(append(os.Environ(), env...), daemonEnvVar+"=1")

	// Detach from terminal
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	// Create a new session (setsid equivalent)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := cmd.Start(); err != nil {
		return false, false, 0, fmt.Errorf("start background session: %w", err)
	}
	childPID := cmd.Process.Pid

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	err = waitForSocketReady(socketPath, socketWaitTimeout, exited)
	if errors.Is(err, ErrHostExited) {
		return true, false, childPID, err
	}
	return true, err == nil, childPID, nil
}

// IsDaemonized returns true if the current process is running as a daemonized child.
func IsDaemonized() bool {
	return os.Getenv(daemonEnvVar) == "1"
}

// waitForSocketReady waits for the socket to accept connections. It gives
// up early when exited delivers.
func waitForSocketReady(socketPath string, timeout time.Duration, exited <-chan error) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(socketCheckInterval)
	defer ticker.Stop()

	for {
		conn, err := net.DialTimeout("unix", socketPath, socketCheckInterval)
		if err == nil {
			_ = conn.Close()
			return nil
		}

		select {
		case err := <-exited:
			if err != nil {
				return fmt.Errorf("%w: %v", ErrHostExited, err)
			}
			return ErrHostExited
		case <-deadline.C:
			return fmt.Errorf("socket not available after %v", timeout)
		case <-ticker.C:
		}
	}
}
