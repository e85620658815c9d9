// Package testutil provides test infrastructure shared by the hiit packages:
// a recording command runner, a manual clock for the timer engine, config
// and event log fixtures, and filesystem helpers.
package testutil

import (
	"context"
	"fmt"
	"sync"
)

// CommandCall records one command invocation.
type CommandCall struct {
	Name string
	Args []string
}

// MockRunner stands in for exec.CommandRunner. Commands are matched by name
// only, since notifier commands carry the message text as arguments.
// Unknown commands fail.
type MockRunner struct {
	mu      sync.Mutex
	outputs map[string][]byte
	errs    map[string]error
	calls   []CommandCall
}

// NewMockRunner creates a MockRunner that knows no commands.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		outputs: make(map[string][]byte),
		errs:    make(map[string]error),
	}
}

// Run records the call and returns the configured result for name.
func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, CommandCall{Name: name, Args: append([]string(nil), args...)})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.errs[name]; ok {
		return nil, err
	}
	if out, ok := m.outputs[name]; ok {
		return out, nil
	}
	return nil, fmt.Errorf("unexpected command: %s", name)
}

// SetOutput makes name succeed with out.
func (m *MockRunner) SetOutput(name string, out []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errs, name)
	m.outputs[name] = out
}

// SetError makes name fail with err.
func (m *MockRunner) SetError(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[name] = err
}

// Calls returns a copy of the recorded calls.
func (m *MockRunner) Calls() []CommandCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CommandCall(nil), m.calls...)
}
