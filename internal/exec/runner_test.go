package exec

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"
)

func fakeCommand(t *testing.T, stdout, stderr string, err error) {
	t.Helper()
	orig := runCommand
	t.Cleanup(func() { runCommand = orig })

	runCommand = func(cmd *exec.Cmd) error {
		_, _ = io.WriteString(cmd.Stdout, stdout)
		_, _ = io.WriteString(cmd.Stderr, stderr)
		return err
	}
}

func TestExecRunner_Run(t *testing.T) {
	exitErr := errors.New("exit status 1")

	tests := []struct {
		name       string
		stdout     string
		stderr     string
		err        error
		wantOutput string
		wantErr    string
	}{
		{
			name:       "success returns stdout",
			stdout:     "sent",
			wantOutput: "sent",
		},
		{
			name:    "failure names the program",
			err:     exitErr,
			wantErr: "notify-send: exit status 1",
		},
		{
			name:    "failure carries first stderr line",
			stderr:  "\ncannot open display\nmore detail\n",
			err:     exitErr,
			wantErr: "notify-send: exit status 1: cannot open display",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeCommand(t, tt.stdout, tt.stderr, tt.err)

			output, err := NewExecRunner().Run(context.Background(), "notify-send", "Work Time!")

			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("expected error %q, got %v", tt.wantErr, err)
				}
				if !errors.Is(err, tt.err) {
					t.Errorf("expected error to wrap %v", tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(output) != tt.wantOutput {
				t.Errorf("expected output %q, got %q", tt.wantOutput, output)
			}
		})
	}
}

func TestExecRunner_RealCommand(t *testing.T) {
	if _, err := LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	out, err := NewExecRunner().Run(context.Background(), "sh", "-c", "echo ok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(string(out)) != "ok" {
		t.Errorf("expected ok, got %q", out)
	}

	_, err = NewExecRunner().Run(context.Background(), "sh", "-c", "echo nope >&2; exit 3")
	if err == nil || !strings.HasSuffix(err.Error(), ": nope") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}
