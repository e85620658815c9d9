package daemon

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/npratt/hiit/internal/share"
	"github.com/npratt/hiit/internal/timer"
)

// mockServer starts a mock host that returns canned responses.
func mockServer(t *testing.T, sockPath string, handler func(req Request) Response) func() {
	t.Helper()

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	done := make(chan struct{})
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-done:
					return
				default:
					continue
				}
			}

			go func(c net.Conn) {
				defer func() { _ = c.Close() }()

				var req Request
				if err := json.NewDecoder(c).Decode(&req); err != nil {
					return
				}

				resp := handler(req)
				resp.ID = req.ID
				_ = json.NewEncoder(c).Encode(resp)
			}(conn)
		}
	}()

	return func() {
		close(done)
		_ = listener.Close()
		_ = os.Remove(sockPath)
	}
}

func TestClient_Status_Success(t *testing.T) {
	sockPath := shortSocketPath(t)
	state := timer.NewState(testConfig)

	cleanup := mockServer(t, sockPath, func(req Request) Response {
		if req.Method != MethodStatus {
			return Response{Error: "unexpected method"}
		}
		return Response{
			Result: StatusResponse{
				SessionID: "abc123XYZ0",
				HostID:    "host-1",
				ShareURL:  "https://hiit.app/s/abc123XYZ0",
				State:     state,
				Devices:   2,
				Uptime:    "1m30s",
				StartTime: "2024-01-15T10:00:00Z",
			},
		}
	})
	defer cleanup()

	client := NewClient(sockPath)
	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}

	if status.SessionID != "abc123XYZ0" {
		t.Errorf("expected session 'abc123XYZ0', got %q", status.SessionID)
	}
	if status.State != state {
		t.Errorf("expected state %+v, got %+v", state, status.State)
	}
	if status.Devices != 2 {
		t.Errorf("expected 2 devices, got %d", status.Devices)
	}
}

func TestClient_ControlMethods(t *testing.T) {
	sockPath := shortSocketPath(t)
	paused := timer.Pause(timer.NewState(testConfig))

	seen := make(chan string, 1)
	cleanup := mockServer(t, sockPath, func(req Request) Response {
		seen <- req.Method
		return Response{Result: paused}
	})
	defer cleanup()

	client := NewClient(sockPath)
	calls := map[string]func() (timer.State, error){
		MethodStart:       client.Start,
		MethodPause:       client.Pause,
		MethodResume:      client.Resume,
		MethodSkip:        client.Skip,
		MethodStop:        client.Stop,
		MethodReset:       client.Reset,
		MethodAddRound:    client.AddRound,
		MethodRemoveRound: client.RemoveRound,
	}
	for method, call := range calls {
		t.Run(method, func(t *testing.T) {
			got, err := call()
			if err != nil {
				t.Fatalf("%s() error: %v", method, err)
			}
			if got != paused {
				t.Errorf("expected %+v, got %+v", paused, got)
			}
			if m := <-seen; m != method {
				t.Errorf("expected method %q, got %q", method, m)
			}
		})
	}
}

func TestClient_Publish(t *testing.T) {
	sockPath := shortSocketPath(t)

	var got PublishParams
	cleanup := mockServer(t, sockPath, func(req Request) Response {
		if req.Method != MethodPublish {
			return Response{Error: "unexpected method"}
		}
		if err := decodeParams(req.Params, &got); err != nil {
			return Response{Error: err.Error()}
		}
		return Response{Result: got.State}
	})
	defer cleanup()

	state := timer.Start(timer.NewState(testConfig))
	result, err := NewClient(sockPath).Publish(state, "dev-2")
	if err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	if got.Origin != "dev-2" || got.State != state {
		t.Errorf("host received %+v", got)
	}
	if result != state {
		t.Errorf("expected result %+v, got %+v", state, result)
	}
}

func TestClient_ErrorResponse(t *testing.T) {
	sockPath := shortSocketPath(t)

	cleanup := mockServer(t, sockPath, func(req Request) Response {
		return Response{Error: "something went wrong"}
	})
	defer cleanup()

	_, err := NewClient(sockPath).Pause()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "something went wrong") {
		t.Errorf("expected error to contain host message, got %v", err)
	}
}

func TestClient_NotRunning(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "missing.sock")

	client := NewClient(sockPath)
	_, err := client.Status()
	if err == nil {
		t.Fatal("expected error when host not running")
	}
	if !strings.Contains(err.Error(), "session not running") {
		t.Errorf("expected 'session not running' error, got %v", err)
	}
	if client.IsRunning() {
		t.Error("IsRunning() should be false without a host")
	}
}

func TestClient_Timeout(t *testing.T) {
	sockPath := shortSocketPath(t)

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = listener.Close() }()

	// Accept but never respond
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		time.Sleep(time.Second)
	}()

	client := NewClient(sockPath)
	client.SetTimeout(100 * time.Millisecond)

	if _, err := client.Status(); err == nil {
		t.Error("expected timeout error")
	}
}

func TestClient_Subscribe(t *testing.T) {
	sockPath := shortSocketPath(t)
	session := share.Session{ID: "abc123XYZ0", HostID: "host-1"}
	state := timer.NewState(testConfig)

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = listener.Close() }()

	gotDevice := make(chan string, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		var req Request
		if err := json.NewDecoder(conn).Decode(&req); err != nil {
			return
		}
		var params SubscribeParams
		_ = decodeParams(req.Params, &params)
		gotDevice <- params.DeviceID

		enc := json.NewEncoder(conn)
		_ = enc.Encode(Response{Result: session})
		_ = enc.Encode(share.NewStateUpdate(state, "host-1"))
		_ = enc.Encode(share.NewStateUpdate(timer.Start(state), "host-1"))
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := NewClient(sockPath).Subscribe(ctx, "dev-2")
	if err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}
	defer func() { _ = sub.Close() }()

	if sub.Session.ID != session.ID {
		t.Errorf("expected session %s, got %s", session.ID, sub.Session.ID)
	}
	if d := <-gotDevice; d != "dev-2" {
		t.Errorf("expected device dev-2, got %q", d)
	}

	var msgs []share.Message
	for msg := range sub.Messages {
		msgs = append(msgs, msg)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].State != state || !msgs[1].State.IsRunning {
		t.Errorf("unexpected messages: %+v", msgs)
	}
	if err := sub.Err(); err != nil {
		t.Errorf("expected clean end of stream, got %v", err)
	}
}

func TestClient_SubscribeCancel(t *testing.T) {
	d, _ := startDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := NewClient(d.SocketPath()).Subscribe(ctx, "dev-2")
	if err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}

	<-sub.Messages // initial snapshot
	cancel()

	timeout := time.After(2 * time.Second)
	for open := true; open; {
		select {
		case _, open = <-sub.Messages:
		case <-timeout:
			t.Fatal("stream did not end after cancel")
		}
	}
	if err := sub.Err(); err != nil {
		t.Errorf("cancelled stream should not report an error, got %v", err)
	}
}
