package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/npratt/hiit/internal/events"
	"github.com/npratt/hiit/internal/share"
)

const (
	// maxMessageSize is the maximum size of a JSON-RPC message (1MB).
	maxMessageSize = 1024 * 1024
	// readTimeout is the timeout for reading a request from a client.
	readTimeout = 30 * time.Second
	// writeTimeout bounds each message written to a subscriber.
	writeTimeout = 5 * time.Second
	// socketPermissions are the file permissions for the Unix socket.
	socketPermissions = 0600
)

// ErrSocketInUse is returned by Start when another host already answers on
// the socket path.
var ErrSocketInUse = errors.New("socket in use by another session host")

// Start serves the session on its Unix socket until ctx is cancelled, then
// stops and waits for open connections to finish.
func (d *Daemon) Start(ctx context.Context) error {
	listener, err := d.listen()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.logger.Info("session shared", "session_id", d.session.ID, "socket", d.sockPath)
	go d.serve(ctx, listener)

	<-ctx.Done()
	err = d.Stop()
	d.conns.Wait()
	return err
}

// listen claims the socket path. A leftover socket from a crashed host is
// removed; one that still accepts connections is left alone.
func (d *Daemon) listen() (net.Listener, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return nil, errors.New("daemon already running")
	}

	if conn, err := net.DialTimeout("unix", d.sockPath, socketCheckInterval); err == nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %s", ErrSocketInUse, d.sockPath)
	}
	_ = os.Remove(d.sockPath)

	listener, err := net.Listen("unix", d.sockPath)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}
	if err := os.Chmod(d.sockPath, socketPermissions); err != nil {
		_ = listener.Close()
		_ = os.Remove(d.sockPath)
		return nil, fmt.Errorf("set socket permissions: %w", err)
	}

	d.listener = listener
	d.running = true
	d.startTime = time.Now()
	return listener, nil
}

// Stop closes the listener and removes the socket. Subscribe streams end
// when the context given to Start is cancelled.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}
	d.running = false

	var err error
	if d.listener != nil {
		err = d.listener.Close()
		d.listener = nil
	}
	_ = os.Remove(d.sockPath)

	d.logger.Info("session unshared", "session_id", d.session.ID)
	if err != nil {
		return fmt.Errorf("close listener: %w", err)
	}
	return nil
}

// serve accepts connections until the listener is closed.
func (d *Daemon) serve(ctx context.Context, listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || !d.Running() || errors.Is(err, net.ErrClosed) {
				return
			}
			d.logger.Warn("accept failed", "error", err)
			continue
		}

		d.conns.Add(1)
		go func() {
			defer d.conns.Done()
			d.handleConnection(ctx, conn)
		}()
	}
}

// handleConnection reads a request, dispatches it, and writes the response.
// A subscribe request keeps the connection open as a stream of snapshots.
func (d *Daemon) handleConnection(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return
	}

	decoder := json.NewDecoder(io.LimitReader(conn, maxMessageSize))
	encoder := json.NewEncoder(conn)

	var req Request
	if err := decoder.Decode(&req); err != nil {
		_ = encoder.Encode(Response{Error: fmt.Sprintf("decode request: %v", err)})
		return
	}

	if req.Method == MethodSubscribe {
		d.stream(ctx, conn, encoder, &req)
		return
	}

	resp := d.handleRequest(ctx, &req)
	resp.ID = req.ID
	_ = encoder.Encode(resp)
}

// stream writes the current snapshot and then every message published to
// the session until the client disconnects or the daemon stops.
func (d *Daemon) stream(ctx context.Context, conn net.Conn, encoder *json.Encoder, req *Request) {
	var params SubscribeParams
	if err := decodeParams(req.Params, &params); err != nil {
		_ = encoder.Encode(Response{Error: err.Error(), ID: req.ID})
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	msgs := d.hub.Subscribe(d.session.ID, share.DefaultHubBuffer)
	defer func() {
		d.hub.Unsubscribe(d.session.ID, msgs)
		d.devicesChanged()
	}()
	d.devicesChanged()
	d.logger.Info("device connected", "session_id", d.session.ID, "device_id", params.DeviceID)

	// The client sends nothing after the request; a read returning means it
	// went away.
	gone := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, conn)
		close(gone)
	}()

	write := func(v any) bool {
		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return false
		}
		return encoder.Encode(v) == nil
	}

	if !write(Response{Result: d.session, ID: req.ID}) {
		return
	}
	if !write(share.NewStateUpdate(d.engine.State(), d.session.DeviceID)) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-gone:
			d.logger.Info("device disconnected", "session_id", d.session.ID, "device_id", params.DeviceID)
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if !write(msg) {
				return
			}
		}
	}
}

func (d *Daemon) devicesChanged() {
	d.emit(&events.DevicesChangedEvent{
		BaseEvent: events.NewSyncEvent(events.EventDevicesChanged),
		SessionID: d.session.ID,
		Devices:   d.hub.Devices(d.session.ID),
	})
}
