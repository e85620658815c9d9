package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/npratt/hiit/internal/share"
	"github.com/npratt/hiit/internal/timer"
)

const (
	// DefaultClientTimeout is the default timeout for client operations.
	DefaultClientTimeout = 5 * time.Second
)

// Client connects to a session host via Unix socket.
type Client struct {
	sockPath string
	timeout  time.Duration
}

// NewClient creates a new client for the host listening on sockPath.
func NewClient(sockPath string) *Client {
	return &Client{
		sockPath: sockPath,
		timeout:  DefaultClientTimeout,
	}
}

// SetTimeout sets the timeout for client operations.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// call sends a JSON-RPC request to the host and decodes the result into out.
func (c *Client) call(method string, params any, out any) error {
	conn, err := net.DialTimeout("unix", c.sockPath, c.timeout)
	if err != nil {
		return c.wrapConnError(err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}

	req := Request{Method: method, Params: params}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("read response: %w", c.wrapConnError(err))
	}
	return decodeResponse(&resp, out)
}

// decodeResponse converts a response's loosely typed result into out.
func decodeResponse(resp *Response, out any) error {
	if resp.Error != "" {
		return fmt.Errorf("host error: %s", resp.Error)
	}
	if out == nil {
		return nil
	}

	// Re-marshal and unmarshal to convert the result to its concrete type
	data, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

// wrapConnError converts connection errors to user-friendly messages.
func (c *Client) wrapConnError(err error) error {
	var sysErr syscall.Errno
	if errors.As(err, &sysErr) {
		switch sysErr {
		case syscall.ENOENT:
			return errors.New("session not running (socket not found)")
		case syscall.ECONNREFUSED:
			return errors.New("session not running (connection refused)")
		}
	}

	if os.IsNotExist(err) {
		return errors.New("session not running (socket not found)")
	}

	if errors.Is(err, os.ErrDeadlineExceeded) {
		return errors.New("session request timed out")
	}

	return fmt.Errorf("connect to session: %w", err)
}

// Status returns the hosted session and its state.
func (c *Client) Status() (*StatusResponse, error) {
	var status StatusResponse
	if err := c.call(MethodStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) control(method string) (timer.State, error) {
	var s timer.State
	err := c.call(method, nil, &s)
	return s, err
}

// Start starts or restarts the countdown.
func (c *Client) Start() (timer.State, error) { return c.control(MethodStart) }

// Pause pauses the countdown.
func (c *Client) Pause() (timer.State, error) { return c.control(MethodPause) }

// Resume resumes a paused countdown.
func (c *Client) Resume() (timer.State, error) { return c.control(MethodResume) }

// Skip ends the current phase immediately.
func (c *Client) Skip() (timer.State, error) { return c.control(MethodSkip) }

// Stop ends the session and returns it to its initial state.
func (c *Client) Stop() (timer.State, error) { return c.control(MethodStop) }

// Reset returns the session to its initial state.
func (c *Client) Reset() (timer.State, error) { return c.control(MethodReset) }

// AddRound adds a round to the session.
func (c *Client) AddRound() (timer.State, error) { return c.control(MethodAddRound) }

// RemoveRound removes a round from the session.
func (c *Client) RemoveRound() (timer.State, error) { return c.control(MethodRemoveRound) }

// Publish overwrites the hosted state with s on behalf of origin.
func (c *Client) Publish(s timer.State, origin string) (timer.State, error) {
	var out timer.State
	err := c.call(MethodPublish, PublishParams{State: s, Origin: origin}, &out)
	return out, err
}

// Subscription is an open state stream from a host.
type Subscription struct {
	// Session describes the hosted session.
	Session share.Session
	// Messages delivers snapshots until the stream ends. The first message
	// is the host's state at the time of subscribing.
	Messages <-chan share.Message

	conn      net.Conn
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	err       error
}

// Err returns the error that ended the stream, if any, once Messages is
// closed.
func (s *Subscription) Err() error {
	<-s.done
	return s.err
}

// Close ends the stream.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.quit)
		err = s.conn.Close()
	})
	<-s.done
	return err
}

// Subscribe opens a stream of state snapshots for deviceID. The stream ends
// when ctx is cancelled, the subscription is closed or the host goes away.
func (c *Client) Subscribe(ctx context.Context, deviceID string) (*Subscription, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, c.timeout)
	if err != nil {
		return nil, c.wrapConnError(err)
	}

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	req := Request{Method: MethodSubscribe, Params: SubscribeParams{DeviceID: deviceID}}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send request: %w", err)
	}

	decoder := json.NewDecoder(conn)
	var resp Response
	if err := decoder.Decode(&resp); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read response: %w", err)
	}
	var session share.Session
	if err := decodeResponse(&resp, &session); err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})

	msgs := make(chan share.Message, share.DefaultHubBuffer)
	sub := &Subscription{
		Session:  session,
		Messages: msgs,
		conn:     conn,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	go func() {
		defer close(sub.done)
		defer close(msgs)
		defer stop()
		for {
			var msg share.Message
			if err := decoder.Decode(&msg); err != nil {
				if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.EOF) {
					sub.err = err
				}
				return
			}
			select {
			case msgs <- msg:
			case <-ctx.Done():
				return
			case <-sub.quit:
				return
			}
		}
	}()

	return sub, nil
}

// IsRunning checks if the host is running by attempting to connect.
func (c *Client) IsRunning() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
