// Package daemon shares a running session with other processes over a Unix
// socket RPC and keeps a registry of the sessions hosted on this machine.
package daemon

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/npratt/hiit/internal/events"
	"github.com/npratt/hiit/internal/share"
	"github.com/npratt/hiit/internal/timer"
)

// Engine is the slice of timer.Engine the daemon drives.
type Engine interface {
	State() timer.State
	Start()
	Pause()
	Resume()
	Skip()
	Stop()
	Reset()
	AddRound()
	RemoveRound()
	Apply(timer.State)
}

// Daemon hosts one session on a Unix socket.
type Daemon struct {
	engine   Engine
	hub      *share.Hub
	session  share.Session
	router   *events.Router
	sockPath string
	logger   *slog.Logger
	limiter  *rate.Limiter

	listener  net.Listener
	startTime time.Time
	running   bool
	conns     sync.WaitGroup
	mu        sync.RWMutex
}

// Default limits on state-changing requests across all clients.
const (
	DefaultControlRate  = rate.Limit(20)
	DefaultControlBurst = 20
)

// Option configures a Daemon.
type Option func(*Daemon)

// WithRouter emits sync events to r.
func WithRouter(r *events.Router) Option {
	return func(d *Daemon) {
		d.router = r
	}
}

// WithRateLimit bounds state-changing requests (controls and publish) to
// r per second with the given burst. Status and subscribe are not limited.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(d *Daemon) {
		d.limiter = rate.NewLimiter(r, burst)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Daemon) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a Daemon serving session on sockPath. State updates reach
// subscribers through hub, which the session's controller publishes to. A
// nil hub gets a private one.
func New(engine Engine, hub *share.Hub, session share.Session, sockPath string, opts ...Option) *Daemon {
	d := &Daemon{
		engine:   engine,
		hub:      hub,
		session:  session,
		sockPath: sockPath,
		logger:   slog.Default(),
		limiter:  rate.NewLimiter(DefaultControlRate, DefaultControlBurst),
	}
	if d.hub == nil {
		d.hub = share.NewHub()
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Running returns whether the daemon is currently running.
func (d *Daemon) Running() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// StartTime returns when the daemon was started.
func (d *Daemon) StartTime() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.startTime
}

// SocketPath returns the Unix socket path.
func (d *Daemon) SocketPath() string {
	return d.sockPath
}

// Session returns the hosted session.
func (d *Daemon) Session() share.Session {
	return d.session
}

func (d *Daemon) emit(event events.Event) {
	if d.router != nil {
		d.router.Emit(event)
	}
}
