package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/npratt/hiit/internal/config"
	"github.com/npratt/hiit/internal/controller"
	"github.com/npratt/hiit/internal/cue"
	"github.com/npratt/hiit/internal/daemon"
	"github.com/npratt/hiit/internal/events"
	"github.com/npratt/hiit/internal/exec"
	"github.com/npratt/hiit/internal/notify"
	"github.com/npratt/hiit/internal/preset"
	"github.com/npratt/hiit/internal/share"
	"github.com/npratt/hiit/internal/shutdown"
	"github.com/npratt/hiit/internal/timer"
	"github.com/npratt/hiit/internal/tui"
)

// shutdownTimeout bounds a detached host's cleanup after a signal.
const shutdownTimeout = 5 * time.Second

// addSessionFlags adds the flags that choose a session's timings.
func addSessionFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Int(FlagWork, 0, "Work interval in seconds")
	flags.Int(FlagRest, 0, "Rest interval in seconds")
	flags.Int(FlagRounds, 0, "Number of rounds")
	flags.Bool(FlagLeadIn, true, "Open with a 10 second get-ready countdown")
	flags.String(FlagPreset, "", "Preset id (see hiit presets)")
	flags.String(FlagDescribe, "", fmt.Sprintf("Describe the session, e.g. %q", preset.ParseExample))
}

// applySessionFlags overrides the timer config with explicitly set session
// flags. Explicit timings replace a configured preset or description.
func applySessionFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	explicit := false
	if flags.Changed(FlagWork) {
		cfg.Timer.Work, _ = flags.GetInt(FlagWork)
		explicit = true
	}
	if flags.Changed(FlagRest) {
		cfg.Timer.Rest, _ = flags.GetInt(FlagRest)
		explicit = true
	}
	if flags.Changed(FlagRounds) {
		cfg.Timer.Rounds, _ = flags.GetInt(FlagRounds)
		explicit = true
	}
	if explicit {
		cfg.Timer.Preset = ""
		cfg.Timer.Describe = ""
	}

	if flags.Changed(FlagPreset) {
		cfg.Timer.Preset, _ = flags.GetString(FlagPreset)
		cfg.Timer.Describe = ""
	}
	if flags.Changed(FlagDescribe) {
		cfg.Timer.Describe, _ = flags.GetString(FlagDescribe)
	}
	if flags.Changed(FlagLeadIn) {
		cfg.Timer.LeadIn, _ = flags.GetBool(FlagLeadIn)
	}
}

// sessionConfig returns the validated timer config to run. Values above
// the setup limits are clamped.
func sessionConfig(cfg *config.Config, logger *slog.Logger) (timer.Config, timer.Validation, error) {
	tcfg, err := cfg.Session()
	if err != nil {
		return timer.Config{}, timer.Validation{}, err
	}

	if clamped, changed := preset.Clamp(tcfg); changed {
		logger.Warn("session clamped to limits",
			"work", clamped.WorkDuration, "rest", clamped.RestDuration, "rounds", clamped.TotalRounds)
		tcfg = clamped
	}

	v := timer.ValidateConfig(tcfg)
	return tcfg, v, v.Err()
}

func (a *app) newStartCmd() *cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start an interval session",
		Long: `Start an interval session and show it in the terminal.

The session is chosen by --describe, then --preset, then --work/--rest/--rounds,
falling back to the config file. Other terminals can control it with
hiit pause/resume/skip/stop and other devices can follow it with hiit join.

Use --detach to run the session in the background.`,
		RunE: a.runStart,
	}

	addSessionFlags(startCmd)
	startCmd.Flags().Bool(FlagTUI, false, "Enable terminal UI (default: when stdout is a terminal)")
	startCmd.Flags().Bool(FlagDetach, false, "Run the session in the background")
	startCmd.Flags().Bool(FlagMute, false, "Start with sound muted")
	startCmd.Flags().Bool(FlagNoNotify, false, "Disable desktop notifications")
	startCmd.Flags().Bool(FlagShare, false, "Show the share link for other devices")
	startCmd.Flags().String(FlagBaseURL, "", "Base URL for share links")

	return startCmd
}

func (a *app) runStart(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	applySessionFlags(cmd, cfg)

	flags := cmd.Flags()
	if flags.Changed(FlagMute) {
		cfg.Sound.Muted, _ = flags.GetBool(FlagMute)
	}
	if noNotify, _ := flags.GetBool(FlagNoNotify); noNotify {
		cfg.Notify.Enabled = false
	}
	if flags.Changed(FlagShare) {
		cfg.Share.Enabled, _ = flags.GetBool(FlagShare)
	}
	if flags.Changed(FlagBaseURL) {
		cfg.Share.BaseURL, _ = flags.GetString(FlagBaseURL)
	}

	tcfg, validation, err := sessionConfig(cfg, a.logger)
	if err != nil {
		return err
	}
	if validation.Warning != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", validation.Warning)
	}

	detach, _ := flags.GetBool(FlagDetach)
	detached := daemon.IsDaemonized()

	// Determine TUI mode: explicit flag > auto-detect from TTY
	tuiEnabled, _ := flags.GetBool(FlagTUI)
	if !flags.Changed(FlagTUI) && !detach && !detached {
		tuiEnabled = term.IsTerminal(int(os.Stdout.Fd()))
	}
	if tuiEnabled && detach {
		return errors.New("--tui and --detach flags are incompatible")
	}

	dir := runtimeDir(cfg)

	// The detaching parent picks the session so it can report it; the
	// child adopts it from the environment.
	session, err := hostSession(cfg.Share.BaseURL, detached)
	if err != nil {
		return err
	}
	sockPath := daemon.SocketPath(dir, session.ID)

	if detach && !detached {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create runtime directory: %w", err)
		}
		_, ready, pid, err := daemon.Daemonize(sockPath,
			envSessionID+"="+session.ID,
			envHostID+"="+session.HostID,
		)
		if err != nil {
			return fmt.Errorf("daemonize: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Session %s started in background (pid %d)\n", session.ID, pid)
		fmt.Fprintf(out, "Share: %s\n", session.ShareURL)
		if !ready {
			fmt.Fprintln(out, "Warning: session host did not answer yet; check hiit status")
		}
		return nil
	}

	// Keep log output off the terminal the UI draws on, and give a detached
	// host a file to log to.
	logger := a.logger
	if tuiEnabled || detached {
		role := "ui"
		if detached {
			role = "host"
		}
		debugLog, err := openFileLog(cfg.Paths.DebugLog, a.logLevel, cfg.LogRotation, role)
		if err != nil {
			return err
		}
		defer func() { _ = debugLog.Close() }()
		logger = debugLog.Logger
		slog.SetDefault(logger)
	}

	h, err := newHost(cfg, tcfg, session, dir, logger, detached)
	if err != nil {
		return err
	}
	defer h.Close()

	logger.Info("hiit starting",
		"version", version,
		"session_id", session.ID,
		"work", tcfg.WorkDuration,
		"rest", tcfg.RestDuration,
		"rounds", tcfg.TotalRounds,
		"detached", detached,
	)

	ctx := cmd.Context()
	if err := h.Start(ctx); err != nil {
		return err
	}

	if detached {
		return shutdown.RunWithGracefulShutdown(ctx, logger, shutdownTimeout,
			func(runCtx context.Context) error {
				select {
				case <-h.completed:
				case <-runCtx.Done():
				}
				return nil
			},
			func(context.Context) error {
				h.engine.Stop()
				return nil
			},
		)
	}

	opts := []tui.Option{
		tui.WithEvents(h.router.SubscribeBuffered(256)),
		tui.WithLineMode(!tuiEnabled),
	}
	if h.device != nil {
		opts = append(opts, tui.WithMuter(h.device))
	}
	if cfg.Share.Enabled {
		opts = append(opts, tui.WithSession(session))
	}

	updates := h.engine.Subscribe(64)
	defer h.engine.Unsubscribe(updates)

	return tui.New(h.engine.State(), updates, h.engine, opts...).Run()
}

// hostSession returns the session this process hosts: a new one, or for a
// detached child the one chosen by its parent.
func hostSession(baseURL string, detached bool) (share.Session, error) {
	if detached {
		id, hostID := os.Getenv(envSessionID), os.Getenv(envHostID)
		if id != "" && hostID != "" {
			return share.Session{
				ID:               id,
				HostID:           hostID,
				DeviceID:         hostID,
				ShareURL:         share.ShareURL(baseURL, id),
				ConnectedDevices: 1,
				IsHost:           true,
			}, nil
		}
	}
	return share.NewHostSession(baseURL)
}

// host owns every component of a session hosted by this process.
type host struct {
	cfg        *config.Config
	session    share.Session
	runtimeDir string
	logger     *slog.Logger

	engine  *timer.Engine
	router  *events.Router
	logSink *events.LogSink
	logging bool
	device  *cue.Device
	hub     *share.Hub
	ctrl    *controller.Controller
	dmn     *daemon.Daemon

	completed    chan struct{}
	completeOnce sync.Once

	cancel    context.CancelFunc
	group     *errgroup.Group
	closeOnce sync.Once
}

// newHost wires a session. Nothing runs until Start.
func newHost(cfg *config.Config, tcfg timer.Config, session share.Session, runtimeDir string, logger *slog.Logger, detached bool) (*host, error) {
	if err := os.MkdirAll(runtimeDir, 0700); err != nil {
		return nil, fmt.Errorf("create runtime directory: %w", err)
	}

	h := &host{
		cfg:        cfg,
		session:    session,
		runtimeDir: runtimeDir,
		logger:     logger,
		completed:  make(chan struct{}),
	}

	h.router = events.NewRouter(events.DefaultBufferSize)
	h.router.SetLogger(logger)
	h.logSink = events.NewLogSink(cfg.Paths.Log, events.Rotation{
		MaxSizeMB:  cfg.LogRotation.MaxSizeMB,
		MaxBackups: cfg.LogRotation.MaxBackups,
		MaxAgeDays: cfg.LogRotation.MaxAgeDays,
		Compress:   cfg.LogRotation.Compress,
	})

	h.engine = timer.NewEngine(tcfg, timer.WithInterval(cfg.Timer.Tick), timer.WithLogger(logger))

	// A detached host has no terminal to ring.
	var player cue.Player = cue.Discard
	if !detached {
		h.device = cue.Open(os.Stderr, cue.WithMuted(cfg.Sound.Muted), cue.WithLogger(logger))
		player = h.device
	}

	ctrlOpts := []controller.Option{
		controller.WithRouter(h.router),
		controller.WithPlayer(player),
		controller.WithWarnings(cfg.Sound.Warnings),
		controller.WithNotifyTimeout(cfg.Notify.Timeout),
		controller.WithLogger(logger),
		controller.WithOnComplete(func(timer.State) {
			h.completeOnce.Do(func() { close(h.completed) })
		}),
	}
	if n := newNotifier(cfg, logger); n != nil {
		ctrlOpts = append(ctrlOpts, controller.WithNotifier(n))
	}

	h.hub = share.NewHub()
	ctrlOpts = append(ctrlOpts, controller.WithSession(session, h.hub))
	h.ctrl = controller.New(h.engine, ctrlOpts...)

	h.dmn = daemon.New(h.engine, h.hub, session, daemon.SocketPath(runtimeDir, session.ID),
		daemon.WithRouter(h.router),
		daemon.WithLogger(logger),
	)

	return h, nil
}

// newNotifier returns the desktop notifier, or nil when notifications are
// disabled or unavailable.
func newNotifier(cfg *config.Config, logger *slog.Logger) controller.Notifier {
	if !cfg.Notify.Enabled {
		return nil
	}
	desktop := notify.NewDesktop(exec.NewExecRunner(),
		notify.WithCommand(cfg.Notify.Command),
		notify.WithLogger(logger),
	)
	if desktop.RequestPermission() != notify.PermissionGranted {
		return nil
	}
	return desktop
}

// Start runs the event log, controller and control socket, registers the
// session and starts the countdown.
func (h *host) Start(ctx context.Context) error {
	ctx, h.cancel = context.WithCancel(ctx)

	if err := h.logSink.Start(ctx, h.router.Subscribe()); err != nil {
		h.cancel()
		return fmt.Errorf("start log sink: %w", err)
	}
	h.logging = true

	h.group, ctx = errgroup.WithContext(ctx)
	h.group.Go(func() error {
		if err := h.ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("controller: %w", err)
		}
		return nil
	})
	// The countdown carries on without remote control if the socket fails.
	h.group.Go(func() error {
		if err := h.dmn.Start(ctx); err != nil {
			h.logger.Error("session server error", "error", err)
		}
		return nil
	})

	info := &daemon.SessionInfo{
		SessionID:  h.session.ID,
		SocketPath: h.dmn.SocketPath(),
		HostID:     h.session.HostID,
		ShareURL:   h.session.ShareURL,
		PID:        os.Getpid(),
		StartTime:  time.Now(),
		Config:     h.engine.Config(),
	}
	if err := daemon.WriteSessionInfo(h.runtimeDir, info); err != nil {
		h.logger.Warn("failed to write session info", "error", err)
	}

	h.engine.Start()
	return nil
}

// Close stops every component and unregisters the session. It is safe to
// call more than once.
func (h *host) Close() {
	h.closeOnce.Do(func() {
		if h.cancel != nil {
			h.cancel()
		}
		h.engine.Close()
		if h.group != nil {
			if err := h.group.Wait(); err != nil {
				h.logger.Error("session host error", "error", err)
			}
		}

		h.hub.Close()
		h.router.Close()
		if h.logging {
			_ = h.logSink.Stop()
		}
		if h.device != nil {
			_ = h.device.Close()
		}
		_ = daemon.RemoveSessionInfo(h.runtimeDir, h.session.ID)
	})
}
