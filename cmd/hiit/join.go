package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/npratt/hiit/internal/controller"
	"github.com/npratt/hiit/internal/cue"
	"github.com/npratt/hiit/internal/daemon"
	"github.com/npratt/hiit/internal/events"
	"github.com/npratt/hiit/internal/share"
	"github.com/npratt/hiit/internal/timer"
	"github.com/npratt/hiit/internal/tui"
)

func (a *app) newJoinCmd() *cobra.Command {
	joinCmd := &cobra.Command{
		Use:   "join <session-url|session-id>",
		Short: "Follow a running session on this device",
		Long: `Join a session hosted by another hiit process.

The joined session's countdown is mirrored here with its own sound and
notifications. Controls act on the hosted session, so every device sees
the same state.`,
		Args: cobra.ExactArgs(1),
		RunE: a.runJoin,
	}

	joinCmd.Flags().Bool(FlagTUI, false, "Enable terminal UI (default: when stdout is a terminal)")
	joinCmd.Flags().Bool(FlagMute, false, "Start with sound muted")

	return joinCmd
}

func (a *app) runJoin(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed(FlagMute) {
		cfg.Sound.Muted, _ = flags.GetBool(FlagMute)
	}
	tuiEnabled, _ := flags.GetBool(FlagTUI)
	if !flags.Changed(FlagTUI) {
		tuiEnabled = term.IsTerminal(int(os.Stdout.Fd()))
	}

	id, err := share.ParseSessionURL(args[0])
	if err != nil {
		return err
	}
	info, err := daemon.FindSession(runtimeDir(cfg), id)
	if err != nil {
		return err
	}

	logger := a.logger
	if tuiEnabled {
		debugLog, err := openFileLog(cfg.Paths.DebugLog, a.logLevel, cfg.LogRotation, "follower")
		if err != nil {
			return err
		}
		defer func() { _ = debugLog.Close() }()
		logger = debugLog.Logger
		slog.SetDefault(logger)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	client := daemon.NewClient(info.SocketPath)
	guest := share.NewGuestSession(cfg.Share.BaseURL, info.SessionID, info.HostID)
	sub, err := client.Subscribe(ctx, guest.DeviceID)
	if err != nil {
		return fmt.Errorf("join session %s: %w", info.SessionID, err)
	}
	defer func() { _ = sub.Close() }()

	session := sub.Session
	session.DeviceID = guest.DeviceID
	session.IsHost = false
	if session.ShareURL == "" {
		session.ShareURL = guest.ShareURL
	}

	router := events.NewRouter(events.DefaultBufferSize)
	router.SetLogger(logger)
	defer router.Close()

	// The host owns the countdown; this engine only mirrors it.
	engine := timer.NewEngine(info.Config, timer.WithoutTicking(), timer.WithLogger(logger))
	defer engine.Close()

	device := cue.Open(os.Stderr, cue.WithMuted(cfg.Sound.Muted), cue.WithLogger(logger))
	defer func() { _ = device.Close() }()

	ctrlOpts := []controller.Option{
		controller.WithRouter(router),
		controller.WithPlayer(device),
		controller.WithWarnings(cfg.Sound.Warnings),
		controller.WithNotifyTimeout(cfg.Notify.Timeout),
		controller.WithSession(session, nil),
		controller.WithLogger(logger),
	}
	if n := newNotifier(cfg, logger); n != nil {
		ctrlOpts = append(ctrlOpts, controller.WithNotifier(n))
	}
	ctrl := controller.New(engine, ctrlOpts...)

	updates := engine.Subscribe(64)
	defer engine.Unsubscribe(updates)
	eventCh := router.SubscribeBuffered(256)

	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("controller error", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		follow(sub, engine, router, session, logger)
	}()

	logger.Info("joined session", "session_id", session.ID, "device_id", session.DeviceID)

	remote := &remoteControls{client: client, engine: engine, router: router, logger: logger}
	opts := []tui.Option{
		tui.WithEvents(eventCh),
		tui.WithMuter(device),
		tui.WithSession(session),
		tui.WithLineMode(!tuiEnabled),
	}
	return tui.New(engine.State(), updates, remote, opts...).Run()
}

// follow applies the host's snapshots to engine until the stream ends, then
// closes engine so the UI finishes.
func follow(sub *daemon.Subscription, engine *timer.Engine, router *events.Router, session share.Session, logger *slog.Logger) {
	defer engine.Close()

	for msg := range sub.Messages {
		if msg.FromSelf(session.DeviceID) {
			continue
		}
		engine.Apply(msg.State)
		router.Emit(&events.SyncReceivedEvent{
			BaseEvent: events.NewSyncEvent(events.EventSyncReceived),
			SessionID: session.ID,
			Origin:    msg.Origin,
			Phase:     msg.State.Phase,
			Round:     msg.State.CurrentRound,
		})
	}

	if err := sub.Err(); err != nil {
		logger.Warn("session stream ended", "session_id", session.ID, "error", err)
		return
	}
	logger.Info("session stream ended", "session_id", session.ID)
}

// sessionControl is the part of daemon.Client that controls a hosted
// session.
type sessionControl interface {
	Start() (timer.State, error)
	Pause() (timer.State, error)
	Resume() (timer.State, error)
	Skip() (timer.State, error)
	Stop() (timer.State, error)
	Reset() (timer.State, error)
	AddRound() (timer.State, error)
	RemoveRound() (timer.State, error)
}

// stateApplier accepts the host's state after a control call.
type stateApplier interface {
	Apply(s timer.State)
}

// remoteControls sends the UI's controls to the host and mirrors the
// resulting state locally without waiting for the stream.
type remoteControls struct {
	client sessionControl
	engine stateApplier
	router *events.Router
	logger *slog.Logger
}

func (r *remoteControls) Start()       { r.do("start", r.client.Start) }
func (r *remoteControls) Pause()       { r.do("pause", r.client.Pause) }
func (r *remoteControls) Resume()      { r.do("resume", r.client.Resume) }
func (r *remoteControls) Skip()        { r.do("skip", r.client.Skip) }
func (r *remoteControls) Stop()        { r.do("stop", r.client.Stop) }
func (r *remoteControls) Reset()       { r.do("reset", r.client.Reset) }
func (r *remoteControls) AddRound()    { r.do("add-round", r.client.AddRound) }
func (r *remoteControls) RemoveRound() { r.do("remove-round", r.client.RemoveRound) }

func (r *remoteControls) do(name string, call func() (timer.State, error)) {
	s, err := call()
	if err != nil {
		r.logger.Error("session control failed", "control", name, "error", err)
		if r.router != nil {
			r.router.Emit(&events.ErrorEvent{
				BaseEvent: events.NewInternalEvent(events.EventError),
				Message:   fmt.Sprintf("%s failed: %v", name, err),
				Severity:  events.SeverityWarning,
				Component: "session",
			})
		}
		return
	}
	r.engine.Apply(s)
}
