package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/npratt/hiit/internal/daemon"
	"github.com/npratt/hiit/internal/share"
	"github.com/npratt/hiit/internal/timer"
)

// findSession resolves the session a control command acts on. An argument
// may be a session id or share URL. Without one, the only running session
// is used.
func findSession(runtimeDir string, args []string) (*daemon.SessionInfo, error) {
	if len(args) > 0 {
		id, err := share.ParseSessionURL(args[0])
		if err != nil {
			return nil, err
		}
		return daemon.FindSession(runtimeDir, id)
	}

	sessions, err := daemon.ListSessions(runtimeDir)
	if err != nil {
		return nil, err
	}

	switch len(sessions) {
	case 0:
		return nil, fmt.Errorf("no running sessions: %w", daemon.ErrSessionNotFound)
	case 1:
		return &sessions[0], nil
	default:
		ids := make([]string, len(sessions))
		for i, s := range sessions {
			ids[i] = s.SessionID
		}
		return nil, fmt.Errorf("%d sessions running, choose one of: %s", len(sessions), strings.Join(ids, ", "))
	}
}

// sessionClient returns a client for the session named by args.
func (a *app) sessionClient(cmd *cobra.Command, args []string) (*daemon.Client, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	info, err := findSession(runtimeDir(cfg), args)
	if err != nil {
		return nil, err
	}
	return daemon.NewClient(info.SocketPath), nil
}

func (a *app) newStatusCmd() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status [session]",
		Short: "Show a running session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.sessionClient(cmd, args)
			if err != nil {
				return err
			}

			status, err := client.Status()
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool(FlagJSON); asJSON {
				return writeJSON(cmd.OutOrStdout(), status)
			}

			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
	statusCmd.Flags().Bool(FlagJSON, false, "Output status as JSON")
	return statusCmd
}

// printStatus writes a human-readable session status.
func printStatus(w io.Writer, status *daemon.StatusResponse) {
	s := status.State
	fmt.Fprintf(w, "Session: %s\n", status.SessionID)
	if status.ShareURL != "" {
		fmt.Fprintf(w, "Share: %s\n", status.ShareURL)
	}
	fmt.Fprintf(w, "State: %s\n", stateLine(s))
	fmt.Fprintf(w, "Elapsed: %s of %s\n",
		timer.FormatClock(timer.Elapsed(s)), timer.FormatClock(timer.TotalTime(s.Config.WorkDuration, s.Config.RestDuration, s.TotalRounds)))
	fmt.Fprintf(w, "Devices: %d\n", status.Devices)
	fmt.Fprintf(w, "Uptime: %s\n", status.Uptime)
	fmt.Fprintf(w, "Started: %s\n", status.StartTime)
}

// stateLine summarises a state on one line, e.g.
// "WORK round 2 of 8, 00:14 left".
func stateLine(s timer.State) string {
	switch {
	case s.IsComplete():
		return fmt.Sprintf("%s, %d rounds", s.Phase.Label(), s.TotalRounds)
	case s.IsPaused():
		return fmt.Sprintf("PAUSED (%s) round %d of %d, %s left",
			s.PausedFrom.Label(), s.CurrentRound, s.TotalRounds, timer.FormatClock(s.TimeRemaining))
	case !s.IsRunning:
		return fmt.Sprintf("%s round %d of %d, not started", s.Phase.Label(), s.CurrentRound, s.TotalRounds)
	default:
		return fmt.Sprintf("%s round %d of %d, %s left",
			s.Phase.Label(), s.CurrentRound, s.TotalRounds, timer.FormatClock(s.TimeRemaining))
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// controlCommand describes one control verb.
type controlCommand struct {
	use   string
	short string
	call  func(*daemon.Client) (timer.State, error)
}

var controlCommands = []controlCommand{
	{"pause", "Pause a running session", (*daemon.Client).Pause},
	{"resume", "Resume a paused session", (*daemon.Client).Resume},
	{"skip", "End the current interval", (*daemon.Client).Skip},
	{"stop", "End a session early and rewind it", (*daemon.Client).Stop},
	{"reset", "Rewind a session to its start", (*daemon.Client).Reset},
	{"add-round", "Add a round to a session", (*daemon.Client).AddRound},
	{"remove-round", "Remove a round from a session", (*daemon.Client).RemoveRound},
}

func (a *app) newControlCmds() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(controlCommands))
	for _, cc := range controlCommands {
		cc := cc
		cmds = append(cmds, &cobra.Command{
			Use:   cc.use + " [session]",
			Short: cc.short,
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.sessionClient(cmd, args)
				if err != nil {
					return err
				}
				s, err := cc.call(client)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), stateLine(s))
				return nil
			},
		})
	}
	return cmds
}

func (a *app) newSessionsCmd() *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List running sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			dir := runtimeDir(cfg)
			out := cmd.OutOrStdout()

			if follow, _ := cmd.Flags().GetBool(FlagFollow); follow {
				return watchSessions(cmd, dir, a)
			}

			sessions, err := daemon.ListSessions(dir)
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool(FlagJSON); asJSON {
				if sessions == nil {
					sessions = []daemon.SessionInfo{}
				}
				return writeJSON(out, sessions)
			}

			if len(sessions) == 0 {
				fmt.Fprintln(out, "No running sessions")
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintln(out, sessionLine(&s))
			}
			return nil
		},
	}
	sessionsCmd.Flags().Bool(FlagJSON, false, "Output sessions as JSON")
	sessionsCmd.Flags().Bool(FlagFollow, false, "Watch sessions start and end")
	return sessionsCmd
}

// sessionLine describes a registered session on one line.
func sessionLine(s *daemon.SessionInfo) string {
	c := s.Config
	return fmt.Sprintf("%s  %s work / %s rest x %d  pid %d  started %s",
		s.SessionID,
		timer.FormatDuration(c.WorkDuration),
		timer.FormatDuration(c.RestDuration),
		c.TotalRounds,
		s.PID,
		s.StartTime.Format("15:04:05"),
	)
}

// watchSessions prints registry changes until the command is cancelled.
func watchSessions(cmd *cobra.Command, dir string, a *app) error {
	ctx := cmd.Context()
	changes, err := daemon.WatchSessions(ctx, dir, a.logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Watching sessions (Ctrl+C to stop)...")
	for change := range changes {
		switch change.Kind {
		case daemon.SessionAdded:
			if change.Info != nil {
				fmt.Fprintf(out, "+ %s\n", sessionLine(change.Info))
				continue
			}
			fmt.Fprintf(out, "+ %s\n", change.SessionID)
		case daemon.SessionRemoved:
			fmt.Fprintf(out, "- %s\n", change.SessionID)
		}
	}
	return nil
}
