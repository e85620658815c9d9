package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/npratt/hiit/internal/config"
	"github.com/npratt/hiit/internal/daemon"
)

var version = "dev"

// app holds what every command shares.
type app struct {
	v        *viper.Viper
	logger   *slog.Logger
	logLevel *slog.LevelVar
}

func newApp(logger *slog.Logger, logLevel *slog.LevelVar) *app {
	v := viper.New()
	v.SetEnvPrefix("HIIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	return &app{v: v, logger: logger, logLevel: logLevel}
}

// newRootCmd builds the command tree.
func (a *app) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hiit",
		Short: "Interval timer for HIIT, Tabata and Pomodoro sessions",
		Long: `hiit runs work/rest interval sessions in the terminal.

A session alternates work and rest intervals for a number of rounds, with
an optional get-ready countdown, audible cues in the final seconds and
desktop notifications at each transition. Running sessions can be
controlled from other terminals and joined by other devices on the same
machine.`,
		SilenceUsage: true,
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool(FlagVerbose, false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().String(FlagConfig, "", "Config file path (default: .hiit/config.yaml)")
	rootCmd.PersistentFlags().String(FlagLogFile, "", "Event log file path")
	rootCmd.PersistentFlags().String(FlagRuntimeDir, "", "Directory for session sockets and registry")

	// Bind all flags to viper
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = a.v.BindPFlag(f.Name, f)
	})

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hiit %s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(a.newStartCmd())
	rootCmd.AddCommand(a.newJoinCmd())
	rootCmd.AddCommand(a.newStatusCmd())
	for _, c := range a.newControlCmds() {
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(a.newSessionsCmd())
	rootCmd.AddCommand(a.newEventsCmd())
	rootCmd.AddCommand(a.newValidateCmd())
	rootCmd.AddCommand(a.newParseCmd())
	rootCmd.AddCommand(a.newPresetsCmd())
	rootCmd.AddCommand(a.newConfigCmd())

	return rootCmd
}

// loadConfig loads the layered config and applies the global flag overrides.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if a.v.GetBool(FlagVerbose) {
		a.logLevel.Set(slog.LevelDebug)
		a.logger.Debug("verbose logging enabled")
	}

	cfg, err := config.LoadConfig(a.v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Apply CLI flag overrides (only if explicitly set)
	flags := cmd.Flags()
	if flags.Changed(FlagLogFile) {
		cfg.Paths.Log, _ = flags.GetString(FlagLogFile)
	}
	if flags.Changed(FlagRuntimeDir) {
		cfg.Paths.RuntimeDir, _ = flags.GetString(FlagRuntimeDir)
	}

	return cfg, nil
}

// runtimeDir returns the configured runtime directory or the default.
func runtimeDir(cfg *config.Config) string {
	if cfg.Paths.RuntimeDir != "" {
		return cfg.Paths.RuntimeDir
	}
	return daemon.DefaultRuntimeDir()
}

func main() {
	logLevel := &slog.LevelVar{}
	logger := newLogger(os.Stderr, logLevel)

	rootCmd := newApp(logger, logLevel).newRootCmd()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
