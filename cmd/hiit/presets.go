package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/npratt/hiit/internal/preset"
	"github.com/npratt/hiit/internal/timer"
)

// sessionSummary is the JSON form of a resolved session.
type sessionSummary struct {
	Valid        bool   `json:"valid"`
	Error        string `json:"error,omitempty"`
	Warning      string `json:"warning,omitempty"`
	WorkDuration int    `json:"work_duration"`
	RestDuration int    `json:"rest_duration"`
	TotalRounds  int    `json:"total_rounds"`
	TotalTime    int    `json:"total_time"`
	LeadIn       bool   `json:"lead_in"`
}

func newSessionSummary(cfg timer.Config, v timer.Validation) sessionSummary {
	return sessionSummary{
		Valid:        v.Valid,
		Error:        v.Error,
		Warning:      v.Warning,
		WorkDuration: cfg.WorkDuration,
		RestDuration: cfg.RestDuration,
		TotalRounds:  cfg.TotalRounds,
		TotalTime:    timer.TotalTime(cfg.WorkDuration, cfg.RestDuration, cfg.TotalRounds),
		LeadIn:       cfg.LeadIn,
	}
}

func (a *app) newValidateCmd() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a session without starting it",
		Long: `Resolve the session that start would run from the config file and
flags, and report whether it is valid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			applySessionFlags(cmd, cfg)

			tcfg, err := cfg.Session()
			if err != nil {
				return err
			}
			tcfg, _ = preset.Clamp(tcfg)
			v := timer.ValidateConfig(tcfg)

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool(FlagJSON); asJSON {
				if err := writeJSON(out, newSessionSummary(tcfg, v)); err != nil {
					return err
				}
				return v.Err()
			}

			if err := v.Err(); err != nil {
				return err
			}
			printSession(out, tcfg)
			if v.Warning != "" {
				fmt.Fprintf(out, "Warning: %s\n", v.Warning)
			}
			return nil
		},
	}

	addSessionFlags(validateCmd)
	validateCmd.Flags().Bool(FlagJSON, false, "Output result as JSON")
	return validateCmd
}

func (a *app) newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <description>",
		Short: "Turn a description into a session",
		Long: fmt.Sprintf(`Parse a free-form session description such as
%q and print the work, rest and round counts it describes.`, preset.ParseExample),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := preset.Parse(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Work: %s\n", timer.FormatDuration(parsed.WorkDuration))
			fmt.Fprintf(out, "Rest: %s\n", timer.FormatDuration(parsed.RestDuration))
			fmt.Fprintf(out, "Rounds: %d\n", parsed.TotalRounds)
			fmt.Fprintf(out, "Total: %s\n", timer.FormatDuration(parsed.TotalTime))
			return nil
		},
	}
}

func (a *app) newPresetsCmd() *cobra.Command {
	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "List session presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			presets := cfg.Presets()

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool(FlagJSON); asJSON {
				return writeJSON(out, presets)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tWORK/REST\tROUNDS\tTOTAL")
			for _, p := range presets {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					p.ID, p.Name, p.Summary(), p.Rounds,
					timer.FormatDuration(timer.TotalTime(p.WorkDuration, p.RestDuration, p.Rounds)))
			}
			return tw.Flush()
		},
	}
	presetsCmd.Flags().Bool(FlagJSON, false, "Output presets as JSON")
	return presetsCmd
}

// printSession writes the shape of a session.
func printSession(w io.Writer, cfg timer.Config) {
	fmt.Fprintf(w, "Work: %s\n", timer.FormatDuration(cfg.WorkDuration))
	fmt.Fprintf(w, "Rest: %s\n", timer.FormatDuration(cfg.RestDuration))
	fmt.Fprintf(w, "Rounds: %d\n", cfg.TotalRounds)
	fmt.Fprintf(w, "Total: %s\n", timer.FormatDuration(timer.TotalTime(cfg.WorkDuration, cfg.RestDuration, cfg.TotalRounds)))
	if cfg.LeadIn {
		fmt.Fprintf(w, "Lead-in: %ds\n", timer.LeadInSeconds)
	}
}
