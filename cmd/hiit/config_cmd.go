package main

import (
	"github.com/spf13/cobra"

	"github.com/npratt/hiit/internal/config"
)

// FlagDefaults prints the built-in configuration instead of the effective one.
const FlagDefaults = "defaults"

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration hiit would use, after merging the global and
project config files, --config, HIIT_* environment variables and global
flags. The output is a valid config file:

  hiit config --defaults > .hiit/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults, _ := cmd.Flags().GetBool(FlagDefaults); defaults {
				return config.Default().WriteYAML(cmd.OutOrStdout())
			}
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			return cfg.WriteYAML(cmd.OutOrStdout())
		},
	}
	cmd.Flags().Bool(FlagDefaults, false, "Print built-in defaults, ignoring config files")
	return cmd
}
