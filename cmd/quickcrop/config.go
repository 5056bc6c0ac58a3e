package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/menta2k/quickcrop/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(a))
	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a YAML file",
		Long: `Write the configuration currently in effect (defaults, the loaded
config file and QUICKCROP_ environment overrides) to path, or to
` + config.GetConfigPath() + ` when path is omitted.

An existing file is only replaced with --force.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GetConfigPath()
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}

			if err := a.cfg.SaveToFile(path); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "configuration written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
