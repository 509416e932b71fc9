// Package cmd - configuration commands
package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"basket-rules/core/ui"
	"basket-rules/internal/config"
	"basket-rules/internal/errors"
)

// defaultConfigFile is written by 'config init' without a path.
const defaultConfigFile = "basket-rules.json"

func newConfigCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default JSON config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigFile
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Newf(errors.TypeConfig, "%s already exists (use --force to overwrite)", path)
			}
			if err := config.Default().Save(path); err != nil {
				return errors.Config("write config file", err).WithContext("path", path)
			}
			ui.NewWriter(cmd.OutOrStdout(), a.cfg.Output.NoColor).Success("wrote %s", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(a.cfg, "", "  ")
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
