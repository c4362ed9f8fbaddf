// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/deploymaster/internal/config"
	"github.com/toeirei/deploymaster/internal/i18n"
)

// newInitCmd creates the 'init' command. It writes the effective
// configuration (defaults merged with whatever was loaded) to the standard
// config location, making the file discoverable for editing.
func newInitCmd() *cobra.Command {
	var system bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the configuration file to its standard location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteConfigFile(&cfg, system); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.config_written"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&system, "system", false, "write to the system-wide location instead of the user one")
	return cmd
}
