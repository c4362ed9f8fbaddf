// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface (CLI) for the Deploymaster
// application using the Cobra library. It defines the root command,
// subcommands (deploy, audit, targets, packages), flags, and the main
// entry point for execution.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/toeirei/deploymaster/buildvars"
	"github.com/toeirei/deploymaster/internal/config"
	"github.com/toeirei/deploymaster/internal/deploy"
	"github.com/toeirei/deploymaster/internal/i18n"
	"github.com/toeirei/deploymaster/internal/logging"
)

var cfgFile string
var cfg config.Config

// main is the entry point of the application.
func main() {
	if err := rootCmd.Execute(); err != nil {
		// The error is already printed by Cobra on failure.
		os.Exit(1)
	}
}

var rootCmd *cobra.Command

func init() {
	rootCmd = newRootCmd()
}

// newRootCmd creates and configures a new root cobra command.
// This function is used to create the main application command as well as
// fresh instances for isolated testing.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploymaster",
		Short: "Deploymaster pushes workspace files to configured targets.",
		Long: `Deploymaster deploys files from a local workspace to one or more
configured targets. Directory mappings rewrite destination paths, optional
transform modules rewrite file contents on the way out, and transport
plugins (local copy, SFTP) carry the bytes. A deploymaster.yaml file is
the source of truth for targets and file packages.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			defaults := map[string]any{"language": "en"}
			c, err := config.LoadConfig[config.Config](cmd, defaults, &cfgFile)
			if err != nil {
				return fmt.Errorf(i18n.T("cli.error_load_config"), err)
			}
			if err := c.Validate(); err != nil {
				return fmt.Errorf(i18n.T("cli.error_load_config"), err)
			}
			cfg = c

			i18n.Init(cfg.Language)
			logging.SetDebug(cfg.Debug)
			if cfg.AuditLog != "" {
				deploy.SetAuditWriter(&deploy.FileAuditWriter{Path: cfg.AuditLog})
			}
			return nil
		},
	}

	cmd.AddCommand(newDeployCmd())
	cmd.AddCommand(newAuditCmd())
	cmd.AddCommand(newTargetsCmd())
	cmd.AddCommand(newPackagesCmd())
	cmd.AddCommand(newInitCmd())

	cmd.Version = buildvars.VersionOrDefault("dev")

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is deploymaster.yaml in the user config dir, /etc/deploymaster or the current directory)")
	cmd.PersistentFlags().String("workspace", "", "workspace root directory (default is the current directory)")
	cmd.PersistentFlags().String("language", "", `output language ("en", "de")`)
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	return cmd
}

// resolveWorkspace returns the absolute workspace root, defaulting to the
// current directory when the configuration does not name one.
func resolveWorkspace() (string, error) {
	ws := cfg.Workspace
	if ws == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf(i18n.T("cli.error_resolve_workspace"), err)
		}
		ws = cwd
	}
	abs, err := filepath.Abs(ws)
	if err != nil {
		return "", fmt.Errorf(i18n.T("cli.error_resolve_workspace"), err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf(i18n.T("cli.error_resolve_workspace"), err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf(i18n.T("cli.error_resolve_workspace"), fmt.Errorf("%s is not a directory", abs))
	}
	return abs, nil
}
