// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/toeirei/deploymaster/internal/deploy"
	"github.com/toeirei/deploymaster/internal/i18n"
	"github.com/toeirei/deploymaster/internal/logging"
	"github.com/toeirei/deploymaster/internal/model"
	"github.com/toeirei/deploymaster/internal/plugin"
	"github.com/toeirei/deploymaster/internal/workspace"

	// Register the builtin transports.
	_ "github.com/toeirei/deploymaster/internal/plugin/local"
	_ "github.com/toeirei/deploymaster/internal/plugin/sftp"
)

// newDeployCmd creates the 'deploy' command. It resolves the requested
// packages to a file list and deploys it to the requested targets in
// sort order.
func newDeployCmd() *cobra.Command {
	var targetNames []string

	cmd := &cobra.Command{
		Use:   "deploy [package...]",
		Short: "Deploy workspace files to configured targets",
		Long: `Resolves the named packages (or all packages when none are given) to a
file list and deploys it to the named targets (or all targets). Targets
run one after another in their configured sort order; a failing target
does not stop the remaining ones. Press Ctrl-C to cancel cooperatively
after the file currently in flight.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := resolveWorkspace()
			if err != nil {
				return err
			}
			targets, err := selectTargets(targetNames)
			if err != nil {
				return err
			}
			files, err := resolveFiles(ws, args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("%s", i18n.T("cli.error_no_files"))
			}

			ctx := plugin.NewContext(ws, cfg.Targets, cfg.Packages, cmd.OutOrStdout())
			stop := handleInterrupt(ctx)
			defer stop()

			reg := plugin.NewRegistry(ctx)
			orch := deploy.NewOrchestrator(ctx, reg)

			results := orch.Run(files, targets)

			var ok, failed, canceled int
			for _, res := range results {
				switch {
				case res.Err != nil:
					failed++
				case res.Canceled:
					canceled++
				default:
					ok++
				}
			}
			ctx.Logf(i18n.T("cli.deploy_summary"), ok, failed, canceled)
			if failed > 0 {
				return fmt.Errorf(i18n.T("cli.deploy_summary"), ok, failed, canceled)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&targetNames, "target", "t", nil, "target to deploy to (repeatable, default all)")
	return cmd
}

// handleInterrupt wires SIGINT to cooperative cancellation and returns a
// function that releases the signal handler.
func handleInterrupt(ctx *plugin.Context) func() {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigc:
			logging.Infof("%s", i18n.T("cli.cancel_requested"))
			ctx.Cancel()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigc)
		close(done)
	}
}

// selectTargets returns the configured targets matching the given names,
// or all targets when no names are given.
func selectTargets(names []string) ([]model.Target, error) {
	if len(names) == 0 {
		return cfg.Targets, nil
	}
	var targets []model.Target
	for _, name := range names {
		t := cfg.FindTarget(name)
		if t == nil {
			return nil, fmt.Errorf(i18n.T("cli.error_unknown_target"), name)
		}
		targets = append(targets, *t)
	}
	return targets, nil
}

// resolveFiles expands the named packages (or all configured packages)
// into a deduplicated workspace-relative file list.
func resolveFiles(ws string, packageNames []string) ([]string, error) {
	pkgs := cfg.Packages
	if len(packageNames) > 0 {
		pkgs = nil
		for _, name := range packageNames {
			p := cfg.FindPackage(name)
			if p == nil {
				return nil, fmt.Errorf(i18n.T("cli.error_unknown_package"), name)
			}
			pkgs = append(pkgs, *p)
		}
	}
	return workspace.ResolvePackages(afero.NewOsFs(), ws, pkgs)
}
