// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/deploymaster/internal/deploy"
	"github.com/toeirei/deploymaster/internal/i18n"
	"github.com/toeirei/deploymaster/internal/plugin"
)

// newAuditCmd creates the 'audit' command. It reads deployed files back
// from a target and compares them against the workspace to detect drift.
func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit <target> [package...]",
		Short: "Audit a target for configuration drift",
		Long: `Reads the deployed files back from the named target, inverts the
configured transform and compares the result against the workspace copy.
Files that differ are reported as drift; unreadable files as missing or
errored. The target's transport must support read-back (local and sftp do).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := resolveWorkspace()
			if err != nil {
				return err
			}
			target := cfg.FindTarget(args[0])
			if target == nil {
				return fmt.Errorf(i18n.T("cli.error_unknown_target"), args[0])
			}
			files, err := resolveFiles(ws, args[1:])
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

			entries, err := orch.AuditTarget(files, target)
			if err != nil {
				return err
			}

			var match, drift, missing, failed int
			for _, e := range entries {
				switch e.Status {
				case deploy.AuditMatch:
					match++
				case deploy.AuditDrift:
					drift++
				case deploy.AuditMissing:
					missing++
				default:
					failed++
				}
			}
			ctx.Logf(i18n.T("cli.audit_summary"), len(entries), match, drift, missing, failed)
			if drift+missing+failed > 0 {
				return fmt.Errorf(i18n.T("cli.audit_summary"), len(entries), match, drift, missing, failed)
			}
			return nil
		},
	}
	return cmd
}
