// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/deploymaster/internal/i18n"
	"github.com/toeirei/deploymaster/internal/model"
	"github.com/toeirei/deploymaster/util/slicest"
)

// newTargetsCmd creates the 'targets' command listing the configured
// deployment targets.
func newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List configured deployment targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, i18n.T("cli.targets_header"))
			targets := make([]model.Target, len(cfg.Targets))
			copy(targets, cfg.Targets)
			sort.SliceStable(targets, func(i, j int) bool {
				return targets[i].SortOrder < targets[j].SortOrder
			})
			lines := slicest.Map(targets, func(t model.Target) string {
				return "  " + t.String()
			})
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

// newPackagesCmd creates the 'packages' command listing the configured
// file packages with their include patterns.
func newPackagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packages",
		Short: "List configured file packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, i18n.T("cli.packages_header"))
			pkgs := make([]model.Package, len(cfg.Packages))
			copy(pkgs, cfg.Packages)
			sort.SliceStable(pkgs, func(i, j int) bool {
				return pkgs[i].SortOrder < pkgs[j].SortOrder
			})
			lines := slicest.Map(pkgs, func(p model.Package) string {
				return fmt.Sprintf("  %s: %s", p.Name, strings.Join(p.Files, ", "))
			})
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
