// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package deploy

import (
	"fmt"
	"sort"

	"github.com/toeirei/deploymaster/internal/i18n"
	"github.com/toeirei/deploymaster/internal/model"
)

// Run deploys files to every given target in ascending sort order,
// logging progress through the context's output sink and recording audit
// entries. Per-target failures do not stop later targets; a cancellation
// request does. Results come back in run order.
func (o *Orchestrator) Run(files []string, targets []model.Target) []model.WorkspaceResult {
	ordered := make([]model.Target, len(targets))
	copy(ordered, targets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	results := make([]model.WorkspaceResult, 0, len(ordered))
	for i := range ordered {
		target := &ordered[i]
		res := o.RunForTarget(files, target)
		results = append(results, res)
		if res.Canceled {
			break
		}
	}
	return results
}

// RunForTarget deploys files to a single target, wiring progress logging
// and audit entries into the per-file hooks, and fires the target's
// post-deploy operations on success.
func (o *Orchestrator) RunForTarget(files []string, target *model.Target) model.WorkspaceResult {
	o.ctx.Logf(i18n.T("deploy.target_start"), target.String(), len(files))

	res := o.DeployWorkspace(files, target, model.DeployWorkspaceOptions{
		OnFileCompleted: func(r model.FileResult) {
			switch {
			case r.Canceled:
				o.ctx.Logf(i18n.T("deploy.file_canceled"), r.File)
			case r.Err != nil:
				o.ctx.Logf(i18n.T("deploy.file_failed"), r.File, r.Err)
				_ = logAction("deploy.file.failed", fmt.Sprintf("%s -> %s: %v", r.File, target.Name, r.Err))
			default:
				o.ctx.Logf(i18n.T("deploy.file_ok"), r.File, r.Destination)
			}
		},
	})

	switch {
	case res.Canceled:
		o.ctx.Logf(i18n.T("deploy.target_canceled"), target.String())
		_ = logAction("deploy.workspace.canceled", target.Name)
	case res.Err != nil:
		o.ctx.Logf(i18n.T("deploy.target_failed"), target.String(), res.Err)
		_ = logAction("deploy.workspace.failed", fmt.Sprintf("%s: %v", target.Name, res.Err))
	default:
		o.ctx.Logf(i18n.T("deploy.target_done"), target.String())
		_ = logAction("deploy.workspace.done", target.Name)
		if err := o.runDeployedOperations(target); err != nil {
			o.ctx.Logf(i18n.T("deploy.post_op_failed"), target.String(), err)
		}
	}

	return res
}
