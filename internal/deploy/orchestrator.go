// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package deploy drives workspace deployments: it resolves the transport
// for a target, runs the per-file pipelines through it, fires post-deploy
// operations and records audit entries. The transports themselves live
// under internal/plugin.
package deploy

import (
	"sync"

	"github.com/toeirei/deploymaster/internal/model"
	"github.com/toeirei/deploymaster/internal/plugin"
)

// Orchestrator owns one deployment session: a shared context and the
// registry of loaded transports.
type Orchestrator struct {
	ctx      *plugin.Context
	registry *plugin.Registry
}

// NewOrchestrator builds an orchestrator over an existing context and
// registry.
func NewOrchestrator(ctx *plugin.Context, registry *plugin.Registry) *Orchestrator {
	return &Orchestrator{ctx: ctx, registry: registry}
}

// Context returns the session's deployment context.
func (o *Orchestrator) Context() *plugin.Context { return o.ctx }

// DeployWorkspace deploys files to target through its transport.
//
// The guarantees held at this layer regardless of which transport runs:
// an unresolvable target type fails before any transport I/O, cancellation
// already requested short-circuits with a canceled completion, and the
// workspace-level OnCompleted fires exactly once even if a transport
// misbehaves.
func (o *Orchestrator) DeployWorkspace(files []string, target *model.Target, opts model.DeployWorkspaceOptions) model.WorkspaceResult {
	opts.OnCompleted = onceWorkspace(opts.OnCompleted)

	inst, err := o.registry.Resolve(target)
	if err != nil {
		return plugin.CompleteWorkspace(opts, model.WorkspaceResult{Target: target, Err: err})
	}

	if o.ctx.IsCancelling() {
		return plugin.CompleteWorkspace(opts, model.WorkspaceResult{Target: target, Canceled: true})
	}

	res := inst.DeployWorkspace(files, target, opts)

	// Backstop: a conforming transport has already delivered the terminal
	// completion; this is a no-op then.
	plugin.CompleteWorkspace(opts, res)
	return res
}

// DeployFile deploys a single file to target through its transport.
func (o *Orchestrator) DeployFile(file string, target *model.Target, opts model.DeployFileOptions) model.FileResult {
	inst, err := o.registry.Resolve(target)
	if err != nil {
		return plugin.Complete(opts, model.FileResult{File: file, Target: target, Err: err})
	}
	return inst.DeployFile(file, target, opts)
}

// onceWorkspace wraps a workspace completion hook so repeated invocations
// collapse to the first.
func onceWorkspace(fn func(model.WorkspaceResult)) func(model.WorkspaceResult) {
	if fn == nil {
		return nil
	}
	var once sync.Once
	return func(res model.WorkspaceResult) {
		once.Do(func() { fn(res) })
	}
}
