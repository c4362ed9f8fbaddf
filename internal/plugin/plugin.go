// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package plugin defines the transport plugin contract, the registry that
// binds a target's declared type to a loaded plugin instance, and the
// deployment context shared by every instance during one session.
//
// A transport deploys single files and whole workspaces to one kind of
// destination. The reference local-filesystem transport lives in
// plugin/local; the SFTP transport in plugin/sftp. Both are selected by a
// registry lookup keyed on the target's type string.
package plugin

import (
	"fmt"

	"github.com/toeirei/deploymaster/internal/model"
)

// Info is static descriptive metadata about a transport. No side effects,
// no failure mode.
type Info struct {
	Name        string
	Description string
}

// Plugin is the capability contract every transport implements.
//
// DeployFile deploys exactly one file. Before any I/O it must check the
// context's cancellation flag (returning a canceled result without touching
// the filesystem when set) and resolve the destination through the path
// mapper (a mapping failure is an error result, never a panic). On
// proceeding it ensures the destination directory recursively, fires
// OnBeforeDeploy, performs the transport write and delivers exactly one
// terminal completion: success, error or canceled. The returned FileResult
// is that same terminal state.
//
// DeployWorkspace deploys files in list order by default, polling
// cancellation per iteration. A transport may batch internally but must
// preserve one OnFileCompleted per file and exactly one terminal workspace
// completion.
type Plugin interface {
	DeployFile(file string, target *model.Target, opts model.DeployFileOptions) model.FileResult
	DeployWorkspace(files []string, target *model.Target, opts model.DeployWorkspaceOptions) model.WorkspaceResult
	Info() Info
}

// FileFetcher is an optional capability for transports that can read a
// deployed file back. The deploy engine uses it for drift audits; the
// fetched bytes still carry the target's transform and are restored by the
// caller.
type FileFetcher interface {
	FetchFile(file string, target *model.Target, baseDirectory string) ([]byte, error)
}

// DirectoryError reports a destination directory that could not be
// created or cleared.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("destination directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// WriteError reports a transport-specific write failure.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ConfigurationError reports a target whose declared type resolves to no
// registered transport. It is fatal and surfaced before any file touches a
// transport.
type ConfigurationError struct {
	Target string
	Type   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("target %q: no transport plugin registered for type %q", e.Target, e.Type)
}

// Complete delivers a terminal file result through the OnCompleted hook (if
// set) and returns it. Transports route every exit path through this so the
// once-only guarantee holds by construction.
func Complete(opts model.DeployFileOptions, res model.FileResult) model.FileResult {
	if opts.OnCompleted != nil {
		opts.OnCompleted(res)
	}
	return res
}

// CompleteWorkspace is the workspace-level counterpart of Complete.
func CompleteWorkspace(opts model.DeployWorkspaceOptions, res model.WorkspaceResult) model.WorkspaceResult {
	if opts.OnCompleted != nil {
		opts.OnCompleted(res)
	}
	return res
}

// SequenceWorkspace is the default DeployWorkspace behavior: deploy files
// in list order, one OnFileCompleted per file, cancellation polled at the
// top of each file pipeline. Callbacks for file i complete before the
// transport call for file i+1 begins. Per-file errors stay local to the
// file; the workspace result is canceled only when the flag interrupted
// the sequence.
func SequenceWorkspace(p Plugin, files []string, target *model.Target, opts model.DeployWorkspaceOptions) model.WorkspaceResult {
	for _, file := range files {
		fileOpts := model.DeployFileOptions{
			BaseDirectory:  opts.BaseDirectory,
			OnBeforeDeploy: opts.OnBeforeDeployFile,
			OnCompleted:    opts.OnFileCompleted,
		}
		res := p.DeployFile(file, target, fileOpts)
		if res.Canceled {
			return CompleteWorkspace(opts, model.WorkspaceResult{Target: target, Canceled: true})
		}
	}
	return CompleteWorkspace(opts, model.WorkspaceResult{Target: target})
}
