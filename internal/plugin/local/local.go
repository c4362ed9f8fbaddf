// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package local is the reference local-filesystem transport. It is backed
// by afero so the full deploy pipeline can be exercised against an
// in-memory filesystem in tests.
package local

import (
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/toeirei/deploymaster/internal/model"
	"github.com/toeirei/deploymaster/internal/pathmap"
	"github.com/toeirei/deploymaster/internal/plugin"
	"github.com/toeirei/deploymaster/internal/transform"
)

// TypeTag is the target type string this transport answers to.
const TypeTag = "local"

type localPlugin struct {
	ctx *plugin.Context
	fs  afero.Fs
}

// New builds the transport over the OS filesystem.
func New(ctx *plugin.Context) plugin.Plugin {
	return NewWithFs(ctx, afero.NewOsFs())
}

// NewWithFs builds the transport over an explicit filesystem.
func NewWithFs(ctx *plugin.Context, fs afero.Fs) plugin.Plugin {
	return &localPlugin{ctx: ctx, fs: fs}
}

func (p *localPlugin) Info() plugin.Info {
	return plugin.Info{
		Name:        "local",
		Description: "copies workspace files to a local directory",
	}
}

// DeployFile runs the per-file pipeline: cancel check, path resolution,
// directory creation, transform, write. Every exit path delivers exactly
// one terminal completion.
func (p *localPlugin) DeployFile(file string, target *model.Target, opts model.DeployFileOptions) model.FileResult {
	res := model.FileResult{File: file, Target: target}

	if p.ctx.IsCancelling() {
		res.Canceled = true
		return plugin.Complete(opts, res)
	}

	base := opts.BaseDirectory
	if base == "" {
		base = p.ctx.Workspace()
	}

	dest, err := pathmap.Resolve(file, target, base)
	if err != nil {
		res.Err = err
		return plugin.Complete(opts, res)
	}
	res.Destination = dest

	destDir := filepath.Dir(dest)
	if err := p.fs.MkdirAll(destDir, 0o755); err != nil {
		res.Err = &plugin.DirectoryError{Path: destDir, Err: err}
		return plugin.Complete(opts, res)
	}

	if opts.OnBeforeDeploy != nil {
		opts.OnBeforeDeploy(file, dest)
	}

	data, err := afero.ReadFile(p.fs, sourcePath(file, base))
	if err != nil {
		res.Err = &plugin.WriteError{Path: dest, Err: err}
		return plugin.Complete(opts, res)
	}

	data, err = transform.Apply(data, transform.ModeTransform, target.Transformer, target.TransformerOptions)
	if err != nil {
		res.Err = err
		return plugin.Complete(opts, res)
	}

	if err := afero.WriteFile(p.fs, dest, data, 0o644); err != nil {
		res.Err = &plugin.WriteError{Path: dest, Err: err}
		return plugin.Complete(opts, res)
	}

	return plugin.Complete(opts, res)
}

// DeployWorkspace sequences DeployFile over files. When target.Empty is
// set the destination root is recreated first; a failure there aborts the
// whole workspace deploy before any file is copied.
func (p *localPlugin) DeployWorkspace(files []string, target *model.Target, opts model.DeployWorkspaceOptions) model.WorkspaceResult {
	if p.ctx.IsCancelling() {
		return plugin.CompleteWorkspace(opts, model.WorkspaceResult{Target: target, Canceled: true})
	}

	if target.Empty {
		base := opts.BaseDirectory
		if base == "" {
			base = p.ctx.Workspace()
		}
		root := pathmap.Root(target, base)
		if err := p.fs.RemoveAll(root); err != nil {
			werr := &plugin.DirectoryError{Path: root, Err: err}
			return plugin.CompleteWorkspace(opts, model.WorkspaceResult{Target: target, Err: werr})
		}
		if err := p.fs.MkdirAll(root, 0o755); err != nil {
			werr := &plugin.DirectoryError{Path: root, Err: err}
			return plugin.CompleteWorkspace(opts, model.WorkspaceResult{Target: target, Err: werr})
		}
	}

	return plugin.SequenceWorkspace(p, files, target, opts)
}

// FetchFile reads a deployed file back from its resolved destination. The
// returned bytes still carry the target's transform.
func (p *localPlugin) FetchFile(file string, target *model.Target, baseDirectory string) ([]byte, error) {
	if baseDirectory == "" {
		baseDirectory = p.ctx.Workspace()
	}
	dest, err := pathmap.Resolve(file, target, baseDirectory)
	if err != nil {
		return nil, err
	}
	return afero.ReadFile(p.fs, dest)
}

// sourcePath anchors a workspace-relative source file under the base
// directory.
func sourcePath(file, base string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

func init() {
	if err := plugin.RegisterFactory(TypeTag, "builtin/local", New); err != nil {
		panic(err)
	}
}
