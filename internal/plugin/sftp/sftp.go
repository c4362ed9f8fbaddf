// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package sftp

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/toeirei/deploymaster/internal/model"
	"github.com/toeirei/deploymaster/internal/pathmap"
	"github.com/toeirei/deploymaster/internal/plugin"
	"github.com/toeirei/deploymaster/internal/transform"
)

// TypeTag is the target type string this transport answers to.
const TypeTag = "sftp"

// remoteFS is the slice of Deployer the deploy pipeline needs. Tests
// substitute an in-memory implementation through NewDeployerFunc.
type remoteFS interface {
	MkdirAll(dir string) error
	WriteFile(remotePath string, data []byte) error
	ReadFile(remotePath string) ([]byte, error)
	Close() error
}

// NewDeployerFunc builds the remote connection for a target. Package-level
// so tests can inject a fake remote without a live SSH server.
var NewDeployerFunc = func(target *model.Target) (remoteFS, error) {
	var key []byte
	if target.PrivateKeyFile != "" {
		k, err := os.ReadFile(target.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read private key %s: %w", target.PrivateKeyFile, err)
		}
		key = k
	}
	return NewDeployer(target.Host, target.User, key, target.HostKey)
}

type sftpPlugin struct {
	ctx *plugin.Context
}

// New builds the SFTP transport.
func New(ctx *plugin.Context) plugin.Plugin {
	return &sftpPlugin{ctx: ctx}
}

func (p *sftpPlugin) Info() plugin.Info {
	return plugin.Info{
		Name:        "sftp",
		Description: "uploads workspace files to a remote host over SFTP",
	}
}

// destination computes the remote path for file: the mapped workspace-
// relative path anchored under the target's remote root directory.
func destination(file string, target *model.Target, base string) (string, error) {
	rel, err := pathmap.ResolveRelative(file, target, base)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "/") {
		return path.Clean(rel), nil
	}
	root := target.Dir
	if root == "" {
		root = "."
	}
	return path.Join(root, rel), nil
}

// DeployFile opens a connection for the single file. Workspace deploys
// reuse one connection across all files instead.
func (p *sftpPlugin) DeployFile(file string, target *model.Target, opts model.DeployFileOptions) model.FileResult {
	if p.ctx.IsCancelling() {
		return plugin.Complete(opts, model.FileResult{File: file, Target: target, Canceled: true})
	}

	conn, err := NewDeployerFunc(target)
	if err != nil {
		res := model.FileResult{File: file, Target: target, Err: fmt.Errorf("connect %s: %w", target.Host, err)}
		return plugin.Complete(opts, res)
	}
	defer conn.Close()

	return p.deployFile(conn, file, target, opts)
}

// deployFile runs the per-file pipeline over an established connection.
func (p *sftpPlugin) deployFile(conn remoteFS, file string, target *model.Target, opts model.DeployFileOptions) model.FileResult {
	res := model.FileResult{File: file, Target: target}

	if p.ctx.IsCancelling() {
		res.Canceled = true
		return plugin.Complete(opts, res)
	}

	base := opts.BaseDirectory
	if base == "" {
		base = p.ctx.Workspace()
	}

	dest, err := destination(file, target, base)
	if err != nil {
		res.Err = err
		return plugin.Complete(opts, res)
	}
	res.Destination = dest

	destDir := path.Dir(dest)
	if err := conn.MkdirAll(destDir); err != nil {
		res.Err = &plugin.DirectoryError{Path: destDir, Err: err}
		return plugin.Complete(opts, res)
	}

	if opts.OnBeforeDeploy != nil {
		opts.OnBeforeDeploy(file, dest)
	}

	source := file
	if !filepath.IsAbs(file) {
		source = filepath.Join(base, file)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		res.Err = &plugin.WriteError{Path: dest, Err: err}
		return plugin.Complete(opts, res)
	}

	data, err = transform.Apply(data, transform.ModeTransform, target.Transformer, target.TransformerOptions)
	if err != nil {
		res.Err = err
		return plugin.Complete(opts, res)
	}

	if err := conn.WriteFile(dest, data); err != nil {
		res.Err = &plugin.WriteError{Path: dest, Err: err}
		return plugin.Complete(opts, res)
	}

	return plugin.Complete(opts, res)
}

// DeployWorkspace batches all files over one connection. The per-file
// callback cardinality matches the default sequencing: one completion per
// file, exactly one workspace completion, cancellation polled between
// files.
func (p *sftpPlugin) DeployWorkspace(files []string, target *model.Target, opts model.DeployWorkspaceOptions) model.WorkspaceResult {
	if p.ctx.IsCancelling() {
		return plugin.CompleteWorkspace(opts, model.WorkspaceResult{Target: target, Canceled: true})
	}

	conn, err := NewDeployerFunc(target)
	if err != nil {
		werr := fmt.Errorf("connect %s: %w", target.Host, err)
		return plugin.CompleteWorkspace(opts, model.WorkspaceResult{Target: target, Err: werr})
	}
	defer conn.Close()

	for _, file := range files {
		fileOpts := model.DeployFileOptions{
			BaseDirectory:  opts.BaseDirectory,
			OnBeforeDeploy: opts.OnBeforeDeployFile,
			OnCompleted:    opts.OnFileCompleted,
		}
		res := p.deployFile(conn, file, target, fileOpts)
		if res.Canceled {
			return plugin.CompleteWorkspace(opts, model.WorkspaceResult{Target: target, Canceled: true})
		}
	}

	return plugin.CompleteWorkspace(opts, model.WorkspaceResult{Target: target})
}

// FetchFile reads a deployed file back over a fresh connection. The
// returned bytes still carry the target's transform.
func (p *sftpPlugin) FetchFile(file string, target *model.Target, baseDirectory string) ([]byte, error) {
	if baseDirectory == "" {
		baseDirectory = p.ctx.Workspace()
	}
	dest, err := destination(file, target, baseDirectory)
	if err != nil {
		return nil, err
	}
	conn, err := NewDeployerFunc(target)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", target.Host, err)
	}
	defer conn.Close()
	return conn.ReadFile(dest)
}

func init() {
	if err := plugin.RegisterFactory(TypeTag, "builtin/sftp", New); err != nil {
		panic(err)
	}
}
