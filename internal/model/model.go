// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the configuration records and completion payloads
// shared by the deployment engine: targets, directory mappings, file
// packages and the per-file/per-workspace result types delivered through
// lifecycle callbacks.
package model

import "fmt"

// Mapping is a directory-prefix rewrite rule. During path resolution the
// first mapping whose Source prefix matches the file's workspace-relative
// directory substitutes its Target prefix; mappings are evaluated in
// declaration order.
type Mapping struct {
	Source string `mapstructure:"source" yaml:"source"`
	Target string `mapstructure:"target" yaml:"target"`
}

// AfterDeployedOperation is run after a workspace deploy to a target has
// completed successfully. Supported types are "wait" (Time in milliseconds)
// and "exec" (Command run on the local machine).
type AfterDeployedOperation struct {
	Type    string `mapstructure:"type" yaml:"type"`
	Time    int    `mapstructure:"time,omitempty" yaml:"time,omitempty"`
	Command string `mapstructure:"command,omitempty" yaml:"command,omitempty"`
}

// Target is a configured deployment destination bound to a transport type.
// It is constructed from configuration at load time and is immutable during
// a deployment run. Transport-specific fields (Dir for local, Host/User/...
// for sftp) are optional and validated by the owning plugin.
type Target struct {
	Name      string `mapstructure:"name" yaml:"name"`
	Type      string `mapstructure:"type" yaml:"type"`
	SortOrder int    `mapstructure:"sortOrder" yaml:"sortOrder"`

	// Dir is the destination root directory. Defaults to "./" and is
	// resolved against the workspace root when not absolute.
	Dir string `mapstructure:"dir,omitempty" yaml:"dir,omitempty"`

	// Empty causes the local transport to recreate the destination root
	// before the first file of a workspace deploy is written.
	Empty bool `mapstructure:"empty,omitempty" yaml:"empty,omitempty"`

	Mappings []Mapping                `mapstructure:"mappings,omitempty" yaml:"mappings,omitempty"`
	Deployed []AfterDeployedOperation `mapstructure:"deployed,omitempty" yaml:"deployed,omitempty"`

	// Transformer names a registered transform module applied to file
	// contents on the way out (and inverted on read-back).
	Transformer        string         `mapstructure:"transformer,omitempty" yaml:"transformer,omitempty"`
	TransformerOptions map[string]any `mapstructure:"transformerOptions,omitempty" yaml:"transformerOptions,omitempty"`

	// SFTP transport settings.
	Host           string `mapstructure:"host,omitempty" yaml:"host,omitempty"`
	User           string `mapstructure:"user,omitempty" yaml:"user,omitempty"`
	PrivateKeyFile string `mapstructure:"privateKeyFile,omitempty" yaml:"privateKeyFile,omitempty"`

	// HostKey pins the remote host key in authorized_keys format. An empty
	// value rejects the connection on first contact rather than trusting it.
	HostKey string `mapstructure:"hostKey,omitempty" yaml:"hostKey,omitempty"`
}

// String returns the name (type) representation used in log and audit output.
func (t Target) String() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.Type)
}

// Package is a named group of include/exclude glob patterns that resolves
// to a concrete file list before orchestration begins.
type Package struct {
	Name      string   `mapstructure:"name" yaml:"name"`
	SortOrder int      `mapstructure:"sortOrder" yaml:"sortOrder"`
	Files     []string `mapstructure:"files" yaml:"files"`
	Exclude   []string `mapstructure:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// FileResult is the terminal state of one file's deploy pipeline. Exactly
// one of the three outcomes holds: success (Canceled false, Err nil),
// cancellation, or error.
type FileResult struct {
	File        string
	Destination string
	Target      *Target
	Canceled    bool
	Err         error
}

// WorkspaceResult is the terminal state of one workspace deploy to one
// target.
type WorkspaceResult struct {
	Target   *Target
	Canceled bool
	Err      error
}

// DeployFileOptions carries the optional lifecycle hooks for a single-file
// deploy. It is scoped to one invocation and never persisted.
type DeployFileOptions struct {
	// BaseDirectory overrides the workspace root used for relative path
	// computation. Empty means the context's workspace root.
	BaseDirectory string

	// OnBeforeDeploy fires after the destination has been resolved and its
	// directory ensured, immediately before the transport write.
	OnBeforeDeploy func(file, destination string)

	// OnCompleted fires exactly once with the terminal state.
	OnCompleted func(FileResult)
}

// DeployWorkspaceOptions carries the optional lifecycle hooks for a
// workspace deploy.
type DeployWorkspaceOptions struct {
	BaseDirectory string

	OnBeforeDeployFile func(file, destination string)

	// OnFileCompleted fires exactly once per file, in deploy order.
	OnFileCompleted func(FileResult)

	// OnCompleted fires exactly once with the workspace terminal state.
	OnCompleted func(WorkspaceResult)
}
