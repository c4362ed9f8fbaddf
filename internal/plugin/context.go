// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package plugin

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/toeirei/deploymaster/internal/model"
	"github.com/toeirei/deploymaster/internal/transform"
)

// Context is the process-wide facade every transport instance receives.
// It carries the cooperative cancellation flag, the append-only output
// sink, the resolved target/package lists and the transform module loader.
// Everything except the cancellation flag is immutable after construction;
// plugins share it read-only.
type Context struct {
	cancelling atomic.Bool

	workspace string
	out       io.Writer
	targets   []model.Target
	packages  []model.Package

	bindOnce sync.Once
	plugins  []*Instance
}

// NewContext builds a deployment context for one session. workspace is the
// absolute workspace root; out receives human-readable progress output.
func NewContext(workspace string, targets []model.Target, packages []model.Package, out io.Writer) *Context {
	if out == nil {
		out = io.Discard
	}
	return &Context{
		workspace: workspace,
		out:       out,
		targets:   targets,
		packages:  packages,
	}
}

// IsCancelling reports whether cancellation has been requested. Transports
// poll this at the top of each file pipeline; no in-flight I/O is
// interrupted.
func (c *Context) IsCancelling() bool { return c.cancelling.Load() }

// Cancel requests cooperative cancellation. Safe to call from any
// goroutine (the CLI calls it from its signal handler).
func (c *Context) Cancel() { c.cancelling.Store(true) }

// Workspace returns the workspace root directory.
func (c *Context) Workspace() string { return c.workspace }

// Targets returns the full resolved target list.
func (c *Context) Targets() []model.Target { return c.targets }

// Packages returns the full resolved package list.
func (c *Context) Packages() []model.Package { return c.packages }

// Plugins returns the loaded plugin instances. Empty until a registry has
// been bound to this context.
func (c *Context) Plugins() []*Instance { return c.plugins }

// Output returns the append-only output sink.
func (c *Context) Output() io.Writer { return c.out }

// Logf writes one formatted line to the output sink.
func (c *Context) Logf(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Require resolves a transform module by ID, the loader handed to
// transports for user-supplied extensions.
func (c *Context) Require(id string) (transform.Module, error) {
	m, ok := transform.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("require %q: %w", id, transform.ErrUnknownModule)
	}
	return m, nil
}

// bindPlugins records the instance list exactly once, called by the
// registry after all instances are built.
func (c *Context) bindPlugins(instances []*Instance) {
	c.bindOnce.Do(func() {
		c.plugins = instances
	})
}
