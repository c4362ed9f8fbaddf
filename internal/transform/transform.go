// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package transform rewrites file contents on their way to a deployment
// target. A target may name a transform module; the module's forward
// direction is applied before a physical write and its inverse before a
// read-back is exposed. Modules registered here are resolved by ID through
// the deployment context's Require call.
//
// Any module that implements both directions must satisfy the round-trip
// law: RestoreData(TransformData(b)) == b for the same options.
package transform

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Mode selects the direction a module is applied in.
type Mode int

const (
	// ModeTransform encodes data before a physical write.
	ModeTransform Mode = iota
	// ModeRestore decodes data read back from a target.
	ModeRestore
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeTransform:
		return "transform"
	case ModeRestore:
		return "restore"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Context is handed to a module invocation. Options is the free-form
// transformerOptions block from the target configuration.
type Context struct {
	Data    []byte
	Mode    Mode
	Options map[string]any
}

// Module is a named byte-level encoder/decoder. A module additionally
// implements Transformer, Restorer or both; requesting a direction the
// module does not implement is a TransformError, never a silent no-op.
type Module interface {
	ID() string
}

// Transformer is the forward direction, applied before a write.
type Transformer interface {
	TransformData(ctx *Context) ([]byte, error)
}

// Restorer is the inverse direction, applied on read-back.
type Restorer interface {
	RestoreData(ctx *Context) ([]byte, error)
}

// ErrUnknownModule reports a transformer name that no registered module
// answers to.
var ErrUnknownModule = errors.New("unknown transform module")

// ErrDirectionMissing reports a module that does not implement the
// requested direction. A one-sided transform breaks round-trip correctness
// for any consumer that both writes and reads through the same target, so
// this is a hard error.
var ErrDirectionMissing = errors.New("transform direction not implemented")

// TransformError wraps any failure inside the transform stage. It aborts
// the affected file's pipeline only, never the whole workspace.
type TransformError struct {
	Module string
	Mode   Mode
	Err    error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform module %q (%s): %v", e.Module, e.Mode, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

var (
	mu      sync.RWMutex
	modules = map[string]Module{}
)

// Register adds a module under its ID. Built-in modules register during
// package init; user extensions call this before deployment starts.
func Register(m Module) error {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := modules[m.ID()]; exists {
		return fmt.Errorf("transform module %q already registered", m.ID())
	}
	modules[m.ID()] = m
	return nil
}

// Lookup resolves a module by ID.
func Lookup(id string) (Module, bool) {
	mu.RLock()
	defer mu.RUnlock()
	m, ok := modules[id]
	return m, ok
}

// ModuleIDs returns the registered module IDs in sorted order.
func ModuleIDs() []string {
	mu.RLock()
	defer mu.RUnlock()
	ids := make([]string, 0, len(modules))
	for id := range modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Apply runs the named module over data in the given direction. An empty
// moduleID is the identity function. All failures surface as
// *TransformError.
func Apply(data []byte, mode Mode, moduleID string, options map[string]any) ([]byte, error) {
	if moduleID == "" {
		return data, nil
	}

	mod, ok := Lookup(moduleID)
	if !ok {
		return nil, &TransformError{Module: moduleID, Mode: mode, Err: ErrUnknownModule}
	}

	ctx := &Context{Data: data, Mode: mode, Options: options}

	switch mode {
	case ModeTransform:
		tr, ok := mod.(Transformer)
		if !ok {
			return nil, &TransformError{Module: moduleID, Mode: mode, Err: ErrDirectionMissing}
		}
		out, err := tr.TransformData(ctx)
		if err != nil {
			return nil, &TransformError{Module: moduleID, Mode: mode, Err: err}
		}
		return out, nil
	case ModeRestore:
		re, ok := mod.(Restorer)
		if !ok {
			return nil, &TransformError{Module: moduleID, Mode: mode, Err: ErrDirectionMissing}
		}
		out, err := re.RestoreData(ctx)
		if err != nil {
			return nil, &TransformError{Module: moduleID, Mode: mode, Err: err}
		}
		return out, nil
	default:
		return nil, &TransformError{Module: moduleID, Mode: mode, Err: fmt.Errorf("unsupported mode %d", int(mode))}
	}
}
