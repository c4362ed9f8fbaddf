// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/toeirei/deploymaster/internal/model"
)

// Factory builds a transport instance bound to the shared deployment
// context. Transport packages register their factory during init.
type Factory func(ctx *Context) Plugin

type factoryEntry struct {
	typeTag string
	origin  string
	factory Factory
}

var (
	factoryMu sync.RWMutex
	factories = map[string]factoryEntry{}
)

// RegisterFactory registers a transport factory under its type tag. origin
// names the providing module (e.g. "builtin/local") and becomes part of
// the instance identity.
func RegisterFactory(typeTag, origin string, f Factory) error {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if _, exists := factories[typeTag]; exists {
		return fmt.Errorf("transport type %q already registered", typeTag)
	}
	factories[typeTag] = factoryEntry{typeTag: typeTag, origin: origin, factory: f}
	return nil
}

// Instance is one loaded transport bound to a type tag. The identity
// fields (origin, index, type) are assigned exactly once when the registry
// is built and are read-only afterwards.
type Instance struct {
	Plugin

	origin  string
	index   int
	typeTag string
}

// Origin returns the module that provided this instance.
func (i *Instance) Origin() string { return i.origin }

// Index returns the load-order index assigned at registration.
func (i *Instance) Index() int { return i.index }

// Type returns the target type tag this instance answers to.
func (i *Instance) Type() string { return i.typeTag }

// Registry maps target type strings to loaded transport instances. Each
// registered factory is instantiated once per registry, all sharing one
// deployment context.
type Registry struct {
	instances []*Instance
	byType    map[string]*Instance
}

// NewRegistry instantiates every registered transport with ctx and binds
// the resulting instance list back onto the context. Instances are loaded
// in deterministic (sorted type tag) order.
func NewRegistry(ctx *Context) *Registry {
	factoryMu.RLock()
	tags := make([]string, 0, len(factories))
	for tag := range factories {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	entries := make([]factoryEntry, 0, len(tags))
	for _, tag := range tags {
		entries = append(entries, factories[tag])
	}
	factoryMu.RUnlock()

	r := &Registry{byType: make(map[string]*Instance, len(entries))}
	for i, e := range entries {
		inst := &Instance{
			Plugin:  e.factory(ctx),
			origin:  e.origin,
			index:   i,
			typeTag: e.typeTag,
		}
		r.instances = append(r.instances, inst)
		r.byType[e.typeTag] = inst
	}
	ctx.bindPlugins(r.instances)
	return r
}

// Resolve returns the instance answering to the target's declared type. An
// unresolvable type is a fatal *ConfigurationError; no transport I/O may
// happen for that target.
func (r *Registry) Resolve(target *model.Target) (*Instance, error) {
	inst, ok := r.byType[target.Type]
	if !ok {
		return nil, &ConfigurationError{Target: target.Name, Type: target.Type}
	}
	return inst, nil
}

// Instances returns all loaded instances in load order.
func (r *Registry) Instances() []*Instance { return r.instances }
