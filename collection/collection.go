// Copyright 2026 The Stonecore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package collection holds the compiled route set and the indices the
// matcher, binder and URL generator query against (spec §3 RouteCollection).
package collection

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/stonecore/router/compiler"
)

// ConflictError is returned when a route is added whose name or
// method+path-alias key was already claimed by an earlier addition. The
// collection keeps the first writer and reports the conflict rather than
// silently overwriting it (spec §3 "conflict-on-first-write").
type ConflictError struct {
	Kind     string // "name" or "path"
	Key      string
	Existing *compiler.CompiledRoute
	Incoming *compiler.CompiledRoute
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("collection: %s conflict on %q: route %q already claims it, cannot add %q",
		e.Kind, e.Key, e.Existing.Name(), e.Incoming.Name())
}

// RouteCollection indexes compiled routes by name, method, action identity
// and method+path key, preserving registration order.
type RouteCollection struct {
	mu sync.RWMutex

	ordered   []*compiler.CompiledRoute
	byName    map[string]*compiler.CompiledRoute
	byMethod  map[string][]*compiler.CompiledRoute
	byAction  map[any][]*compiler.CompiledRoute
	byPathKey map[string]*compiler.CompiledRoute
}

// New constructs an empty RouteCollection.
func New() *RouteCollection {
	return &RouteCollection{
		byName:    make(map[string]*compiler.CompiledRoute),
		byMethod:  make(map[string][]*compiler.CompiledRoute),
		byAction:  make(map[any][]*compiler.CompiledRoute),
		byPathKey: make(map[string]*compiler.CompiledRoute),
	}
}

// Add indexes route, returning a *ConflictError if its name or any of its
// method+alias keys were already claimed.
func (c *RouteCollection) Add(route *compiler.CompiledRoute) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := route.Name()
	if name != "" {
		if existing, ok := c.byName[name]; ok {
			return &ConflictError{Kind: "name", Key: name, Existing: existing, Incoming: route}
		}
	}

	for _, alias := range route.Aliases {
		for _, method := range route.Methods() {
			key := method + " " + alias.Alias
			if existing, ok := c.byPathKey[key]; ok {
				return &ConflictError{Kind: "path", Key: key, Existing: existing, Incoming: route}
			}
		}
	}

	for _, alias := range route.Aliases {
		for _, method := range route.Methods() {
			key := method + " " + alias.Alias
			c.byPathKey[key] = route
		}
	}
	if name != "" {
		c.byName[name] = route
	}
	for _, method := range route.Methods() {
		c.byMethod[method] = append(c.byMethod[method], route)
	}

	actionKey := actionIdentity(route)
	if actionKey != nil {
		c.byAction[actionKey] = append(c.byAction[actionKey], route)
	}

	c.ordered = append(c.ordered, route)
	return nil
}

// actionIdentity returns the comparable key that groups routes sharing the
// same handler. Function values aren't comparable in Go, so a func-typed
// handler is keyed by its code pointer (spec §3: action identity is by
// reference, mirroring the reference-identity rule used for middleware).
func actionIdentity(route *compiler.CompiledRoute) any {
	action := route.Definition.Action
	if action == nil {
		return nil
	}
	switch {
	case action.Ctor != nil:
		return funcIdentity(action.Ctor)
	case action.Callable != nil:
		return funcIdentity(action.Callable)
	case action.Component != nil:
		return action.Component
	default:
		return action
	}
}

func funcIdentity(fn any) any {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fn
	}
	return fmt.Sprintf("func@%x", v.Pointer())
}

// All returns every route in registration order.
func (c *RouteCollection) All() []*compiler.CompiledRoute {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*compiler.CompiledRoute, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// ByMethod returns the routes registered for method, in registration order.
func (c *RouteCollection) ByMethod(method string) []*compiler.CompiledRoute {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*compiler.CompiledRoute, len(c.byMethod[method]))
	copy(out, c.byMethod[method])
	return out
}

// FindByName looks up a route by its fully-qualified dotted name.
func (c *RouteCollection) FindByName(name string) (*compiler.CompiledRoute, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.byName[name]
	return r, ok
}

// FindByAction returns every route whose handler (a ClassCtor or
// HandlerFunc) has the same identity as handler.
func (c *RouteCollection) FindByAction(handler any) []*compiler.CompiledRoute {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := funcIdentity(handler)
	out := make([]*compiler.CompiledRoute, len(c.byAction[key]))
	copy(out, c.byAction[key])
	return out
}

// Len reports the number of distinct routes held.
func (c *RouteCollection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ordered)
}
