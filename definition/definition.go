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

// Package definition holds the declarative route data model (spec §3) and
// the DefinitionNormalizer that flattens a hierarchical definition tree into
// leaf routes (spec §4.1).
package definition

import (
	"fmt"

	"github.com/stonecore/router/event"
)

// HandlerKind tags the shape of a route's handler, replacing the dynamic
// dispatch on handler type that a decorator-driven source would use with an
// exhaustively matchable variant (spec §9 "Dynamic dispatch on handler kind").
type HandlerKind int

const (
	// KindNone marks a definition with no action yet assigned.
	KindNone HandlerKind = iota
	// KindCallable wraps a plain function handler.
	KindCallable
	// KindClass resolves a handler instance from a container and invokes
	// a named method on it.
	KindClass
	// KindComponent returns a component descriptor as the response
	// payload for the caller to render.
	KindComponent
	// KindRedirect materializes a redirect response.
	KindRedirect
)

func (k HandlerKind) String() string {
	switch k {
	case KindCallable:
		return "callable"
	case KindClass:
		return "class"
	case KindComponent:
		return "component"
	case KindRedirect:
		return "redirect"
	default:
		return "none"
	}
}

// RouteView is the subset of a compiled route's identity that the action
// context needs to expose to a handler. compiler.CompiledRoute implements
// this; definition never imports compiler, which is what keeps the
// definition → compiler → dispatch dependency chain acyclic.
type RouteView interface {
	Name() string
	Fallback() bool
}

// ActionContext is the object handed to every dispatcher and, through it,
// to the handler itself (spec §4.5: "{event, route, params, query, body}").
type ActionContext struct {
	Event  event.IncomingEvent
	Route  RouteView
	Params map[string]any
	Query  map[string]string
	Body   any
}

// NonNilParams returns only the params with a non-nil value, mirroring the
// "separate helper exposes only non-nil entries" requirement of spec §4.4.
func (ctx *ActionContext) NonNilParams() map[string]any {
	out := make(map[string]any, len(ctx.Params))
	for k, v := range ctx.Params {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

// HandlerFunc is a callable route handler.
type HandlerFunc func(ctx *ActionContext) (any, error)

// ClassCtor constructs a handler instance. Container resolution (spec §4.5
// "resolves the class via the container, falls back to zero-arg
// construction") is performed by the dispatch package; ClassCtor is the
// fallback path.
type ClassCtor func() any

// LazyLoader resolves a component descriptor that was declared lazy.
type LazyLoader func() (any, error)

// RedirectDescriptor is the tagged redirect target (spec §3 "redirect
// (string, object {location,status}, or callable)").
type RedirectDescriptor struct {
	Location string
	Status   int
	// Callable, when set, is invoked and may itself return a
	// RedirectDescriptor (by value or pointer) or a location string; any
	// other result type is a dispatch error. The
	// dispatcher allows at most one level of recursion (spec §9 Open
	// Question: "we specify max one recursion").
	Callable func(ctx *ActionContext) (any, error)
}

// ActionDescriptor is the immutable, tagged handler descriptor (spec §3
// "Handler descriptor (tagged)").
type ActionDescriptor struct {
	Kind HandlerKind

	// KindCallable
	Callable HandlerFunc

	// KindClass
	Ctor   ClassCtor
	Key    any // container lookup key, defaults to Ctor's identity if nil
	Action string

	// KindComponent
	Component any
	Lazy      LazyLoader

	// KindRedirect
	Redirect *RedirectDescriptor
}

// DefaultClassAction is the default method name invoked on a resolved class
// handler when no action is specified (spec §3: "default action handle").
const DefaultClassAction = "handle"

// MiddlewareRef is a pipe descriptor with an optional priority (spec §3
// "middleware ... lists of pipe descriptors with optional priority").
// Identity is by reference: Refs are compared through RefIdentity for
// de-duplication and exclusion matching, so a func-valued Ref matches by
// code pointer (spec §9 Open Question: "the source uses reference
// equality; preserve that").
type MiddlewareRef struct {
	Ref      any
	Priority int
}

// RouteDefinition is the declarative input to the router (spec §3).
type RouteDefinition struct {
	Path              []string
	Methods           []string
	Name              string
	Action            *ActionDescriptor
	Domain            string
	Protocol          string // "http", "https", or "" (unset)
	Middleware        []MiddlewareRef
	ExcludeMiddleware []MiddlewareRef
	Rules             map[string]string
	Defaults          map[string]any
	Bindings          map[string]string
	Strict            *bool
	Fallback          bool
	Children          []*RouteDefinition
}

// DefinitionError reports a malformed definition discovered during
// normalization or compilation (spec §7). It carries the offending
// definition so the caller can log or serialize it.
type DefinitionError struct {
	Reason     string
	Definition *RouteDefinition
}

func (e *DefinitionError) Error() string {
	if e.Definition == nil {
		return fmt.Sprintf("definition error: %s", e.Reason)
	}
	return fmt.Sprintf("definition error: %s (name=%q path=%v)", e.Reason, e.Definition.Name, e.Definition.Path)
}
