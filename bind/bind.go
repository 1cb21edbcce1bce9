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

// Package bind turns a match.Candidate's raw string captures into the typed
// parameter map an ActionContext carries (spec §4.4).
package bind

import (
	"fmt"

	"github.com/stonecore/router/compiler"
	"github.com/stonecore/router/match"
)

// Resolver converts a single raw capture into a bound value. Resolvers are
// looked up by the binding name a route declares for a segment (spec §4.4
// "pluggable parameter binding resolvers"); when none is registered for a
// name the raw string is used unchanged.
type Resolver interface {
	// Resolve converts raw into a bound value, or returns an error to
	// signal the capture doesn't satisfy the resolver (e.g. a model
	// lookup that found nothing). A resolver error is downgraded to a
	// route-not-found outcome rather than propagated as a 500 (spec §4.4
	// "binding failure downgrades to 404").
	Resolve(raw string) (any, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(raw string) (any, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(raw string) (any, error) { return f(raw) }

// NotFoundError marks a binding failure that should surface as "route not
// found" instead of a server error.
type NotFoundError struct {
	Param string
	Cause error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("bind: parameter %q could not be bound: %v", e.Param, e.Cause)
}

func (e *NotFoundError) Unwrap() error { return e.Cause }

// Binder applies a route's declared bindings and defaults to a matched
// candidate's raw captures.
type Binder struct {
	// Resolvers maps a binding name (route.Bindings[param]) to the
	// Resolver that should convert its raw capture.
	Resolvers map[string]Resolver
}

// New constructs a Binder with an empty resolver registry.
func New() *Binder {
	return &Binder{Resolvers: make(map[string]Resolver)}
}

// Register adds or replaces the resolver used for binding name.
func (b *Binder) Register(bindingName string, resolver Resolver) {
	b.Resolvers[bindingName] = resolver
}

// Bind produces the final params map for cand, applying, in segment order:
// each declared binding's resolver (falling back to the raw string), then
// the route's static defaults for any parameter the path didn't capture.
func (b *Binder) Bind(cand *match.Candidate, bindings map[string]string, defaults map[string]any) (map[string]any, error) {
	params := make(map[string]any, len(cand.Captures)+len(defaults))
	optional := optionalParams(cand.Route.Segments)

	names := append(append([]string{}, cand.Route.ParamNames...), cand.Route.DomainParams...)
	for _, name := range names {
		raw, ok := cand.Captures[name]
		if !ok {
			continue
		}
		// An optional segment that didn't participate in the match yields an
		// empty, not absent, capture (Go regexp has no "unset" for a named
		// group); treat it as absent so the route's declared default applies.
		if raw == "" && optional[name] {
			continue
		}
		value, err := b.resolve(name, bindings, raw)
		if err != nil {
			return nil, &NotFoundError{Param: name, Cause: err}
		}
		params[name] = value
	}

	for name, def := range defaults {
		if _, ok := params[name]; !ok {
			params[name] = def
		}
	}

	return params, nil
}

// optionalParams returns the set of dynamic segment names declared with the
// '?' or '*' quantifier, i.e. segments a path may omit entirely.
func optionalParams(segs []compiler.Segment) map[string]bool {
	out := make(map[string]bool, len(segs))
	for _, s := range segs {
		if !s.Static && (s.Quantifier == '?' || s.Quantifier == '*') {
			out[s.Name] = true
		}
	}
	return out
}

func (b *Binder) resolve(name string, bindings map[string]string, raw string) (any, error) {
	bindingName := name
	if bn, ok := bindings[name]; ok {
		bindingName = bn
	}
	if resolver, ok := b.Resolvers[bindingName]; ok {
		return resolver.Resolve(raw)
	}
	return raw, nil
}
