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

package compiler

import (
	"fmt"
	"regexp"

	"github.com/stonecore/router/definition"
)

// AliasPattern pairs one path alias with its compiled regular expression.
type AliasPattern struct {
	Alias   string
	Pattern *regexp.Regexp
}

// CompiledRoute is a RouteDefinition with its regular expressions and
// derived metadata precomputed (spec §4.2 "cached metadata"). It implements
// definition.RouteView so it can be threaded back into an ActionContext
// without definition importing this package.
type CompiledRoute struct {
	Definition *definition.RouteDefinition

	Aliases       []AliasPattern
	DomainPattern *regexp.Regexp

	Segments       []Segment // first alias's segments, for URL generation
	ParamNames     []string
	DomainParams   []string
	StrictTrailing bool
}

// Name implements definition.RouteView.
func (r *CompiledRoute) Name() string { return r.Definition.Name }

// Fallback implements definition.RouteView.
func (r *CompiledRoute) Fallback() bool { return r.Definition.Fallback }

// Methods returns the route's allowed HTTP methods.
func (r *CompiledRoute) Methods() []string { return r.Definition.Methods }

// Domain returns the route's raw domain pattern, or "" when unset.
func (r *CompiledRoute) Domain() string { return r.Definition.Domain }

// Protocol returns the route's required protocol ("http"/"https"/"").
func (r *CompiledRoute) Protocol() string { return r.Definition.Protocol }

// RouteCompiler compiles normalized leaf RouteDefinitions into CompiledRoutes.
type RouteCompiler struct {
	// DefaultStrict is used when a definition does not set Strict itself.
	DefaultStrict bool
}

// NewRouteCompiler constructs a RouteCompiler.
func NewRouteCompiler(defaultStrict bool) *RouteCompiler {
	return &RouteCompiler{DefaultStrict: defaultStrict}
}

// Compile turns a single normalized leaf RouteDefinition into a CompiledRoute.
func (c *RouteCompiler) Compile(def *definition.RouteDefinition) (*CompiledRoute, error) {
	strict := c.DefaultStrict
	if def.Strict != nil {
		strict = *def.Strict
	}

	if len(def.Path) == 0 {
		return nil, fmt.Errorf("compiler: route %q has no path alias", def.Name)
	}

	var firstSegments []Segment
	aliases := make([]AliasPattern, 0, len(def.Path))
	for i, alias := range def.Path {
		segs, err := ParseSegments(alias)
		if err != nil {
			return nil, fmt.Errorf("compiler: route %q alias %q: %w", def.Name, alias, err)
		}
		pattern, err := buildPathPattern(segs, def.Rules, strict)
		if err != nil {
			return nil, fmt.Errorf("compiler: route %q alias %q: %w", def.Name, alias, err)
		}
		aliases = append(aliases, AliasPattern{Alias: alias, Pattern: pattern})
		if i == 0 {
			firstSegments = segs
		}
	}

	paramNames := ParamNames(firstSegments)

	var domainPattern *regexp.Regexp
	var domainParams []string
	if def.Domain != "" {
		domainSegs, err := ParseDomainSegments(def.Domain)
		if err != nil {
			return nil, fmt.Errorf("compiler: route %q domain %q: %w", def.Name, def.Domain, err)
		}
		domainPattern, err = buildDomainPattern(domainSegs, def.Rules)
		if err != nil {
			return nil, fmt.Errorf("compiler: route %q domain %q: %w", def.Name, def.Domain, err)
		}
		domainParams = ParamNames(domainSegs)

		pathParamSet := make(map[string]bool, len(paramNames))
		for _, p := range paramNames {
			pathParamSet[p] = true
		}
		for _, p := range domainParams {
			if pathParamSet[p] {
				return nil, fmt.Errorf("compiler: route %q: domain parameter %q collides with a path parameter", def.Name, p)
			}
		}
	}

	return &CompiledRoute{
		Definition:     def,
		Aliases:        aliases,
		DomainPattern:  domainPattern,
		Segments:       firstSegments,
		ParamNames:     paramNames,
		DomainParams:   domainParams,
		StrictTrailing: strict,
	}, nil
}

// CompileAll compiles every leaf definition, stopping at the first error.
func (c *RouteCompiler) CompileAll(defs []*definition.RouteDefinition) ([]*CompiledRoute, error) {
	routes := make([]*CompiledRoute, 0, len(defs))
	for _, def := range defs {
		cr, err := c.Compile(def)
		if err != nil {
			return nil, err
		}
		routes = append(routes, cr)
	}
	return routes, nil
}
