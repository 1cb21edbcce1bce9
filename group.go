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

package router

import "github.com/stonecore/router/definition"

// Group is a fluent builder over a definition.RouteDefinition subtree: it
// lets route definitions be assembled the way a group of related endpoints
// is usually written, instead of constructing the nested RouteDefinition
// literal by hand. Calling Router.Register on the Group's Definition is
// still what actually compiles and indexes the routes.
type Group struct {
	def *definition.RouteDefinition
}

// NewGroup starts a route group rooted at path. A name prefix and shared
// middleware are added afterwards with SetNamePrefix and Use.
func NewGroup(path string) *Group {
	return &Group{def: &definition.RouteDefinition{Path: []string{path}}}
}

// Definition returns the underlying RouteDefinition tree, ready to pass to
// Router.Register.
func (g *Group) Definition() *definition.RouteDefinition { return g.def }

// Use appends shared middleware inherited by every route and nested group
// under g.
func (g *Group) Use(refs ...definition.MiddlewareRef) *Group {
	g.def.Middleware = append(g.def.Middleware, refs...)
	return g
}

// Exclude appends middleware references excluded for every route under g.
func (g *Group) Exclude(refs ...definition.MiddlewareRef) *Group {
	g.def.ExcludeMiddleware = append(g.def.ExcludeMiddleware, refs...)
	return g
}

// SetNamePrefix sets the dotted name prefix applied to every route under g.
func (g *Group) SetNamePrefix(prefix string) *Group {
	g.def.Name = prefix
	return g
}

// Domain constrains every route under g to a host pattern.
func (g *Group) Domain(pattern string) *Group {
	g.def.Domain = pattern
	return g
}

// Group creates a nested group under g, inheriting its path, name,
// middleware and domain per the normalizer's merge rules.
func (g *Group) Group(path string) *Group {
	child := &definition.RouteDefinition{Path: []string{path}}
	g.def.Children = append(g.def.Children, child)
	return &Group{def: child}
}

// Route attaches a leaf route definition for the given methods and path
// under g, returning the leaf for further chaining (SetName, Where, ...).
func (g *Group) Route(methods []string, path string, action *definition.ActionDescriptor) *RouteBuilder {
	leaf := &definition.RouteDefinition{Path: []string{path}, Methods: methods, Action: action}
	g.def.Children = append(g.def.Children, leaf)
	return &RouteBuilder{def: leaf}
}

// GET, POST, PUT, PATCH, DELETE are Route shorthand for the matching verb.
func (g *Group) GET(path string, action *definition.ActionDescriptor) *RouteBuilder {
	return g.Route([]string{"GET"}, path, action)
}
func (g *Group) POST(path string, action *definition.ActionDescriptor) *RouteBuilder {
	return g.Route([]string{"POST"}, path, action)
}
func (g *Group) PUT(path string, action *definition.ActionDescriptor) *RouteBuilder {
	return g.Route([]string{"PUT"}, path, action)
}
func (g *Group) PATCH(path string, action *definition.ActionDescriptor) *RouteBuilder {
	return g.Route([]string{"PATCH"}, path, action)
}
func (g *Group) DELETE(path string, action *definition.ActionDescriptor) *RouteBuilder {
	return g.Route([]string{"DELETE"}, path, action)
}

// RouteBuilder is the fluent handle returned for a single leaf route.
type RouteBuilder struct {
	def *definition.RouteDefinition
}

// SetName names the route (joined with any ancestor group's name prefix).
func (b *RouteBuilder) SetName(name string) *RouteBuilder {
	b.def.Name = name
	return b
}

// Where constrains a named segment to rule, a regular expression.
func (b *RouteBuilder) Where(param, rule string) *RouteBuilder {
	if b.def.Rules == nil {
		b.def.Rules = make(map[string]string)
	}
	b.def.Rules[param] = rule
	return b
}

// Default sets a static default value applied when param has no capture.
func (b *RouteBuilder) Default(param string, value any) *RouteBuilder {
	if b.def.Defaults == nil {
		b.def.Defaults = make(map[string]any)
	}
	b.def.Defaults[param] = value
	return b
}

// Bind maps a captured segment to the named binding resolver registered
// via WithBindingResolver.
func (b *RouteBuilder) Bind(param, resolverName string) *RouteBuilder {
	if b.def.Bindings == nil {
		b.def.Bindings = make(map[string]string)
	}
	b.def.Bindings[param] = resolverName
	return b
}

// Use appends middleware references to this single route.
func (b *RouteBuilder) Use(refs ...definition.MiddlewareRef) *RouteBuilder {
	b.def.Middleware = append(b.def.Middleware, refs...)
	return b
}

// Definition returns the underlying leaf RouteDefinition.
func (b *RouteBuilder) Definition() *definition.RouteDefinition { return b.def }
