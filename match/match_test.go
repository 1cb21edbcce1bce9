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

package match

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonecore/router/compiler"
	"github.com/stonecore/router/definition"
)

type fakeEvent struct {
	method string
	host   string
	path   string
	secure bool
}

func (e *fakeEvent) Method() string           { return e.method }
func (e *fakeEvent) Host() string             { return e.host }
func (e *fakeEvent) DecodedPathname() string  { return e.path }
func (e *fakeEvent) Query() map[string]string { return nil }
func (e *fakeEvent) Body() any                { return nil }
func (e *fakeEvent) IsSecure() bool           { return e.secure }
func (e *fakeEvent) IsMethod(v string) bool   { return strings.EqualFold(e.method, v) }
func (e *fakeEvent) Metadata(string) (any, bool) { return nil, false }
func (e *fakeEvent) SetMetadata(string, any)     {}
func (e *fakeEvent) Context() context.Context    { return context.Background() }

func compileRoute(t *testing.T, def *definition.RouteDefinition) *compiler.CompiledRoute {
	t.Helper()
	r, err := compiler.NewRouteCompiler(false).Compile(def)
	require.NoError(t, err)
	return r
}

func cb() *definition.ActionDescriptor {
	return &definition.ActionDescriptor{Kind: definition.KindCallable, Callable: func(ctx *definition.ActionContext) (any, error) { return nil, nil }}
}

func TestMatchReturnsMatchedRoute(t *testing.T) {
	route := compileRoute(t, &definition.RouteDefinition{Path: []string{"/users/:id"}, Name: "users.show", Methods: []string{"GET"}, Action: cb(), Rules: map[string]string{"id": `\d+`}})

	res := New().Match([]*compiler.CompiledRoute{route}, &fakeEvent{method: "GET", host: "example.com", path: "/users/42"})
	require.Equal(t, OutcomeMatched, res.Outcome)
	assert.Equal(t, "42", res.Match.Captures["id"])
}

func TestMatchNotFound(t *testing.T) {
	route := compileRoute(t, &definition.RouteDefinition{Path: []string{"/users"}, Name: "users.index", Methods: []string{"GET"}, Action: cb()})
	res := New().Match([]*compiler.CompiledRoute{route}, &fakeEvent{method: "GET", path: "/missing"})
	assert.Equal(t, OutcomeNotFound, res.Outcome)
}

func TestMatchMethodNotAllowed(t *testing.T) {
	route := compileRoute(t, &definition.RouteDefinition{Path: []string{"/users"}, Name: "users.index", Methods: []string{"GET", "POST"}, Action: cb()})
	res := New().Match([]*compiler.CompiledRoute{route}, &fakeEvent{method: "DELETE", path: "/users"})
	require.Equal(t, OutcomeMethodNotAllowed, res.Outcome)
	assert.ElementsMatch(t, []string{"GET", "POST"}, res.Allowed)
}

func TestMatchOptionsSynthesis(t *testing.T) {
	route := compileRoute(t, &definition.RouteDefinition{Path: []string{"/users"}, Name: "users.index", Methods: []string{"GET", "POST"}, Action: cb()})
	res := New().Match([]*compiler.CompiledRoute{route}, &fakeEvent{method: "OPTIONS", path: "/users"})
	require.Equal(t, OutcomeOptions, res.Outcome)
	assert.ElementsMatch(t, []string{"GET", "POST"}, res.Allowed)
}

func TestMatchHeadFallsBackToGet(t *testing.T) {
	route := compileRoute(t, &definition.RouteDefinition{Path: []string{"/users"}, Name: "users.index", Methods: []string{"GET"}, Action: cb()})
	res := New().Match([]*compiler.CompiledRoute{route}, &fakeEvent{method: "HEAD", path: "/users"})
	assert.Equal(t, OutcomeMatched, res.Outcome)
}

func TestMatchHostMismatchIsNotFound(t *testing.T) {
	route := compileRoute(t, &definition.RouteDefinition{Path: []string{"/"}, Domain: "{tenant}.example.com", Name: "home", Methods: []string{"GET"}, Action: cb()})
	res := New().Match([]*compiler.CompiledRoute{route}, &fakeEvent{method: "GET", host: "other.io", path: "/"})
	assert.Equal(t, OutcomeNotFound, res.Outcome)
}

func TestMatchProtocolMismatchIsNotFound(t *testing.T) {
	route := compileRoute(t, &definition.RouteDefinition{Path: []string{"/secure"}, Protocol: "https", Name: "secure", Methods: []string{"GET"}, Action: cb()})
	res := New().Match([]*compiler.CompiledRoute{route}, &fakeEvent{method: "GET", path: "/secure", secure: false})
	assert.Equal(t, OutcomeNotFound, res.Outcome)
}

func TestMatchFallbackRouteOrderedLast(t *testing.T) {
	primary := compileRoute(t, &definition.RouteDefinition{Path: []string{"/users"}, Name: "users.index", Methods: []string{"GET"}, Action: cb()})
	fallback := compileRoute(t, &definition.RouteDefinition{Path: []string{"/:anything+"}, Name: "catch_all", Methods: []string{"GET"}, Action: cb(), Fallback: true})

	res := New().Match([]*compiler.CompiledRoute{fallback, primary}, &fakeEvent{method: "GET", path: "/users"})
	require.Equal(t, OutcomeMatched, res.Outcome)
	assert.Equal(t, "users.index", res.Match.Route.Name())
}
