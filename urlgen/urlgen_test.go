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

package urlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonecore/router/collection"
	"github.com/stonecore/router/compiler"
	"github.com/stonecore/router/definition"
)

func addRoute(t *testing.T, c *collection.RouteCollection, def *definition.RouteDefinition) {
	t.Helper()
	route, err := compiler.NewRouteCompiler(false).Compile(def)
	require.NoError(t, err)
	require.NoError(t, c.Add(route))
}

func action() *definition.ActionDescriptor {
	return &definition.ActionDescriptor{Kind: definition.KindCallable}
}

func TestGenerateSubstitutesParams(t *testing.T) {
	c := collection.New()
	addRoute(t, c, &definition.RouteDefinition{Path: []string{"/users/:id"}, Name: "users.show", Methods: []string{"GET"}, Action: action(), Rules: map[string]string{"id": `\d+`}})

	u, err := New(c).Generate(Options{Name: "users.show", Params: map[string]any{"id": 42}})
	require.NoError(t, err)
	assert.Equal(t, "/users/42", u)
}

func TestGenerateMissingRequiredParam(t *testing.T) {
	c := collection.New()
	addRoute(t, c, &definition.RouteDefinition{Path: []string{"/users/:id"}, Name: "users.show", Methods: []string{"GET"}, Action: action()})

	_, err := New(c).Generate(Options{Name: "users.show"})
	require.Error(t, err)
	var mp *MissingParamError
	require.ErrorAs(t, err, &mp)
}

func TestGenerateRuleViolation(t *testing.T) {
	c := collection.New()
	addRoute(t, c, &definition.RouteDefinition{Path: []string{"/users/:id"}, Name: "users.show", Methods: []string{"GET"}, Action: action(), Rules: map[string]string{"id": `\d+`}})

	_, err := New(c).Generate(Options{Name: "users.show", Params: map[string]any{"id": "not-a-number"}})
	require.Error(t, err)
	var rv *RuleViolationError
	require.ErrorAs(t, err, &rv)
}

func TestGenerateOptionalSegmentOmittedWhenAbsent(t *testing.T) {
	c := collection.New()
	addRoute(t, c, &definition.RouteDefinition{Path: []string{"/archive/:year?"}, Name: "archive", Methods: []string{"GET"}, Action: action()})

	u, err := New(c).Generate(Options{Name: "archive"})
	require.NoError(t, err)
	assert.Equal(t, "/archive", u)

	u, err = New(c).Generate(Options{Name: "archive", Params: map[string]any{"year": 2020}})
	require.NoError(t, err)
	assert.Equal(t, "/archive/2020", u)
}

func TestGenerateWithQueryAndHash(t *testing.T) {
	c := collection.New()
	addRoute(t, c, &definition.RouteDefinition{Path: []string{"/search"}, Name: "search", Methods: []string{"GET"}, Action: action()})

	u, err := New(c).Generate(Options{Name: "search", Query: map[string]string{"q": "go", "page": "2"}, Hash: "results"})
	require.NoError(t, err)
	assert.Equal(t, "/search?page=2&q=go#results", u)
}

func TestGenerateWithDomain(t *testing.T) {
	c := collection.New()
	addRoute(t, c, &definition.RouteDefinition{Path: []string{"/"}, Domain: "{tenant}.example.com", Name: "home", Methods: []string{"GET"}, Action: action()})

	u, err := New(c).Generate(Options{Name: "home", Params: map[string]any{"tenant": "acme"}})
	require.NoError(t, err)
	assert.Equal(t, "http://acme.example.com/", u)
}

func TestGenerateRouteNotFound(t *testing.T) {
	c := collection.New()
	_, err := New(c).Generate(Options{Name: "missing"})
	require.Error(t, err)
	var rnf *RouteNotFoundError
	require.ErrorAs(t, err, &rnf)
}
