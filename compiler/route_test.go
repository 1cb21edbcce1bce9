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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonecore/router/definition"
)

func action() *definition.ActionDescriptor {
	return &definition.ActionDescriptor{Kind: definition.KindCallable}
}

func TestCompileStaticAndDynamicSegments(t *testing.T) {
	def := &definition.RouteDefinition{
		Path:    []string{"/users/:id"},
		Name:    "users.show",
		Methods: []string{"GET"},
		Action:  action(),
		Rules:   map[string]string{"id": `\d+`},
	}

	route, err := NewRouteCompiler(false).Compile(def)
	require.NoError(t, err)
	require.Len(t, route.Aliases, 1)
	assert.Equal(t, []string{"id"}, route.ParamNames)

	m := route.Aliases[0].Pattern.FindStringSubmatch("/users/42")
	require.NotNil(t, m)

	assert.Nil(t, route.Aliases[0].Pattern.FindStringSubmatch("/users/abc"))
}

func TestCompileNonStrictAllowsTrailingSlash(t *testing.T) {
	def := &definition.RouteDefinition{Path: []string{"/ping"}, Methods: []string{"GET"}, Action: action()}
	route, err := NewRouteCompiler(false).Compile(def)
	require.NoError(t, err)

	assert.NotNil(t, route.Aliases[0].Pattern.FindStringSubmatch("/ping"))
	assert.NotNil(t, route.Aliases[0].Pattern.FindStringSubmatch("/ping/"))
}

func TestCompileStrictRejectsTrailingSlash(t *testing.T) {
	strict := true
	def := &definition.RouteDefinition{Path: []string{"/ping"}, Methods: []string{"GET"}, Action: action(), Strict: &strict}
	route, err := NewRouteCompiler(false).Compile(def)
	require.NoError(t, err)

	assert.NotNil(t, route.Aliases[0].Pattern.FindStringSubmatch("/ping"))
	assert.Nil(t, route.Aliases[0].Pattern.FindStringSubmatch("/ping/"))
}

func TestCompileOptionalSegment(t *testing.T) {
	def := &definition.RouteDefinition{Path: []string{"/archive/:year?"}, Methods: []string{"GET"}, Action: action()}
	route, err := NewRouteCompiler(false).Compile(def)
	require.NoError(t, err)

	assert.NotNil(t, route.Aliases[0].Pattern.FindStringSubmatch("/archive"))
	m := route.Aliases[0].Pattern.FindStringSubmatch("/archive/2020")
	require.NotNil(t, m)
}

func TestCompileWildcardMustBeLastSegment(t *testing.T) {
	def := &definition.RouteDefinition{Path: []string{"/files/:rest*/edit"}, Methods: []string{"GET"}, Action: action()}
	_, err := NewRouteCompiler(false).Compile(def)
	assert.Error(t, err)
}

func TestCompileMultipleAliases(t *testing.T) {
	def := &definition.RouteDefinition{Path: []string{"/a/:id", "/b/:id"}, Methods: []string{"GET"}, Action: action()}
	route, err := NewRouteCompiler(false).Compile(def)
	require.NoError(t, err)
	require.Len(t, route.Aliases, 2)
	assert.NotNil(t, route.Aliases[0].Pattern.FindStringSubmatch("/a/1"))
	assert.NotNil(t, route.Aliases[1].Pattern.FindStringSubmatch("/b/1"))
}

func TestCompileDomainPattern(t *testing.T) {
	def := &definition.RouteDefinition{
		Path:    []string{"/"},
		Domain:  "{tenant}.example.com",
		Methods: []string{"GET"},
		Action:  action(),
	}
	route, err := NewRouteCompiler(false).Compile(def)
	require.NoError(t, err)
	require.NotNil(t, route.DomainPattern)
	assert.Equal(t, []string{"tenant"}, route.DomainParams)

	m := route.DomainPattern.FindStringSubmatch("acme.example.com")
	require.NotNil(t, m)
}

func TestCompileDomainParamCollisionIsError(t *testing.T) {
	def := &definition.RouteDefinition{
		Path:    []string{"/:tenant"},
		Domain:  "{tenant}.example.com",
		Methods: []string{"GET"},
		Action:  action(),
	}
	_, err := NewRouteCompiler(false).Compile(def)
	assert.Error(t, err)
}
