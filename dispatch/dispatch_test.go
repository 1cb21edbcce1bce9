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

package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonecore/router/definition"
)

type stubContainer struct {
	instances map[any]any
}

func (c *stubContainer) Resolve(key any) (any, bool) {
	v, ok := c.instances[key]
	return v, ok
}

type usersController struct{ calls int }

func (c *usersController) Show(ctx *definition.ActionContext) (any, error) {
	c.calls++
	return "shown", nil
}

func (c *usersController) Handle(ctx *definition.ActionContext) any {
	return "handled"
}

func TestCallableDispatch(t *testing.T) {
	reg := NewRegistry(nil)
	action := &definition.ActionDescriptor{Kind: definition.KindCallable, Callable: func(ctx *definition.ActionContext) (any, error) { return "ok", nil }}
	result, err := reg.Dispatch(&definition.ActionContext{}, action)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestClassDispatchViaContainer(t *testing.T) {
	controller := &usersController{}
	container := &stubContainer{instances: map[any]any{"users": controller}}
	reg := NewRegistry(container)

	action := &definition.ActionDescriptor{Kind: definition.KindClass, Key: "users", Action: "Show"}
	result, err := reg.Dispatch(&definition.ActionContext{}, action)
	require.NoError(t, err)
	assert.Equal(t, "shown", result)
	assert.Equal(t, 1, controller.calls)
}

func TestClassDispatchFallsBackToConstructor(t *testing.T) {
	reg := NewRegistry(&stubContainer{instances: map[any]any{}})
	ctor := func() any { return &usersController{} }
	action := &definition.ActionDescriptor{Kind: definition.KindClass, Ctor: ctor, Action: "Show"}

	result, err := reg.Dispatch(&definition.ActionContext{}, action)
	require.NoError(t, err)
	assert.Equal(t, "shown", result)
}

func TestClassDispatchDefaultsToHandleMethod(t *testing.T) {
	reg := NewRegistry(nil)
	ctor := func() any { return &usersController{} }
	action := &definition.ActionDescriptor{Kind: definition.KindClass, Ctor: ctor}

	result, err := reg.Dispatch(&definition.ActionContext{}, action)
	require.NoError(t, err)
	assert.Equal(t, "handled", result)
}

func TestComponentDispatch(t *testing.T) {
	reg := NewRegistry(nil)
	action := &definition.ActionDescriptor{Kind: definition.KindComponent, Component: "widget"}
	result, err := reg.Dispatch(&definition.ActionContext{}, action)
	require.NoError(t, err)
	assert.Equal(t, "widget", result)
}

func TestComponentDispatchLazy(t *testing.T) {
	reg := NewRegistry(nil)
	action := &definition.ActionDescriptor{Kind: definition.KindComponent, Lazy: func() (any, error) { return "lazy-widget", nil }}
	result, err := reg.Dispatch(&definition.ActionContext{}, action)
	require.NoError(t, err)
	assert.Equal(t, "lazy-widget", result)
}

func TestRedirectDispatchDefaultsStatus(t *testing.T) {
	reg := NewRegistry(nil)
	action := &definition.ActionDescriptor{Kind: definition.KindRedirect, Redirect: &definition.RedirectDescriptor{Location: "/new"}}
	result, err := reg.Dispatch(&definition.ActionContext{}, action)
	require.NoError(t, err)
	rd := result.(*definition.RedirectDescriptor)
	assert.Equal(t, DefaultRedirectStatus, rd.Status)
}

func TestRedirectDispatchOneLevelOfRecursion(t *testing.T) {
	reg := NewRegistry(nil)
	inner := &definition.RedirectDescriptor{Location: "/final", Status: 301}
	outer := &definition.RedirectDescriptor{Callable: func(ctx *definition.ActionContext) (any, error) { return inner, nil }}
	action := &definition.ActionDescriptor{Kind: definition.KindRedirect, Redirect: outer}

	result, err := reg.Dispatch(&definition.ActionContext{}, action)
	require.NoError(t, err)
	rd := result.(*definition.RedirectDescriptor)
	assert.Equal(t, "/final", rd.Location)
	assert.Equal(t, 301, rd.Status)
}

func TestRedirectDispatchRejectsDoubleRecursion(t *testing.T) {
	reg := NewRegistry(nil)
	var outer *definition.RedirectDescriptor
	outer = &definition.RedirectDescriptor{Callable: func(ctx *definition.ActionContext) (any, error) {
		return &definition.RedirectDescriptor{Callable: outer.Callable}, nil
	}}
	action := &definition.ActionDescriptor{Kind: definition.KindRedirect, Redirect: outer}

	_, err := reg.Dispatch(&definition.ActionContext{}, action)
	require.Error(t, err)
}

func TestDispatchUnknownKindErrors(t *testing.T) {
	reg := NewRegistry(nil)
	action := &definition.ActionDescriptor{Kind: definition.KindNone}
	_, err := reg.Dispatch(&definition.ActionContext{}, action)
	require.Error(t, err)
	assert.True(t, errors.Is(err, err))
}
