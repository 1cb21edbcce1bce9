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

// Package dispatch invokes a route's action against a bound ActionContext,
// keyed by definition.HandlerKind rather than by runtime type assertion
// (spec §4.5, §9 "Dynamic dispatch on handler kind").
package dispatch

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/stonecore/router/definition"
)

// Container resolves a handler instance by its declared key, falling back
// to the action's own ClassCtor when the container doesn't recognize the
// key (spec §4.5 "resolves the class via the container, falls back to
// zero-arg construction").
type Container interface {
	Resolve(key any) (any, bool)
}

// Dispatcher invokes one kind of action and returns the raw handler result.
type Dispatcher interface {
	Dispatch(ctx *definition.ActionContext, action *definition.ActionDescriptor) (any, error)
}

// Registry routes an ActionDescriptor to the Dispatcher registered for its
// Kind.
type Registry struct {
	dispatchers map[definition.HandlerKind]Dispatcher
}

// NewRegistry builds a Registry with the four built-in dispatchers wired
// in: callable, class (against container), component, and redirect.
func NewRegistry(container Container) *Registry {
	r := &Registry{dispatchers: make(map[definition.HandlerKind]Dispatcher)}
	r.Register(definition.KindCallable, CallableDispatcher{})
	r.Register(definition.KindClass, ClassDispatcher{Container: container})
	r.Register(definition.KindComponent, ComponentDispatcher{})
	r.Register(definition.KindRedirect, RedirectDispatcher{})
	return r
}

// Register installs or replaces the dispatcher used for kind.
func (r *Registry) Register(kind definition.HandlerKind, d Dispatcher) {
	r.dispatchers[kind] = d
}

// Dispatch looks up the dispatcher for action.Kind and invokes it.
func (r *Registry) Dispatch(ctx *definition.ActionContext, action *definition.ActionDescriptor) (any, error) {
	d, ok := r.dispatchers[action.Kind]
	if !ok {
		return nil, fmt.Errorf("dispatch: no dispatcher registered for handler kind %s", action.Kind)
	}
	return d.Dispatch(ctx, action)
}

// CallableDispatcher invokes a plain function handler.
type CallableDispatcher struct{}

// Dispatch implements Dispatcher.
func (CallableDispatcher) Dispatch(ctx *definition.ActionContext, action *definition.ActionDescriptor) (any, error) {
	if action.Callable == nil {
		return nil, fmt.Errorf("dispatch: callable action has no function")
	}
	return action.Callable(ctx)
}

// ClassDispatcher resolves a handler instance from its Container and
// invokes the named method on it via reflection.
type ClassDispatcher struct {
	Container Container
}

// Dispatch implements Dispatcher.
func (d ClassDispatcher) Dispatch(ctx *definition.ActionContext, action *definition.ActionDescriptor) (any, error) {
	instance, err := d.resolveInstance(action)
	if err != nil {
		return nil, err
	}

	methodName := action.Action
	if methodName == "" {
		methodName = definition.DefaultClassAction
	}

	method := reflect.ValueOf(instance).MethodByName(methodName)
	if !method.IsValid() {
		// Only exported methods are reachable through reflection, so a
		// lower-case action name such as the default "handle" resolves to
		// its exported form ("Handle").
		method = reflect.ValueOf(instance).MethodByName(strings.ToUpper(methodName[:1]) + methodName[1:])
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("dispatch: handler %T has no method %q", instance, methodName)
	}

	results := method.Call([]reflect.Value{reflect.ValueOf(ctx)})
	return unpackResults(results)
}

func (d ClassDispatcher) resolveInstance(action *definition.ActionDescriptor) (any, error) {
	key := action.Key
	if key == nil {
		key = fmt.Sprintf("%p", action.Ctor)
	}
	if d.Container != nil {
		if instance, ok := d.Container.Resolve(key); ok {
			return instance, nil
		}
	}
	if action.Ctor == nil {
		return nil, fmt.Errorf("dispatch: class action has neither a container entry nor a constructor")
	}
	return action.Ctor(), nil
}

// unpackResults adapts a reflected method call's return values to the
// (any, error) shape every other dispatcher returns. A handler method may
// return (any, error), just (any), or nothing.
func unpackResults(results []reflect.Value) (any, error) {
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		if err, ok := results[0].Interface().(error); ok {
			return nil, err
		}
		return results[0].Interface(), nil
	default:
		var err error
		if e, ok := results[1].Interface().(error); ok {
			err = e
		}
		return results[0].Interface(), err
	}
}

// ComponentDispatcher returns a component descriptor (or lazily loads one)
// as the response payload for the caller to render.
type ComponentDispatcher struct{}

// Dispatch implements Dispatcher.
func (ComponentDispatcher) Dispatch(_ *definition.ActionContext, action *definition.ActionDescriptor) (any, error) {
	if action.Component != nil {
		return action.Component, nil
	}
	if action.Lazy != nil {
		return action.Lazy()
	}
	return nil, fmt.Errorf("dispatch: component action has neither a component nor a lazy loader")
}

// RedirectDispatcher materializes a redirect response, allowing at most one
// level of recursion when the redirect target is itself a callable (spec §9
// Open Question: "we specify max one recursion").
type RedirectDispatcher struct{}

// DefaultRedirectStatus is used when a RedirectDescriptor leaves Status unset.
const DefaultRedirectStatus = 302

// Dispatch implements Dispatcher.
func (rd RedirectDispatcher) Dispatch(ctx *definition.ActionContext, action *definition.ActionDescriptor) (any, error) {
	if action.Redirect == nil {
		return nil, fmt.Errorf("dispatch: redirect action missing redirect descriptor")
	}
	resolved, err := rd.resolve(ctx, action.Redirect, false)
	if err != nil {
		return nil, err
	}
	if resolved.Status == 0 {
		final := *resolved
		final.Status = DefaultRedirectStatus
		resolved = &final
	}
	return resolved, nil
}

func (rd RedirectDispatcher) resolve(ctx *definition.ActionContext, target *definition.RedirectDescriptor, recursed bool) (*definition.RedirectDescriptor, error) {
	if target.Callable == nil {
		return target, nil
	}
	if recursed {
		return nil, fmt.Errorf("dispatch: redirect callable returned another callable; only one level of recursion is allowed")
	}
	result, err := target.Callable(ctx)
	if err != nil {
		return nil, err
	}
	switch v := result.(type) {
	case *definition.RedirectDescriptor:
		return rd.resolve(ctx, v, true)
	case definition.RedirectDescriptor:
		return rd.resolve(ctx, &v, true)
	case string:
		return &definition.RedirectDescriptor{Location: v, Status: target.Status}, nil
	default:
		return nil, fmt.Errorf("dispatch: redirect callable returned unsupported type %T", result)
	}
}
