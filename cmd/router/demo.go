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

package main

import (
	stonerouter "github.com/stonecore/router"
	"github.com/stonecore/router/definition"
)

func echoParam(name string) *definition.ActionDescriptor {
	return &definition.ActionDescriptor{
		Kind: definition.KindCallable,
		Callable: func(ctx *definition.ActionContext) (any, error) {
			return ctx.Params[name], nil
		},
	}
}

// buildDemoRouter wires up a handful of representative routes so `routes`
// and `serve` have something real to introspect.
func buildDemoRouter() (*stonerouter.Router, error) {
	r := stonerouter.New(stonerouter.WithDefaultStrict(false))

	defs := []*definition.RouteDefinition{
		{
			Name: "users.index", Path: []string{"/users"}, Methods: []string{"GET"},
			Action: &definition.ActionDescriptor{Kind: definition.KindCallable, Callable: func(*definition.ActionContext) (any, error) {
				return []string{"alice", "bob"}, nil
			}},
		},
		{
			Name: "users.show", Path: []string{"/users/:id"}, Methods: []string{"GET"},
			Rules:  map[string]string{"id": `\d+`},
			Action: echoParam("id"),
		},
		{
			Name: "users.posts", Path: []string{"/users/:id/posts/:post?"}, Methods: []string{"GET"},
			Rules:  map[string]string{"id": `\d+`, "post": `[a-z0-9-]+`},
			Action: echoParam("post"),
		},
		{
			Name: "health", Path: []string{"/health"}, Methods: []string{"GET"},
			Action: &definition.ActionDescriptor{Kind: definition.KindCallable, Callable: func(*definition.ActionContext) (any, error) {
				return "ok", nil
			}},
		},
	}

	if err := r.Register(defs...); err != nil {
		return nil, err
	}
	r.Freeze()
	return r, nil
}
