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

import (
	"fmt"

	"github.com/stonecore/router/definition"
)

// Ctx is a thin convenience wrapper over definition.ActionContext for
// handlers that would rather call a getter than index into Params/Query
// directly. It holds no state of its own and is safe to wrap and discard
// per call; it must not be retained past the handler that received it,
// since the ActionContext it wraps may be reused by a pooled transport
// adapter.
type Ctx struct {
	*definition.ActionContext
}

// Param returns the bound value for name, or nil if the route captured no
// such parameter.
func (c Ctx) Param(name string) any {
	return c.Params[name]
}

// ParamString returns the bound value for name formatted as a string.
func (c Ctx) ParamString(name string) string {
	v, ok := c.Params[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// QueryParam returns the raw query-string value for key.
func (c Ctx) QueryParam(key string) string {
	return c.Query[key]
}

// RouteName returns the matched route's dotted name.
func (c Ctx) RouteName() string {
	if c.Route == nil {
		return ""
	}
	return c.Route.Name()
}
