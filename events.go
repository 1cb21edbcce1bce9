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

// DiagnosticKind tags a DiagnosticEvent (spec §4.8 "observable events").
type DiagnosticKind int

const (
	// DiagnosticRouting fires once per Dispatch call, before matching.
	DiagnosticRouting DiagnosticKind = iota
	// DiagnosticRouteMatched fires once a route has been matched and
	// bound, before its pipeline runs.
	DiagnosticRouteMatched
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagnosticRouting:
		return "ROUTING"
	case DiagnosticRouteMatched:
		return "ROUTE_MATCHED"
	default:
		return "UNKNOWN"
	}
}

// DiagnosticEvent is delivered to a DiagnosticHandler.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticHandler observes router lifecycle events. It must not block;
// the router calls it synchronously on the dispatching goroutine.
type DiagnosticHandler func(DiagnosticEvent)

func (r *Router) emit(kind DiagnosticKind, message string, fields map[string]any) {
	if r.diagnostics == nil {
		return
	}
	r.diagnostics(DiagnosticEvent{Kind: kind, Message: message, Fields: fields})
}
