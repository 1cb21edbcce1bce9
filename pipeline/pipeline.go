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

// Package pipeline assembles and runs a route's middleware chain (spec
// §4.6): priority-ordered, exclusion-aware, and driven by an
// index-advancing Next rather than nested closures (spec §9 "nested
// continuation-passing closures").
package pipeline

import (
	"sort"

	"github.com/stonecore/router/definition"
	"github.com/stonecore/router/event"
)

// refIdentity is definition.RefIdentity: func-valued refs are keyed by
// code pointer since they aren't themselves comparable/hashable.
var refIdentity = definition.RefIdentity

// Next advances the pipeline to the following pipe, or to the terminal
// action handler once every pipe has run.
type Next func(ctx *definition.ActionContext) (event.OutgoingResponse, error)

// Pipe is a single middleware unit. It receives the current ActionContext
// and the Next function; it decides whether, and when, to call next.
type Pipe func(ctx *definition.ActionContext, next Next) (event.OutgoingResponse, error)

// Spec pairs a pipe with its priority and the reference identity used for
// exclusion matching (spec §3 "middleware ... lists of pipe descriptors
// with optional priority").
type Spec struct {
	Ref      any
	Priority int
	Pipe     Pipe
}

// Assemble orders specs for execution: ascending priority, with insertion
// order as the tiebreak (a stable sort), after dropping any spec whose Ref
// appears in excluded by reference identity (spec §4.6, §9 Open Question).
func Assemble(specs []Spec, excluded []any) []Spec {
	excludedSet := make(map[any]bool, len(excluded))
	for _, ref := range excluded {
		excludedSet[refIdentity(ref)] = true
	}

	kept := make([]Spec, 0, len(specs))
	for _, s := range specs {
		if excludedSet[refIdentity(s.Ref)] {
			continue
		}
		kept = append(kept, s)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Priority < kept[j].Priority
	})
	return kept
}

// runner holds the position of an in-flight pipeline run. Next advances
// runner.index by one and re-enters at that position rather than each pipe
// closing over a hand-built chain of the pipes after it (spec §9 redesign:
// replaces "nested continuation-passing closures" with an index-advancing
// cursor).
type runner struct {
	specs    []Spec
	terminal Next
	index    int
}

func (r *runner) next(ctx *definition.ActionContext) (event.OutgoingResponse, error) {
	if r.index >= len(r.specs) {
		return r.terminal(ctx)
	}
	spec := r.specs[r.index]
	r.index++
	return spec.Pipe(ctx, r.next)
}

// Run executes an assembled pipe chain over ctx, invoking terminal once
// every pipe in specs has called its Next (or returning immediately if a
// pipe short-circuits without calling it).
func Run(specs []Spec, ctx *definition.ActionContext, terminal Next) (event.OutgoingResponse, error) {
	r := &runner{specs: specs, terminal: terminal}
	return r.next(ctx)
}
