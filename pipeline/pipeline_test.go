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

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonecore/router/definition"
	"github.com/stonecore/router/event"
)

func recordingPipe(name string, order *[]string) Pipe {
	return func(ctx *definition.ActionContext, next Next) (event.OutgoingResponse, error) {
		*order = append(*order, name)
		return next(ctx)
	}
}

func TestAssembleOrdersByPriorityThenInsertion(t *testing.T) {
	var order []string
	specs := []Spec{
		{Ref: "c", Priority: 5, Pipe: recordingPipe("c", &order)},
		{Ref: "a", Priority: 1, Pipe: recordingPipe("a", &order)},
		{Ref: "b", Priority: 1, Pipe: recordingPipe("b", &order)},
	}
	assembled := Assemble(specs, nil)

	_, err := Run(assembled, &definition.ActionContext{}, func(ctx *definition.ActionContext) (event.OutgoingResponse, error) {
		return event.NewResponse(200, nil), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestAssembleDropsExcludedByReference(t *testing.T) {
	var order []string
	mw1 := recordingPipe("mw1", &order)
	mw2 := recordingPipe("mw2", &order)
	specs := []Spec{{Ref: "mw1", Priority: 0, Pipe: mw1}, {Ref: "mw2", Priority: 0, Pipe: mw2}}

	assembled := Assemble(specs, []any{"mw1"})
	require.Len(t, assembled, 1)

	_, _ = Run(assembled, &definition.ActionContext{}, func(ctx *definition.ActionContext) (event.OutgoingResponse, error) {
		return event.NewResponse(200, nil), nil
	})
	assert.Equal(t, []string{"mw2"}, order)
}

func TestRunShortCircuitsWithoutCallingNext(t *testing.T) {
	terminalCalled := false
	specs := []Spec{
		{Ref: "halt", Pipe: func(ctx *definition.ActionContext, next Next) (event.OutgoingResponse, error) {
			return event.NewResponse(403, "forbidden"), nil
		}},
	}
	resp, err := Run(specs, &definition.ActionContext{}, func(ctx *definition.ActionContext) (event.OutgoingResponse, error) {
		terminalCalled = true
		return event.NewResponse(200, nil), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
	assert.False(t, terminalCalled)
}

func TestRunReachesTerminalWhenPipesEmpty(t *testing.T) {
	resp, err := Run(nil, &definition.ActionContext{}, func(ctx *definition.ActionContext) (event.OutgoingResponse, error) {
		return event.NewResponse(204, nil), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}
