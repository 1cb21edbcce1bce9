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

package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonecore/router/definition"
	"github.com/stonecore/router/event"
)

type fakeEvent struct {
	metadata map[string]any
}

func newFakeEvent() *fakeEvent { return &fakeEvent{metadata: map[string]any{}} }

func (e *fakeEvent) Method() string                { return "GET" }
func (e *fakeEvent) Host() string                  { return "" }
func (e *fakeEvent) DecodedPathname() string       { return "/" }
func (e *fakeEvent) Query() map[string]string      { return nil }
func (e *fakeEvent) Body() any                      { return nil }
func (e *fakeEvent) IsSecure() bool                { return false }
func (e *fakeEvent) IsMethod(v string) bool        { return v == "GET" }
func (e *fakeEvent) Metadata(k string) (any, bool) { v, ok := e.metadata[k]; return v, ok }
func (e *fakeEvent) SetMetadata(k string, v any)   { e.metadata[k] = v }
func (e *fakeEvent) Context() context.Context      { return context.Background() }

func TestRequestIDStampsEventAndEchoesHeader(t *testing.T) {
	mw := RequestID(WithRequestIDGenerator(func() string { return "fixed-id" }))
	ctx := &definition.ActionContext{Event: newFakeEvent()}

	resp, err := mw(ctx, func(c *definition.ActionContext) (event.OutgoingResponse, error) {
		assert.Equal(t, "fixed-id", GetRequestID(c))
		return event.NewResponse(200, "ok"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", resp.Headers["X-Request-ID"])
}

func TestRecoveryConvertsPanicToError(t *testing.T) {
	mw := Recovery(WithRecoveryLogger(nil))
	ctx := &definition.ActionContext{Event: newFakeEvent()}

	_, err := mw(ctx, func(*definition.ActionContext) (event.OutgoingResponse, error) {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRecoveryPassesThroughWithoutPanic(t *testing.T) {
	mw := Recovery(WithRecoveryLogger(nil))
	ctx := &definition.ActionContext{Event: newFakeEvent()}

	resp, err := mw(ctx, func(*definition.ActionContext) (event.OutgoingResponse, error) {
		return event.NewResponse(201, "created"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
}

func TestCORSSetsAllowAllOriginHeader(t *testing.T) {
	mw := CORS(WithAllowAllOrigins(true))
	ctx := &definition.ActionContext{Event: newFakeEvent()}

	resp, err := mw(ctx, func(*definition.ActionContext) (event.OutgoingResponse, error) {
		return event.NewResponse(200, "ok"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Contains(t, resp.Headers["Access-Control-Allow-Methods"], "GET")
}

func TestCORSSpecificOriginSetsVaryHeader(t *testing.T) {
	mw := CORS(WithAllowedOrigins([]string{"https://example.com"}))
	ctx := &definition.ActionContext{Event: newFakeEvent()}

	resp, err := mw(ctx, func(*definition.ActionContext) (event.OutgoingResponse, error) {
		return event.NewResponse(200, "ok"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "Origin", resp.Headers["Vary"])
}
