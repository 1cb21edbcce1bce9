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

package httpevent

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonecore/router/event"
)

func TestEventExposesMethodHostAndPath(t *testing.T) {
	req := httptest.NewRequest("get", "http://example.com:8080/users/42?x=1", nil)
	ev := NewEvent(req)

	assert.Equal(t, "GET", ev.Method())
	assert.Equal(t, "example.com", ev.Host())
	assert.Equal(t, "/users/42", ev.DecodedPathname())
	assert.Equal(t, "1", ev.Query()["x"])
}

func TestEventMetadataRoundTrips(t *testing.T) {
	req := httptest.NewRequest("GET", "http://x/", nil)
	ev := NewEvent(req)

	_, ok := ev.Metadata("k")
	assert.False(t, ok)

	ev.SetMetadata("k", "v")
	v, ok := ev.Metadata("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestWriteResponseEncodesJSONByDefault(t *testing.T) {
	rec := httptest.NewRecorder()
	err := WriteResponse(rec, event.NewResponse(201, map[string]string{"id": "1"}))
	require.NoError(t, err)
	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"1"}`, rec.Body.String())
}

func TestWriteResponseWritesStringVerbatim(t *testing.T) {
	rec := httptest.NewRecorder()
	err := WriteResponse(rec, event.NewResponse(200, "pong"))
	require.NoError(t, err)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestWriteResponseSetsCustomHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	resp := event.NewResponse(405, nil).WithHeader("Allow", "GET, POST")
	require.NoError(t, WriteResponse(rec, resp))
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
	assert.Equal(t, 405, rec.Code)
}
