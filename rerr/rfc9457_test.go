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

package rerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterErrorImplementsOptionalInterfaces(t *testing.T) {
	re := New(KindNotFound, errors.New("no route for /ghost"))
	assert.Equal(t, 404, re.HTTPStatus())
	assert.Equal(t, "not_found", re.Code())
	assert.True(t, As(re, KindNotFound))
	assert.False(t, As(re, KindDispatch))
}

func TestMethodNotAllowedCarriesAllowedMethods(t *testing.T) {
	re := New(KindMethodNotAllowed, errors.New("method not allowed"))
	re.Allowed = []string{"GET", "POST"}
	details, ok := re.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"GET", "POST"}, details["allowed_methods"])
}

func TestRFC9457FormatUsesErrorStatusAndCode(t *testing.T) {
	f := &RFC9457{BaseURL: "https://api.example.com/problems"}
	re := New(KindNotFound, errors.New("no route for /ghost"))

	resp := f.Format("/ghost", re)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "application/problem+json; charset=utf-8", resp.Headers["Content-Type"])

	problem, ok := resp.Content.(ProblemDetail)
	require.True(t, ok)
	assert.Equal(t, "https://api.example.com/problems/not_found", problem.Type)
	assert.Equal(t, "/ghost", problem.Instance)
	assert.NotEmpty(t, problem.Extensions["error_id"])
}

func TestRFC9457FormatDefaultsUnknownErrorsTo500(t *testing.T) {
	f := &RFC9457{}
	resp := f.Format("/x", errors.New("boom"))
	assert.Equal(t, 500, resp.StatusCode)
}

func TestRFC9457FormatCanDisableErrorID(t *testing.T) {
	f := &RFC9457{DisableErrorID: true}
	resp := f.Format("/x", errors.New("boom"))
	problem := resp.Content.(ProblemDetail)
	_, present := problem.Extensions["error_id"]
	assert.False(t, present)
}

func TestProblemDetailMarshalsExtensionsInline(t *testing.T) {
	p := ProblemDetail{Type: "about:blank", Title: "Not Found", Status: 404, Extensions: map[string]any{"code": "not_found"}}
	data, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"code":"not_found"`)
	assert.Contains(t, string(data), `"status":404`)
}
