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
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stonecore/router/event"
)

// ProblemDetail is an RFC 9457 Problem Details document.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"-"`
}

// MarshalJSON merges Extensions into the top-level object, protecting the
// reserved RFC 9457 field names.
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := map[string]any{"type": p.Type, "title": p.Title, "status": p.Status}
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}
	for k, v := range p.Extensions {
		if k != "type" && k != "title" && k != "status" && k != "detail" && k != "instance" {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// errorType/errorCode/errorDetails mirror the optional interfaces a domain
// error may implement to control RFC9457 formatting; *RouterError
// implements all three.
type errorType interface {
	error
	HTTPStatus() int
}

type errorCode interface {
	error
	Code() string
}

type errorDetails interface {
	error
	Details() any
}

// RFC9457 formats an error as application/problem+json (spec §7 "errors
// surface as RFC 9457 Problem Details").
type RFC9457 struct {
	// BaseURL is prepended to a problem code to build its type URI.
	BaseURL string

	// StatusResolver overrides status determination; falls back to the
	// ErrorType interface, then to 500.
	StatusResolver func(err error) int

	// TypeResolver overrides problem-type URI determination; falls back to
	// the ErrorCode interface, then "about:blank".
	TypeResolver func(err error) string

	// DisableErrorID suppresses the generated "error_id" extension.
	DisableErrorID bool
}

// Format converts err into an OutgoingResponse whose Content is a
// ProblemDetail, ready for the transport layer to JSON-encode.
func (f *RFC9457) Format(instancePath string, err error) event.OutgoingResponse {
	status := f.status(err)
	problem := ProblemDetail{
		Type:       f.problemType(err),
		Title:      statusText(status),
		Status:     status,
		Detail:     err.Error(),
		Instance:   instancePath,
		Extensions: make(map[string]any),
	}

	if !f.DisableErrorID {
		problem.Extensions["error_id"] = generateErrorID()
	}

	var detailed errorDetails
	if errors.As(err, &detailed) {
		problem.Extensions["errors"] = detailed.Details()
	}
	var coded errorCode
	if errors.As(err, &coded) {
		problem.Extensions["code"] = coded.Code()
	}

	resp := event.NewResponse(status, problem)
	resp.Headers["Content-Type"] = "application/problem+json; charset=utf-8"
	return resp
}

func (f *RFC9457) status(err error) int {
	if f.StatusResolver != nil {
		return f.StatusResolver(err)
	}
	var typed errorType
	if errors.As(err, &typed) {
		return typed.HTTPStatus()
	}
	return 500
}

func (f *RFC9457) problemType(err error) string {
	if f.TypeResolver != nil {
		return f.TypeResolver(err)
	}
	var coded errorCode
	if errors.As(err, &coded) {
		code := coded.Code()
		if f.BaseURL != "" {
			return f.BaseURL + "/" + code
		}
		return code
	}
	return "about:blank"
}

func generateErrorID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("err-%d", time.Now().UnixNano())
	}
	return "err-" + hex.EncodeToString(buf)
}

var statusTexts = map[int]string{
	400: "Bad Request",
	404: "Not Found",
	405: "Method Not Allowed",
	500: "Internal Server Error",
}

func statusText(status int) string {
	if text, ok := statusTexts[status]; ok {
		return text
	}
	return fmt.Sprintf("Status %d", status)
}
