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

// Package rerr collects the router's error kinds (spec §7) and an RFC 9457
// Problem Details formatter that turns any of them, or an arbitrary
// downstream handler error, into a response body.
package rerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a router-level failure.
type Kind int

const (
	// KindNotFound means no route matched the request at all.
	KindNotFound Kind = iota
	// KindMethodNotAllowed means a route matched URI/host but not method.
	KindMethodNotAllowed
	// KindDefinition means a RouteDefinition was malformed.
	KindDefinition
	// KindBinding means a parameter capture failed to resolve.
	KindBinding
	// KindDispatch means a handler invocation itself failed.
	KindDispatch
	// KindGeneration means URL generation failed (missing/invalid param,
	// unknown route name).
	KindGeneration
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindDefinition:
		return "definition_error"
	case KindBinding:
		return "binding_error"
	case KindDispatch:
		return "dispatch_error"
	case KindGeneration:
		return "generation_error"
	default:
		return "error"
	}
}

var defaultStatus = map[Kind]int{
	KindNotFound:         http.StatusNotFound,
	KindMethodNotAllowed: http.StatusMethodNotAllowed,
	KindDefinition:       http.StatusInternalServerError,
	KindBinding:          http.StatusNotFound,
	KindDispatch:         http.StatusInternalServerError,
	KindGeneration:       http.StatusInternalServerError,
}

// RouterError wraps an underlying cause with the router-level Kind that
// classifies it, and implements the ErrorType/ErrorCode/ErrorDetails trio a
// Formatter consults (grounded on the teacher errors package's optional
// interfaces).
type RouterError struct {
	Kind    Kind
	Cause   error
	Allowed []string // populated for KindMethodNotAllowed
}

// New wraps cause as a RouterError of the given kind.
func New(kind Kind, cause error) *RouterError {
	return &RouterError{Kind: kind, Cause: cause}
}

func (e *RouterError) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *RouterError) Unwrap() error { return e.Cause }

// HTTPStatus implements the ErrorType interface.
func (e *RouterError) HTTPStatus() int {
	if status, ok := defaultStatus[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Code implements the ErrorCode interface.
func (e *RouterError) Code() string { return e.Kind.String() }

// Details implements the ErrorDetails interface.
func (e *RouterError) Details() any {
	if e.Kind == KindMethodNotAllowed && len(e.Allowed) > 0 {
		return map[string]any{"allowed_methods": e.Allowed}
	}
	return nil
}

// As reports whether err (or something it wraps) is a *RouterError of kind.
func As(err error, kind Kind) bool {
	var re *RouterError
	if !errors.As(err, &re) {
		return false
	}
	return re.Kind == kind
}
