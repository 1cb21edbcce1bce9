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

// Package httpevent adapts net/http to the routing core's event package:
// httpEvent implements event.IncomingEvent over an *http.Request, and
// WriteResponse renders an event.OutgoingResponse to an http.ResponseWriter.
package httpevent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/stonecore/router/event"
)

// httpEvent implements event.IncomingEvent over a single *http.Request.
type httpEvent struct {
	req   *http.Request
	query map[string]string

	mu       sync.Mutex
	metadata map[string]any
}

// NewEvent wraps req as an event.IncomingEvent.
func NewEvent(req *http.Request) event.IncomingEvent {
	return &httpEvent{req: req, metadata: make(map[string]any)}
}

func (e *httpEvent) Method() string { return strings.ToUpper(e.req.Method) }
func (e *httpEvent) Host() string   { return stripPort(e.req.Host) }

func (e *httpEvent) DecodedPathname() string {
	if e.req.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(e.req.URL.RawPath); err == nil {
			return decoded
		}
	}
	return e.req.URL.Path
}

func (e *httpEvent) Query() map[string]string {
	if e.query != nil {
		return e.query
	}
	values := e.req.URL.Query()
	out := make(map[string]string, len(values))
	for k := range values {
		out[k] = values.Get(k)
	}
	e.query = out
	return out
}

func (e *httpEvent) Body() any { return e.req.Body }

func (e *httpEvent) IsSecure() bool {
	if e.req.TLS != nil {
		return true
	}
	return strings.EqualFold(e.req.Header.Get("X-Forwarded-Proto"), "https")
}

func (e *httpEvent) IsMethod(v string) bool { return strings.EqualFold(e.req.Method, v) }

func (e *httpEvent) Metadata(key string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.metadata[key]
	return v, ok
}

func (e *httpEvent) SetMetadata(key string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metadata[key] = value
}

func (e *httpEvent) Context() context.Context { return e.req.Context() }

func stripPort(host string) string {
	if i := strings.LastIndexByte(host, ':'); i != -1 && !strings.Contains(host[i:], "]") {
		return host[:i]
	}
	return host
}

// WriteResponse renders resp to w: headers, status line, then a
// JSON-encoded body unless Content is already []byte or a string.
func WriteResponse(w http.ResponseWriter, resp event.OutgoingResponse) error {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	if resp.Content == nil {
		w.WriteHeader(status)
		return nil
	}

	switch body := resp.Content.(type) {
	case []byte:
		w.WriteHeader(status)
		_, err := w.Write(body)
		return err
	case string:
		w.WriteHeader(status)
		_, err := w.Write([]byte(body))
		return err
	default:
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
		}
		w.WriteHeader(status)
		return json.NewEncoder(w).Encode(body)
	}
}
