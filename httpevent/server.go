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
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	stonerouter "github.com/stonecore/router"
)

// Handler adapts a *stonerouter.Router to http.Handler by wrapping each
// inbound *http.Request as an event.IncomingEvent and rendering the
// resulting OutgoingResponse back onto the http.ResponseWriter.
type Handler struct {
	Router *stonerouter.Router
}

// NewHandler wraps r as an http.Handler.
func NewHandler(r *stonerouter.Router) *Handler { return &Handler{Router: r} }

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	resp := h.Router.Dispatch(NewEvent(req))
	_ = WriteResponse(w, resp)
}

// Timeouts bounds how long the underlying http.Server waits at each stage
// of a connection's lifecycle, mirroring the conservative defaults used to
// guard against slowloris-style resource exhaustion.
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
}

// DefaultTimeouts returns the baseline Timeouts applied when Serve/ServeTLS
// aren't given an explicit override.
func DefaultTimeouts() Timeouts {
	return Timeouts{ReadHeader: 5 * time.Second, Read: 15 * time.Second, Write: 30 * time.Second, Idle: 60 * time.Second}
}

// Serve starts a plaintext HTTP server for r on addr. When enableH2C is
// true, the handler additionally accepts HTTP/2 cleartext (h2c) connections
// — intended for local development or behind a trusted terminating proxy,
// never exposed directly to the internet.
func Serve(addr string, r *stonerouter.Router, enableH2C bool, timeouts Timeouts) error {
	var handler http.Handler = NewHandler(r)
	if enableH2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
		ReadTimeout:       timeouts.Read,
		WriteTimeout:      timeouts.Write,
		IdleTimeout:       timeouts.Idle,
	}
	return srv.ListenAndServe()
}

// ServeTLS starts an HTTPS server for r on addr; HTTP/2 is negotiated
// automatically via ALPN.
func ServeTLS(addr, certFile, keyFile string, r *stonerouter.Router, timeouts Timeouts) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(r),
		ReadHeaderTimeout: timeouts.ReadHeader,
		ReadTimeout:       timeouts.Read,
		WriteTimeout:      timeouts.Write,
		IdleTimeout:       timeouts.Idle,
	}
	return srv.ListenAndServeTLS(certFile, keyFile)
}
