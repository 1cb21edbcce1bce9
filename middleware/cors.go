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
	"strconv"
	"strings"

	"github.com/stonecore/router/definition"
	"github.com/stonecore/router/event"
	"github.com/stonecore/router/pipeline"
)

// CORSOption configures CORS.
type CORSOption func(*corsConfig)

type corsConfig struct {
	allowedOrigins   []string
	allowAllOrigins  bool
	allowedMethods   []string
	allowedHeaders   []string
	exposedHeaders   []string
	allowCredentials bool
	maxAge           int
}

func defaultCORSConfig() *corsConfig {
	return &corsConfig{
		allowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		allowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		maxAge:         3600,
	}
}

// WithAllowedOrigins advertises this explicit list, joined with ", ", in
// Access-Control-Allow-Origin. The request's Origin header is not checked
// against it.
func WithAllowedOrigins(origins []string) CORSOption {
	return func(cfg *corsConfig) { cfg.allowedOrigins = origins; cfg.allowAllOrigins = false }
}

// WithAllowAllOrigins sets Access-Control-Allow-Origin: *. Insecure; only
// appropriate for a public, credential-less API.
func WithAllowAllOrigins(allow bool) CORSOption {
	return func(cfg *corsConfig) { cfg.allowAllOrigins = allow }
}

// WithAllowedMethods overrides the advertised Access-Control-Allow-Methods.
func WithAllowedMethods(methods []string) CORSOption {
	return func(cfg *corsConfig) { cfg.allowedMethods = methods }
}

// WithAllowedHeaders overrides the advertised Access-Control-Allow-Headers.
func WithAllowedHeaders(headers []string) CORSOption {
	return func(cfg *corsConfig) { cfg.allowedHeaders = headers }
}

// WithExposedHeaders sets Access-Control-Expose-Headers.
func WithExposedHeaders(headers []string) CORSOption {
	return func(cfg *corsConfig) { cfg.exposedHeaders = headers }
}

// WithAllowCredentials sets Access-Control-Allow-Credentials.
func WithAllowCredentials(allow bool) CORSOption {
	return func(cfg *corsConfig) { cfg.allowCredentials = allow }
}

// WithMaxAge sets how long, in seconds, a preflight response may be cached.
func WithMaxAge(seconds int) CORSOption {
	return func(cfg *corsConfig) { cfg.maxAge = seconds }
}

// CORS returns a pipe that annotates the response of every matched route
// it runs for with the configured CORS headers. Preflight (OPTIONS)
// requests answered by the router's own OPTIONS synthesis never run the
// pipeline, so that 200 response does not carry these headers.
func CORS(opts ...CORSOption) pipeline.Pipe {
	cfg := defaultCORSConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx *definition.ActionContext, next pipeline.Next) (event.OutgoingResponse, error) {
		resp, err := next(ctx)
		if err != nil {
			return resp, err
		}

		switch {
		case cfg.allowAllOrigins:
			resp = resp.WithHeader("Access-Control-Allow-Origin", "*")
		case len(cfg.allowedOrigins) > 0:
			resp = resp.WithHeader("Access-Control-Allow-Origin", strings.Join(cfg.allowedOrigins, ", "))
			resp = resp.WithHeader("Vary", "Origin")
		}
		resp = resp.WithHeader("Access-Control-Allow-Methods", strings.Join(cfg.allowedMethods, ", "))
		resp = resp.WithHeader("Access-Control-Allow-Headers", strings.Join(cfg.allowedHeaders, ", "))
		if len(cfg.exposedHeaders) > 0 {
			resp = resp.WithHeader("Access-Control-Expose-Headers", strings.Join(cfg.exposedHeaders, ", "))
		}
		if cfg.allowCredentials {
			resp = resp.WithHeader("Access-Control-Allow-Credentials", "true")
		}
		if cfg.maxAge > 0 {
			resp = resp.WithHeader("Access-Control-Max-Age", strconv.Itoa(cfg.maxAge))
		}
		return resp, nil
	}
}
