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

// Package middleware provides pipeline.Pipe implementations for concerns
// that apply across every route: request identification, panic recovery,
// and CORS. Access logging is provided by package observability.
package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/stonecore/router/definition"
	"github.com/stonecore/router/event"
	"github.com/stonecore/router/pipeline"
)

// requestIDMetadataKey is the event metadata key RequestID stashes its
// generated ID under, for downstream pipes and handlers to read back.
const requestIDMetadataKey = "request.id"

// RequestIDOption configures RequestID.
type RequestIDOption func(*requestIDConfig)

type requestIDConfig struct {
	header    string
	generator func() string
}

func defaultRequestIDConfig() *requestIDConfig {
	return &requestIDConfig{header: "X-Request-ID", generator: generateRandomID}
}

// WithRequestIDHeader sets the response header name the generated ID is
// reported under. Default: "X-Request-ID".
func WithRequestIDHeader(header string) RequestIDOption {
	return func(cfg *requestIDConfig) { cfg.header = header }
}

// WithRequestIDGenerator overrides how IDs are generated.
func WithRequestIDGenerator(generator func() string) RequestIDOption {
	return func(cfg *requestIDConfig) { cfg.generator = generator }
}

func generateRandomID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// RequestID returns a pipe that stamps every event with a generated
// request ID (available to later pipes and handlers via GetRequestID) and
// echoes it back on the response.
func RequestID(opts ...RequestIDOption) pipeline.Pipe {
	cfg := defaultRequestIDConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx *definition.ActionContext, next pipeline.Next) (event.OutgoingResponse, error) {
		id := cfg.generator()
		ctx.Event.SetMetadata(requestIDMetadataKey, id)

		resp, err := next(ctx)
		if err != nil {
			return resp, err
		}
		return resp.WithHeader(cfg.header, id), nil
	}
}

// GetRequestID reads back the ID RequestID attached to ctx's event, or ""
// if the pipe was never registered.
func GetRequestID(ctx *definition.ActionContext) string {
	v, ok := ctx.Event.Metadata(requestIDMetadataKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
