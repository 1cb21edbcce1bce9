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
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/stonecore/router/definition"
	"github.com/stonecore/router/event"
	"github.com/stonecore/router/pipeline"
)

// RecoveryOption configures Recovery.
type RecoveryOption func(*recoveryConfig)

type recoveryConfig struct {
	logger     *slog.Logger
	stackTrace bool
	stackSize  int
}

func defaultRecoveryConfig() *recoveryConfig {
	return &recoveryConfig{logger: slog.Default(), stackTrace: true, stackSize: 4 << 10}
}

// WithRecoveryLogger sets the logger a panic is reported to. Pass nil to
// disable panic logging entirely.
func WithRecoveryLogger(logger *slog.Logger) RecoveryOption {
	return func(cfg *recoveryConfig) { cfg.logger = logger }
}

// WithStackTrace enables or disables stack trace capture. Default: true.
func WithStackTrace(enabled bool) RecoveryOption {
	return func(cfg *recoveryConfig) { cfg.stackTrace = enabled }
}

// WithStackSize caps how many bytes of a captured stack trace are logged.
// Default: 4KB.
func WithStackSize(size int) RecoveryOption {
	return func(cfg *recoveryConfig) { cfg.stackSize = size }
}

// Recovery returns a pipe that recovers from a panic anywhere later in the
// chain and turns it into an error, rather than letting it cross the
// dispatch boundary and crash the caller. The error propagates through
// pipeline.Run like any handler error, so the router's problem-detail
// formatter renders it as a 500 the same way it would a returned error.
func Recovery(opts ...RecoveryOption) pipeline.Pipe {
	cfg := defaultRecoveryConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx *definition.ActionContext, next pipeline.Next) (resp event.OutgoingResponse, err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			if cfg.logger != nil {
				attrs := []any{slog.Any("panic", r)}
				if cfg.stackTrace {
					stack := debug.Stack()
					if len(stack) > cfg.stackSize {
						stack = stack[:cfg.stackSize]
					}
					attrs = append(attrs, slog.String("stack", string(stack)))
				}
				cfg.logger.Error("recovered panic in handler", attrs...)
			}
			err = fmt.Errorf("panic recovered: %v", r)
		}()

		return next(ctx)
	}
}
