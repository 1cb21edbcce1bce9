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

package observability

import (
	"log/slog"
	"time"
)

// AccessLogConfig controls which requests RequestLogger writes a line for.
type AccessLogConfig struct {
	// SkipPaths lists pathnames that should never be logged, e.g. health
	// checks and the metrics scrape endpoint.
	SkipPaths map[string]bool
}

// RequestLogger builds the access-log callback a Recorder invokes once per
// dispatched request. logger defaults to slog.Default() when nil.
func RequestLogger(logger *slog.Logger, cfg AccessLogConfig) func(method, path, routeName string, status int, duration time.Duration) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(method, path, routeName string, status int, duration time.Duration) {
		if cfg.SkipPaths[path] {
			return
		}
		attrs := []any{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("duration", duration),
		}
		if routeName != "" {
			attrs = append(attrs, slog.String("route", routeName))
		}
		switch {
		case status >= 500:
			logger.Error("request dispatched", attrs...)
		case status >= 400:
			logger.Warn("request dispatched", attrs...)
		default:
			logger.Info("request dispatched", attrs...)
		}
	}
}
