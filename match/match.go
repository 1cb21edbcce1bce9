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

// Package match implements the URI → Host → Method → Protocol matcher
// chain (spec §4.3) that turns an incoming event and a route set into
// either a matched candidate, a 404, or a 405/OPTIONS decision.
package match

import (
	"net/http"
	"sort"

	"github.com/stonecore/router/compiler"
	"github.com/stonecore/router/event"
)

// Outcome classifies the three ways a request can resolve (spec §4.3).
type Outcome int

const (
	// OutcomeMatched means a single route satisfied URI, host, method and
	// protocol.
	OutcomeMatched Outcome = iota
	// OutcomeNotFound means no route's URI (and host, when set) matched.
	OutcomeNotFound
	// OutcomeMethodNotAllowed means at least one route matched URI/host but
	// not the request's method; Allowed lists the alternates.
	OutcomeMethodNotAllowed
	// OutcomeOptions means the request was a bare OPTIONS against a path
	// with no explicit OPTIONS route; Allowed lists the alternates and the
	// caller should synthesize a 200 response (spec §4.3 "OPTIONS-200
	// synthesis").
	OutcomeOptions
)

// Candidate is a route matched against the current request's URI, with its
// captured path parameters (still strings; binding/coercion happens in
// package bind).
type Candidate struct {
	Route    *compiler.CompiledRoute
	Alias    string
	Captures map[string]string
}

// Result is what Match returns.
type Result struct {
	Outcome Outcome
	Match   *Candidate
	Allowed []string // de-duplicated, sorted; populated for 405/OPTIONS
}

// Matcher runs the full chain against a candidate route set.
type Matcher struct{}

// New constructs a Matcher.
func New() *Matcher { return &Matcher{} }

// Match runs the URI → Host → Method → Protocol chain over routes. It
// reorders them itself (spec §4.3 "fallback route ordering"): non-fallback
// routes are tried first, in the order given; fallback routes are tried
// only once nothing else matched.
func (m *Matcher) Match(routes []*compiler.CompiledRoute, ev event.IncomingEvent) Result {
	ordered := orderWithFallbackLast(routes)
	path := ev.DecodedPathname()
	host := ev.Host()
	method := ev.Method()

	var uriHostMatches []*Candidate
	allowedSet := make(map[string]bool)

	for _, route := range ordered {
		cand := matchURI(route, path)
		if cand == nil {
			continue
		}
		if !matchHost(route, host, cand.Captures) {
			continue
		}
		if !matchProtocol(route, ev) {
			continue
		}
		uriHostMatches = append(uriHostMatches, cand)

		if methodMatches(route, method) {
			return Result{Outcome: OutcomeMatched, Match: cand}
		}
		for _, mm := range route.Methods() {
			allowedSet[mm] = true
		}
	}

	// HEAD-via-GET fallback: a request for HEAD may be served by a route
	// that only declares GET (spec §4.3 edge case).
	if method == http.MethodHead {
		for _, cand := range uriHostMatches {
			if methodMatches(cand.Route, http.MethodGet) {
				return Result{Outcome: OutcomeMatched, Match: cand}
			}
		}
	}

	if len(uriHostMatches) == 0 {
		return Result{Outcome: OutcomeNotFound}
	}

	allowed := sortedKeys(allowedSet)
	if method == http.MethodOptions {
		return Result{Outcome: OutcomeOptions, Allowed: allowed}
	}
	return Result{Outcome: OutcomeMethodNotAllowed, Allowed: allowed}
}

func orderWithFallbackLast(routes []*compiler.CompiledRoute) []*compiler.CompiledRoute {
	ordered := make([]*compiler.CompiledRoute, 0, len(routes))
	var fallback []*compiler.CompiledRoute
	for _, r := range routes {
		if r.Fallback() {
			fallback = append(fallback, r)
		} else {
			ordered = append(ordered, r)
		}
	}
	return append(ordered, fallback...)
}

// matchURI tries every alias of route against path, returning the first
// successful capture set.
func matchURI(route *compiler.CompiledRoute, path string) *Candidate {
	for _, alias := range route.Aliases {
		names := alias.Pattern.SubexpNames()
		m := alias.Pattern.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		captures := make(map[string]string)
		for i, name := range names {
			if i == 0 || name == "" {
				continue
			}
			captures[name] = m[i]
		}
		return &Candidate{Route: route, Alias: alias.Alias, Captures: captures}
	}
	return nil
}

func matchHost(route *compiler.CompiledRoute, host string, captures map[string]string) bool {
	if route.DomainPattern == nil {
		return true
	}
	names := route.DomainPattern.SubexpNames()
	m := route.DomainPattern.FindStringSubmatch(host)
	if m == nil {
		return false
	}
	for i, name := range names {
		if i == 0 || name == "" {
			continue
		}
		captures[name] = m[i]
	}
	return true
}

func matchProtocol(route *compiler.CompiledRoute, ev event.IncomingEvent) bool {
	switch route.Protocol() {
	case "":
		return true
	case "https":
		return ev.IsSecure()
	case "http":
		return !ev.IsSecure()
	default:
		return true
	}
}

func methodMatches(route *compiler.CompiledRoute, method string) bool {
	for _, m := range route.Methods() {
		if m == method {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
