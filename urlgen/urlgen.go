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

// Package urlgen builds URLs from named routes and parameters (spec §4.7),
// the inverse of package match.
package urlgen

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/stonecore/router/collection"
	"github.com/stonecore/router/compiler"
)

// RouteNotFoundError is returned when Generate is asked for a name the
// collection doesn't hold.
type RouteNotFoundError struct{ Name string }

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("urlgen: no route named %q", e.Name)
}

// MissingParamError is returned when a required dynamic segment has no
// corresponding entry in Options.Params.
type MissingParamError struct {
	Route string
	Param string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("urlgen: route %q is missing required parameter %q", e.Route, e.Param)
}

// RuleViolationError is returned when a supplied parameter value doesn't
// satisfy the segment's compiled rule.
type RuleViolationError struct {
	Route string
	Param string
	Value string
	Rule  string
}

func (e *RuleViolationError) Error() string {
	return fmt.Sprintf("urlgen: route %q parameter %q value %q does not satisfy rule /%s/", e.Route, e.Param, e.Value, e.Rule)
}

// Options configures a single Generate call.
type Options struct {
	Name     string
	Params   map[string]any
	Query    map[string]string
	Hash     string
	Domain   string // overrides the route's own domain pattern verbatim
	Protocol string // "http" or "https"; defaults to the route's own, or "http"
	Absolute bool   // force scheme://host even when the route has no domain
}

// Generator builds URLs against a RouteCollection.
type Generator struct {
	routes *collection.RouteCollection
}

// New constructs a Generator over routes.
func New(routes *collection.RouteCollection) *Generator {
	return &Generator{routes: routes}
}

// Generate builds the URL for opts.Name, substituting opts.Params into the
// route's first path alias, appending opts.Query and opts.Hash, and
// prefixing scheme://host when the route declares a domain, Options.Domain
// is set, or Options.Absolute is true.
func (g *Generator) Generate(opts Options) (string, error) {
	route, ok := g.routes.FindByName(opts.Name)
	if !ok {
		return "", &RouteNotFoundError{Name: opts.Name}
	}

	path, err := renderPath(route, opts.Params)
	if err != nil {
		return "", err
	}

	u := &url.URL{Path: path}

	host := opts.Domain
	if host == "" && route.Domain() != "" {
		host, err = renderDomain(route, opts.Params)
		if err != nil {
			return "", err
		}
	}

	if host != "" || opts.Absolute {
		u.Scheme = resolveProtocol(opts, route)
		if host == "" {
			host = "localhost"
		}
		u.Host = host
	}

	if len(opts.Query) > 0 {
		q := url.Values{}
		keys := make([]string, 0, len(opts.Query))
		for k := range opts.Query {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			q.Set(k, opts.Query[k])
		}
		u.RawQuery = q.Encode()
	}

	if opts.Hash != "" {
		u.Fragment = opts.Hash
	}

	return u.String(), nil
}

func resolveProtocol(opts Options, route *compiler.CompiledRoute) string {
	if opts.Protocol != "" {
		return opts.Protocol
	}
	if route.Protocol() != "" {
		return route.Protocol()
	}
	return "http"
}

func renderPath(route *compiler.CompiledRoute, params map[string]any) (string, error) {
	segs := route.Segments
	if len(segs) == 0 {
		return "/", nil
	}

	var b strings.Builder
	for _, seg := range segs {
		if seg.Static {
			b.WriteString("/")
			b.WriteString(seg.Literal)
			continue
		}

		value, present := params[seg.BindingKey()]
		if !present {
			if seg.Quantifier == '?' || seg.Quantifier == '*' {
				continue
			}
			return "", &MissingParamError{Route: route.Name(), Param: seg.Name}
		}

		str := fmt.Sprint(value)
		rule := compiler.ResolveRule(seg, route.Definition.Rules)
		if err := validateAgainstRule(rule, str); err != nil {
			return "", &RuleViolationError{Route: route.Name(), Param: seg.Name, Value: str, Rule: rule}
		}

		b.WriteString("/")
		b.WriteString(seg.Prefix)
		b.WriteString(str)
		b.WriteString(seg.Suffix)
	}

	out := b.String()
	if out == "" {
		return "/", nil
	}
	return out, nil
}

func renderDomain(route *compiler.CompiledRoute, params map[string]any) (string, error) {
	segs, err := compiler.ParseDomainSegments(route.Domain())
	if err != nil {
		return "", err
	}

	var labels []string
	for _, seg := range segs {
		if seg.Static {
			labels = append(labels, seg.Literal)
			continue
		}
		value, present := params[seg.BindingKey()]
		if !present {
			return "", &MissingParamError{Route: route.Name(), Param: seg.Name}
		}
		str := fmt.Sprint(value)
		rule := compiler.ResolveRule(seg, route.Definition.Rules)
		if err := validateAgainstRule(rule, str); err != nil {
			return "", &RuleViolationError{Route: route.Name(), Param: seg.Name, Value: str, Rule: rule}
		}
		labels = append(labels, seg.Prefix+str+seg.Suffix)
	}
	return strings.Join(labels, "."), nil
}

func validateAgainstRule(rule, value string) error {
	re, err := regexp.Compile("^(?:" + rule + ")$")
	if err != nil {
		return nil // an unparsable rule was already rejected at compile time
	}
	if !re.MatchString(value) {
		return fmt.Errorf("value %q does not match rule", value)
	}
	return nil
}
