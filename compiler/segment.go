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

// Package compiler turns a normalized path/domain string into a Segment
// model and a compiled regular expression (spec §4.2).
package compiler

import (
	"fmt"
	"regexp"
	"strings"
)

// Segment is one slash-delimited unit of a path, static or dynamic (spec §3
// GLOSSARY, §4.2 grammar).
type Segment struct {
	Static  bool
	Literal string // Static == true

	Name       string // Static == false
	Alias      string // binding key, optional
	Quantifier byte   // 0, '?', '+', '*'
	Rule       string // not set by the parser; ResolveRule looks the regex up when compiling
	Prefix     string // literal text before the dynamic token
	Suffix     string // literal text after the dynamic token
}

// defaultRule is used when neither the route's rules map nor an
// alias-keyed rule supplies one (spec §4.2: "lookup order: route rules[name]
// → alias-based default → [^/]+").
const defaultRule = `[^/]+`

var dynamicToken = regexp.MustCompile(
	`^(?P<prefix>[^:{}]*)(?:\{(?P<bname>[A-Za-z_][A-Za-z0-9_]*)(?::(?P<alias>[A-Za-z_][A-Za-z0-9_]*))?\}|:(?P<cname>[A-Za-z_][A-Za-z0-9_]*))(?P<quant>[?+*]?)(?P<suffix>[^:{}]*)$`,
)

// ParseSegments parses a normalized path (leading "/") into its Segment
// model, per the grammar in spec §4.2.
func ParseSegments(path string) ([]Segment, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, nil
	}

	parts := strings.Split(trimmed, "/")
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		seg, err := parseOneSegment(part)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseOneSegment(part string) (Segment, error) {
	m := dynamicToken.FindStringSubmatch(part)
	if m == nil {
		return Segment{Static: true, Literal: part}, nil
	}

	names := dynamicToken.SubexpNames()
	group := func(name string) string {
		for i, n := range names {
			if n == name && i < len(m) {
				return m[i]
			}
		}
		return ""
	}

	name := group("bname")
	if name == "" {
		name = group("cname")
	}
	if name == "" {
		return Segment{}, fmt.Errorf("compiler: unable to parse segment %q", part)
	}

	quant := group("quant")
	var q byte
	if quant != "" {
		q = quant[0]
	}

	return Segment{
		Name:       name,
		Alias:      group("alias"),
		Quantifier: q,
		Prefix:     group("prefix"),
		Suffix:     group("suffix"),
	}, nil
}

// ResolveRule picks the regex for a dynamic segment: the route's own
// rules[name], falling back to rules[alias], falling back to defaultRule.
func ResolveRule(seg Segment, rules map[string]string) string {
	if r, ok := rules[seg.Name]; ok {
		return r
	}
	if seg.Alias != "" {
		if r, ok := rules[seg.Alias]; ok {
			return r
		}
	}
	return defaultRule
}

// BindingKey returns the key under which a bound value should be exposed:
// the segment's alias when set, else its name (spec §3 Segment: "alias?
// (binding key)").
func (s Segment) BindingKey() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// ParamNames returns the ordered list of dynamic segment names in segs
// (spec §4.2 "cached metadata: ... named-parameter list").
func ParamNames(segs []Segment) []string {
	var names []string
	for _, s := range segs {
		if !s.Static {
			names = append(names, s.Name)
		}
	}
	return names
}
