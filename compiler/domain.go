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

package compiler

import (
	"regexp"
	"strings"
)

// ParseDomainSegments parses a host pattern ("{tenant}.example.com") into a
// Segment list, one per dot-delimited label, using the same dynamic-token
// grammar as a path segment (spec §4.2: "Domain: if provided, parsed the
// same way").
func ParseDomainSegments(domain string) ([]Segment, error) {
	if domain == "" {
		return nil, nil
	}
	labels := strings.Split(domain, ".")
	segs := make([]Segment, 0, len(labels))
	for _, label := range labels {
		seg, err := parseOneSegment(label)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// buildDomainPattern compiles a parsed domain label list into an anchored
// regular expression. Labels are joined with a literal dot. A label's
// quantifier is not applied: every dynamic label compiles to a required
// capture of its rule.
func buildDomainPattern(segs []Segment, rules map[string]string) (*regexp.Regexp, error) {
	if len(segs) == 0 {
		return nil, nil
	}

	var parts []string
	for _, seg := range segs {
		if seg.Static {
			parts = append(parts, regexp.QuoteMeta(seg.Literal))
			continue
		}
		rule := ResolveRule(seg, rules)
		prefix := regexp.QuoteMeta(seg.Prefix)
		suffix := regexp.QuoteMeta(seg.Suffix)
		parts = append(parts, prefix+"(?P<"+seg.Name+">"+rule+")"+suffix)
	}

	pattern := "^" + strings.Join(parts, `\.`) + "$"
	return regexp.Compile(pattern)
}
