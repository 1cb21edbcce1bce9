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
	"fmt"
	"regexp"
	"strings"
)

// buildPathPattern compiles a parsed segment list into a single anchored
// regular expression (spec §4.2). Quantifiers change how a segment
// contributes to the pattern:
//
//   - none: required, "/" + literal-prefix + capture + literal-suffix
//   - "?":  the segment and its leading slash become optional as a unit
//   - "+":  one or more slash-joined repetitions of the rule, captured together
//   - "*":  zero or more slash-joined repetitions, the whole thing optional
//
// Once an optional ("?" or "*") segment is seen, every remaining segment
// must also be optional (spec §4.2 edge case): "optional segments may only
// be followed by other optional segments".
func buildPathPattern(segs []Segment, rules map[string]string, strict bool) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")

	if len(segs) == 0 {
		if strict {
			b.WriteString("/$")
		} else {
			b.WriteString("/?$")
		}
		return regexp.Compile(b.String())
	}

	optionalStarted := false
	for i, seg := range segs {
		last := i == len(segs)-1

		if seg.Static {
			if optionalStarted {
				return nil, fmt.Errorf("compiler: static segment %q follows an optional segment", seg.Literal)
			}
			b.WriteString("/" + regexp.QuoteMeta(seg.Literal))
			continue
		}

		rule := ResolveRule(seg, rules)
		core := "(?:" + rule + ")"
		prefix := regexp.QuoteMeta(seg.Prefix)
		suffix := regexp.QuoteMeta(seg.Suffix)

		switch seg.Quantifier {
		case 0:
			if optionalStarted {
				return nil, fmt.Errorf("compiler: required segment %q follows an optional segment", seg.Name)
			}
			b.WriteString("/" + prefix + "(?P<" + seg.Name + ">" + rule + ")" + suffix)
		case '?':
			optionalStarted = true
			b.WriteString("(?:/" + prefix + "(?P<" + seg.Name + ">" + rule + ")" + suffix + ")?")
		case '+':
			if !last {
				return nil, fmt.Errorf("compiler: '+' quantifier on %q is only valid on the last segment", seg.Name)
			}
			if optionalStarted {
				return nil, fmt.Errorf("compiler: '+' segment %q follows an optional segment", seg.Name)
			}
			b.WriteString("/" + prefix + "(?P<" + seg.Name + ">" + core + "(?:/" + core + ")*)" + suffix)
		case '*':
			if !last {
				return nil, fmt.Errorf("compiler: '*' quantifier on %q is only valid on the last segment", seg.Name)
			}
			optionalStarted = true
			b.WriteString("(?:/" + prefix + "(?P<" + seg.Name + ">" + core + "(?:/" + core + ")*)" + suffix + ")?")
		default:
			return nil, fmt.Errorf("compiler: unknown quantifier %q on segment %q", seg.Quantifier, seg.Name)
		}
	}

	if strict {
		b.WriteString("$")
	} else {
		b.WriteString("/?$")
	}

	return regexp.Compile(b.String())
}
