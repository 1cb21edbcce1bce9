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

package definition

import (
	"fmt"
	"reflect"
	"strings"
)

// DefaultMaxDepth is the default definition nesting depth limit (spec §4.1
// "configurable (maxDepth, default 5)").
const DefaultMaxDepth = 5

// Normalizer flattens a tree of RouteDefinition into leaf routes, merging
// parent fields into children per the fixed rule table in spec §4.1.
type Normalizer struct {
	// MaxDepth bounds definition nesting; 0 means DefaultMaxDepth.
	MaxDepth int
}

// NewNormalizer constructs a Normalizer with the given max depth, or
// DefaultMaxDepth when maxDepth <= 0.
func NewNormalizer(maxDepth int) *Normalizer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Normalizer{MaxDepth: maxDepth}
}

// Normalize flattens roots into a list of validated leaf definitions.
func (n *Normalizer) Normalize(roots []*RouteDefinition) ([]*RouteDefinition, error) {
	var leaves []*RouteDefinition
	for _, root := range roots {
		if err := n.walk(root, nil, 0, &leaves); err != nil {
			return nil, err
		}
	}
	return leaves, nil
}

func (n *Normalizer) walk(def *RouteDefinition, parent *RouteDefinition, depth int, out *[]*RouteDefinition) error {
	if depth > n.MaxDepth {
		return &DefinitionError{Reason: fmt.Sprintf("definition nesting exceeds maxDepth=%d", n.MaxDepth), Definition: def}
	}

	merged := mergeDefinition(parent, def)

	if len(def.Children) == 0 {
		if err := validateLeaf(merged); err != nil {
			return err
		}
		*out = append(*out, merged)
		return nil
	}

	for _, child := range def.Children {
		if err := n.walk(child, merged, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}

// mergeDefinition applies the parent → child merge table. parent may be nil
// for a root definition, in which case the child's own fields pass through
// unchanged (after path/name normalization).
func mergeDefinition(parent, child *RouteDefinition) *RouteDefinition {
	merged := &RouteDefinition{
		Strict:   child.Strict,
		Fallback: child.Fallback,
		Children: child.Children,
	}

	merged.Path = mergePaths(parentPaths(parent), child.Path)
	merged.Name = mergeName(parentName(parent), child.Name)

	merged.Domain = child.Domain
	if merged.Domain == "" && parent != nil {
		merged.Domain = parent.Domain
	}
	merged.Protocol = child.Protocol
	if merged.Protocol == "" && parent != nil {
		merged.Protocol = parent.Protocol
	}

	merged.Methods = mergeMethods(parentMethods(parent), child.Methods)

	merged.Middleware = mergeMiddleware(parentMiddleware(parent), child.Middleware)
	merged.ExcludeMiddleware = mergeMiddleware(parentExcludeMiddleware(parent), child.ExcludeMiddleware)

	merged.Rules = mergeStringMap(parentRules(parent), child.Rules)
	merged.Defaults = mergeAnyMap(parentDefaults(parent), child.Defaults)
	merged.Bindings = mergeStringMap(parentBindings(parent), child.Bindings)

	merged.Action = mergeAction(parentAction(parent), child.Action)

	if merged.Strict == nil && parent != nil {
		merged.Strict = parent.Strict
	}

	return merged
}

func parentPaths(p *RouteDefinition) []string {
	if p == nil {
		return nil
	}
	return p.Path
}

func parentName(p *RouteDefinition) string {
	if p == nil {
		return ""
	}
	return p.Name
}

func parentMethods(p *RouteDefinition) []string {
	if p == nil {
		return nil
	}
	return p.Methods
}

func parentMiddleware(p *RouteDefinition) []MiddlewareRef {
	if p == nil {
		return nil
	}
	return p.Middleware
}

func parentExcludeMiddleware(p *RouteDefinition) []MiddlewareRef {
	if p == nil {
		return nil
	}
	return p.ExcludeMiddleware
}

func parentRules(p *RouteDefinition) map[string]string {
	if p == nil {
		return nil
	}
	return p.Rules
}

func parentDefaults(p *RouteDefinition) map[string]any {
	if p == nil {
		return nil
	}
	return p.Defaults
}

func parentBindings(p *RouteDefinition) map[string]string {
	if p == nil {
		return nil
	}
	return p.Bindings
}

func parentAction(p *RouteDefinition) *ActionDescriptor {
	if p == nil {
		return nil
	}
	return p.Action
}

// mergePaths concatenates each parent alias with each child alias
// (spec §4.1: `normalize("/" + parent.path + "/" + child.path)` collapsing
// `//+` to `/`). A missing side contributes a single empty segment; when
// both sides are missing the result has no path at all, so a leaf that
// never declared one fails validateLeaf.
func mergePaths(parentPaths, childPaths []string) []string {
	if len(parentPaths) == 0 && len(childPaths) == 0 {
		return nil
	}
	if len(parentPaths) == 0 {
		parentPaths = []string{""}
	}
	if len(childPaths) == 0 {
		childPaths = []string{""}
	}
	out := make([]string, 0, len(parentPaths)*len(childPaths))
	for _, pp := range parentPaths {
		for _, cp := range childPaths {
			out = append(out, joinPath(pp, cp))
		}
	}
	return out
}

func joinPath(a, b string) string {
	joined := "/" + strings.Trim(a, "/") + "/" + strings.Trim(b, "/")
	for strings.Contains(joined, "//") {
		joined = strings.ReplaceAll(joined, "//", "/")
	}
	if len(joined) > 1 && strings.HasSuffix(joined, "/") {
		joined = strings.TrimRight(joined, "/")
	}
	if joined == "" {
		joined = "/"
	}
	return joined
}

// mergeName joins parent.name and child.name with "." trimming
// duplicate/leading/trailing dots (spec §4.1).
func mergeName(parentName, childName string) string {
	parts := make([]string, 0, 2)
	if parentName != "" {
		parts = append(parts, strings.Trim(parentName, "."))
	}
	if childName != "" {
		parts = append(parts, strings.Trim(childName, "."))
	}
	joined := strings.Join(parts, ".")
	for strings.Contains(joined, "..") {
		joined = strings.ReplaceAll(joined, "..", ".")
	}
	return strings.Trim(joined, ".")
}

var httpVerbWhitelist = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

// mergeMethods unions parent and child methods, de-duplicated and filtered
// against the HTTP-verb whitelist (spec §4.1).
func mergeMethods(parentMethods, childMethods []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range append(append([]string{}, parentMethods...), childMethods...) {
		m = strings.ToUpper(m)
		if !httpVerbWhitelist[m] || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// mergeMiddleware concatenates parent and child pipe lists, de-duplicated
// by reference identity (spec §4.1 and §9 Open Question). Ref is compared
// by reference-identity key rather than used as a map key directly: a Ref
// holding a func value is not itself comparable/hashable in Go.
func mergeMiddleware(parentRefs, childRefs []MiddlewareRef) []MiddlewareRef {
	seen := make(map[any]bool)
	var out []MiddlewareRef
	for _, ref := range append(append([]MiddlewareRef{}, parentRefs...), childRefs...) {
		key := RefIdentity(ref.Ref)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ref)
	}
	return out
}

// RefIdentity returns a comparable key for an arbitrary middleware
// reference: function values are keyed by their code pointer, everything
// else is used as-is (spec §9 Open Question: "the source uses reference
// equality; preserve that"). Exported so packages assembling or excluding
// pipes from a MiddlewareRef list can match the same identity rule.
func RefIdentity(ref any) any {
	v := reflect.ValueOf(ref)
	if v.Kind() == reflect.Func {
		return fmt.Sprintf("func@%x", v.Pointer())
	}
	return ref
}

// mergeStringMap shallow-merges two string maps; child keys win.
func mergeStringMap(parent, child map[string]string) map[string]string {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string]string, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}

// mergeAnyMap shallow-merges two any-valued maps; child keys win.
func mergeAnyMap(parent, child map[string]any) map[string]any {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string]any, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}

// mergeAction implements spec §4.1's action merge rule: if the child names
// a method on a class and the parent is itself a class, bind the parent's
// constructor to the child's method name; otherwise the child's own action
// wins, falling back to the parent's when the child declares none.
func mergeAction(parent, child *ActionDescriptor) *ActionDescriptor {
	if child == nil {
		return parent
	}
	if parent != nil && parent.Kind == KindClass && child.Kind == KindClass && child.Ctor == nil {
		bound := *child
		bound.Ctor = parent.Ctor
		bound.Key = parent.Key
		if bound.Action == "" {
			bound.Action = DefaultClassAction
		}
		return &bound
	}
	return child
}

// validateLeaf enforces spec §4.1's post-flatten invariant: a leaf must
// have at least one path, at least one method, and an action or a redirect.
func validateLeaf(def *RouteDefinition) error {
	if len(def.Path) == 0 || def.Path[0] == "" {
		return &DefinitionError{Reason: "leaf definition has no path", Definition: def}
	}
	if len(def.Methods) == 0 {
		return &DefinitionError{Reason: "leaf definition has no methods", Definition: def}
	}
	if def.Action == nil || def.Action.Kind == KindNone {
		return &DefinitionError{Reason: "leaf definition has no action or redirect", Definition: def}
	}
	if def.Action.Kind == KindRedirect && def.Action.Redirect == nil {
		return &DefinitionError{Reason: "redirect action missing redirect descriptor", Definition: def}
	}
	if def.Action.Kind == KindClass && def.Action.Ctor == nil {
		return &DefinitionError{Reason: "class action missing constructor", Definition: def}
	}
	if def.Action.Kind == KindClass && def.Action.Action == "" {
		def.Action.Action = DefaultClassAction
	}
	return nil
}
