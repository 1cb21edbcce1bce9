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

// Package router assembles the definition, compiler, collection, match,
// bind, dispatch, pipeline and urlgen packages behind a single facade: a
// declarative route tree goes in, and Dispatch turns an IncomingEvent into
// an OutgoingResponse (package httpevent adapts it to net/http).
package router

import (
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/stonecore/router/bind"
	"github.com/stonecore/router/collection"
	"github.com/stonecore/router/compiler"
	"github.com/stonecore/router/definition"
	"github.com/stonecore/router/dispatch"
	"github.com/stonecore/router/event"
	"github.com/stonecore/router/match"
	"github.com/stonecore/router/pipeline"
	"github.com/stonecore/router/rerr"
	"github.com/stonecore/router/urlgen"
)

// Option configures a Router at construction time.
type Option func(*Router)

// Router is the facade over the routing core: Register builds and indexes
// routes, Dispatch resolves and runs a request against them, and Generate
// produces URLs from a route's name.
type Router struct {
	mu         sync.Mutex // serializes Register calls; collection is independently thread-safe for reads
	routes     *collection.RouteCollection
	normalizer *definition.Normalizer
	compiler   *compiler.RouteCompiler
	matcher    *match.Matcher
	binder     *bind.Binder
	dispatcher *dispatch.Registry
	generator  *urlgen.Generator

	mwMu       sync.RWMutex
	middleware map[any]pipeline.Pipe

	global         []pipeline.Spec
	skipMiddleware bool

	formatter *rerr.RFC9457
	resolver  event.Resolver

	diagnostics DiagnosticHandler

	frozen atomic.Bool
}

// New constructs a Router with the given options applied.
func New(opts ...Option) *Router {
	routes := collection.New()
	r := &Router{
		routes:     routes,
		normalizer: definition.NewNormalizer(0),
		compiler:   compiler.NewRouteCompiler(false),
		matcher:    match.New(),
		binder:     bind.New(),
		dispatcher: dispatch.NewRegistry(nil),
		generator:  urlgen.New(routes),
		middleware: make(map[any]pipeline.Pipe),
		formatter:  &rerr.RFC9457{},
		resolver:   event.DefaultResolver,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithMaxDepth bounds definition nesting depth (spec §4.1, default 5).
func WithMaxDepth(depth int) Option {
	return func(r *Router) { r.normalizer = definition.NewNormalizer(depth) }
}

// WithDefaultStrict sets the default trailing-slash strictness for routes
// that don't set Strict themselves (spec §4.2).
func WithDefaultStrict(strict bool) Option {
	return func(r *Router) { r.compiler = compiler.NewRouteCompiler(strict) }
}

// WithContainer wires a dependency-injection container used to resolve
// class handlers (spec §4.5).
func WithContainer(container dispatch.Container) Option {
	return func(r *Router) { r.dispatcher = dispatch.NewRegistry(container) }
}

// WithBindingResolver registers a named parameter-binding resolver (spec §4.4).
func WithBindingResolver(name string, resolver bind.Resolver) Option {
	return func(r *Router) { r.binder.Register(name, resolver) }
}

// WithMiddleware registers the pipe invoked for a given reference token
// (spec §3 "middleware ... pipe descriptors"). ref must be the same value
// used as MiddlewareRef.Ref in route definitions.
func WithMiddleware(ref any, pipe pipeline.Pipe) Option {
	return func(r *Router) { r.middleware[definition.RefIdentity(ref)] = pipe }
}

// WithGlobalMiddleware registers pipes run on every dispatch, ahead of
// per-route assembly (spec §4.6 "globalMiddleware ⊎ route.middleware \
// route.excludeMiddleware", spec §6 "middleware: Global middleware list
// (with priorities)"). Priority ordering and a route's ExcludeMiddleware
// both span global and route-level pipes: buildSpecs merges the two sets
// before handing them to pipeline.Assemble.
func WithGlobalMiddleware(specs ...pipeline.Spec) Option {
	return func(r *Router) { r.global = append(r.global, specs...) }
}

// WithSkipMiddleware bypasses the middleware pipeline entirely when skip is
// true, invoking the dispatcher directly (spec §6 "skipMiddleware").
func WithSkipMiddleware(skip bool) Option {
	return func(r *Router) { r.skipMiddleware = skip }
}

// WithProblemBaseURL sets the base URL the RFC 9457 formatter prepends to
// problem-type slugs.
func WithProblemBaseURL(baseURL string) Option {
	return func(r *Router) { r.formatter.BaseURL = baseURL }
}

// WithResponseResolver overrides how a handler's raw return value becomes
// an event.OutgoingResponse.
func WithResponseResolver(resolver event.Resolver) Option {
	return func(r *Router) { r.resolver = resolver }
}

// WithDiagnostics installs a handler invoked for every DiagnosticEvent
// (spec §4.8 "observable events").
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(r *Router) { r.diagnostics = handler }
}

// Register normalizes, compiles and indexes every definition tree in defs.
// It returns the first error encountered (a *definition.DefinitionError, a
// compiler error, or a *collection.ConflictError) and registers nothing
// from a failing call.
func (r *Router) Register(defs ...*definition.RouteDefinition) error {
	if r.frozen.Load() {
		return fmt.Errorf("router: cannot register routes after Freeze")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	leaves, err := r.normalizer.Normalize(defs)
	if err != nil {
		return err
	}

	compiled, err := r.compiler.CompileAll(leaves)
	if err != nil {
		return err
	}

	for _, route := range compiled {
		if err := r.routes.Add(route); err != nil {
			return err
		}
	}
	return nil
}

// Freeze prevents further Register calls, signaling that warmup/caching
// steps downstream may now treat the route set as immutable.
func (r *Router) Freeze() { r.frozen.Store(true) }

// FindByName returns the route registered under name.
func (r *Router) FindByName(name string) (*compiler.CompiledRoute, bool) {
	return r.routes.FindByName(name)
}

// FindByAction returns every route sharing handler's identity.
func (r *Router) FindByAction(handler any) []*compiler.CompiledRoute {
	return r.routes.FindByAction(handler)
}

// RouteRecord is one (method, route) pair produced by DumpRoutes.
type RouteRecord struct {
	Method string
	Route  *compiler.CompiledRoute
}

// DumpRoutes lists every registered route's (method, route) pairs, sorted
// by path, with HEAD elided wherever the same route also declares GET
// (HEAD is already implied by GET's match-time fallback, spec §4.3/§4.8).
func (r *Router) DumpRoutes() []RouteRecord {
	routes := r.routes.All()
	records := make([]RouteRecord, 0, len(routes))
	for _, route := range routes {
		methods := route.Methods()
		hasGet := false
		for _, m := range methods {
			if m == http.MethodGet {
				hasGet = true
				break
			}
		}
		for _, m := range methods {
			if m == http.MethodHead && hasGet {
				continue
			}
			records = append(records, RouteRecord{Method: m, Route: route})
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return routePath(records[i].Route) < routePath(records[j].Route)
	})
	return records
}

func routePath(route *compiler.CompiledRoute) string {
	if len(route.Aliases) == 0 {
		return ""
	}
	return route.Aliases[0].Alias
}

// Generate builds a URL for a named route (spec §4.7).
func (r *Router) Generate(opts urlgen.Options) (string, error) {
	return r.generator.Generate(opts)
}

// Dispatch resolves ev against the registered routes and runs the matched
// route's middleware pipeline and handler, always returning a fully formed
// response: routing failures (404/405), binding failures and handler errors
// are rendered through the RFC 9457 formatter rather than returned as Go
// errors, and an OPTIONS request with alternates gets a synthesized 200
// with an Allow header (spec §4.3, §4.8).
func (r *Router) Dispatch(ev event.IncomingEvent) event.OutgoingResponse {
	r.emit(DiagnosticRouting, "routing", map[string]any{"method": ev.Method(), "path": ev.DecodedPathname()})

	result := r.matcher.Match(r.routes.All(), ev)

	switch result.Outcome {
	case match.OutcomeNotFound:
		return r.formatError(ev, rerr.New(rerr.KindNotFound, fmt.Errorf("no route matches %s %s", ev.Method(), ev.DecodedPathname())))
	case match.OutcomeMethodNotAllowed:
		re := rerr.New(rerr.KindMethodNotAllowed, fmt.Errorf("method %s not allowed for %s", ev.Method(), ev.DecodedPathname()))
		re.Allowed = result.Allowed
		resp := r.formatError(ev, re)
		return resp.WithHeader("Allow", joinAllowed(result.Allowed))
	case match.OutcomeOptions:
		resp := event.NewResponse(200, nil)
		return resp.WithHeader("Allow", joinAllowed(result.Allowed))
	}

	cand := result.Match
	def := cand.Route.Definition

	params, err := r.binder.Bind(cand, def.Bindings, def.Defaults)
	if err != nil {
		return r.formatError(ev, rerr.New(rerr.KindBinding, err))
	}

	r.emit(DiagnosticRouteMatched, "route matched", map[string]any{"route": cand.Route.Name()})

	actx := &definition.ActionContext{
		Event:  ev,
		Route:  cand.Route,
		Params: params,
		Query:  ev.Query(),
	}

	terminal := func(ctx *definition.ActionContext) (event.OutgoingResponse, error) {
		result, err := r.dispatcher.Dispatch(ctx, def.Action)
		if err != nil {
			return event.OutgoingResponse{}, err
		}
		return r.renderResult(result), nil
	}

	// skipMiddleware=true bypasses pipeline.Run entirely (spec §4.6, §6).
	if r.skipMiddleware {
		resp, err := terminal(actx)
		if err != nil {
			return r.formatError(ev, rerr.New(rerr.KindDispatch, err))
		}
		return resp
	}

	specs, err := r.buildSpecs(def)
	if err != nil {
		return r.formatError(ev, rerr.New(rerr.KindDispatch, err))
	}

	resp, err := pipeline.Run(specs, actx, terminal)
	if err != nil {
		return r.formatError(ev, rerr.New(rerr.KindDispatch, err))
	}
	return resp
}

func (r *Router) renderResult(result any) event.OutgoingResponse {
	switch v := result.(type) {
	case event.OutgoingResponse:
		return v
	case *definition.RedirectDescriptor:
		return event.NewResponse(v.Status, nil).WithHeader("Location", v.Location)
	default:
		return r.resolver(200, nil, v)
	}
}

func (r *Router) formatError(ev event.IncomingEvent, err error) event.OutgoingResponse {
	return r.formatter.Format(ev.DecodedPathname(), err)
}

// buildSpecs assembles the per-dispatch pipe list: globalMiddleware ⊎
// route.middleware \ route.excludeMiddleware (spec §4.6). Global specs are
// merged into the same slice as the route's own before Assemble sorts by
// priority and applies exclusions, so a route's ExcludeMiddleware can also
// remove a globally registered pipe by reference, and priority ordering
// spans both sets together.
func (r *Router) buildSpecs(def *definition.RouteDefinition) ([]pipeline.Spec, error) {
	specs := make([]pipeline.Spec, 0, len(r.global)+len(def.Middleware))
	specs = append(specs, r.global...)
	for _, ref := range def.Middleware {
		pipe, ok := r.middlewareFor(ref.Ref)
		if !ok {
			return nil, fmt.Errorf("router: no middleware registered for reference %v", ref.Ref)
		}
		specs = append(specs, pipeline.Spec{Ref: ref.Ref, Priority: ref.Priority, Pipe: pipe})
	}
	excluded := make([]any, 0, len(def.ExcludeMiddleware))
	for _, ref := range def.ExcludeMiddleware {
		excluded = append(excluded, ref.Ref)
	}
	return pipeline.Assemble(specs, excluded), nil
}

// middlewareFor resolves a MiddlewareRef.Ref to a runnable Pipe: a Ref that
// is itself pipe-shaped is used directly, otherwise it is looked up in the
// registry built by WithMiddleware.
func (r *Router) middlewareFor(ref any) (pipeline.Pipe, bool) {
	if pipe, ok := ref.(pipeline.Pipe); ok {
		return pipe, true
	}
	if fn, ok := ref.(func(*definition.ActionContext, pipeline.Next) (event.OutgoingResponse, error)); ok {
		return pipeline.Pipe(fn), true
	}
	r.mwMu.RLock()
	defer r.mwMu.RUnlock()
	pipe, ok := r.middleware[definition.RefIdentity(ref)]
	return pipe, ok
}

func joinAllowed(methods []string) string {
	out := ""
	for i, m := range methods {
		if i > 0 {
			out += ", "
		}
		out += m
	}
	return out
}
