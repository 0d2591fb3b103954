// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/thediveo/storefront/fetch"
)

// DefaultOrigin is the content server origin used by the Server strategy
// unless told otherwise.
const DefaultOrigin = "http://localhost:3000/"

// DefaultPagesDir is the directory holding the fragment files, relative to
// the page shell or the content server root.
const DefaultPagesDir = "pages"

// Router navigates a Shell between the routes of its route table.
type Router struct {
	shell     Shell
	table     Table
	strategy  Strategy
	fetcher   Fetcher
	origin    string
	originURL *url.URL
	pagesDir  string
	log       *zap.Logger

	seq atomic.Uint64 // sequence number of the latest navigation.

	mu      sync.Mutex // serializes Shell updates of navigations.
	ctx     context.Context
	state   State
	failure Failure
	current string
}

// Result tells the outcome of a single navigation.
type Result struct {
	Key     string  // route key derived from the URL fragment.
	State   State   // Rendered or Failed, unless Stale.
	Failure Failure // set in Failed state.
	Stale   bool    // a newer navigation superseded this one.
	Err     error   // cause of FetchFailed, ServerUnavailable and RenderFailed.
}

// Option sets optional properties at the time of creating a Router.
type Option func(*Router)

// WithTable sets the route table; it defaults to DefaultTable.
func WithTable(t Table) Option {
	return func(r *Router) {
		r.table = t
	}
}

// WithStrategy sets the fragment location strategy; it defaults to Relative.
func WithStrategy(s Strategy) Option {
	return func(r *Router) {
		r.strategy = s
	}
}

// WithFetcher sets the Fetcher retrieving fragment files. Without it, the
// Relative strategy uses fetch.NewXHR and the Server strategy uses
// fetch.NewStandard.
func WithFetcher(f Fetcher) Option {
	return func(r *Router) {
		r.fetcher = f
	}
}

// WithOrigin sets the content server origin for the Server strategy.
func WithOrigin(origin string) Option {
	return func(r *Router) {
		r.origin = origin
	}
}

// WithPagesDir sets the directory name holding the fragment files.
func WithPagesDir(dir string) Option {
	return func(r *Router) {
		r.pagesDir = strings.Trim(dir, "/")
	}
}

// WithLogger sets the logger for navigation diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// New returns a new Router for the specified Shell. It returns an error if
// the route table is invalid or the origin isn't an absolute URL.
func New(shell Shell, opts ...Option) (*Router, error) {
	if shell == nil {
		return nil, errors.New("router needs a shell")
	}
	r := &Router{
		shell:    shell,
		table:    DefaultTable(),
		strategy: Relative,
		origin:   DefaultOrigin,
		pagesDir: DefaultPagesDir,
		log:      zap.NewNop(),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.table.Validate(); err != nil {
		return nil, err
	}
	u, err := url.Parse(r.origin)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("invalid origin %q", r.origin)
	}
	r.originURL = u
	if r.fetcher == nil {
		switch r.strategy {
		case Server:
			r.fetcher = fetch.NewStandard(fetch.WithLogger(r.log))
		default:
			r.fetcher = fetch.NewXHR(fetch.WithLogger(r.log))
		}
	}
	return r, nil
}

// Start subscribes to hash changes, binds the shell's own navigation links
// and menu handlers, and then loads the route of the current URL fragment.
// With the Server strategy, Start first probes the content server on a
// best-effort basis, only logging a warning when it cannot be reached.
func (r *Router) Start(ctx context.Context) Result {
	r.mu.Lock()
	r.ctx = ctx
	r.mu.Unlock()

	r.shell.OnHashChange(func() { r.Load(r.context()) })
	r.shell.BindDocument("[data-link]", "click", r.followLink)
	r.shell.BindDocument("#menuToggle", "click", func(Event) { r.shell.ToggleMenu() })
	r.shell.BindDocument("", "click", func(ev Event) {
		if !ev.Within(".nav-container") {
			r.shell.CloseMenu()
		}
	})
	if r.strategy == Server {
		r.probe(ctx)
	}
	r.log.Info("router started",
		zap.Stringer("strategy", r.strategy),
		zap.String("base", r.Base()))
	return r.Load(ctx)
}

// Navigate sets the URL fragment to the specified route key; the Router
// then loads the route when the shell signals the hash change.
func (r *Router) Navigate(key string) {
	r.shell.SetHash(key)
}

// State returns the navigation state of the latest completed navigation.
func (r *Router) State() (State, Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.failure
}

// Current returns the route key of the latest navigation.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Base returns the path (Relative) or URL (Server) fragment files are
// retrieved from, ending in "/".
func (r *Router) Base() string {
	if r.strategy == Server {
		return r.originURL.JoinPath(r.pagesDir).String() + "/"
	}
	return BasePath(r.shell.Location().Path, r.pagesDir)
}

// Load runs a navigation to the route of the current URL fragment. The
// loading indicator is shown until the navigation has rendered, whatever
// the outcome. If a newer navigation starts before this one has rendered,
// this navigation is dropped, leaving the shell to the newer one. A
// navigation breaking down with a panic renders a generic error fragment
// and ends in Failed(RenderFailed).
func (r *Router) Load(ctx context.Context) (res Result) {
	seq := r.seq.Add(1)
	var key string
	defer func() {
		if p := recover(); p != nil {
			res = r.abort(seq, key, p)
		}
	}()
	key, loc, latest := r.begin(seq)
	if !latest {
		return Result{Key: key, Stale: true}
	}
	route, found := r.table[key]
	switch {
	case !found || key == NotFoundKey:
		return r.commit(seq, key, func() Result { return r.renderNotFound(key) })
	case route.Content != "":
		return r.commit(seq, key, func() Result { return r.renderRoute(key, route, route.Content) })
	}
	content, err := r.retrieve(ctx, loc, route)
	if err != nil {
		r.log.Error("cannot load route", zap.String("route", key), zap.Error(err))
		return r.commit(seq, key, func() Result { return r.renderFailure(key, route, loc, err) })
	}
	return r.commit(seq, key, func() Result { return r.renderRoute(key, route, content) })
}

// begin enters the Loading state, showing the loading indicator and clearing
// the mount, unless seq already has been superseded.
func (r *Router) begin(seq uint64) (key string, loc *url.URL, latest bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loc = r.shell.Location()
	key = RouteKey(loc)
	if seq != r.seq.Load() {
		return key, loc, false
	}
	r.state, r.failure = Loading, NoFailure
	r.current = key
	r.shell.SetLoading(true)
	r.shell.ClearMount()
	return key, loc, true
}

// commit renders the outcome of navigation seq, unless it has been
// superseded in the meantime. The loading indicator gets hidden even if
// rendering panics.
func (r *Router) commit(seq uint64, key string, render func() Result) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.seq.Load() {
		r.log.Debug("discarding stale navigation", zap.String("route", key), zap.Uint64("seq", seq))
		return Result{Key: key, Stale: true}
	}
	defer r.settle()
	res := render()
	r.state, r.failure = res.State, res.Failure
	return res
}

// abort finishes navigation seq after it panicked, unless a newer navigation
// has taken over in the meantime.
func (r *Router) abort(seq uint64, key string, p any) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := fmt.Errorf("navigation to %q panicked: %v", key, p)
	r.log.Error("navigation broke down", zap.String("route", key), zap.Error(err))
	if seq != r.seq.Load() {
		return Result{Key: key, Stale: true, Err: err}
	}
	defer r.settle()
	r.state, r.failure = Failed, RenderFailed
	r.mountBroken(key)
	return Result{Key: key, State: Failed, Failure: RenderFailed, Err: err}
}

// settle finishes a navigation, whatever its outcome.
func (r *Router) settle() {
	r.shell.SetLoading(false)
	r.shell.CloseMenu()
	r.shell.ScrollToTop()
}

func (r *Router) renderRoute(key string, route Route, content string) Result {
	r.shell.SetTitle(route.Title)
	if err := r.mount(key, content); err != nil {
		return Result{Key: key, State: Failed, Failure: RenderFailed, Err: err}
	}
	r.shell.SetMountBackground(route.ThemeColor())
	if r.strategy == Server {
		r.shell.SetChrome(route.ChromeColors())
	}
	r.shell.HighlightNav("#" + key)
	return Result{Key: key, State: Rendered}
}

func (r *Router) renderNotFound(key string) Result {
	r.log.Info("route not found", zap.String("route", key))
	notFound := r.table[NotFoundKey]
	r.shell.SetTitle(notFound.Title)
	if err := r.mount(NotFoundKey, notFound.Content); err != nil {
		return Result{Key: key, State: Failed, Failure: RenderFailed, Err: err}
	}
	r.shell.SetMountBackground(notFound.ThemeColor())
	if r.strategy == Server {
		r.shell.SetChrome(notFound.ChromeColors())
	}
	r.shell.HighlightNav("#" + key)
	return Result{Key: key, State: Failed, Failure: NotFound}
}

func (r *Router) renderFailure(key string, route Route, loc *url.URL, err error) Result {
	if r.strategy == Server {
		r.shell.SetTitle(route.Title)
		if merr := r.mount(key, serverUnavailableContent(r.origin)); merr != nil {
			return Result{Key: key, State: Failed, Failure: RenderFailed, Err: merr}
		}
		r.shell.SetMountBackground("white")
		r.shell.SetChrome("", "")
		r.shell.HighlightNav("#" + key)
		return Result{Key: key, State: Failed, Failure: ServerUnavailable, Err: err}
	}
	res := r.renderRoute(key, route, fetchFailedContent(err, r.pagesDir, loc))
	if res.State == Failed {
		return res
	}
	res.State, res.Failure, res.Err = Failed, FetchFailed, err
	return res
}

// mount replaces the mount contents and binds the page listeners to the new
// contents. Contents that cannot be mounted are replaced by the generic
// error fragment.
func (r *Router) mount(key, content string) error {
	sub, err := r.shell.ReplaceMount(key, content)
	if err != nil {
		r.log.Error("cannot render fragment", zap.String("route", key), zap.Error(err))
		r.mountBroken(key)
		return err
	}
	r.bindPage(sub)
	return nil
}

// mountBroken mounts the generic error fragment, leaving the mount empty if
// even that fails.
func (r *Router) mountBroken(key string) {
	sub, err := r.shell.ReplaceMount(key, brokenContent)
	if err != nil {
		r.shell.ClearMount()
		return
	}
	r.bindPage(sub)
}

func (r *Router) context() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctx
}

func (r *Router) probe(ctx context.Context) {
	prober, ok := r.fetcher.(Prober)
	if !ok {
		return
	}
	if err := prober.Probe(ctx, r.origin); err != nil {
		r.log.Warn(`content server not reachable, start it using "storefront serve"`,
			zap.String("origin", r.origin), zap.Error(err))
	}
}

// RouteKey returns the route key for the specified document location: its
// fragment, or RootKey if there is none.
func RouteKey(loc *url.URL) string {
	if loc == nil {
		return RootKey
	}
	if key := loc.EscapedFragment(); key != "" {
		return key
	}
	return RootKey
}
