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
	"fmt"
	"html"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"
)

// RetrievalError tells which fragment file couldn't be retrieved from where.
type RetrievalError struct {
	File string // fragment file as given in the route.
	Base string // base path or URL tried first.
	URL  string // URL of the first, failed attempt.
	Err  error  // error of the first attempt.
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("cannot load %s from %s: %s", e.File, e.Base, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// BasePath returns the base path of fragment files for a page shell with the
// specified document path: the directory of the document, followed by the
// pages directory. For instance, "/shop/index.html" has the base path
// "/shop/pages/".
func BasePath(docPath, pagesDir string) string {
	dir := ""
	if idx := strings.LastIndex(docPath, "/"); idx >= 0 {
		dir = docPath[:idx]
	}
	return dir + "/" + pagesDir + "/"
}

// AlternativePaths returns the relative paths tried in order, in case
// retrieving a fragment file using the base path failed.
func AlternativePaths(pagesDir, file string) []string {
	return []string{
		"./" + pagesDir + "/" + file,
		pagesDir + "/" + file,
		"../" + pagesDir + "/" + file,
		file,
	}
}

// retrieve returns the fragment of the specified (file-based) route.
func (r *Router) retrieve(ctx context.Context, loc *url.URL, route Route) (string, error) {
	if r.strategy == Server {
		u := r.originURL.JoinPath(r.pagesDir, route.File).String()
		content, err := r.fetcher.Fetch(ctx, u)
		if err != nil {
			return "", &RetrievalError{File: route.File, Base: r.Base(), URL: u, Err: err}
		}
		return content, nil
	}
	base := BasePath(loc.Path, r.pagesDir)
	first := resolve(loc, base+route.File)
	content, err := r.fetcher.Fetch(ctx, first)
	if err == nil {
		return content, nil
	}
	r.log.Warn("cannot load fragment, trying alternative paths",
		zap.String("url", first), zap.Error(err))
	for _, alt := range AlternativePaths(r.pagesDir, route.File) {
		if ctx.Err() != nil {
			break
		}
		u := resolve(loc, alt)
		content, altErr := r.fetcher.Fetch(ctx, u)
		if altErr == nil {
			return content, nil
		}
		r.log.Debug("failed with alternative path", zap.String("url", u), zap.Error(altErr))
	}
	return "", &RetrievalError{File: route.File, Base: base, URL: first, Err: err}
}

// resolve returns the absolute URL of the specified reference relative to
// the document location, without any fragment.
func resolve(loc *url.URL, ref string) string {
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	u := loc.ResolveReference(refURL)
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// fetchFailedContent returns the error fragment rendered when a fragment
// file couldn't be retrieved using the Relative strategy.
func fetchFailedContent(err error, pagesDir string, loc *url.URL) string {
	file, base := "", ""
	if rerr, ok := err.(*RetrievalError); ok {
		file, base = rerr.File, rerr.Base
	}
	return fmt.Sprintf(`
<div class="error">
    <h2>Error Loading Content</h2>
    <p>Could not load: %s</p>
    <p>Current base path: %s</p>
    <p>Please check if the file exists in the %s folder.</p>
    <p>Full URL: %s</p>
    <a href="#/" class="submit-btn" data-link style="text-decoration: none;">Go Back Home</a>
</div>
`,
		html.EscapeString(file),
		html.EscapeString(base),
		html.EscapeString(path.Dir(path.Join(pagesDir, file))),
		html.EscapeString(loc.String()))
}

// serverUnavailableContent returns the fragment rendered when the content
// server didn't deliver a fragment file.
func serverUnavailableContent(origin string) string {
	return fmt.Sprintf(`
<div class="error">
    <h2>Server Not Running</h2>
    <p>The store pages are served by the content server at %s, but it could not be reached.</p>
    <p>Start it using <code>storefront serve</code> and then reload this page.</p>
    <a href="#/" class="submit-btn" data-link style="text-decoration: none;">Go Back Home</a>
</div>
`, html.EscapeString(origin))
}

// brokenContent is rendered when a navigation broke down.
const brokenContent = `
<div class="error">
    <h2>Something went wrong</h2>
    <p>Please try again or go back to home page.</p>
    <a href="#/" class="submit-btn" data-link style="text-decoration: none;">Go Back Home</a>
</div>
`
