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

package contentserver

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultIndex is the name of the root document served for "/" and as the
// fallback for missing HTML files.
const DefaultIndex = "index.html"

// Handler implements an http.Handler that serves files from an fs.FS. It
// falls back to the root document for missing ".html" files and answers all
// other misses with 404.
type Handler struct {
	fs            fs.FS         // the FS to serve files from.
	index         string        // (unrooted) path and name of the root document inside fs.
	log           *zap.Logger   // access and error logging; never nil.
	rewriteBase   bool          // rewrite the root document's <base href> from proxy headers.
	indexRewriter IndexRewriter // optional user function to post-process the root document.
}

// New returns a new HTTP handler serving files from the specified fs. The
// root document defaults to DefaultIndex and can be changed using WithIndex.
//
// In order to serve files from a directory on the OS file system, use
// os.DirFS:
//
//	h := New(os.DirFS("/opt/data/storefront"))
func New(fsys fs.FS, opts ...Option) *Handler {
	h := &Handler{
		fs:    fsys,
		index: DefaultIndex,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Option sets optional properties at the time of creating a Handler.
type Option func(*Handler)

// IndexRewriter rewrites (parts) of the root document contents to be
// delivered to a requesting client. It can be optionally activated using the
// WithIndexRewriter option when creating a new Handler.
type IndexRewriter func(r *http.Request, index string) string

// WithIndex sets the root document served for "/" and as the SPA fallback.
// The name will be sanitized into an unrooted, slash-separated path.
func WithIndex(name string) Option {
	return func(h *Handler) {
		h.index = path.Clean("/" + name)[1:]
	}
}

// WithLogger sets the logger used for the per-request access log.
func WithLogger(log *zap.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithBaseRewrite enables rewriting the HTML base element of the root
// document so that it refers to the base path as seen by clients behind path
// rewriting proxies.
func WithBaseRewrite() Option {
	return func(h *Handler) {
		h.rewriteBase = true
	}
}

// WithIndexRewriter sets the specified IndexRewriter that gets called before
// delivering the root document contents to requesting clients.
func WithIndexRewriter(rewriter IndexRewriter) Option {
	return func(h *Handler) {
		h.indexRewriter = rewriter
	}
}

// ServeHTTP serves the file the request path refers to. The request method
// isn't looked at.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	allowCrossOrigin(w.Header())
	name := h.resolve(r.URL.Path)
	status := h.serve(w, r, name)
	h.log.Debug("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("file", name),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(start)))
}

// resolve maps the request path onto an unrooted file name inside the
// Handler's fs. Slapping "/" in front ensures that path.Clean never leaves
// any ".." elements, so there is no way to climb above the fs root. Paths in
// the "pages/" subtree and all other non-root paths map unchanged.
func (h *Handler) resolve(uripath string) string {
	p := path.Clean("/" + uripath)
	if p == "/" {
		return h.index
	}
	return p[1:]
}

// serve writes the response for the given file name and returns the HTTP
// status code sent.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, name string) int {
	contents, err := fs.ReadFile(h.fs, name)
	if err == nil {
		if name == h.index {
			contents = h.document(r, contents)
		}
		return writeFile(w, ContentType(name), contents)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		h.log.Error("cannot read file", zap.String("file", name), zap.Error(err))
		return NormalizedHttpError(w, err)
	}
	h.log.Info("file not found", zap.String("file", name))
	if !strings.HasSuffix(name, ".html") || name == h.index {
		return NormalizedHttpError(w, err)
	}
	return h.serveIndex(w, r)
}

// serveIndex serves the root document in place of a missing HTML file. If
// the root document cannot be read for whatever reason, the response is a
// 404.
func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) int {
	contents, err := fs.ReadFile(h.fs, h.index)
	if err != nil {
		h.log.Info("root document not found", zap.String("file", h.index), zap.Error(err))
		return NormalizedHttpError(w, fs.ErrNotExist)
	}
	return writeFile(w, "text/html", h.document(r, contents))
}

// document applies the optional base element and user rewrites to the root
// document contents.
func (h *Handler) document(r *http.Request, contents []byte) []byte {
	if !h.rewriteBase && h.indexRewriter == nil {
		return contents
	}
	doc := string(contents)
	if h.rewriteBase {
		doc = rewriteBaseHref(doc, requestBase(r))
	}
	if h.indexRewriter != nil {
		doc = h.indexRewriter(r, doc)
	}
	return []byte(doc)
}

// allowCrossOrigin sets the permissive CORS headers every response carries.
func allowCrossOrigin(header http.Header) {
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeFile(w http.ResponseWriter, contentType string, contents []byte) int {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(contents)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(contents)
	return http.StatusOK
}
