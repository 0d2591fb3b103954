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
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// ForwardedPrefixHeader, if present, specifies the prefix a path rewriting
// proxy stripped from the original request URI path.
const ForwardedPrefixHeader = "X-Forwarded-Prefix"

// ForwardedUriHeader, if present, specifies the original URI (or sometimes
// only the original URI path) of a request when it hit the first path
// rewriting proxy.
const ForwardedUriHeader = "X-Forwarded-Uri"

// baseHrefRe matches the base element in the root document. The page shell
// must stay usable as a plain file without any server in front of it, so
// this is a textual replacement rather than a template.
//
// "*?" keeps the match to the first closing "/>" instead of gobbling up
// everything until the last empty element in the document.
var baseHrefRe = regexp.MustCompile(`(<base href=").*?("\s*/>)`)

// rewriteBaseHref sets the base element's href in doc to base.
func rewriteBaseHref(doc, base string) string {
	// "$" would interfere with the "${1}" and "${2}" back references; shop
	// paths never contain it anyway.
	base = strings.ReplaceAll(base, "$", "")
	return baseHrefRe.ReplaceAllString(doc, "${1}"+base+"${2}")
}

// The storefront may be deployed below a path prefix, such as "/shop/", by a
// path rewriting reverse proxy. Links in the page shell and the fragment
// base path of the relative routing strategy both derive from the root
// document's base element, so that element has to name the prefix clients
// see. clientPath and requestBase recover that prefix from the proxy
// headers.

// clientPath returns the request path as originally seen by the first proxy
// in a chain, if the proxy headers tell; otherwise, the cleaned request URL
// path.
func clientPath(r *http.Request) string {
	reqPath := path.Clean("/" + r.URL.Path)
	if prefix := r.Header.Get(ForwardedPrefixHeader); prefix != "" {
		return path.Join(path.Clean("/"+prefix), reqPath)
	}
	if uri := r.Header.Get(ForwardedUriHeader); uri != "" {
		// Some proxies pass only the path, others the full URI.
		if strings.HasPrefix(uri, "/") {
			return path.Clean(uri)
		}
		if u, err := url.Parse(uri); err == nil {
			return path.Clean("/" + u.Path)
		}
	}
	return reqPath
}

// requestBase returns the base path of the storefront from the client's
// perspective, always ending in "/". When the request path isn't a suffix of
// the client path there is no way to tell, so the base then is "/".
func requestBase(r *http.Request) string {
	reqPath := path.Clean("/" + r.URL.Path)
	orig := clientPath(r)
	if reqPath == "/" && !strings.HasSuffix(orig, "/") {
		// the proxy redirected /foo to /foo/ and then rewrote it to /.
		orig += "/"
	}
	var base string
	if strings.HasSuffix(orig, reqPath) {
		base = orig[:len(orig)-len(reqPath)]
	}
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}
