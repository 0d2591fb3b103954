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
	"net/url"
)

// Shell is the page shell a Router renders into: the document with its
// location, title, mount element, loading indicator, navigation links and
// footer chrome.
type Shell interface {
	// Location returns (a copy of) the document's URL, including the
	// fragment.
	Location() *url.URL
	// SetHash sets the URL fragment; changing it notifies the hash change
	// listeners.
	SetHash(hash string)
	// OnHashChange registers fn to be called after each change of the URL
	// fragment.
	OnHashChange(fn func())

	SetTitle(title string)
	SetLoading(visible bool)

	// ClearMount removes the mount element's contents, together with all
	// listeners bound to them.
	ClearMount()
	// ReplaceMount replaces the mount element's contents with a freshly
	// created container holding the specified HTML content. Listeners bound
	// through the returned Subtree belong to this container only.
	ReplaceMount(key, content string) (Subtree, error)
	SetMountBackground(color string)
	// SetChrome colors the footer and copyright chrome; empty colors reset
	// them.
	SetChrome(background, text string)

	// HighlightNav marks the navigation link with the specified href as
	// active, and all others as inactive.
	HighlightNav(href string)
	ScrollToTop()
	ToggleMenu()
	CloseMenu()

	// BindDocument binds a listener to the elements currently matching the
	// selector outside the mount; the empty selector binds to the document
	// itself, receiving all events.
	BindDocument(selector, eventType string, l Listener)
	Alert(msg string)
}

// Subtree binds listeners to elements in the mount's current contents.
type Subtree interface {
	// Bind binds l to all elements matching selector inside this subtree
	// and returns the number of elements bound.
	Bind(selector, eventType string, l Listener) int
}

// Event is a DOM event delivered to a Listener.
type Event interface {
	Type() string
	// Attr returns the value of the named attribute of the element the
	// listener is bound to, or "".
	Attr(name string) string
	// Within reports whether the event target is inside an element matching
	// the selector, including the target itself.
	Within(selector string) bool
	PreventDefault()
	// Reset restores the form the listener is bound to.
	Reset()
}

// Listener handles events.
type Listener func(ev Event)

// Fetcher retrieves the HTML text at an absolute URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Prober is optionally implemented by Fetchers to check that a server
// origin is reachable.
type Prober interface {
	Probe(ctx context.Context, origin string) error
}
