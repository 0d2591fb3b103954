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

package shell

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/thediveo/storefront/router"
)

// BindDocument implements router.Shell. Elements inside the mount are never
// bound this way, as they belong to the mount's current container.
func (d *Document) BindDocument(selector, eventType string, l router.Listener) {
	if selector == "" {
		d.bindings = append(d.bindings, binding{eventType: eventType, listener: l})
		return
	}
	for _, n := range d.doc.Find(selector).Nodes {
		if d.inMount(n) {
			continue
		}
		d.bindings = append(d.bindings, binding{node: n, eventType: eventType, listener: l})
	}
}

// Dispatch fires an event of the specified type at each element matching
// the selector, returning the number of elements matched. Listeners bound to
// the element run first, followed by the document-scope listeners. A click
// on a link to a fragment that no listener prevented sets the URL fragment,
// as a browser would.
func (d *Document) Dispatch(selector, eventType string) int {
	targets := d.doc.Find(selector).Nodes
	for _, target := range targets {
		d.dispatch(target, eventType)
	}
	return len(targets)
}

func (d *Document) dispatch(target *html.Node, eventType string) {
	// Listeners may well replace the mount contents, so work on a snapshot.
	var listeners []router.Listener
	if d.view != nil && contains(d.view.container, target) {
		listeners = append(listeners, matching(d.view.bindings, target, eventType)...)
	}
	listeners = append(listeners, matching(d.bindings, target, eventType)...)
	listeners = append(listeners, matching(d.bindings, nil, eventType)...)

	ev := &event{doc: d, eventType: eventType, target: target}
	for _, l := range listeners {
		l(ev)
	}
	if ev.prevented || eventType != "click" {
		return
	}
	if href := attr(target, "href"); strings.HasPrefix(href, "#") {
		d.SetHash(href[1:])
	}
}

// ListenerCount returns the number of listeners for the specified event type
// currently bound to elements matching the selector.
func (d *Document) ListenerCount(selector, eventType string) int {
	count := 0
	for _, n := range d.doc.Find(selector).Nodes {
		if d.view != nil {
			count += len(matching(d.view.bindings, n, eventType))
		}
		count += len(matching(d.bindings, n, eventType))
	}
	return count
}

// Fill enters a value into the form controls matching the selector.
func (d *Document) Fill(selector, value string) int {
	nodes := d.doc.Find(selector).Nodes
	for _, n := range nodes {
		d.values[n] = value
	}
	return len(nodes)
}

// Value returns the current value of the first form control matching the
// selector: the value entered, or else its default value.
func (d *Document) Value(selector string) string {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	if v, ok := d.values[sel.Get(0)]; ok {
		return v
	}
	if sel.Is("textarea") {
		return sel.Text()
	}
	return sel.AttrOr("value", "")
}

func (d *Document) inMount(n *html.Node) bool {
	return contains(d.mount, n)
}

// contains reports whether n is root or a descendant of root.
func contains(root, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

func matching(bindings []binding, n *html.Node, eventType string) []router.Listener {
	var listeners []router.Listener
	for _, b := range bindings {
		if b.node == n && b.eventType == eventType {
			listeners = append(listeners, b.listener)
		}
	}
	return listeners
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// event implements router.Event for an event delivered to target.
type event struct {
	doc       *Document
	eventType string
	target    *html.Node
	prevented bool
}

var _ router.Event = (*event)(nil)

func (e *event) Type() string { return e.eventType }

func (e *event) Attr(name string) string { return attr(e.target, name) }

func (e *event) Within(selector string) bool {
	return nodeSelection(e.target).Closest(selector).Length() > 0
}

func (e *event) PreventDefault() { e.prevented = true }

// Reset drops the values entered into the controls of the target form.
func (e *event) Reset() {
	nodeSelection(e.target).Find("input, textarea, select").Each(func(_ int, s *goquery.Selection) {
		delete(e.doc.values, s.Get(0))
	})
}
