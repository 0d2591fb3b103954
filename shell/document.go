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
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/thediveo/storefront/router"
)

// ErrNoMount is returned when a page shell lacks the mount element.
var ErrNoMount = errors.New(`page shell lacks mount element with id "app"`)

// Document is a page shell parsed from HTML. A Document isn't safe for
// concurrent use; the router serializes its own updates, while events have to
// be dispatched from a single goroutine.
type Document struct {
	doc      *goquery.Document
	location *url.URL
	mount    *html.Node
	loading  *html.Node // optional

	view     *view     // current mount contents, if any.
	bindings []binding // document-scope listeners.
	onHash   []func()

	values  map[*html.Node]string // form control values entered.
	alerts  []string
	scrollY int
}

var _ router.Shell = (*Document)(nil)

// binding binds a listener to an element or, with a nil node, to the
// document itself.
type binding struct {
	node      *html.Node
	eventType string
	listener  router.Listener
}

// view holds the container element created for a single render of the mount
// together with the listeners bound to elements inside it.
type view struct {
	doc       *Document
	key       string
	container *html.Node
	bindings  []binding
}

// Bind implements router.Subtree.
func (v *view) Bind(selector, eventType string, l router.Listener) int {
	nodes := nodeSelection(v.container).Find(selector).Nodes
	for _, n := range nodes {
		v.bindings = append(v.bindings, binding{node: n, eventType: eventType, listener: l})
	}
	return len(nodes)
}

// Parse parses a page shell from r; location is the URL the page shell has
// been loaded from, including any fragment.
func Parse(r io.Reader, location string) (*Document, error) {
	loc, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid page shell location: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("cannot parse page shell: %w", err)
	}
	mount := doc.Find("#app").First()
	if mount.Length() == 0 {
		return nil, ErrNoMount
	}
	d := &Document{
		doc:      doc,
		location: loc,
		mount:    mount.Get(0),
		values:   map[*html.Node]string{},
	}
	if loading := doc.Find("#loading").First(); loading.Length() > 0 {
		d.loading = loading.Get(0)
	}
	return d, nil
}

// Open parses the page shell file with the specified name from fsys.
func Open(fsys fs.FS, name, location string) (*Document, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, location)
}

// nodeSelection returns a selection of just the specified node; unlike
// Selection.FindNodes this works for detached nodes, too.
func nodeSelection(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}

// Location implements router.Shell.
func (d *Document) Location() *url.URL {
	loc := *d.location
	return &loc
}

// SetHash implements router.Shell. The hash is taken verbatim, as the
// location bar would show it. Setting the current fragment again doesn't
// count as a change.
func (d *Document) SetHash(hash string) {
	hash = strings.TrimPrefix(hash, "#")
	if hash == d.location.EscapedFragment() {
		return
	}
	if frag, err := url.Parse("#" + hash); err == nil {
		d.location.Fragment, d.location.RawFragment = frag.Fragment, frag.RawFragment
	} else {
		d.location.Fragment, d.location.RawFragment = hash, ""
	}
	for _, fn := range append([]func(){}, d.onHash...) {
		fn()
	}
}

// OnHashChange implements router.Shell.
func (d *Document) OnHashChange(fn func()) {
	d.onHash = append(d.onHash, fn)
}

// SetTitle implements router.Shell, creating the title element if necessary.
func (d *Document) SetTitle(title string) {
	t := d.doc.Find("title").First()
	if t.Length() == 0 {
		d.doc.Find("head").First().AppendHtml("<title></title>")
		t = d.doc.Find("title").First()
	}
	t.SetText(title)
}

// Title returns the document title.
func (d *Document) Title() string {
	return d.doc.Find("title").First().Text()
}

// SetLoading implements router.Shell.
func (d *Document) SetLoading(visible bool) {
	if d.loading == nil {
		return
	}
	display := "none"
	if visible {
		display = "block"
	}
	setStyle(nodeSelection(d.loading), "display", display)
}

// LoadingVisible reports whether the loading indicator is visible.
func (d *Document) LoadingVisible() bool {
	if d.loading == nil {
		return false
	}
	return style(nodeSelection(d.loading), "display") != "none"
}

// ClearMount implements router.Shell.
func (d *Document) ClearMount() {
	for c := d.mount.FirstChild; c != nil; {
		next := c.NextSibling
		d.mount.RemoveChild(c)
		c = next
	}
	d.view = nil
}

// ReplaceMount implements router.Shell. The content gets parsed into a new
// container element, marked with a "data-route" attribute carrying the
// route key, that then replaces whatever the mount held before.
func (d *Document) ReplaceMount(key, content string) (router.Subtree, error) {
	container := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "data-route", Val: key}},
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), container)
	if err != nil {
		return nil, fmt.Errorf("cannot parse fragment of route %q: %w", key, err)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	d.ClearMount()
	d.mount.AppendChild(container)
	d.view = &view{doc: d, key: key, container: container}
	return d.view, nil
}

// MountHTML returns the mount's inner HTML.
func (d *Document) MountHTML() string {
	h, _ := nodeSelection(d.mount).Html()
	return h
}

// ViewHTML returns the inner HTML of the current mount container, that is,
// the rendered fragment; it returns "" if the mount is empty.
func (d *Document) ViewHTML() string {
	if d.view == nil {
		return ""
	}
	h, _ := nodeSelection(d.view.container).Html()
	return h
}

// ViewKey returns the route key of the current mount container.
func (d *Document) ViewKey() string {
	if d.view == nil {
		return ""
	}
	return d.view.key
}

// SetMountBackground implements router.Shell.
func (d *Document) SetMountBackground(color string) {
	setStyle(nodeSelection(d.mount), "background-color", color)
}

// MountBackground returns the mount's background color.
func (d *Document) MountBackground() string {
	return style(nodeSelection(d.mount), "background-color")
}

// SetChrome implements router.Shell, coloring the footer and copyright
// elements.
func (d *Document) SetChrome(background, text string) {
	chrome := d.doc.Find("footer, .copyright")
	setStyle(chrome, "background-color", background)
	setStyle(chrome, "color", text)
}

// Chrome returns the footer's background and text colors.
func (d *Document) Chrome() (background, text string) {
	footer := d.doc.Find("footer")
	return style(footer, "background-color"), style(footer, "color")
}

// HighlightNav implements router.Shell.
func (d *Document) HighlightNav(href string) {
	links := d.doc.Find(".nav-link")
	links.RemoveClass("active")
	links.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("href", "") == href
	}).AddClass("active")
}

// ActiveNav returns the hrefs of the navigation links marked active.
func (d *Document) ActiveNav() []string {
	var hrefs []string
	d.doc.Find(".nav-link.active").Each(func(_ int, s *goquery.Selection) {
		hrefs = append(hrefs, s.AttrOr("href", ""))
	})
	return hrefs
}

// ScrollToTop implements router.Shell.
func (d *Document) ScrollToTop() {
	d.scrollY = 0
}

// ScrollTo sets the vertical scroll position.
func (d *Document) ScrollTo(y int) {
	d.scrollY = y
}

// ScrollY returns the vertical scroll position.
func (d *Document) ScrollY() int {
	return d.scrollY
}

// ToggleMenu implements router.Shell.
func (d *Document) ToggleMenu() {
	d.doc.Find(".nav-menu").ToggleClass("active")
}

// CloseMenu implements router.Shell.
func (d *Document) CloseMenu() {
	d.doc.Find(".nav-menu").RemoveClass("active")
}

// MenuOpen reports whether the mobile navigation menu is open.
func (d *Document) MenuOpen() bool {
	return d.doc.Find(".nav-menu").HasClass("active")
}

// Alert implements router.Shell.
func (d *Document) Alert(msg string) {
	d.alerts = append(d.alerts, msg)
}

// Alerts returns the messages alerted so far.
func (d *Document) Alerts() []string {
	return append([]string(nil), d.alerts...)
}

// HTML returns the whole document as HTML.
func (d *Document) HTML() (string, error) {
	return goquery.OuterHtml(d.doc.Selection)
}
