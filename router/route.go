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
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// RootKey is the route key used when the URL fragment is empty.
const RootKey = "/"

// NotFoundKey is the reserved route key of the fallback route rendered for
// URL fragments not found in a route table.
const NotFoundKey = "404"

// ErrInvalidTable is returned (wrapped) for route tables violating the table
// rules, see Table.Validate.
var ErrInvalidTable = errors.New("invalid route table")

// Route describes a single page of the storefront.
type Route struct {
	// Title becomes the document title when the route is rendered.
	Title string `yaml:"title"`
	// File is the fragment file, relative to the pages directory.
	File string `yaml:"file,omitempty"`
	// Content is the embedded fragment.
	Content string `yaml:"content,omitempty"`
	// BgColor is the optional theme color as a hex RGB value, with or
	// without leading "#".
	BgColor string `yaml:"bgcolor,omitempty"`
}

// ThemeColor returns the mount background color for this route: the theme
// color at half opacity, or white if the route has no theme color.
func (r Route) ThemeColor() string {
	hex := strings.TrimPrefix(r.BgColor, "#")
	if hex == "" {
		return "white"
	}
	return "#" + hex + "80"
}

// lightChromeColor is the single theme color that gets a dark text color on
// the footer chrome.
const lightChromeColor = "#8F8F8F"

// ChromeColors returns the background and text colors for the footer and
// copyright chrome. Routes without a theme color get no chrome colors at
// all, that is, two empty strings.
func (r Route) ChromeColors() (background, text string) {
	hex := strings.TrimPrefix(r.BgColor, "#")
	if hex == "" {
		return "", ""
	}
	background = "#" + hex
	if strings.EqualFold(background, lightChromeColor) {
		return background, "black"
	}
	return background, "white"
}

// Table maps route keys onto routes. Route keys are URL fragments without the
// leading "#", such as "/" and "/t_shirt".
type Table map[string]Route

// Validate checks that each route has either a file or embedded content, but
// not both, and that the table has a NotFoundKey route with embedded
// content.
func (t Table) Validate() error {
	for _, key := range t.Keys() {
		route := t[key]
		switch {
		case route.File == "" && route.Content == "":
			return fmt.Errorf("%w: route %q has neither file nor content", ErrInvalidTable, key)
		case route.File != "" && route.Content != "":
			return fmt.Errorf("%w: route %q has both file and content", ErrInvalidTable, key)
		}
	}
	notFound, ok := t[NotFoundKey]
	if !ok {
		return fmt.Errorf("%w: missing %q route", ErrInvalidTable, NotFoundKey)
	}
	if notFound.File != "" {
		return fmt.Errorf("%w: %q route must have embedded content", ErrInvalidTable, NotFoundKey)
	}
	return nil
}

// Keys returns the route keys in lexical order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// LoadTable reads a YAML route table from r and validates it.
func LoadTable(r io.Reader) (Table, error) {
	var table Table
	if err := yaml.NewDecoder(r).Decode(&table); err != nil {
		return nil, fmt.Errorf("cannot decode route table: %w", err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// DefaultTable returns the route table of the CanCode store.
func DefaultTable() Table {
	return Table{
		"/": {
			Title:   "Shoes | CanCode Store",
			File:    "landing_page/shoes.html",
			BgColor: "FF4725",
		},
		"/t_shirt": {
			Title:   "T-Shirts | CanCode Store",
			File:    "landing_page/t_shirt.html",
			BgColor: "9D32FF",
		},
		"/hats_headwear": {
			Title:   "Hats & Headwear | CanCode Store",
			File:    "landing_page/hats_headwear.html",
			BgColor: "BC0018",
		},
		NotFoundKey: {
			Title:   "Page Not Found | CanCode Store",
			Content: notFoundContent,
		},
	}
}

const notFoundContent = `
<div class="not-found">
    <div style="font-size: 8rem; margin-bottom: 1rem;">😕</div>
    <h2>404 - Page Not Found</h2>
    <p>The page you're looking for doesn't exist or has been moved.</p>
    <div style="margin-top: 2rem;">
        <a href="#/" class="submit-btn" data-link style="text-decoration: none;">Go Back Home</a>
    </div>
</div>
`
