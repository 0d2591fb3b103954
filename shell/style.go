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
)

// styleProperty returns the value of the named property from an inline
// style attribute value, or "".
func styleProperty(style, name string) string {
	for _, decl := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(prop), name) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// withStyleProperty returns the inline style attribute value with the named
// property set to value, keeping the other properties in order. An empty
// value removes the property.
func withStyleProperty(style, name, value string) string {
	var decls []string
	found := false
	for _, decl := range strings.Split(style, ";") {
		if strings.TrimSpace(decl) == "" {
			continue
		}
		prop, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(prop), name) {
			found = true
			if value != "" {
				decls = append(decls, name+": "+value)
			}
			continue
		}
		decls = append(decls, strings.TrimSpace(decl))
	}
	if !found && value != "" {
		decls = append(decls, name+": "+value)
	}
	if len(decls) == 0 {
		return ""
	}
	return strings.Join(decls, "; ") + ";"
}

// setStyle sets (or with an empty value, removes) an inline style property on
// all elements of sel.
func setStyle(sel *goquery.Selection, name, value string) {
	sel.Each(func(_ int, s *goquery.Selection) {
		style := withStyleProperty(s.AttrOr("style", ""), name, value)
		if style == "" {
			s.RemoveAttr("style")
			return
		}
		s.SetAttr("style", style)
	})
}

// style returns an inline style property of the first element of sel.
func style(sel *goquery.Selection, name string) string {
	return styleProperty(sel.First().AttrOr("style", ""), name)
}
