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

import "strings"

// Messages shown by the page listeners.
const (
	ContactThanks = "Thank you for your message!"
	AddedToCart   = "Added to cart!"
)

// bindPage binds the page listeners to the freshly mounted subtree.
func (r *Router) bindPage(sub Subtree) {
	sub.Bind("[data-link]", "click", r.followLink)
	sub.Bind("#contactForm", "submit", func(ev Event) {
		ev.PreventDefault()
		r.shell.Alert(ContactThanks)
		ev.Reset()
	})
	sub.Bind(".add-to-cart", "click", func(Event) {
		r.shell.Alert(AddedToCart)
	})
}

// followLink navigates client-side to the fragment of a link instead of
// letting the document follow it.
func (r *Router) followLink(ev Event) {
	ev.PreventDefault()
	if href := ev.Attr("href"); strings.HasPrefix(href, "#") {
		r.Navigate(href[1:])
	}
}
