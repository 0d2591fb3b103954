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

package router_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/thediveo/storefront/contentserver"
	"github.com/thediveo/storefront/fetch"
	. "github.com/thediveo/storefront/router"
	"github.com/thediveo/storefront/shell"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var site = os.DirFS("../site")

func openShell(location string) *shell.Document {
	GinkgoHelper()
	return Successful(shell.Open(site, "index.html", location))
}

// fakeFetcher serves fragments from a map of URLs, recording all URLs asked
// for. Fetches of URLs with a gate block until the gate gets closed.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	gates   map[string]chan struct{}
	started chan string
	urls    []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	f.mu.Lock()
	f.urls = append(f.urls, rawURL)
	content, ok := f.pages[rawURL]
	gate := f.gates[rawURL]
	f.mu.Unlock()
	if gate != nil {
		f.started <- rawURL
		<-gate
	}
	if !ok {
		return "", &fetch.StatusError{Code: 404}
	}
	return content, nil
}

func (f *fakeFetcher) URLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

// panickyShell blows up when rendering the mount background.
type panickyShell struct {
	*shell.Document
}

func (s *panickyShell) SetMountBackground(string) { panic("boom") }

// panickyFetcher blows up when asked for any fragment.
type panickyFetcher struct{}

func (panickyFetcher) Fetch(context.Context, string) (string, error) { panic("fetch boom") }

// brittleShell fails mounting the specified number of times.
type brittleShell struct {
	*shell.Document
	failures int
}

func (s *brittleShell) ReplaceMount(key, content string) (Subtree, error) {
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("mount boom")
	}
	return s.Document.ReplaceMount(key, content)
}

var _ = Describe("navigating", func() {

	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("rejects invalid configurations", func() {
		Expect(New(nil)).Error().To(HaveOccurred())
		d := openShell("http://localhost:3000/index.html")
		Expect(New(d, WithTable(Table{}))).Error().To(MatchError(ErrInvalidTable))
		Expect(New(d, WithOrigin("/pages"))).Error().To(MatchError(ContainSubstring("invalid origin")))
	})

	It("starts idle", func() {
		rt := Successful(New(openShell("http://localhost:3000/index.html")))
		Expect(rt.State()).To(Equal(Idle))
	})

	Context("served by the content server", func() {

		var srv *httptest.Server

		BeforeEach(func() {
			srv = httptest.NewServer(contentserver.New(site))
			DeferCleanup(srv.Close)
		})

		DescribeTable("renders all declared routes",
			func(key string) {
				d := openShell(srv.URL + "/index.html#" + key)
				rt := Successful(New(d))
				res := rt.Start(ctx)
				Expect(res.Stale).To(BeFalse())
				Expect(res.State).To(Equal(Rendered))
				Expect(d.Title()).To(Equal(DefaultTable()[key].Title))
				Expect(strings.TrimSpace(d.ViewHTML())).NotTo(BeEmpty())
				Expect(d.ViewKey()).To(Equal(key))
				Expect(d.LoadingVisible()).To(BeFalse())
				Expect(rt.Current()).To(Equal(key))
			},
			Entry("shoes", "/"),
			Entry("t-shirts", "/t_shirt"),
			Entry("hats and headwear", "/hats_headwear"),
		)

		It("renders the t-shirts page tinted", func() {
			d := openShell(srv.URL + "/index.html#/t_shirt")
			rt := Successful(New(d))
			rt.Start(ctx)
			Expect(d.Title()).To(Equal("T-Shirts | CanCode Store"))
			Expect(d.MountBackground()).To(Equal("#9D32FF80"))
			Expect(d.ViewHTML()).To(ContainSubstring("<h1>T-Shirts</h1>"))
			Expect(d.ActiveNav()).To(ConsistOf("#/t_shirt"))
			state, failure := rt.State()
			Expect(state).To(Equal(Rendered))
			Expect(failure).To(Equal(NoFailure))
		})

		It("defaults to the root route", func() {
			d := openShell(srv.URL + "/index.html")
			rt := Successful(New(d))
			Expect(rt.Start(ctx).Key).To(Equal("/"))
			Expect(d.Title()).To(Equal("Shoes | CanCode Store"))
			Expect(d.MountBackground()).To(Equal("#FF472580"))
			Expect(rt.Base()).To(Equal("/pages/"))
		})

		It("renders the 404 fragment for undeclared routes", func() {
			d := openShell(srv.URL + "/index.html#/t_shirt")
			rt := Successful(New(d))
			rt.Start(ctx)
			rt.Navigate("/nonexistent")
			Expect(d.Title()).To(Equal("Page Not Found | CanCode Store"))
			Expect(d.ViewKey()).To(Equal(NotFoundKey))
			notFound := Successful(shell.Parse(strings.NewReader(`<div id="app"></div>`), "http://localhost/"))
			Successful(notFound.ReplaceMount(NotFoundKey, DefaultTable()[NotFoundKey].Content))
			Expect(d.ViewHTML()).To(Equal(notFound.ViewHTML()))
			Expect(d.MountBackground()).To(Equal("white"))
			Expect(d.ActiveNav()).To(BeEmpty())
			Expect(d.LoadingVisible()).To(BeFalse())
			state, failure := rt.State()
			Expect(state).To(Equal(Failed))
			Expect(failure).To(Equal(NotFound))
			Expect(rt.Current()).To(Equal("/nonexistent"))
		})

		It("navigates when clicking links, inside and outside the mount", func() {
			d := openShell(srv.URL + "/index.html")
			rt := Successful(New(d))
			rt.Start(ctx)
			Expect(d.Dispatch(`#app [data-link][href="#/t_shirt"]`, "click")).To(Equal(1))
			Expect(d.Location().Fragment).To(Equal("/t_shirt"))
			Expect(d.Title()).To(Equal("T-Shirts | CanCode Store"))

			Expect(d.Dispatch(`.nav-link[href="#/hats_headwear"]`, "click")).To(Equal(1))
			Expect(d.Title()).To(Equal("Hats & Headwear | CanCode Store"))
			Expect(d.ActiveNav()).To(ConsistOf("#/hats_headwear"))
		})

		It("doesn't accumulate listeners across navigations", func() {
			d := openShell(srv.URL + "/index.html#/t_shirt")
			rt := Successful(New(d))
			rt.Start(ctx)
			links := d.ListenerCount("[data-link]", "click")
			carts := d.ListenerCount(".add-to-cart", "click")
			forms := d.ListenerCount("#contactForm", "submit")
			Expect(links).NotTo(BeZero())
			Expect(carts).To(Equal(1))
			Expect(forms).To(Equal(1))

			for _, key := range []string{"/", "/hats_headwear", "/nonexistent", "/", "/t_shirt"} {
				rt.Navigate(key)
			}
			Expect(d.ViewKey()).To(Equal("/t_shirt"))
			Expect(d.ListenerCount("[data-link]", "click")).To(Equal(links))
			Expect(d.ListenerCount(".add-to-cart", "click")).To(Equal(carts))
			Expect(d.ListenerCount("#contactForm", "submit")).To(Equal(forms))

			d.Dispatch(".add-to-cart", "click")
			Expect(d.Alerts()).To(Equal([]string{AddedToCart}))
		})

		It("thanks for and resets contact form submissions", func() {
			d := openShell(srv.URL + "/index.html#/t_shirt")
			rt := Successful(New(d))
			rt.Start(ctx)
			d.Fill(`#contactForm input[name="name"]`, "Gopher")
			Expect(d.Dispatch("#contactForm", "submit")).To(Equal(1))
			Expect(d.Alerts()).To(Equal([]string{ContactThanks}))
			Expect(d.Value(`#contactForm input[name="name"]`)).To(BeEmpty())
		})

		It("toggles the menu and closes it on outside clicks and navigation", func() {
			d := openShell(srv.URL + "/index.html")
			rt := Successful(New(d))
			rt.Start(ctx)
			d.Dispatch("#menuToggle", "click")
			Expect(d.MenuOpen()).To(BeTrue())
			d.Dispatch("#app", "click")
			Expect(d.MenuOpen()).To(BeFalse())

			d.Dispatch("#menuToggle", "click")
			Expect(d.MenuOpen()).To(BeTrue())
			d.ScrollTo(1000)
			rt.Navigate("/t_shirt")
			Expect(d.MenuOpen()).To(BeFalse())
			Expect(d.ScrollY()).To(BeZero())
		})

		It("retrieves fragments from the content server origin", func() {
			d := openShell("file:///index.html#/hats_headwear")
			rt := Successful(New(d, WithStrategy(Server), WithOrigin(srv.URL)))
			res := rt.Start(ctx)
			Expect(res.State).To(Equal(Rendered))
			Expect(d.ViewHTML()).To(ContainSubstring("Snapback Compile"))
			bg, text := d.Chrome()
			Expect(bg).To(Equal("#BC0018"))
			Expect(text).To(Equal("white"))
			Expect(rt.Base()).To(Equal(srv.URL + "/pages/"))
		})

	})

	It("loads fragments relative to the file system", func() {
		d := openShell("file:///index.html#/hats_headwear")
		rt := Successful(New(d, WithFetcher(fetch.NewXHR(fetch.WithFS(site)))))
		Expect(rt.Start(ctx).State).To(Equal(Rendered))
		Expect(d.ViewHTML()).To(ContainSubstring("Snapback Compile"))
	})

	It("renders embedded routes without fetching", func() {
		f := &fakeFetcher{}
		d := openShell("http://localhost:3000/index.html#/about")
		rt := Successful(New(d, WithFetcher(f), WithTable(Table{
			"/about":    {Title: "About", Content: `<p>about <a href="#/" data-link>home</a></p>`, BgColor: "8F8F8F"},
			NotFoundKey: {Title: "404", Content: "<p>lost</p>"},
		})))
		res := rt.Start(ctx)
		Expect(res.State).To(Equal(Rendered))
		Expect(d.Title()).To(Equal("About"))
		Expect(d.MountBackground()).To(Equal("#8F8F8F80"))
		Expect(d.ListenerCount(`#app [data-link]`, "click")).To(Equal(1))
		Expect(f.URLs()).To(BeEmpty())
	})

	It("looks up routes by the verbatim fragment", func() {
		d := openShell("http://localhost:3000/index.html#/t%5Fshirt")
		rt := Successful(New(d, WithFetcher(&fakeFetcher{}), WithTable(Table{
			"/t_shirt":  {Title: "T-Shirts", Content: "<p>shirts</p>"},
			NotFoundKey: {Title: "404", Content: "<p>lost</p>"},
		})))
		res := rt.Load(ctx)
		Expect(res.Key).To(Equal("/t%5Fshirt"))
		Expect(res.Failure).To(Equal(NotFound))
		Expect(d.ViewHTML()).To(ContainSubstring("lost"))
	})

	It("tries alternative paths before giving up", func() {
		f := &fakeFetcher{}
		d := openShell("http://localhost:3000/shop/index.html#/t_shirt")
		rt := Successful(New(d, WithFetcher(f)))
		res := rt.Start(ctx)
		Expect(f.URLs()).To(Equal([]string{
			"http://localhost:3000/shop/pages/landing_page/t_shirt.html",
			"http://localhost:3000/shop/pages/landing_page/t_shirt.html",
			"http://localhost:3000/shop/pages/landing_page/t_shirt.html",
			"http://localhost:3000/pages/landing_page/t_shirt.html",
			"http://localhost:3000/shop/landing_page/t_shirt.html",
		}))
		Expect(res.State).To(Equal(Failed))
		Expect(res.Failure).To(Equal(FetchFailed))
		var rerr *RetrievalError
		Expect(res.Err).To(BeAssignableToTypeOf(rerr))
		Expect(res.Err).To(MatchError(ContainSubstring("HTTP 404")))

		Expect(d.Title()).To(Equal("T-Shirts | CanCode Store"))
		Expect(d.ViewHTML()).To(SatisfyAll(
			ContainSubstring("Could not load: landing_page/t_shirt.html"),
			ContainSubstring("Current base path: /shop/pages/"),
			ContainSubstring("pages/landing_page folder"),
			ContainSubstring("Full URL: http://localhost:3000/shop/index.html#/t_shirt"),
		))
		Expect(d.LoadingVisible()).To(BeFalse())
		Expect(d.ListenerCount(`#app [data-link]`, "click")).To(Equal(1))
	})

	It("recovers using an alternative path", func() {
		f := &fakeFetcher{pages: map[string]string{
			"http://localhost:3000/landing_page/shoes.html": "<h1>RECOVERED</h1>",
		}}
		d := openShell("http://localhost:3000/index.html")
		rt := Successful(New(d, WithFetcher(f)))
		Expect(rt.Start(ctx).State).To(Equal(Rendered))
		Expect(d.ViewHTML()).To(Equal("<h1>RECOVERED</h1>"))
		Expect(f.URLs()).To(HaveLen(5))
	})

	It("tells to start the content server when it is unavailable", func() {
		srv := httptest.NewServer(contentserver.New(site))
		origin := srv.URL
		srv.Close()

		core, logs := observer.New(zap.InfoLevel)
		d := openShell("file:///index.html#/t_shirt")
		rt := Successful(New(d, WithStrategy(Server), WithOrigin(origin), WithLogger(zap.New(core))))
		res := rt.Start(ctx)
		Expect(res.State).To(Equal(Failed))
		Expect(res.Failure).To(Equal(ServerUnavailable))
		Expect(res.Err).To(MatchError(fetch.ErrNetwork))
		Expect(d.Title()).To(Equal("T-Shirts | CanCode Store"))
		Expect(d.ViewHTML()).To(ContainSubstring("<code>storefront serve</code>"))
		Expect(d.MountBackground()).To(Equal("white"))
		Expect(d.LoadingVisible()).To(BeFalse())
		Expect(logs.FilterMessageSnippet("content server not reachable").Len()).To(Equal(1))
	})

	It("discards stale navigations", func() {
		const slow = "http://localhost:3000/pages/landing_page/t_shirt.html"
		gate := make(chan struct{})
		f := &fakeFetcher{
			pages: map[string]string{
				slow: "<h1>STALE</h1>",
				"http://localhost:3000/pages/landing_page/hats_headwear.html": "<h1>FRESH</h1>",
			},
			gates:   map[string]chan struct{}{slow: gate},
			started: make(chan string, 1),
		}
		d := openShell("http://localhost:3000/index.html#/t_shirt")
		rt := Successful(New(d, WithFetcher(f)))

		results := make(chan Result, 1)
		go func() {
			defer GinkgoRecover()
			results <- rt.Load(ctx)
		}()
		Eventually(f.started).Should(Receive(Equal(slow)))
		Expect(d.LoadingVisible()).To(BeTrue())

		d.SetHash("/hats_headwear")
		fresh := rt.Load(ctx)
		Expect(fresh.Stale).To(BeFalse())
		Expect(d.ViewHTML()).To(Equal("<h1>FRESH</h1>"))

		close(gate)
		var stale Result
		Eventually(results).Should(Receive(&stale))
		Expect(stale.Stale).To(BeTrue())
		Expect(stale.Key).To(Equal("/t_shirt"))
		Expect(d.ViewHTML()).To(Equal("<h1>FRESH</h1>"))
		Expect(d.Title()).To(Equal("Hats & Headwear | CanCode Store"))
		Expect(rt.Current()).To(Equal("/hats_headwear"))
		Expect(d.LoadingVisible()).To(BeFalse())
	})

	It("hides the loading indicator even when rendering panics", func() {
		d := openShell("http://localhost:3000/index.html#/about")
		rt := Successful(New(&panickyShell{Document: d}, WithTable(Table{
			"/about":    {Title: "About", Content: "<p>about</p>"},
			NotFoundKey: {Title: "404", Content: "<p>lost</p>"},
		})))
		var res Result
		Expect(func() { res = rt.Load(ctx) }).NotTo(Panic())
		Expect(res.State).To(Equal(Failed))
		Expect(res.Failure).To(Equal(RenderFailed))
		Expect(res.Err).To(MatchError(ContainSubstring("boom")))
		Expect(d.LoadingVisible()).To(BeFalse())
		Expect(d.ViewHTML()).To(ContainSubstring("Something went wrong"))
	})

	It("hides the loading indicator even when fetching panics", func() {
		core, logs := observer.New(zap.ErrorLevel)
		d := openShell("http://localhost:3000/index.html#/t_shirt")
		rt := Successful(New(d, WithFetcher(panickyFetcher{}), WithLogger(zap.New(core))))
		var res Result
		Expect(func() { res = rt.Load(ctx) }).NotTo(Panic())
		Expect(res.Key).To(Equal("/t_shirt"))
		Expect(res.Failure).To(Equal(RenderFailed))
		Expect(res.Err).To(MatchError(ContainSubstring("fetch boom")))

		state, failure := rt.State()
		Expect(state).To(Equal(Failed))
		Expect(failure).To(Equal(RenderFailed))
		Expect(d.LoadingVisible()).To(BeFalse())
		Expect(d.ViewKey()).To(Equal("/t_shirt"))
		Expect(d.ViewHTML()).To(ContainSubstring("Something went wrong"))
		Expect(d.ListenerCount("[data-link]", "click")).To(BeNumerically(">", 0))
		Expect(logs.FilterMessage("navigation broke down").Len()).To(Equal(1))
	})

	It("renders the generic error fragment when mounting fails", func() {
		d := openShell("http://localhost:3000/index.html#/about")
		rt := Successful(New(&brittleShell{Document: d, failures: 1}, WithTable(Table{
			"/about":    {Title: "About", Content: "<p>about</p>"},
			NotFoundKey: {Title: "404", Content: "<p>lost</p>"},
		})))
		res := rt.Load(ctx)
		Expect(res.State).To(Equal(Failed))
		Expect(res.Failure).To(Equal(RenderFailed))
		Expect(res.Err).To(MatchError("mount boom"))
		Expect(d.Title()).To(Equal("About"))
		Expect(d.LoadingVisible()).To(BeFalse())
		Expect(d.ViewHTML()).To(ContainSubstring("Something went wrong"))
		Expect(d.ViewHTML()).NotTo(ContainSubstring("about</p>"))
	})

})
