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

package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing/fstest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("fetching fragments", func() {

	var srv *httptest.Server

	BeforeEach(func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/ok.html", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "<h1>CANARY</h1>")
		})
		mux.HandleFunc("/empty.html", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		mux.HandleFunc("/slow.html", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		})
		srv = httptest.NewServer(mux)
		DeferCleanup(srv.Close)
	})

	Context("XHR-style", func() {

		It("retrieves a fragment", func() {
			c := NewXHR()
			Expect(c.Fetch(context.Background(), srv.URL+"/ok.html")).To(Equal("<h1>CANARY</h1>"))
		})

		It("enforces the default client-side timeout", func() {
			Expect(NewXHR().client.Timeout).To(Equal(5000 * time.Millisecond))
		})

		DescribeTable("rejects status codes other than 200",
			func(path string, expected int) {
				_, err := NewXHR().Fetch(context.Background(), srv.URL+path)
				var statusErr *StatusError
				Expect(err).To(BeAssignableToTypeOf(statusErr))
				Expect(err.(*StatusError).Code).To(Equal(expected))
			},
			Entry("not found", "/missing.html", http.StatusNotFound),
			Entry("no content", "/empty.html", http.StatusNoContent),
		)

		It("describes rejected status codes", func() {
			_, err := NewXHR().Fetch(context.Background(), srv.URL+"/missing.html")
			Expect(err).To(MatchError("HTTP 404: Not Found"))
		})

		It("times out", func() {
			c := NewXHR(WithTimeout(50 * time.Millisecond))
			_, err := c.Fetch(context.Background(), srv.URL+"/slow.html")
			Expect(err).To(MatchError(ErrTimeout))
		})

		It("reports network errors", func() {
			url := srv.URL
			srv.Close()
			_, err := NewXHR().Fetch(context.Background(), url+"/ok.html")
			Expect(err).To(MatchError(ErrNetwork))
		})

		It("reports cancellation as such", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := NewXHR().Fetch(ctx, srv.URL+"/ok.html")
			Expect(err).To(MatchError(context.Canceled))
			Expect(err).NotTo(MatchError(ErrNetwork))
		})

		It("retrieves fragments using the file scheme", func() {
			c := NewXHR(WithFS(fstest.MapFS{
				"pages/landing_page/shoes.html": {Data: []byte("<h1>SHOES</h1>")},
			}))
			Expect(c.Fetch(context.Background(), "file:///pages/landing_page/shoes.html")).
				To(Equal("<h1>SHOES</h1>"))
			_, err := c.Fetch(context.Background(), "file:///pages/landing_page/socks.html")
			Expect(err).To(MatchError("HTTP 404: Not Found"))
		})

		It("rejects invalid URLs", func() {
			_, err := NewXHR().Fetch(context.Background(), "http://[::1")
			Expect(err).To(HaveOccurred())
		})

	})

	Context("fetch-style", func() {

		It("has no client-side timeout", func() {
			Expect(NewStandard().client.Timeout).To(BeZero())
		})

		It("accepts any 2xx status", func() {
			c := NewStandard()
			Expect(c.Fetch(context.Background(), srv.URL+"/ok.html")).To(Equal("<h1>CANARY</h1>"))
			Expect(c.Fetch(context.Background(), srv.URL+"/empty.html")).To(BeEmpty())
		})

		It("rejects other status codes", func() {
			_, err := NewStandard().Fetch(context.Background(), srv.URL+"/missing.html")
			Expect(err).To(MatchError("HTTP 404: Not Found"))
		})

	})

	Context("probing", func() {

		It("succeeds on any response", func() {
			Expect(NewStandard().Probe(context.Background(), srv.URL+"/missing.html")).To(Succeed())
		})

		It("fails without server", func() {
			url := srv.URL
			srv.Close()
			Expect(NewStandard().Probe(context.Background(), url)).To(MatchError(ErrNetwork))
		})

	})

	It("doesn't touch the template http.Client", func() {
		hc := &http.Client{}
		c := NewXHR(WithHTTPClient(hc), WithFS(fstest.MapFS{}))
		Expect(hc.Timeout).To(BeZero())
		Expect(hc.Transport).To(BeNil())
		Expect(c.client).NotTo(BeIdenticalTo(hc))
		Expect(c.client.Transport).To(BeAssignableToTypeOf(&http.Transport{}))
	})

})
