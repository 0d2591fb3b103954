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

/*
Package httptest wraps the standard library's httptest.ResponseRecorder in order
to fail any test whose handler writes the status line more than once, or before
it has set the headers a test insists on.
*/
package httptest

import (
	stdhttptest "net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// StrictRecorder wraps httptest.ResponseRecorder in order to fail tests doing
// superfluous WriteHeader calls or sending the status line while required
// headers are still missing.
type StrictRecorder struct {
	*stdhttptest.ResponseRecorder
	required    []string
	wroteHeader bool
}

// NewRecorder returns a new test response recorder that checks for each of
// the specified header names to be set at the time the status line is
// written.
func NewRecorder(required ...string) *StrictRecorder {
	return &StrictRecorder{
		ResponseRecorder: stdhttptest.NewRecorder(),
		required:         required,
	}
}

// WriteHeader implements http.ResponseWriter.
func (w *StrictRecorder) WriteHeader(code int) {
	GinkgoHelper()
	Expect(w.wroteHeader).To(BeFalse(), "superfluous response.WriteHeader call")
	for _, name := range w.required {
		Expect(w.Header().Get(name)).NotTo(BeEmpty(),
			"header %q missing when writing status %d", name, code)
	}
	w.wroteHeader = true
	w.ResponseRecorder.WriteHeader(code)
}
