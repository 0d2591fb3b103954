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
	"errors"
	"io"
	"io/fs"
	"net/http"
)

const notFoundMessage = "File not found"

// NormalizedHttpError writes the HTTP status code and plain text message for
// the specified file system error and returns the status code sent. Missing
// files become 404 "File not found"; all other errors become 500 with the
// symbolic error code, such as "Server Error: EISDIR".
func NormalizedHttpError(w http.ResponseWriter, err error) int {
	if errors.Is(err, fs.ErrNotExist) {
		writePlain(w, http.StatusNotFound, notFoundMessage)
		return http.StatusNotFound
	}
	writePlain(w, http.StatusInternalServerError, "Server Error: "+errorCode(err))
	return http.StatusInternalServerError
}

func writePlain(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
