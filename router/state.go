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
	"fmt"
	"strings"
)

// State is the navigation state of a Router.
type State int

// The navigation states.
const (
	Idle     State = iota // no navigation has started yet.
	Loading               // a navigation is retrieving its fragment.
	Rendered              // the route's fragment has been rendered.
	Failed                // an error fragment has been rendered; see Failure.
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Rendered:
		return "rendered"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Failure details the Failed state.
type Failure int

// The failure kinds.
const (
	NoFailure         Failure = iota
	NotFound                  // the route key isn't in the table.
	ServerUnavailable         // the content server couldn't deliver the fragment.
	FetchFailed               // the fragment couldn't be retrieved from any path.
	RenderFailed              // the navigation broke down while rendering.
)

func (f Failure) String() string {
	switch f {
	case NoFailure:
		return "none"
	case NotFound:
		return "not found"
	case ServerUnavailable:
		return "server unavailable"
	case FetchFailed:
		return "fetch failed"
	case RenderFailed:
		return "render failed"
	}
	return fmt.Sprintf("Failure(%d)", int(f))
}

// Strategy determines how a Router locates the fragment files of routes.
type Strategy int

// The fragment location strategies.
const (
	// Relative locates fragment files relative to the page shell's
	// location, retrying alternative paths on failure.
	Relative Strategy = iota
	// Server retrieves fragment files from the content server origin.
	Server
)

func (s Strategy) String() string {
	switch s {
	case Relative:
		return "relative"
	case Server:
		return "server"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy returns the Strategy with the specified (case-insensitive)
// name.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "relative":
		return Relative, nil
	case "server":
		return Server, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}
