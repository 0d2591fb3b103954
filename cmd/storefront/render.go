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

package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thediveo/storefront/fetch"
	"github.com/thediveo/storefront/router"
	"github.com/thediveo/storefront/shell"
)

func newRenderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "render [ROUTE]",
		Short: "Render a route headless and print the resulting document",
		Long: `Render loads the root document, navigates to the specified route (such as
"/t_shirt"; default "/") and prints the resulting document HTML.

With the relative strategy, file:// locations resolve inside the content
directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			route := ""
			if len(args) > 0 {
				route = args[0]
			}
			return a.render(cmd.Context(), cmd.OutOrStdout(), route)
		},
	}
}

// render runs a single navigation to the specified route over the root
// document and writes the resulting document to w.
func (a *app) render(ctx context.Context, w io.Writer, route string) error {
	loc, err := url.Parse(a.cfg.Location)
	if err != nil {
		return fmt.Errorf("invalid location: %w", err)
	}
	location := loc.String()
	if route != "" {
		loc.Fragment, loc.RawFragment = "", ""
		location = loc.String() + "#" + strings.TrimPrefix(route, "#")
	}
	table, err := a.table()
	if err != nil {
		return err
	}
	root := os.DirFS(a.cfg.Root)
	doc, err := shell.Open(root, a.cfg.Index, location)
	if err != nil {
		return fmt.Errorf("cannot open root document: %w", err)
	}

	strategy := a.cfg.RouterStrategy()
	var fetcher router.Fetcher
	if strategy == router.Server {
		fetcher = fetch.NewStandard(fetch.WithLogger(a.log))
	} else {
		fetcher = fetch.NewXHR(
			fetch.WithTimeout(a.cfg.Fetch.Timeout),
			fetch.WithFS(root),
			fetch.WithLogger(a.log))
	}
	r, err := router.New(doc,
		router.WithTable(table),
		router.WithStrategy(strategy),
		router.WithFetcher(fetcher),
		router.WithOrigin(a.cfg.Origin),
		router.WithPagesDir(a.cfg.Pages),
		router.WithLogger(a.log))
	if err != nil {
		return err
	}
	res := r.Start(ctx)
	if res.State == router.Failed {
		a.log.Warn("route rendered with failure",
			zap.String("route", res.Key),
			zap.Stringer("failure", res.Failure),
			zap.Error(res.Err))
	}
	out, err := doc.HTML()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out+"\n")
	return err
}
