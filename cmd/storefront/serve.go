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
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thediveo/storefront/contentserver"
	"github.com/thediveo/storefront/internal/config"
	"github.com/thediveo/storefront/internal/logging"
)

// shutdownTimeout limits how long in-flight requests may take to complete
// after a shutdown signal.
const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront content during development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ln, err := net.Listen("tcp", a.cfg.Addr)
			if err != nil {
				return fmt.Errorf("cannot listen on %s: %w", a.cfg.Addr, err)
			}
			return a.serve(cmd.Context(), ln)
		},
	}
	cmd.Flags().String("addr", config.DefaultAddr, "listen address")
	cmd.Flags().Bool("base-rewrite", false,
		"rewrite the root document's <base href> from X-Forwarded-Prefix/X-Forwarded-Uri")
	a.bind(cmd.Flags(), map[string]string{
		"addr":         "addr",
		"base_rewrite": "base-rewrite",
	})
	return cmd
}

// handler returns the content server wrapped into the request ID, panic
// recovery and access log middleware.
func (a *app) handler() http.Handler {
	opts := []contentserver.Option{
		contentserver.WithIndex(a.cfg.Index),
		contentserver.WithLogger(a.log),
	}
	if a.cfg.BaseRewrite {
		opts = append(opts, contentserver.WithBaseRewrite())
	}
	content := contentserver.New(os.DirFS(a.cfg.Root), opts...)

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID, middleware.Recoverer, logging.RequestLogger(a.log))
	mux.Handle("/", content)
	mux.Handle("/*", content)
	return mux
}

// serve serves the storefront content on ln until ctx is done, then shuts
// down gracefully.
func (a *app) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.logStartup(ln.Addr())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()
	select {
	case err := <-done:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// logStartup logs the URLs of the root document and the fragment files of
// the route table.
func (a *app) logStartup(addr net.Addr) {
	base := "http://" + addr.String()
	if tcp, ok := addr.(*net.TCPAddr); ok && tcp.IP.IsUnspecified() {
		base = fmt.Sprintf("http://localhost:%d", tcp.Port)
	}
	a.log.Info("server running",
		zap.String("url", base),
		zap.String("root", a.cfg.Root))
	a.log.Info("root document", zap.String("url", base+"/"+a.cfg.Index))
	table, err := a.table()
	if err != nil {
		a.log.Warn("cannot list pages", zap.Error(err))
		return
	}
	for _, key := range table.Keys() {
		if file := table[key].File; file != "" {
			a.log.Info("page",
				zap.String("route", key),
				zap.String("url", base+"/"+a.cfg.Pages+"/"+file))
		}
	}
}
