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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/thediveo/storefront/contentserver"
	"github.com/thediveo/storefront/fetch"
	"github.com/thediveo/storefront/internal/config"
	"github.com/thediveo/storefront/internal/logging"
	"github.com/thediveo/storefront/router"
)

// app carries the state shared by the storefront commands. The configuration
// and logger become available only once the root command's persistent
// pre-run has completed.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	log        *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "CanCode storefront content server and headless router",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "configuration file (default ./storefront.yaml if present)")
	flags.String("root", config.DefaultRoot, "directory with the storefront content")
	flags.String("index", contentserver.DefaultIndex, "root document inside the content directory")
	flags.String("pages", router.DefaultPagesDir, "fragment directory relative to the root document")
	flags.String("routes", "", "route table YAML file (default built-in CanCode routes)")
	flags.String("strategy", router.Relative.String(), `fragment loading strategy, "relative" or "server"`)
	flags.String("origin", router.DefaultOrigin, "content server origin for the server strategy")
	flags.String("location", config.DefaultLocation, "URL the root document is loaded from when rendering")
	flags.Duration("timeout", fetch.DefaultTimeout, "fragment retrieval timeout")
	flags.String("log-level", "info", "log level")
	flags.String("log-format", "console", `log format, "console" or "json"`)
	a.bind(flags, map[string]string{
		"root":          "root",
		"index":         "index",
		"pages":         "pages",
		"routes":        "routes",
		"strategy":      "strategy",
		"origin":        "origin",
		"location":      "location",
		"fetch.timeout": "timeout",
		"log.level":     "log-level",
		"log.format":    "log-format",
	})

	root.AddCommand(
		newServeCmd(a),
		newRenderCmd(a),
		newRoutesCmd(a),
		newProbeCmd(a),
	)
	return root
}

// bind binds the configuration keys to their flags.
func (a *app) bind(flags *pflag.FlagSet, keys map[string]string) {
	for key, flag := range keys {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("cannot bind flag %q: %s", flag, err))
		}
	}
}

// setup loads the configuration and builds the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// table returns the configured route table, falling back to the built-in
// table when no route table file has been configured.
func (a *app) table() (router.Table, error) {
	if a.cfg.Routes == "" {
		return router.DefaultTable(), nil
	}
	f, err := os.Open(a.cfg.Routes)
	if err != nil {
		return nil, fmt.Errorf("cannot open route table: %w", err)
	}
	defer f.Close()
	return router.LoadTable(f)
}
