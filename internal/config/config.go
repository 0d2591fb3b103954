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

// Package config loads the storefront configuration from defaults, an
// optional YAML file, STOREFRONT_* environment variables and command line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/thediveo/storefront/contentserver"
	"github.com/thediveo/storefront/fetch"
	"github.com/thediveo/storefront/router"
)

// EnvPrefix is the prefix of environment variables overriding configuration
// keys, such as STOREFRONT_FETCH_TIMEOUT for "fetch.timeout".
const EnvPrefix = "STOREFRONT"

// Configuration defaults.
const (
	DefaultAddr     = ":3000"
	DefaultRoot     = "site"
	DefaultLocation = "http://localhost:3000/index.html"
)

// Config is the storefront configuration.
type Config struct {
	Addr        string      `mapstructure:"addr"`         // content server listen address.
	Root        string      `mapstructure:"root"`         // directory served.
	Index       string      `mapstructure:"index"`        // root document inside Root.
	Pages       string      `mapstructure:"pages"`        // fragment directory inside Root.
	Routes      string      `mapstructure:"routes"`       // optional route table YAML file.
	Strategy    string      `mapstructure:"strategy"`     // "relative" or "server".
	Origin      string      `mapstructure:"origin"`       // content server origin for "server".
	Location    string      `mapstructure:"location"`     // page shell location when rendering.
	BaseRewrite bool        `mapstructure:"base_rewrite"` // rewrite <base href> from proxy headers.
	Fetch       FetchConfig `mapstructure:"fetch"`
	Log         LogConfig   `mapstructure:"log"`
}

// FetchConfig configures fragment retrieval.
type FetchConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console".
}

// New returns a viper instance set up with the configuration defaults and
// environment variable overrides.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("root", DefaultRoot)
	v.SetDefault("index", contentserver.DefaultIndex)
	v.SetDefault("pages", router.DefaultPagesDir)
	v.SetDefault("routes", "")
	v.SetDefault("strategy", router.Relative.String())
	v.SetDefault("origin", router.DefaultOrigin)
	v.SetDefault("location", DefaultLocation)
	v.SetDefault("base_rewrite", false)
	v.SetDefault("fetch.timeout", fetch.DefaultTimeout)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. An explicitly specified file must exist;
// otherwise, "storefront.yaml" in the working directory is read if present.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read configuration file: %w", err)
		}
	} else {
		v.SetConfigName("storefront")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("cannot read configuration file: %w", err)
			}
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if _, err := router.ParseStrategy(c.Strategy); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid configuration: unknown log format %q", c.Log.Format)
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("invalid configuration: negative fetch timeout %s", c.Fetch.Timeout)
	}
	return nil
}

// RouterStrategy returns the configured routing strategy.
func (c *Config) RouterStrategy() router.Strategy {
	s, _ := router.ParseStrategy(c.Strategy)
	return s
}
