// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

// Package config loads service configuration from a YAML file, environment
// variables, and command-line flags, in ascending precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Default values for serve flags.
const (
	DefaultListenAddr  = ":8080"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
)

// Config holds the identity service configuration.
type Config struct {
	ListenAddr  string `koanf:"listen_addr"`
	MetricsAddr string `koanf:"metrics_addr"`
	LogFormat   string `koanf:"log_format"`

	DatabaseURL string `koanf:"database_url"`

	GatePassphrase string   `koanf:"gate_password"`
	GateSecret     string   `koanf:"gate_secret"`
	AdminEmails    []string `koanf:"admin_emails"`

	Debug bool `koanf:"debug"`
}

// Validate checks that the configuration is complete and consistent.
func (cfg *Config) Validate() error {
	if cfg.ListenAddr == "" {
		return fmt.Errorf("listen-addr is required")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("log-format must be 'json' or 'text', got %q", cfg.LogFormat)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database URL is required (flag, config file, or DATABASE_URL)")
	}
	if cfg.GatePassphrase == "" {
		return fmt.Errorf("gate passphrase is required (config file or GATE_PASSWORD)")
	}
	if cfg.GateSecret == "" {
		return fmt.Errorf("gate secret is required (config file or GATE_SECRET)")
	}
	return nil
}

// envOverrides maps environment variables onto config keys. Secrets arrive
// through the environment in every deployment, so these always apply when
// set.
var envOverrides = map[string]string{
	"DATABASE_URL":  "database_url",
	"GATE_PASSWORD": "gate_password",
	"GATE_SECRET":   "gate_secret",
	"ADMIN_EMAILS":  "admin_emails",
	"APP_DEBUG":     "debug",
}

// Load builds the configuration: file (if given), then environment, then
// flags that were explicitly set. Later sources win.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %q: %w", configFile, err)
		}
	}

	for env, key := range envOverrides {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		if err := k.Set(key, coerceEnv(key, v)); err != nil {
			return nil, fmt.Errorf("apply %s: %w", env, err)
		}
	}

	if flags != nil {
		// Flag defaults fill gaps; only explicitly set flags override
		// file and environment values. Flag names use dashes, config
		// keys use underscores.
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// coerceEnv converts environment strings into the shape the key expects.
func coerceEnv(key, value string) any {
	switch key {
	case "admin_emails":
		parts := strings.Split(value, ",")
		emails := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				emails = append(emails, trimmed)
			}
		}
		return emails
	case "debug":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false
		}
		return b
	default:
		return value
	}
}
