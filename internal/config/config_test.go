// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("listen-addr", DefaultListenAddr, "")
	flags.String("metrics-addr", DefaultMetricsAddr, "")
	flags.String("log-format", DefaultLogFormat, "")
	flags.String("database-url", "", "")
	flags.Bool("debug", false, "")
	return flags
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", newFlags())
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultMetricsAddr, cfg.MetricsAddr)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.False(t, cfg.Debug)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
listen_addr: ":9090"
log_format: text
database_url: postgres://localhost:5432/tiredprod
gate_password: open sesame
gate_secret: signing-secret
admin_emails:
  - boss@example.com
`)

	cfg, err := Load(path, newFlags())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "postgres://localhost:5432/tiredprod", cfg.DatabaseURL)
	assert.Equal(t, "open sesame", cfg.GatePassphrase)
	assert.Equal(t, []string{"boss@example.com"}, cfg.AdminEmails)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml", newFlags())
	require.Error(t, err)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
database_url: postgres://file-host/db
gate_password: from-file
`)

	t.Setenv("DATABASE_URL", "postgres://env-host/db")
	t.Setenv("GATE_SECRET", "env-secret")
	t.Setenv("ADMIN_EMAILS", "boss@example.com, second@example.com")
	t.Setenv("APP_DEBUG", "true")

	cfg, err := Load(path, newFlags())
	require.NoError(t, err)

	assert.Equal(t, "postgres://env-host/db", cfg.DatabaseURL)
	assert.Equal(t, "from-file", cfg.GatePassphrase)
	assert.Equal(t, "env-secret", cfg.GateSecret)
	assert.Equal(t, []string{"boss@example.com", "second@example.com"}, cfg.AdminEmails)
	assert.True(t, cfg.Debug)
}

func TestLoad_ExplicitFlagWinsOverEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-host/db")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--database-url", "postgres://flag-host/db"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "postgres://flag-host/db", cfg.DatabaseURL)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ListenAddr:     ":8080",
			LogFormat:      "json",
			DatabaseURL:    "postgres://localhost/db",
			GatePassphrase: "open sesame",
			GateSecret:     "signing-secret",
		}
	}

	t.Run("complete config passes", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing listen addr", func(c *Config) { c.ListenAddr = "" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"missing database URL", func(c *Config) { c.DatabaseURL = "" }},
		{"missing gate passphrase", func(c *Config) { c.GatePassphrase = "" }},
		{"missing gate secret", func(c *Config) { c.GateSecret = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
