package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/ddlkit/pkg/ddlkit"
)

// Config represents the ddlkit.yaml configuration file.
type Config struct {
	DatabaseURL   string `yaml:"database_url"`
	Dialect       string `yaml:"dialect"`
	Driver        string `yaml:"driver"`
	StrictRebuild bool   `yaml:"strict_rebuild"`
	Timeout       string `yaml:"timeout"`
}

// loadConfig loads configuration from file, env vars, and CLI flags.
// Precedence: CLI flags > env vars > config file > defaults
func loadConfig(g *globalFlags) (*Config, error) {
	cfg := &Config{}

	if data, err := os.ReadFile(g.configFile); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", g.configFile, err)
		}
		// ${VAR} keeps credentials out of the file
		cfg.DatabaseURL = expandEnvVars(cfg.DatabaseURL)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if env := os.Getenv("DATABASE_URL"); env != "" {
		cfg.DatabaseURL = env
	}
	if env := os.Getenv("DDLKIT_DIALECT"); env != "" {
		cfg.Dialect = env
	}

	if g.databaseURL != "" {
		cfg.DatabaseURL = g.databaseURL
	}
	if g.dialect != "" {
		cfg.Dialect = g.dialect
	}
	if g.driver != "" {
		cfg.Driver = g.driver
	}
	if g.strict {
		cfg.StrictRebuild = true
	}
	return cfg, nil
}

// expandEnvVars expands ${VAR} patterns in a string.
func expandEnvVars(s string) string {
	return os.Expand(s, os.Getenv)
}

// options turns the configuration into client options. url overrides the
// configured database URL when set.
func (c *Config) options(g *globalFlags, url string) ([]ddlkit.Option, error) {
	if url == "" {
		url = c.DatabaseURL
	}
	// Dialect and driver describe the configured database only.
	same := url == c.DatabaseURL
	if url == "" {
		return nil, ddlkit.ErrMissingDatabaseURL
	}

	opts := []ddlkit.Option{
		ddlkit.WithDatabaseURL(url),
		ddlkit.WithLogger(g.logger),
	}
	if same && c.Dialect != "" {
		opts = append(opts, ddlkit.WithDialect(c.Dialect))
	}
	if same && c.Driver != "" {
		opts = append(opts, ddlkit.WithDriver(c.Driver))
	}
	if c.StrictRebuild {
		opts = append(opts, ddlkit.WithStrictRebuild())
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
		}
		opts = append(opts, ddlkit.WithTimeout(d))
	}
	return opts, nil
}

// newClient opens a client from the merged configuration.
func newClient(g *globalFlags) (*ddlkit.Client, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.options(g, "")
	if err != nil {
		return nil, err
	}
	return ddlkit.Open(opts...)
}

// newClientFor opens a second client on url with the same settings,
// letting the dialect be detected from url.
func newClientFor(g *globalFlags, url string) (*ddlkit.Client, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.options(g, url)
	if err != nil {
		return nil, err
	}
	return ddlkit.Open(opts...)
}
