// Package cli renders ddlkit output for terminals: Cargo-style errors,
// schema tables, drift reports and per-operation progress. Colors are
// dropped automatically for pipes, NO_COLOR and TERM=dumb.
package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// OutputMode determines how output is formatted.
type OutputMode int

const (
	// ModeTTY enables colored output for interactive terminals.
	ModeTTY OutputMode = iota
	// ModePlain outputs plain text without colors (pipes, CI).
	ModePlain
	// ModeJSON outputs structured JSON for scripts.
	ModeJSON
)

func (m OutputMode) String() string {
	switch m {
	case ModeTTY:
		return "tty"
	case ModeJSON:
		return "json"
	default:
		return "plain"
	}
}

// Config holds CLI output configuration.
type Config struct {
	Mode   OutputMode
	Writer io.Writer
}

// NewConfig detects the output mode for w.
// Rules:
//   - json set -> ModeJSON
//   - w is a terminal and NO_COLOR/TERM=dumb unset -> ModeTTY
//   - anything else -> ModePlain
func NewConfig(w io.Writer, json bool) *Config {
	if w == nil {
		w = os.Stdout
	}
	cfg := &Config{Mode: ModePlain, Writer: w}
	switch {
	case json:
		cfg.Mode = ModeJSON
	case isTerminal(w) && os.Getenv("NO_COLOR") == "" && os.Getenv("TERM") != "dumb":
		cfg.Mode = ModeTTY
	}
	return cfg
}

// DefaultConfig returns the auto-detected configuration for stdout.
func DefaultConfig() *Config {
	return NewConfig(os.Stdout, false)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsTTY returns true if running in interactive terminal mode.
func (c *Config) IsTTY() bool {
	return c.Mode == ModeTTY
}

// IsJSON returns true if running in JSON output mode.
func (c *Config) IsJSON() bool {
	return c.Mode == ModeJSON
}

// Global default config, initialized lazily.
var defaultCfg *Config

// Default returns the global default configuration.
func Default() *Config {
	if defaultCfg == nil {
		defaultCfg = DefaultConfig()
	}
	return defaultCfg
}

// SetDefault sets the global default configuration.
func SetDefault(cfg *Config) {
	defaultCfg = cfg
}

// EnableColors returns true if colors should be used.
func EnableColors() bool {
	return Default().IsTTY()
}
