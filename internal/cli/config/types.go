// Package config loads dqcheck CLI configuration from file,
// environment variables and flags, with the precedence chain
// defaults < config file < DQCHECK_* env < flags.
package config

import (
	"fmt"

	"github.com/leapstack-labs/dqcheck/internal/ingest"
)

// Default configuration values.
const (
	DefaultRulesFile = "rules.yaml"
	DefaultStateFile = ".dqcheck/state.db"
	DefaultEngine    = ingest.EngineCSV
	DefaultOutput    = "auto" // auto-detect: TTY=text, non-TTY=markdown
	DefaultPort      = 8417
)

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Port           int    `koanf:"port"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes"`
	Rules          string `koanf:"rules"`
}

// Config holds all CLI configuration options.
type Config struct {
	Rules        string       `koanf:"rules"`
	StatePath    string       `koanf:"state_path"`
	Engine       string       `koanf:"engine"`
	Verbose      bool         `koanf:"verbose"`
	OutputFormat string       `koanf:"output"`
	Server       ServerConfig `koanf:"server"`
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Engine {
	case ingest.EngineCSV, ingest.EngineDuckDB:
	default:
		return fmt.Errorf("unknown engine %q (expected csv or duckdb)", c.Engine)
	}
	switch c.OutputFormat {
	case "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("unknown output format %q", c.OutputFormat)
	}
	return nil
}
