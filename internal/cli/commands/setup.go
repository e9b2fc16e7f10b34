// Package commands implements the dqcheck CLI commands.
package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dqcheck/internal/cli/config"
	"github.com/leapstack-labs/dqcheck/internal/cli/output"
	"github.com/leapstack-labs/dqcheck/internal/store"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds the shared context from the command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the loaded configuration, falling back to
// environment variables with defaults when the root command's
// PersistentPreRunE has not run (tests driving a bare command).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		Rules:        getEnvOrDefault("DQCHECK_RULES", config.DefaultRulesFile),
		StatePath:    getEnvOrDefault("DQCHECK_STATE_PATH", config.DefaultStateFile),
		Engine:       getEnvOrDefault("DQCHECK_ENGINE", config.DefaultEngine),
		Verbose:      os.Getenv("DQCHECK_VERBOSE") == "true",
		OutputFormat: getEnvOrDefault("DQCHECK_OUTPUT", config.DefaultOutput),
		Server: config.ServerConfig{
			Port: config.DefaultPort,
		},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// openStore opens the run history store at the configured path,
// creating the state directory when needed.
func openStore(cfg *config.Config, logger *slog.Logger) (*store.SQLiteStore, error) {
	if cfg.StatePath != ":memory:" {
		stateDir := filepath.Dir(cfg.StatePath)
		if stateDir != "." && stateDir != "" {
			if err := os.MkdirAll(stateDir, 0o750); err != nil {
				return nil, err
			}
		}
	}
	return store.Open(cfg.StatePath, logger)
}
