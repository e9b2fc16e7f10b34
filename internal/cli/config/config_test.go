package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultRulesFile, cfg.Rules)
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.Equal(t, DefaultEngine, cfg.Engine)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()

	dir := t.TempDir()
	path := filepath.Join(dir, "dqcheck.yaml")
	content := "rules: custom.yaml\nengine: duckdb\nserver:\n  port: 9000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "custom.yaml", cfg.Rules)
	assert.Equal(t, "duckdb", cfg.Engine)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	ResetConfig()

	dir := t.TempDir()
	path := filepath.Join(dir, "dqcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: csv\n"), 0o600))

	t.Setenv("DQCHECK_ENGINE", "duckdb")
	t.Setenv("DQCHECK_SERVER__PORT", "7000")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "duckdb", cfg.Engine)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	ResetConfig()
	t.Setenv("DQCHECK_ENGINE", "duckdb")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("engine", "", "")
	flags.String("state", "", "")
	require.NoError(t, flags.Parse([]string{"--engine", "csv", "--state", "/tmp/s.db"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Engine)
	assert.Equal(t, "/tmp/s.db", cfg.StatePath)
}

func TestLoadConfigUnchangedFlagsIgnored(t *testing.T) {
	ResetConfig()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("engine", "duckdb", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	// Flag default must not override the config default.
	assert.Equal(t, DefaultEngine, cfg.Engine)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	ResetConfig()
	t.Setenv("DQCHECK_ENGINE", "arrow")

	_, err := LoadConfig("", nil)
	assert.ErrorContains(t, err, "unknown engine")
}

func TestValidateOutput(t *testing.T) {
	cfg := &Config{Engine: "csv", OutputFormat: "xml"}
	assert.ErrorContains(t, cfg.Validate(), "unknown output format")
}
