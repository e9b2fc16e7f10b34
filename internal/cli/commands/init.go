package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/dqcheck/internal/cli/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new dqcheck project",
		Long: `Initialize a new dqcheck project with a configuration file and starter rules.

This creates:
  - dqcheck.yaml configuration file
  - rules.yaml with a commented starter rule set`,
		Example: `  # Initialize in current directory
  dqcheck init

  # Initialize in a new directory
  dqcheck init my-project

  # Force overwrite existing files
  dqcheck init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cmdCtx := NewCommandContext(cmd)
			return runInit(cmdCtx, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func runInit(cmdCtx *CommandContext, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "dqcheck.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("dqcheck.yaml already exists. Use --force to overwrite")
	}

	cfgDoc := map[string]any{
		"rules":  config.DefaultRulesFile,
		"engine": config.DefaultEngine,
		"output": config.DefaultOutput,
		"server": map[string]any{
			"port": config.DefaultPort,
		},
	}
	cfgBytes, err := yaml.Marshal(cfgDoc)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	if err := os.WriteFile(configPath, cfgBytes, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	rulesPath := filepath.Join(dir, config.DefaultRulesFile)
	if _, err := os.Stat(rulesPath); os.IsNotExist(err) || force {
		if err := os.WriteFile(rulesPath, []byte(starterRules), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", rulesPath, err)
		}
	}

	r := cmdCtx.Renderer
	fmt.Fprintln(r.Out(), r.OK("✓ dqcheck.yaml"))
	fmt.Fprintln(r.Out(), r.OK("✓ "+config.DefaultRulesFile))
	fmt.Fprintln(r.Out())
	fmt.Fprintln(r.Out(), "Next steps:")
	fmt.Fprintln(r.Out(), "  1. Describe your columns in "+config.DefaultRulesFile)
	fmt.Fprintln(r.Out(), "  2. Run 'dqcheck check data.csv' to evaluate a file")
	fmt.Fprintln(r.Out(), "  3. Run 'dqcheck runs' to browse past results")

	return nil
}

const starterRules = `# Data quality rules for dqcheck.
#
# Each entry under "columns" constrains one column of the input file.
# Supported constraints:
#   required: true          reject null or missing values
#   min / max: <number>     inclusive numeric bounds
#   pattern: <regexp>       values must match (nulls are skipped)
#   allowed: [a, b, c]      values must be one of the listed strings
#   severity: error|warn    how violations are reported (default error)
#
# The optional "dataset" section applies to whole rows:
#   unique_by: [col, ...]   rows must be unique on these columns

columns:
  id:
    required: true
  # age:
  #   min: 18
  #   max: 60
  # email:
  #   pattern: '^[^@]+@[^@]+$'
  #   severity: warn

# dataset:
#   unique_by: [id]
`
