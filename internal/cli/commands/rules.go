package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dqcheck/internal/cli/output"
	"github.com/leapstack-labs/dqcheck/internal/ingest"
	"github.com/leapstack-labs/dqcheck/pkg/checks"
	"github.com/leapstack-labs/dqcheck/pkg/rules"
)

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List available check types",
		Long: `List the registered check types with their categories and
descriptions.

Output adapts to environment:
  - Terminal: styled output
  - Piped/Scripted: markdown format
  - JSON: machine-readable format`,
		Example: `  # List all check types
  dqcheck rules

  # Output as JSON
  dqcheck rules --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listChecks(cmd, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, markdown, json")
	cmd.AddCommand(newRulesValidateCommand())

	return cmd
}

func listChecks(cmd *cobra.Command, format string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	if format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
	}

	defs := checks.All()

	if r.EffectiveMode() == output.ModeJSON {
		enc := json.NewEncoder(r.Out())
		enc.SetIndent("", "  ")
		return enc.Encode(defs)
	}

	fmt.Fprintln(r.Out(), r.Heading("Registered checks"))
	fmt.Fprintln(r.Out())
	for _, def := range defs {
		fmt.Fprintf(r.Out(), "  %s  %-18s %-10s %s\n", def.ID, def.Name, def.Category, def.Description)
	}
	return nil
}

func newRulesValidateCommand() *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "validate <rules.yaml>",
		Short: "Validate a rules file",
		Long: `Load a rules file and report configuration problems: unknown
keys, contradictory bounds, bad patterns. With --data, also verify
that every constrained column exists in the given CSV file.`,
		Example: `  # Validate rule syntax
  dqcheck rules validate rules.yaml

  # Also bind the rules against a concrete table
  dqcheck rules validate rules.yaml --data people.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesValidate(cmd, args[0], dataPath)
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "CSV file to bind the rules against")

	return cmd
}

func runRulesValidate(cmd *cobra.Command, rulesPath, dataPath string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	rs, err := rules.LoadFile(rulesPath)
	if err != nil {
		return err
	}

	if dataPath != "" {
		loader, err := ingest.ForEngine(cmdCtx.Cfg.Engine)
		if err != nil {
			return err
		}
		tbl, err := loader.Load(cmd.Context(), dataPath)
		if err != nil {
			return err
		}
		if err := rs.Bind(tbl); err != nil {
			return err
		}
	}

	constrained := len(rs.Columns)
	fmt.Fprintln(r.Out(), r.OK(fmt.Sprintf("✓ %s is valid (%d constrained columns)", rulesPath, constrained)))
	return nil
}
