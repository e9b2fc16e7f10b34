package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dqcheck/internal/cli/output"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent check runs",
		Long:  `List the most recent check runs recorded in the state database.`,
		Example: `  # Show the last 20 runs
  dqcheck runs

  # Show the last 5 runs
  dqcheck runs --limit 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")

	return cmd
}

func runRuns(cmd *cobra.Command, limit int) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	st, err := openStore(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer func() { _ = st.Close() }()

	runs, err := st.ListRuns(limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		enc := json.NewEncoder(r.Out())
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(r.Out(), "no runs recorded")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Out())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"id", "source", "rows", "violations", "errors", "warnings", "when"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID[:8], run.Source, run.Rows, run.Violations, run.Errors, run.Warnings,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	t.Render()
	return nil
}
