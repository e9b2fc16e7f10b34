package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dqcheck/internal/cli/output"
	"github.com/leapstack-labs/dqcheck/internal/ingest"
	"github.com/leapstack-labs/dqcheck/internal/report"
	"github.com/leapstack-labs/dqcheck/internal/store"
	"github.com/leapstack-labs/dqcheck/pkg/checks"
	"github.com/leapstack-labs/dqcheck/pkg/rules"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	RulesPath  string // overrides the configured rules file
	ReportPath string // write the CSV report file here
	Format     string // output format override
	FailOn     string // exit non-zero when violations at this severity exist: error, warn, none
	Watch      bool   // re-run on data/rules changes
	NoSave     bool   // skip recording the run
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check <data.csv>",
		Short: "Validate a tabular file against the rule set",
		Long: `Load a CSV file, apply the configured validation rules and print
the violation report.

Violations never abort the run: evaluation always completes and every
finding appears in the report. Malformed input files and rule
configuration problems are errors.

Output adapts to environment:
  - Terminal: styled table output
  - Piped/Scripted: markdown format
  - JSON: machine-readable format`,
		Example: `  # Check a file with the default rules file
  dqcheck check data.csv

  # Explicit rules and a downloadable CSV report
  dqcheck check data.csv --rules rules.yaml --report violations.csv

  # Fail the pipeline only on error-severity violations
  dqcheck check data.csv --fail-on error

  # Re-run checks whenever the data or rules change
  dqcheck check data.csv --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.RulesPath, "rules", "r", "", "Path to the rules file (default from config)")
	cmd.Flags().StringVar(&opts.ReportPath, "report", "", "Write the CSV violation report to this file")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringVar(&opts.FailOn, "fail-on", "error", "Exit non-zero on violations at this severity: error, warn, none")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run checks when the data or rules file changes")
	cmd.Flags().BoolVar(&opts.NoSave, "no-save", false, "Do not record the run in the state database")

	return cmd
}

func runCheck(cmd *cobra.Command, dataPath string, opts *CheckOptions) error {
	cmdCtx := NewCommandContext(cmd)

	switch opts.FailOn {
	case "error", "warn", "none":
	default:
		return fmt.Errorf("bad --fail-on value %q (expected error, warn or none)", opts.FailOn)
	}

	rulesPath := opts.RulesPath
	if rulesPath == "" {
		rulesPath = cmdCtx.Cfg.Rules
	}

	var st *store.SQLiteStore
	if !opts.NoSave {
		var err error
		st, err = openStore(cmdCtx.Cfg, cmdCtx.Logger)
		if err != nil {
			return fmt.Errorf("failed to open state database: %w", err)
		}
		defer func() { _ = st.Close() }()
	}

	if opts.Watch {
		return watchCheck(cmd, dataPath, rulesPath, opts, cmdCtx, st)
	}

	rep, err := evaluateFile(cmd.Context(), dataPath, rulesPath, cmdCtx, st)
	if err != nil {
		return err
	}
	if err := renderCheckResult(cmdCtx, dataPath, rep, opts); err != nil {
		return err
	}
	return failOnViolations(rep, opts.FailOn)
}

// evaluateFile runs the full pipeline for one file: ingest, load and
// bind rules, evaluate, record the run.
func evaluateFile(ctx context.Context, dataPath, rulesPath string, cmdCtx *CommandContext, st *store.SQLiteStore) (checks.Report, error) {
	loader, err := ingest.ForEngine(cmdCtx.Cfg.Engine)
	if err != nil {
		return nil, err
	}

	cmdCtx.Logger.Debug("loading table", "path", dataPath, "engine", cmdCtx.Cfg.Engine)
	tbl, err := loader.Load(ctx, dataPath)
	if err != nil {
		return nil, err
	}

	rs, err := rules.LoadFile(rulesPath)
	if err != nil {
		return nil, err
	}
	if err := rs.Bind(tbl); err != nil {
		return nil, err
	}

	start := time.Now()
	rep := checks.Evaluate(tbl, rs)
	cmdCtx.Logger.Debug("evaluation complete",
		"rows", tbl.NumRows(), "violations", len(rep), "elapsed", time.Since(start))

	if st != nil {
		run := &store.Run{
			Source:     filepath.Base(dataPath),
			Engine:     cmdCtx.Cfg.Engine,
			Rows:       tbl.NumRows(),
			Columns:    tbl.NumColumns(),
			DurationMS: time.Since(start).Milliseconds(),
		}
		if err := st.SaveRun(run, rep); err != nil {
			cmdCtx.Logger.Error("failed to save run", "error", err)
		}
	}

	return rep, nil
}

func renderCheckResult(cmdCtx *CommandContext, dataPath string, rep checks.Report, opts *CheckOptions) error {
	r := cmdCtx.Renderer
	mode := r.EffectiveMode()
	if opts.Format != "" {
		mode = output.Mode(opts.Format)
	}

	switch mode {
	case output.ModeJSON:
		if err := report.WriteJSON(r.Out(), filepath.Base(dataPath), rep); err != nil {
			return err
		}
	case output.ModeMarkdown:
		report.RenderMarkdown(r.Out(), rep)
	default:
		report.RenderTable(r.Out(), rep)
		printSummary(cmdCtx, rep)
	}

	if opts.ReportPath != "" {
		f, err := os.Create(opts.ReportPath)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer func() { _ = f.Close() }()
		if err := report.WriteCSV(f, rep); err != nil {
			return err
		}
		fmt.Fprintf(r.ErrOut(), "report written to %s\n", opts.ReportPath)
	}

	return nil
}

func printSummary(cmdCtx *CommandContext, rep checks.Report) {
	r := cmdCtx.Renderer
	if rep.Empty() {
		fmt.Fprintln(r.Out(), r.OK("✓ all checks passed"))
		return
	}

	sev := rep.CountBySeverity()
	line := fmt.Sprintf("%d violations", len(rep))
	if n := sev[rules.SeverityError]; n > 0 {
		line += " " + r.Error(fmt.Sprintf("(%d errors)", n))
	}
	if n := sev[rules.SeverityWarn]; n > 0 {
		line += " " + r.Warn(fmt.Sprintf("(%d warnings)", n))
	}
	fmt.Fprintln(r.Out(), line)
}

// failOnViolations maps the report onto the exit status per --fail-on.
func failOnViolations(rep checks.Report, failOn string) error {
	if failOn == "none" || rep.Empty() {
		return nil
	}

	sev := rep.CountBySeverity()
	errors := sev[rules.SeverityError]
	warnings := sev[rules.SeverityWarn]

	switch failOn {
	case "warn":
		if errors+warnings > 0 {
			return fmt.Errorf("found %d violations", len(rep))
		}
	default: // error
		if errors > 0 {
			return fmt.Errorf("found %d violations (%d at error severity)", len(rep), errors)
		}
	}
	return nil
}

// watchCheck re-runs the check whenever the data or rules file
// changes, until the context is cancelled.
func watchCheck(cmd *cobra.Command, dataPath, rulesPath string, opts *CheckOptions, cmdCtx *CommandContext, st *store.SQLiteStore) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the containing directories; editors often replace files
	// rather than writing them in place.
	for _, dir := range watchDirs(dataPath, rulesPath) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	runOnce := func() {
		rep, err := evaluateFile(cmd.Context(), dataPath, rulesPath, cmdCtx, st)
		if err != nil {
			fmt.Fprintf(cmdCtx.Renderer.ErrOut(), "check failed: %v\n", err)
			return
		}
		if err := renderCheckResult(cmdCtx, dataPath, rep, opts); err != nil {
			fmt.Fprintf(cmdCtx.Renderer.ErrOut(), "render failed: %v\n", err)
		}
	}

	runOnce()
	cmdCtx.Logger.Info("watching for changes", "data", dataPath, "rules", rulesPath)

	watched := map[string]bool{
		filepath.Clean(dataPath):  true,
		filepath.Clean(rulesPath): true,
	}
	// Coalesce bursts of events into one re-run.
	var pending <-chan time.Time
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(250 * time.Millisecond)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmdCtx.Logger.Error("watch error", "error", err)
		case <-pending:
			pending = nil
			runOnce()
		}
	}
}

func watchDirs(paths ...string) []string {
	seen := map[string]bool{}
	var dirs []string
	for _, p := range paths {
		dir := filepath.Dir(p)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
