// Package report serializes violation reports: the downloadable CSV
// form, machine-readable JSON, and rendered tables for terminals.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/dqcheck/pkg/checks"
)

// Summary aggregates a report for display and persistence.
type Summary struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	BySeverity map[string]int `json:"by_severity"`
}

// Summarize builds the summary for a report.
func Summarize(r checks.Report) Summary {
	return Summary{
		Total:      len(r),
		ByCategory: r.CountByCategory(),
		BySeverity: r.CountBySeverity(),
	}
}

// Document is the JSON form of a full report.
type Document struct {
	Source     string            `json:"source,omitempty"`
	Summary    Summary           `json:"summary"`
	Violations []checks.Violation `json:"violations"`
}

// NewDocument builds the JSON document for a report.
func NewDocument(source string, r checks.Report) Document {
	violations := r
	if violations == nil {
		violations = checks.Report{}
	}
	return Document{
		Source:     source,
		Summary:    Summarize(r),
		Violations: violations,
	}
}

// WriteJSON writes the report document as indented JSON.
func WriteJSON(w io.Writer, source string, r checks.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(source, r))
}

// csvHeader is the column contract of the downloadable report file.
var csvHeader = []string{"category", "row", "column", "value"}

// WriteCSV writes the report as a CSV file, one row per violation.
func WriteCSV(w io.Writer, r checks.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, v := range r {
		record := []string{
			v.Category.String(),
			strconv.Itoa(v.Row),
			v.Column,
			v.Value.Text(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderTable renders the report as a bordered terminal table.
func RenderTable(w io.Writer, r checks.Report) {
	if r.Empty() {
		_, _ = fmt.Fprintln(w, "no violations")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"category", "row", "column", "value", "severity", "message"})
	for _, v := range r {
		t.AppendRow(table.Row{v.Category.String(), v.Row, v.Column, v.Value.Text(), v.Severity, v.Message})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d violations)\n", len(r))
}

// RenderMarkdown renders the report as a markdown table.
func RenderMarkdown(w io.Writer, r checks.Report) {
	if r.Empty() {
		_, _ = fmt.Fprintln(w, "no violations")
		return
	}

	_, _ = fmt.Fprintln(w, "| category | row | column | value | severity | message |")
	_, _ = fmt.Fprintln(w, "| --- | --- | --- | --- | --- | --- |")
	for _, v := range r {
		_, _ = fmt.Fprintf(w, "| %s | %d | %s | %s | %s | %s |\n",
			v.Category.String(), v.Row, v.Column, v.Value.Text(), v.Severity, v.Message)
	}
	_, _ = fmt.Fprintf(w, "\n(%d violations)\n", len(r))
}
