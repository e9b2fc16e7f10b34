// Package rules defines the declarative validation configuration for a
// table: per-column constraints plus dataset-level duplicate keys,
// loaded from strict human-editable YAML.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/leapstack-labs/dqcheck/pkg/table"
)

// ErrConfig marks configuration problems: unknown keys, contradictory
// bounds, rules referencing columns the table does not have. These are
// load/bind-time errors, never violations.
var ErrConfig = errors.New("invalid rules configuration")

// Rule severities.
const (
	SeverityError = "error"
	SeverityWarn  = "warn"
)

// ColumnRule is the set of constraints for one column. Constraints are
// independent of each other; any subset may be present.
type ColumnRule struct {
	Required bool     `koanf:"required"`
	Min      *float64 `koanf:"min"`
	Max      *float64 `koanf:"max"`
	Pattern  string   `koanf:"pattern"`
	Allowed  []string `koanf:"allowed"`
	Severity string   `koanf:"severity"`

	re *regexp.Regexp
}

// HasRange reports whether the rule carries a numeric bound.
func (r *ColumnRule) HasRange() bool {
	return r.Min != nil || r.Max != nil
}

// Regexp returns the compiled pattern, or nil if the rule has none.
func (r *ColumnRule) Regexp() *regexp.Regexp {
	return r.re
}

// EffectiveSeverity returns the rule's severity, defaulting to error.
func (r *ColumnRule) EffectiveSeverity() string {
	if r.Severity == "" {
		return SeverityError
	}
	return r.Severity
}

// DatasetRule holds table-level constraints.
type DatasetRule struct {
	// UniqueBy selects the key columns for duplicate detection.
	// Empty means rows must be unique across all columns.
	UniqueBy []string `koanf:"unique_by"`
}

// RuleSet is the full validation configuration for one table.
type RuleSet struct {
	Columns map[string]*ColumnRule `koanf:"columns"`
	Dataset DatasetRule            `koanf:"dataset"`
}

// ColumnNames returns the constrained column names, sorted for
// deterministic iteration.
func (rs *RuleSet) ColumnNames() []string {
	names := make([]string, 0, len(rs.Columns))
	for name := range rs.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// compile validates the rule set and compiles patterns. Called by the
// loaders; a RuleSet built in code can call it directly.
func (rs *RuleSet) compile() error {
	for _, name := range rs.ColumnNames() {
		r := rs.Columns[name]
		if r == nil {
			rs.Columns[name] = &ColumnRule{}
			continue
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return fmt.Errorf("%w: column %s: min (%v) greater than max (%v)", ErrConfig, name, *r.Min, *r.Max)
		}
		if r.Pattern != "" {
			// Anchored at the start: a pattern constrains the value
			// from its first character, not any substring.
			re, err := regexp.Compile(`\A(?:` + r.Pattern + `)`)
			if err != nil {
				return fmt.Errorf("%w: column %s: bad pattern: %v", ErrConfig, name, err)
			}
			r.re = re
		}
		if r.Allowed != nil && len(r.Allowed) == 0 {
			return fmt.Errorf("%w: column %s: allowed list is empty", ErrConfig, name)
		}
		switch r.Severity {
		case "", SeverityError, SeverityWarn:
		default:
			return fmt.Errorf("%w: column %s: unknown severity %q", ErrConfig, name, r.Severity)
		}
	}
	return nil
}

// Bind checks the rule set against a concrete table: every constrained
// column and every unique_by key must exist. Rules referencing missing
// columns are a configuration error, not a silent no-op.
func (rs *RuleSet) Bind(t *table.Table) error {
	for _, name := range rs.ColumnNames() {
		if !t.HasColumn(name) {
			return fmt.Errorf("%w: rule references column %q not present in table", ErrConfig, name)
		}
	}
	for _, name := range rs.Dataset.UniqueBy {
		if !t.HasColumn(name) {
			return fmt.Errorf("%w: unique_by references column %q not present in table", ErrConfig, name)
		}
	}
	return nil
}
