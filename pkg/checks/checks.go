package checks

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/dqcheck/pkg/rules"
	"github.com/leapstack-labs/dqcheck/pkg/table"
)

func init() {
	Register(CheckDef{
		ID:          "NU01",
		Name:        "nulls.required",
		Category:    CategoryNull,
		Description: "Required columns must not contain null values",
		Run:         Nulls,
	})
	Register(CheckDef{
		ID:          "RA01",
		Name:        "range.bounds",
		Category:    CategoryRange,
		Description: "Numeric values must fall within the configured min/max bounds (inclusive); non-numeric values in a ranged column are reported as type violations",
		Run:         Ranges,
	})
	Register(CheckDef{
		ID:          "DU01",
		Name:        "duplicates.rows",
		Category:    CategoryDuplicate,
		Description: "Rows must be unique across all columns, or across the dataset unique_by key",
		Run:         Duplicates,
	})
	Register(CheckDef{
		ID:          "PA01",
		Name:        "pattern.match",
		Category:    CategoryPattern,
		Description: "String values must match the configured regular expression",
		Run:         Patterns,
	})
	Register(CheckDef{
		ID:          "VD01",
		Name:        "domain.allowed",
		Category:    CategoryDomain,
		Description: "Values must belong to the configured allowed set",
		Run:         AllowedValues,
	})
}

// Evaluate runs every registered check and returns the combined
// report, ordered by row ascending, then category, then column. It is
// a pure function of its inputs: evaluating the same table and rule
// set twice yields identical reports.
func Evaluate(t *table.Table, rs *rules.RuleSet) Report {
	var report Report
	for _, def := range All() {
		report = append(report, def.Run(t, rs)...)
	}
	return report.sorted()
}

// Nulls reports a violation for every null value in a required column.
func Nulls(t *table.Table, rs *rules.RuleSet) Report {
	var report Report
	for _, name := range rs.ColumnNames() {
		rule := rs.Columns[name]
		if !rule.Required {
			continue
		}
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		for row, v := range col.Values {
			if v.IsNull() {
				report = append(report, Violation{
					Category: CategoryNull,
					Row:      row,
					Column:   name,
					Value:    v,
					Severity: rule.EffectiveSeverity(),
					Message:  fmt.Sprintf("null value in required column %s", name),
				})
			}
		}
	}
	return report
}

// Ranges reports out-of-bounds numeric values in ranged columns.
// Bounds are inclusive. Nulls are skipped (the null check owns those);
// non-numeric values are reported as type violations rather than
// silently skipped.
func Ranges(t *table.Table, rs *rules.RuleSet) Report {
	var report Report
	for _, name := range rs.ColumnNames() {
		rule := rs.Columns[name]
		if !rule.HasRange() {
			continue
		}
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		for row, v := range col.Values {
			if v.IsNull() {
				continue
			}
			n, isNum := v.Number()
			if !isNum {
				report = append(report, Violation{
					Category: CategoryType,
					Row:      row,
					Column:   name,
					Value:    v,
					Severity: rule.EffectiveSeverity(),
					Message:  fmt.Sprintf("non-numeric value %q in range-checked column %s", v.Text(), name),
				})
				continue
			}
			if rule.Min != nil && n < *rule.Min {
				report = append(report, Violation{
					Category: CategoryRange,
					Row:      row,
					Column:   name,
					Value:    v,
					Severity: rule.EffectiveSeverity(),
					Message:  fmt.Sprintf("value %s below minimum %v", v.Text(), *rule.Min),
				})
			} else if rule.Max != nil && n > *rule.Max {
				report = append(report, Violation{
					Category: CategoryRange,
					Row:      row,
					Column:   name,
					Value:    v,
					Severity: rule.EffectiveSeverity(),
					Message:  fmt.Sprintf("value %s above maximum %v", v.Text(), *rule.Max),
				})
			}
		}
	}
	return report
}

// Duplicates reports every row that repeats an earlier row, compared
// across all columns or across the dataset unique_by key. The first
// occurrence is not a violation.
func Duplicates(t *table.Table, rs *rules.RuleSet) Report {
	keyCols := rs.Dataset.UniqueBy
	if len(keyCols) == 0 {
		keyCols = t.ColumnNames()
	}

	cols := make([]*table.Column, 0, len(keyCols))
	for _, name := range keyCols {
		col, ok := t.Column(name)
		if !ok {
			return nil // unbound rule set; Bind reports this case
		}
		cols = append(cols, col)
	}

	var report Report
	seen := make(map[string]int, t.NumRows())
	for row := 0; row < t.NumRows(); row++ {
		key := rowKey(cols, row)
		if first, dup := seen[key]; dup {
			report = append(report, Violation{
				Category: CategoryDuplicate,
				Row:      row,
				Value:    table.Null(),
				Severity: rules.SeverityError,
				Message:  fmt.Sprintf("duplicate of row %d", first),
			})
			continue
		}
		seen[key] = row
	}
	return report
}

// rowKey encodes the key cells of one row so that values of different
// kinds can never collide.
func rowKey(cols []*table.Column, row int) string {
	var b strings.Builder
	for _, col := range cols {
		v := col.Values[row]
		text := v.Text()
		fmt.Fprintf(&b, "%d:%d:%s;", v.Kind(), len(text), text)
	}
	return b.String()
}

// Patterns reports non-null values whose string form does not match
// the column's regular expression.
func Patterns(t *table.Table, rs *rules.RuleSet) Report {
	var report Report
	for _, name := range rs.ColumnNames() {
		rule := rs.Columns[name]
		re := rule.Regexp()
		if re == nil {
			continue
		}
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		for row, v := range col.Values {
			if v.IsNull() {
				continue
			}
			if !re.MatchString(v.Text()) {
				report = append(report, Violation{
					Category: CategoryPattern,
					Row:      row,
					Column:   name,
					Value:    v,
					Severity: rule.EffectiveSeverity(),
					Message:  fmt.Sprintf("value %q does not match pattern %s", v.Text(), rule.Pattern),
				})
			}
		}
	}
	return report
}

// AllowedValues reports non-null values outside the column's allowed set.
func AllowedValues(t *table.Table, rs *rules.RuleSet) Report {
	var report Report
	for _, name := range rs.ColumnNames() {
		rule := rs.Columns[name]
		if len(rule.Allowed) == 0 {
			continue
		}
		allowed := make(map[string]struct{}, len(rule.Allowed))
		for _, a := range rule.Allowed {
			allowed[a] = struct{}{}
		}
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		for row, v := range col.Values {
			if v.IsNull() {
				continue
			}
			if _, ok := allowed[v.Text()]; !ok {
				report = append(report, Violation{
					Category: CategoryDomain,
					Row:      row,
					Column:   name,
					Value:    v,
					Severity: rule.EffectiveSeverity(),
					Message:  fmt.Sprintf("value %q not in allowed set", v.Text()),
				})
			}
		}
	}
	return report
}
