// Package checks implements the rule evaluation core: declarative
// constraints from pkg/rules applied to a pkg/table Table, producing a
// deterministic report of violations. Evaluation is pure and total:
// the input table is never mutated, and every condition found in the
// data is a violation in the report, not an error.
package checks

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/leapstack-labs/dqcheck/pkg/table"
)

// Category classifies a violation. The declaration order is the
// tie-break order within a row in the report.
type Category int

// Violation categories.
const (
	CategoryNull Category = iota
	CategoryRange
	CategoryType
	CategoryDuplicate
	CategoryPattern
	CategoryDomain
)

// String returns the category name used in reports.
func (c Category) String() string {
	switch c {
	case CategoryNull:
		return "null"
	case CategoryRange:
		return "range"
	case CategoryType:
		return "type"
	case CategoryDuplicate:
		return "duplicate"
	case CategoryPattern:
		return "pattern"
	case CategoryDomain:
		return "domain"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the category as its name.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Violation is a single detected rule breach.
type Violation struct {
	Category Category    `json:"category"`
	Row      int         `json:"row"`
	Column   string      `json:"column,omitempty"` // empty for row-level violations
	Value    table.Value `json:"value"`
	Severity string      `json:"severity"`
	Message  string      `json:"message"`
}

// Report is the ordered list of violations for one evaluation.
type Report []Violation

// Empty reports whether no violations were found.
func (r Report) Empty() bool {
	return len(r) == 0
}

// CountByCategory returns the number of violations per category name.
func (r Report) CountByCategory() map[string]int {
	counts := make(map[string]int)
	for _, v := range r {
		counts[v.Category.String()]++
	}
	return counts
}

// CountBySeverity returns the number of violations per severity.
func (r Report) CountBySeverity() map[string]int {
	counts := make(map[string]int)
	for _, v := range r {
		counts[v.Severity]++
	}
	return counts
}

// sorted orders the report: row ascending, then category, then column.
func (r Report) sorted() Report {
	sort.SliceStable(r, func(i, j int) bool {
		if r[i].Row != r[j].Row {
			return r[i].Row < r[j].Row
		}
		if r[i].Category != r[j].Category {
			return r[i].Category < r[j].Category
		}
		return r[i].Column < r[j].Column
	})
	return r
}

// Summary returns a one-line human summary.
func (r Report) Summary() string {
	if r.Empty() {
		return "no violations"
	}
	return fmt.Sprintf("%d violations", len(r))
}
