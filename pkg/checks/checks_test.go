package checks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dqcheck/pkg/rules"
	"github.com/leapstack-labs/dqcheck/pkg/table"
)

func mustTable(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	return tbl
}

func mustRules(t *testing.T, yaml string) *rules.RuleSet {
	t.Helper()
	rs, err := rules.Parse([]byte(yaml))
	require.NoError(t, err)
	return rs
}

func TestNullsCleanTable(t *testing.T) {
	tbl := mustTable(t, "age,name\n30,alice\n41,bob\n")
	rs := mustRules(t, "columns:\n  age:\n    required: true\n  name:\n    required: true\n")

	assert.Empty(t, Nulls(tbl, rs))
}

func TestNullsFindsMissingValues(t *testing.T) {
	tbl := mustTable(t, "age,name\n30,\n,bob\n")
	rs := mustRules(t, "columns:\n  age:\n    required: true\n  name:\n    required: true\n")

	report := Nulls(tbl, rs)
	require.Len(t, report, 2)

	for _, v := range report {
		assert.Equal(t, CategoryNull, v.Category)
		assert.True(t, v.Value.IsNull())
	}
}

func TestNullsIgnoresUnrequiredColumns(t *testing.T) {
	tbl := mustTable(t, "age,nickname\n30,\n")
	rs := mustRules(t, "columns:\n  age:\n    required: true\n  nickname:\n    required: false\n")

	assert.Empty(t, Nulls(tbl, rs))
}

func TestRangesInclusiveBounds(t *testing.T) {
	tbl := mustTable(t, "age\n17\n18\n60\n61\n")
	rs := mustRules(t, "columns:\n  age:\n    min: 18\n    max: 60\n")

	report := Ranges(tbl, rs)
	require.Len(t, report, 2)

	assert.Equal(t, CategoryRange, report[0].Category)
	assert.Equal(t, 0, report[0].Row)
	assert.Equal(t, "17", report[0].Value.Text())

	assert.Equal(t, 3, report[1].Row)
	assert.Equal(t, "61", report[1].Value.Text())
}

func TestRangesSkipsNulls(t *testing.T) {
	tbl := mustTable(t, "age\n\n30\n")
	rs := mustRules(t, "columns:\n  age:\n    min: 18\n")

	assert.Empty(t, Ranges(tbl, rs))
}

func TestRangesReportsNonNumericAsTypeViolation(t *testing.T) {
	tbl := mustTable(t, "age\nthirty\n")
	rs := mustRules(t, "columns:\n  age:\n    min: 18\n    max: 60\n")

	report := Ranges(tbl, rs)
	require.Len(t, report, 1)
	assert.Equal(t, CategoryType, report[0].Category)
	assert.Equal(t, "thirty", report[0].Value.Text())
}

func TestRangesMinOnly(t *testing.T) {
	tbl := mustTable(t, "score\n-1\n0\n100\n")
	rs := mustRules(t, "columns:\n  score:\n    min: 0\n")

	report := Ranges(tbl, rs)
	require.Len(t, report, 1)
	assert.Equal(t, 0, report[0].Row)
}

func TestDuplicatesSecondOccurrenceOnly(t *testing.T) {
	tbl := mustTable(t, "a,b\n1,2\n1,2\n")
	rs := mustRules(t, "")

	report := Duplicates(tbl, rs)
	require.Len(t, report, 1)
	assert.Equal(t, CategoryDuplicate, report[0].Category)
	assert.Equal(t, 1, report[0].Row)
	assert.Contains(t, report[0].Message, "row 0")
}

func TestDuplicatesEveryRepeatBeyondFirst(t *testing.T) {
	tbl := mustTable(t, "a\nx\nx\nx\n")
	rs := mustRules(t, "")

	report := Duplicates(tbl, rs)
	require.Len(t, report, 2)
	assert.Equal(t, 1, report[0].Row)
	assert.Equal(t, 2, report[1].Row)
}

func TestDuplicatesDistinctRowsClean(t *testing.T) {
	tbl := mustTable(t, "a,b\n1,2\n1,3\n2,2\n")
	rs := mustRules(t, "")

	assert.Empty(t, Duplicates(tbl, rs))
}

func TestDuplicatesKindsDoNotCollide(t *testing.T) {
	// The number 1 and the string "1" are different cells.
	tbl, err := table.New([]string{"a"})
	require.NoError(t, err)
	require.NoError(t, tbl.AppendRow([]table.Value{table.Number(1)}))
	require.NoError(t, tbl.AppendRow([]table.Value{table.String("1")}))

	assert.Empty(t, Duplicates(tbl, mustRules(t, "")))
}

func TestDuplicatesUniqueByKeySubset(t *testing.T) {
	tbl := mustTable(t, "id,name\n1,alice\n1,bob\n2,carol\n")
	rs := mustRules(t, "dataset:\n  unique_by: [id]\n")

	report := Duplicates(tbl, rs)
	require.Len(t, report, 1)
	assert.Equal(t, 1, report[0].Row)
}

func TestDuplicatesNullKeysCompareEqual(t *testing.T) {
	tbl := mustTable(t, "id,name\n,alice\n,bob\n")
	rs := mustRules(t, "dataset:\n  unique_by: [id]\n")

	report := Duplicates(tbl, rs)
	require.Len(t, report, 1)
}

func TestPatterns(t *testing.T) {
	tbl := mustTable(t, "email\na@b.com\nnot-an-email\n\n")
	rs := mustRules(t, "columns:\n  email:\n    pattern: \"^[^@]+@[^@]+$\"\n")

	report := Patterns(tbl, rs)
	require.Len(t, report, 1)
	assert.Equal(t, CategoryPattern, report[0].Category)
	assert.Equal(t, 1, report[0].Row)
}

func TestPatternsAnchoredAtStart(t *testing.T) {
	// An unanchored pattern still constrains the value from its first
	// character: a match further into the string is not enough.
	tbl := mustTable(t, "code\nabc-123\n123-abc\n")
	rs := mustRules(t, "columns:\n  code:\n    pattern: \"[a-z]+\"\n")

	report := Patterns(tbl, rs)
	require.Len(t, report, 1)
	assert.Equal(t, 1, report[0].Row)
	assert.Equal(t, "123-abc", report[0].Value.Text())
}

func TestAllowedValues(t *testing.T) {
	tbl := mustTable(t, "status\nactive\nretired\n\ninactive\n")
	rs := mustRules(t, "columns:\n  status:\n    allowed: [active, inactive]\n")

	report := AllowedValues(tbl, rs)
	require.Len(t, report, 1)
	assert.Equal(t, CategoryDomain, report[0].Category)
	assert.Equal(t, "retired", report[0].Value.Text())
}

func TestEvaluateEndToEnd(t *testing.T) {
	tbl := mustTable(t, "age\n17\n30\n")
	rs := mustRules(t, "columns:\n  age:\n    min: 18\n    max: 60\n    required: true\n")

	report := Evaluate(tbl, rs)
	require.Len(t, report, 1)

	v := report[0]
	assert.Equal(t, CategoryRange, v.Category)
	assert.Equal(t, 0, v.Row)
	assert.Equal(t, "age", v.Column)
	assert.Equal(t, "17", v.Value.Text())
}

func TestEvaluateDeterministicOrder(t *testing.T) {
	tbl := mustTable(t, "age,name\n,\nx,dup\nx,dup\n")
	rs := mustRules(t, "columns:\n  age:\n    required: true\n    min: 18\n  name:\n    required: true\n")

	report := Evaluate(tbl, rs)
	require.NotEmpty(t, report)

	// Row-major, category as tie-break, column as final tie-break.
	for i := 1; i < len(report); i++ {
		prev, cur := report[i-1], report[i]
		if prev.Row != cur.Row {
			assert.Less(t, prev.Row, cur.Row)
			continue
		}
		if prev.Category != cur.Category {
			assert.Less(t, int(prev.Category), int(cur.Category))
			continue
		}
		assert.LessOrEqual(t, prev.Column, cur.Column)
	}

	// Row 0: null violations for both columns, age before name.
	assert.Equal(t, CategoryNull, report[0].Category)
	assert.Equal(t, "age", report[0].Column)
	assert.Equal(t, CategoryNull, report[1].Category)
	assert.Equal(t, "name", report[1].Column)
}

func TestEvaluateIdempotent(t *testing.T) {
	tbl := mustTable(t, "age,name\n17,\n30,bob\n30,bob\n")
	rs := mustRules(t, "columns:\n  age:\n    min: 18\n    max: 60\n  name:\n    required: true\n")

	first := Evaluate(tbl, rs)
	second := Evaluate(tbl, rs)
	assert.Equal(t, first, second)
}

func TestEvaluateDoesNotMutateTable(t *testing.T) {
	tbl := mustTable(t, "age\n17\n")
	before, err := tbl.Value(0, "age")
	require.NoError(t, err)

	_ = Evaluate(tbl, mustRules(t, "columns:\n  age:\n    min: 18\n"))

	after, err := tbl.Value(0, "age")
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
	assert.Equal(t, 1, tbl.NumRows())
}

func TestSeverityPropagation(t *testing.T) {
	tbl := mustTable(t, "status\nretired\n")
	rs := mustRules(t, "columns:\n  status:\n    allowed: [active]\n    severity: warn\n")

	report := Evaluate(tbl, rs)
	require.Len(t, report, 1)
	assert.Equal(t, rules.SeverityWarn, report[0].Severity)
}

func TestRegistry(t *testing.T) {
	defs := All()
	require.GreaterOrEqual(t, len(defs), 5)

	// Sorted by ID.
	for i := 1; i < len(defs); i++ {
		assert.Less(t, defs[i-1].ID, defs[i].ID)
	}

	def, ok := Get("RA01")
	require.True(t, ok)
	assert.Equal(t, CategoryRange, def.Category)

	_, ok = Get("XX99")
	assert.False(t, ok)
}

func TestReportCounts(t *testing.T) {
	tbl := mustTable(t, "age\n17\nseventeen\n")
	rs := mustRules(t, "columns:\n  age:\n    min: 18\n")

	report := Evaluate(tbl, rs)
	counts := report.CountByCategory()
	assert.Equal(t, 1, counts["range"])
	assert.Equal(t, 1, counts["type"])

	sev := report.CountBySeverity()
	assert.Equal(t, 2, sev[rules.SeverityError])
}
