package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dqcheck/pkg/table"
)

const sampleRules = `
columns:
  age:
    required: true
    min: 18
    max: 60
  name:
    required: true
  status:
    allowed: [active, inactive]
    severity: warn
  email:
    pattern: "^[^@]+@[^@]+$"
dataset:
  unique_by: [id]
`

func TestParse(t *testing.T) {
	rs, err := Parse([]byte(sampleRules))
	require.NoError(t, err)

	age := rs.Columns["age"]
	require.NotNil(t, age)
	assert.True(t, age.Required)
	require.NotNil(t, age.Min)
	assert.Equal(t, 18.0, *age.Min)
	require.NotNil(t, age.Max)
	assert.Equal(t, 60.0, *age.Max)
	assert.True(t, age.HasRange())
	assert.Equal(t, SeverityError, age.EffectiveSeverity())

	name := rs.Columns["name"]
	require.NotNil(t, name)
	assert.True(t, name.Required)
	assert.False(t, name.HasRange())

	status := rs.Columns["status"]
	require.NotNil(t, status)
	assert.Equal(t, []string{"active", "inactive"}, status.Allowed)
	assert.Equal(t, SeverityWarn, status.EffectiveSeverity())

	email := rs.Columns["email"]
	require.NotNil(t, email)
	require.NotNil(t, email.Regexp())
	assert.True(t, email.Regexp().MatchString("a@b"))

	assert.Equal(t, "^[^@]+@[^@]+$", email.Pattern, "Pattern keeps the user's original text")

	assert.Equal(t, []string{"id"}, rs.Dataset.UniqueBy)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"typoed constraint", "columns:\n  age:\n    requird: true\n"},
		{"unknown top-level key", "colums:\n  age:\n    required: true\n"},
		{"unknown dataset key", "dataset:\n  uniqby: [id]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestPatternAnchoredAtStart(t *testing.T) {
	rs, err := Parse([]byte("columns:\n  code:\n    pattern: \"[a-z]+\"\n"))
	require.NoError(t, err)

	re := rs.Columns["code"].Regexp()
	require.NotNil(t, re)
	assert.True(t, re.MatchString("abc-123"))
	assert.False(t, re.MatchString("123-abc"), "a match mid-string must not satisfy the pattern")
}

func TestParseRejectsBadConstraints(t *testing.T) {
	_, err := Parse([]byte("columns:\n  age:\n    min: 60\n    max: 18\n"))
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "min")

	_, err = Parse([]byte("columns:\n  email:\n    pattern: \"[\"\n"))
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "pattern")

	_, err = Parse([]byte("columns:\n  age:\n    severity: fatal\n"))
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "severity")
}

func TestParseEmptyRules(t *testing.T) {
	rs, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, rs.Columns)
	assert.Empty(t, rs.Dataset.UniqueBy)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o600))

	rs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, rs.Columns, 4)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestBind(t *testing.T) {
	tbl := mustTable(t, "id,age,name,status,email\n1,30,alice,active,a@b\n")

	rs, err := Parse([]byte(sampleRules))
	require.NoError(t, err)
	assert.NoError(t, rs.Bind(tbl))
}

func TestBindMissingColumn(t *testing.T) {
	tbl := mustTable(t, "id,age\n1,30\n")

	rs, err := Parse([]byte("columns:\n  salary:\n    min: 0\n"))
	require.NoError(t, err)
	err = rs.Bind(tbl)
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "salary")
}

func TestBindMissingUniqueByColumn(t *testing.T) {
	tbl := mustTable(t, "age\n30\n")

	rs, err := Parse([]byte("dataset:\n  unique_by: [id]\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, rs.Bind(tbl), ErrConfig)
}

func mustTable(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	return tbl
}
