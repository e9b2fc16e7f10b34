package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dqcheck/pkg/checks"
	"github.com/leapstack-labs/dqcheck/pkg/rules"
	"github.com/leapstack-labs/dqcheck/pkg/table"
)

func sampleReport(t *testing.T) checks.Report {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader("age\n17\n30\n"))
	require.NoError(t, err)
	rs, err := rules.Parse([]byte("columns:\n  age:\n    min: 18\n    max: 60\n"))
	require.NoError(t, err)
	return checks.Evaluate(tbl, rs)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "category,row,column,value", lines[0])
	assert.Equal(t, "range,0,age,17", lines[1])
}

func TestWriteCSVEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "category,row,column,value\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, "people.csv", sampleReport(t)))

	var doc struct {
		Source  string `json:"source"`
		Summary struct {
			Total      int            `json:"total"`
			ByCategory map[string]int `json:"by_category"`
		} `json:"summary"`
		Violations []struct {
			Category string  `json:"category"`
			Row      int     `json:"row"`
			Column   string  `json:"column"`
			Value    float64 `json:"value"`
		} `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "people.csv", doc.Source)
	assert.Equal(t, 1, doc.Summary.Total)
	assert.Equal(t, 1, doc.Summary.ByCategory["range"])
	require.Len(t, doc.Violations, 1)
	assert.Equal(t, "range", doc.Violations[0].Category)
	assert.Equal(t, 0, doc.Violations[0].Row)
	assert.Equal(t, "age", doc.Violations[0].Column)
	assert.Equal(t, 17.0, doc.Violations[0].Value)
}

func TestWriteJSONEmptyReportHasEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, "", nil))
	assert.Contains(t, buf.String(), `"violations": []`)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, sampleReport(t))
	out := buf.String()
	assert.Contains(t, out, "range")
	assert.Contains(t, out, "(1 violations)")

	buf.Reset()
	RenderTable(&buf, nil)
	assert.Contains(t, buf.String(), "no violations")
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	RenderMarkdown(&buf, sampleReport(t))
	out := buf.String()
	assert.Contains(t, out, "| category | row | column | value | severity | message |")
	assert.Contains(t, out, "| range | 0 | age | 17 |")
}
