package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := "id,name,age\n1,alice,30\n2,bob,\n3,NULL,17.5\n"

	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "age"}, tbl.ColumnNames())
	assert.Equal(t, 3, tbl.NumRows())

	v, err := tbl.Value(0, "age")
	require.NoError(t, err)
	assert.True(t, v.Equal(Number(30)))

	v, err = tbl.Value(1, "age")
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = tbl.Value(2, "name")
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = tbl.Value(2, "age")
	require.NoError(t, err)
	assert.True(t, v.Equal(Number(17.5)))
}

func TestReadCSVQuotedStrings(t *testing.T) {
	input := "note\n\"hello, world\"\n"

	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	v, err := tbl.Value(0, "note")
	require.NoError(t, err)
	assert.True(t, v.Equal(String("hello, world")))
}

func TestReadCSVEmptyFile(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestReadCSVRaggedRow(t *testing.T) {
	input := "a,b\n1,2\n3\n"

	_, err := ReadCSV(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestReadCSVDuplicateHeader(t *testing.T) {
	input := "a,a\n1,2\n"

	_, err := ReadCSV(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestReadCSVHeaderOnly(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.NumRows())
	assert.Equal(t, 2, tbl.NumColumns())
}
