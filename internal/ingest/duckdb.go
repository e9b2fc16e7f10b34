package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/leapstack-labs/dqcheck/pkg/table"
)

// DuckDBLoader loads CSV files through an in-memory DuckDB instance
// using read_csv_auto, then scans the result into a Table. Useful when
// DuckDB's schema sniffing handles inputs the plain reader cannot
// (odd encodings, exotic quoting).
type DuckDBLoader struct{}

// Load reads the file via read_csv_auto and converts the result set.
func (DuckDBLoader) Load(ctx context.Context, path string) (*table.Table, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx,
		fmt.Sprintf("SELECT * FROM read_csv_auto('%s', header=true)", absPath))
	if err != nil {
		return nil, fmt.Errorf("%w: read_csv_auto: %v", table.ErrMalformed, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", table.ErrMalformed, err)
	}

	t, err := table.New(cols)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", table.ErrMalformed, err)
	}

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make([]table.Value, len(cols))
		for i, raw := range values {
			row[i] = convertCell(raw)
		}
		if err := t.AppendRow(row); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", table.ErrMalformed, err)
	}

	return t, nil
}

// convertCell maps a database/sql scan result onto the tagged-union cell.
func convertCell(raw any) table.Value {
	switch v := raw.(type) {
	case nil:
		return table.Null()
	case float64:
		return table.Number(v)
	case float32:
		return table.Number(float64(v))
	case int64:
		return table.Number(float64(v))
	case int32:
		return table.Number(float64(v))
	case int16:
		return table.Number(float64(v))
	case int8:
		return table.Number(float64(v))
	case uint64:
		return table.Number(float64(v))
	case uint32:
		return table.Number(float64(v))
	case bool:
		if v {
			return table.String("true")
		}
		return table.String("false")
	case []byte:
		return table.Parse(string(v))
	case string:
		return table.Parse(v)
	default:
		return table.String(fmt.Sprintf("%v", v))
	}
}
