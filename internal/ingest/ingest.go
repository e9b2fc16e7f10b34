// Package ingest loads tabular files into in-memory tables. Two
// engines exist: a plain CSV reader and a DuckDB-backed loader that
// uses read_csv_auto for schema sniffing.
package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/leapstack-labs/dqcheck/pkg/table"
)

// Engine names accepted in configuration.
const (
	EngineCSV    = "csv"
	EngineDuckDB = "duckdb"
)

// Loader loads a tabular file into a Table.
type Loader interface {
	Load(ctx context.Context, path string) (*table.Table, error)
}

// ForEngine returns the loader for the configured engine name.
func ForEngine(engine string) (Loader, error) {
	switch engine {
	case "", EngineCSV:
		return CSVLoader{}, nil
	case EngineDuckDB:
		return DuckDBLoader{}, nil
	default:
		return nil, fmt.Errorf("unknown ingest engine: %s", engine)
	}
}

// CSVLoader reads CSV files directly.
type CSVLoader struct{}

// Load opens and parses a CSV file.
func (CSVLoader) Load(_ context.Context, path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", table.ErrMalformed, err)
	}
	defer func() { _ = f.Close() }()

	t, err := table.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}
