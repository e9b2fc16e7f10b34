package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed marks structural problems in the input file: missing
// header, ragged rows, unparsable CSV. These are ingestion errors, not
// validation violations.
var ErrMalformed = errors.New("malformed input")

// ReadCSV parses CSV data with a header row into a Table. Cell values
// are sniffed: empty cells and null markers become null, numerics
// become numbers, the rest stay strings.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformed, err)
	}

	t, err := New(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}

		row := make([]Value, len(record))
		for i, raw := range record {
			row[i] = Parse(raw)
		}
		if err := t.AppendRow(row); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
	}

	return t, nil
}
