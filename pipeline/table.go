// Package pipeline drives the row-by-row search loop and the table I/O
// around it.
package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Table is an in-memory tabular file with a header row. Row order is
// preserved from input to output.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable loads a CSV file. The first record is the header; every row
// must have the same number of fields.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse input file %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("input file %q has no header row", path)
	}

	return &Table{
		Header: records[0],
		Rows:   records[1:],
	}, nil
}

// ColumnIndex returns the position of a named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, column := range t.Header {
		if column == name {
			return i, true
		}
	}
	return 0, false
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	header := make([]string, len(t.Header))
	copy(header, t.Header)

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]string, len(row))
		copy(rows[i], row)
	}
	return &Table{Header: header, Rows: rows}
}

// RunStats counts row outcomes for one run. Not-found is derived by
// subtraction so the three outcomes always reconcile with the row total.
type RunStats struct {
	Total   int
	Found   int
	Skipped int
}

// NotFound returns the rows that were searched without success.
func (s RunStats) NotFound() int {
	return s.Total - s.Found - s.Skipped
}
