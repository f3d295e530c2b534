package schema

import (
	"encoding/csv"
	"fmt"
	"os"
)

// LoadTableCSV reads a CSV file as a raw cell table. Rows may be ragged;
// missing trailing cells are treated as empty by the consumers.
func LoadTableCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// LoadGridCSV reads a CSV file whose first record is the header row.
func LoadGridCSV(path string) (Grid, error) {
	rows, err := LoadTableCSV(path)
	if err != nil {
		return Grid{}, err
	}
	if len(rows) == 0 {
		return Grid{}, fmt.Errorf("%s: empty file", path)
	}
	return Grid{Header: rows[0], Rows: rows[1:]}, nil
}
