package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
)

// ReadTable loads a CSV file with a header row into a Table.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: missing header row", path)
	}

	t := NewTable(records[0])
	for _, row := range records[1:] {
		t.AppendRow(row)
	}
	return t, nil
}

// ReadTemplateColumns loads only the header row of a template file.
func ReadTemplateColumns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read template header %s: %w", path, err)
	}
	return header, nil
}

// WriteTable saves a table as CSV, header first.
func WriteTable(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("write header %s: %w", path, err)
	}
	for _, row := range t.Rows {
		padded := row
		if len(padded) < len(t.Columns) {
			padded = make([]string, len(t.Columns))
			copy(padded, row)
		}
		if err := w.Write(padded[:len(t.Columns)]); err != nil {
			return fmt.Errorf("write row %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
