// Package dataset provides the row-oriented tabular interface between
// the adjudication core and its external collaborators: CSV files in,
// a schema-aligned result table out. The core never touches files
// directly; it works on decoded records and hands tables back.
package dataset

// Table is an ordered-column, string-celled table. Cell addressing is
// by column name; missing cells read as empty strings.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable creates an empty table with the given column order.
func NewTable(columns []string) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, ok := t.index[c]; !ok {
			t.index[c] = i
		}
	}
}

// ColumnIndex returns the position of a column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if t.index == nil {
		t.reindex()
	}
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(name string) bool { return t.ColumnIndex(name) >= 0 }

// AddColumn appends a new column filled with the default value. Adding
// an existing column is a no-op.
func (t *Table) AddColumn(name, defaultValue string) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
	t.index[name] = len(t.Columns) - 1
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], defaultValue)
	}
}

// AppendRow adds a row, padding or truncating to the column count.
func (t *Table) AppendRow(cells []string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Get returns the cell at (row, column name), "" when out of range.
func (t *Table) Get(row int, column string) string {
	i := t.ColumnIndex(column)
	if i < 0 || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][i]
}

// Set writes the cell at (row, column name); unknown columns are
// ignored.
func (t *Table) Set(row int, column, value string) {
	i := t.ColumnIndex(column)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return
	}
	t.Rows[row][i] = value
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// AlignToTemplate returns a copy of the table carrying at least every
// template column, in template order, with extra columns appended after
// in their original order. Missing template columns are created from
// the column mapping when the mapped source exists, else filled with
// the default value. Downstream schema consumers rely on this exact
// ordering contract.
func (t *Table) AlignToTemplate(templateColumns []string, mapping map[string]string, defaultValue string) *Table {
	work := NewTable(t.Columns)
	work.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		work.Rows[i] = append([]string(nil), row...)
	}

	for _, col := range templateColumns {
		if work.HasColumn(col) {
			continue
		}
		if src, ok := mapping[col]; ok && work.HasColumn(src) {
			work.AddColumn(col, defaultValue)
			srcIdx := work.ColumnIndex(src)
			dstIdx := work.ColumnIndex(col)
			for i := range work.Rows {
				work.Rows[i][dstIdx] = work.Rows[i][srcIdx]
			}
			continue
		}
		work.AddColumn(col, defaultValue)
	}

	ordered := make([]string, 0, len(work.Columns))
	seen := make(map[string]bool, len(work.Columns))
	for _, col := range templateColumns {
		if work.HasColumn(col) && !seen[col] {
			ordered = append(ordered, col)
			seen[col] = true
		}
	}
	for _, col := range work.Columns {
		if !seen[col] {
			ordered = append(ordered, col)
			seen[col] = true
		}
	}

	out := NewTable(ordered)
	out.Rows = make([][]string, len(work.Rows))
	for i := range work.Rows {
		row := make([]string, len(ordered))
		for j, col := range ordered {
			row[j] = work.Get(i, col)
		}
		out.Rows[i] = row
	}
	return out
}
