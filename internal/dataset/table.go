package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// #region table
// Table is an in-memory tabular dataset: an ordered set of named columns
// and string-valued rows. Cell values stay strings until label encoding;
// the trainer side owns any further typing.
type Table struct {
	cols []string
	rows [][]string
}

// NewTable creates an empty table with the given column order.
func NewTable(cols []string) *Table {
	c := make([]string, len(cols))
	copy(c, cols)
	return &Table{cols: c}
}

// #endregion table

// #region csv
// FromCSV reads a header row plus data rows. Every data row must match the
// header width (encoding/csv enforces this).
func FromCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read csv: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	t := NewTable(header)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(t.rows)+2, err)
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// #endregion csv

// #region accessors
// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// HasColumn reports whether the table contains a column with this name.
func (t *Table) HasColumn(name string) bool {
	return t.columnIndex(name) >= 0
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// Column returns all values of the named column in row order.
func (t *Table) Column(name string) ([]string, error) {
	idx := t.columnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not in table", name)
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out, nil
}

func (t *Table) columnIndex(name string) int {
	for i, c := range t.cols {
		if c == name {
			return i
		}
	}
	return -1
}

// #endregion accessors

// #region mutation
// AppendRow adds a row. The row length must match the column count.
func (t *Table) AppendRow(row []string) error {
	if len(row) != len(t.cols) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.cols))
	}
	r := make([]string, len(row))
	copy(r, row)
	t.rows = append(t.rows, r)
	return nil
}

// AddColumn appends a new column with the given values, one per row.
func (t *Table) AddColumn(name string, values []string) error {
	if t.columnIndex(name) >= 0 {
		return fmt.Errorf("column %q already in table", name)
	}
	if len(values) != len(t.rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.rows))
	}
	t.cols = append(t.cols, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], values[i])
	}
	return nil
}

// SetColumn replaces all values of an existing column.
func (t *Table) SetColumn(name string, values []string) error {
	idx := t.columnIndex(name)
	if idx < 0 {
		return fmt.Errorf("column %q not in table", name)
	}
	if len(values) != len(t.rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.rows))
	}
	for i := range t.rows {
		t.rows[i][idx] = values[i]
	}
	return nil
}

// DropColumns removes the named columns. Unknown names are an error.
func (t *Table) DropColumns(names ...string) error {
	drop := make(map[int]bool, len(names))
	for _, name := range names {
		idx := t.columnIndex(name)
		if idx < 0 {
			return fmt.Errorf("column %q not in table", name)
		}
		drop[idx] = true
	}
	var cols []string
	for i, c := range t.cols {
		if !drop[i] {
			cols = append(cols, c)
		}
	}
	for ri, row := range t.rows {
		var next []string
		for i, cell := range row {
			if !drop[i] {
				next = append(next, cell)
			}
		}
		t.rows[ri] = next
	}
	t.cols = cols
	return nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := NewTable(t.cols)
	out.rows = make([][]string, len(t.rows))
	for i, row := range t.rows {
		r := make([]string, len(row))
		copy(r, row)
		out.rows[i] = r
	}
	return out
}

// subset builds a new table from the given row indices, preserving order.
func (t *Table) subset(indices []int) *Table {
	out := NewTable(t.cols)
	out.rows = make([][]string, 0, len(indices))
	for _, idx := range indices {
		r := make([]string, len(t.rows[idx]))
		copy(r, t.rows[idx])
		out.rows = append(out.rows, r)
	}
	return out
}

// #endregion mutation

// #region jsonl
// ToJSONL writes one JSON object per row, keyed by column name.
func (t *Table) ToJSONL(w io.Writer) error {
	enc := json.NewEncoder(w)
	for i, row := range t.rows {
		obj := make(map[string]string, len(t.cols))
		for ci, c := range t.cols {
			obj[c] = row[ci]
		}
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
	}
	return nil
}

// #endregion jsonl
