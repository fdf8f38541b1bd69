package excel

// RawRowData represents a row of raw data as header -> cell pairs.
// A header absent from the map means the cell was missing in the source row.
type RawRowData map[string]string

// Table represents a complete spreadsheet or CSV dataset
type Table struct {
	Headers []string     // Column headers, in file order
	Rows    []RawRowData // Data rows
}

// Has reports whether the table carries the named column.
func (t *Table) Has(column string) bool {
	for _, h := range t.Headers {
		if h == column {
			return true
		}
	}
	return false
}

// Value returns the cell for column in row i and whether it was present.
func (t *Table) Value(i int, column string) (string, bool) {
	v, ok := t.Rows[i][column]
	return v, ok
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
