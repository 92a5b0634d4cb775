package storage

import "github.com/skybi/sunshine/internal/contract"

// ResultSet represents the materialized result of a query
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Len returns the amount of rows
func (set *ResultSet) Len() int {
	return len(set.Rows)
}

// ColumnIndex returns the index of the first column with the given name or -1 if there is none
func (set *ResultSet) ColumnIndex(name string) int {
	for i, column := range set.Columns {
		if column == name {
			return i
		}
	}
	return -1
}

// Value returns the value of a column in a specific row.
// The second return value is false if either the row or the column does not exist.
func (set *ResultSet) Value(row int, column string) (any, bool) {
	idx := set.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(set.Rows) {
		return nil, false
	}
	return set.Rows[row][idx], true
}

// Map returns a single row as column values.
// If a column name occurs more than once (i.e. both identity keys of a join), the first occurrence wins.
func (set *ResultSet) Map(row int) contract.Values {
	values := make(contract.Values, len(set.Columns))
	for i, column := range set.Columns {
		if _, ok := values[column]; ok {
			continue
		}
		values[column] = set.Rows[row][i]
	}
	return values
}

// Maps returns all rows as column values
func (set *ResultSet) Maps() []contract.Values {
	maps := make([]contract.Values, 0, len(set.Rows))
	for i := range set.Rows {
		maps = append(maps, set.Map(i))
	}
	return maps
}
