package storage

import (
	"fmt"
	"regexp"

	"github.com/skybi/sunshine/internal/contract"
)

// Table describes a table the engine operates on
type Table struct {
	Name string

	// Key is the identity key column, returned by inserts
	Key string

	// Conflict lists the columns of a unique constraint.
	// If set, an insert colliding with an existing row supersedes it instead of failing.
	Conflict []string
}

var (
	// LocationTable stores one row per location setting.
	// Inserting an already known location setting fails.
	LocationTable = &Table{
		Name: contract.LocationTableName,
		Key:  contract.ColumnID,
	}

	// WeatherTable stores one row per location and date.
	// Inserting a row for a known (date, location) pair supersedes the stored one.
	WeatherTable = &Table{
		Name:     contract.WeatherTableName,
		Key:      contract.ColumnID,
		Conflict: []string{contract.ColumnDate, contract.ColumnLocationKey},
	}
)

var columnName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateColumns makes sure every column name of values is a plain SQL identifier.
// Column names end up verbatim in statements, so anything else is rejected as a *RowError.
func ValidateColumns(values contract.Values) error {
	for column := range values {
		if !columnName.MatchString(column) {
			return &RowError{Wrapping: fmt.Errorf("invalid column name %q", column)}
		}
	}
	return nil
}
