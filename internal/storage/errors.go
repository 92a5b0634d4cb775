package storage

import "errors"

// RowError represents a failure caused by the values of a single row (i.e. a constraint violation) rather than
// by the database or the connection
type RowError struct {
	Wrapping error
}

func (err *RowError) Error() string {
	return "invalid row: " + err.Wrapping.Error()
}

func (err *RowError) Unwrap() error {
	return err.Wrapping
}

// IsRowError reports whether err is or wraps a *RowError
func IsRowError(err error) bool {
	var rowErr *RowError
	return errors.As(err, &rowErr)
}
