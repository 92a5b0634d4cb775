package provider

import (
	"errors"
	"net/url"
)

var (
	// ErrUnsupportedURI is matched by every *UnsupportedURIError
	ErrUnsupportedURI = errors.New("unsupported URI")

	// ErrInsertFailed is matched by every *InsertError
	ErrInsertFailed = errors.New("insert failed")
)

// UnsupportedURIError is returned when a URI does not address anything the provider serves or the requested
// operation is not available for it
type UnsupportedURIError struct {
	URI *url.URL
}

func (err *UnsupportedURIError) Error() string {
	return "unsupported URI: " + err.URI.String()
}

func (err *UnsupportedURIError) Is(target error) bool {
	return target == ErrUnsupportedURI
}

// InsertError is returned when a single row insert did not produce a new row
type InsertError struct {
	URI      *url.URL
	Wrapping error
}

func (err *InsertError) Error() string {
	msg := "failed to insert row into " + err.URI.String()
	if err.Wrapping != nil {
		msg += ": " + err.Wrapping.Error()
	}
	return msg
}

func (err *InsertError) Unwrap() error {
	return err.Wrapping
}

func (err *InsertError) Is(target error) bool {
	return target == ErrInsertFailed
}
