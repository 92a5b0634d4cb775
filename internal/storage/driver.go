package storage

import (
	"context"
)

// Driver represents a storage driver
type Driver interface {
	// Initialize initializes the storage driver (i.e. opens a database connection and brings the schema up to date)
	Initialize(ctx context.Context) error

	// Engine provides the table-scoped engine operating on the opened database
	Engine() Engine

	// Recreate drops both tables and creates them again, discarding all stored rows
	Recreate(ctx context.Context) error

	// Close closes the storage driver (i.e. closes a database connection)
	Close()
}
