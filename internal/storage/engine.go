package storage

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/skybi/sunshine/internal/contract"
)

// Engine defines the table-scoped operations the query router is built upon.
// A nil predicate addresses the whole table.
type Engine interface {
	// Insert inserts a single row and returns its identity key
	Insert(ctx context.Context, table *Table, values contract.Values) (int64, error)

	// Update updates all rows matching the predicate and returns the amount of affected rows
	Update(ctx context.Context, table *Table, values contract.Values, where squirrel.Sqlizer) (int64, error)

	// Delete deletes all rows matching the predicate and returns the amount of affected rows
	Delete(ctx context.Context, table *Table, where squirrel.Sqlizer) (int64, error)

	// Query executes a select statement and materializes its result
	Query(ctx context.Context, query squirrel.SelectBuilder) (*ResultSet, error)

	// Batch runs action inside a single transaction.
	// The transaction is committed if action returns nil and rolled back otherwise (this includes panics).
	Batch(ctx context.Context, action func(batch Batch) error) error
}

// Batch represents the write access available inside a transaction opened by Engine.Batch
type Batch interface {
	// Insert inserts a single row as part of the batch.
	// If the row itself is invalid (i.e. violates a constraint), a *RowError is returned and the batch remains
	// usable. Every other error leaves the batch in an undefined state and should abort it.
	Insert(ctx context.Context, table *Table, values contract.Values) (int64, error)
}
