package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/skybi/sunshine/internal/contract"
	"github.com/skybi/sunshine/internal/storage"
)

// querier is implemented by both the connection pool and transactions
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Engine implements the storage.Engine interface using PostgreSQL
type Engine struct {
	pool *pgxpool.Pool
}

var _ storage.Engine = (*Engine)(nil)

// Insert inserts a single row and returns its identity key
func (engine *Engine) Insert(ctx context.Context, table *storage.Table, values contract.Values) (int64, error) {
	id, err := insert(ctx, engine.pool, table, values)
	if err != nil {
		return 0, classify(err)
	}
	return id, nil
}

// Update updates all rows matching the predicate and returns the amount of affected rows
func (engine *Engine) Update(ctx context.Context, table *storage.Table, values contract.Values, where squirrel.Sqlizer) (int64, error) {
	if err := storage.ValidateColumns(values); err != nil {
		return 0, err
	}

	query := squirrel.Update(table.Name).SetMap(values)
	if where != nil {
		query = query.Where(where)
	}
	sql, args, err := query.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := engine.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, classify(err)
	}
	return tag.RowsAffected(), nil
}

// Delete deletes all rows matching the predicate and returns the amount of affected rows
func (engine *Engine) Delete(ctx context.Context, table *storage.Table, where squirrel.Sqlizer) (int64, error) {
	query := squirrel.Delete(table.Name)
	if where != nil {
		query = query.Where(where)
	}
	sql, args, err := query.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := engine.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, classify(err)
	}
	return tag.RowsAffected(), nil
}

// Query executes a select statement and materializes its result
func (engine *Engine) Query(ctx context.Context, query squirrel.SelectBuilder) (*storage.ResultSet, error) {
	sql, args, err := query.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := engine.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	set := &storage.ResultSet{
		Columns: make([]string, 0, len(fields)),
		Rows:    [][]any{},
	}
	for _, field := range fields {
		set.Columns = append(set.Columns, string(field.Name))
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		set.Rows = append(set.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return set, nil
}

// Batch runs action inside a single transaction
func (engine *Engine) Batch(ctx context.Context, action func(batch storage.Batch) error) error {
	txn, err := engine.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer txn.Rollback(ctx)

	if err := action(&batch{txn: txn}); err != nil {
		return err
	}

	return txn.Commit(ctx)
}

type batch struct {
	txn pgx.Tx
}

// Insert inserts a single row under its own savepoint so that a failing row does not abort the whole transaction
func (batch *batch) Insert(ctx context.Context, table *storage.Table, values contract.Values) (int64, error) {
	savepoint, err := batch.txn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer savepoint.Rollback(ctx)

	id, err := insert(ctx, savepoint, table, values)
	if err != nil {
		return 0, classify(err)
	}

	if err := savepoint.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

func insert(ctx context.Context, db querier, table *storage.Table, values contract.Values) (int64, error) {
	if err := storage.ValidateColumns(values); err != nil {
		return 0, err
	}

	sql, args, err := insertQuery(table, values).PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return 0, &storage.RowError{Wrapping: err}
	}

	var id int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// insertQuery builds the insert statement for a single row.
// Tables with conflict columns get an upsert so that a colliding row is superseded but keeps its identity key.
func insertQuery(table *storage.Table, values contract.Values) squirrel.InsertBuilder {
	query := squirrel.Insert(table.Name).SetMap(values)

	suffix := "RETURNING " + table.Key
	if len(table.Conflict) > 0 && len(values) > 0 {
		columns := values.Columns()
		updates := make([]string, 0, len(columns))
		for _, column := range columns {
			updates = append(updates, column+" = EXCLUDED."+column)
		}
		suffix = "ON CONFLICT (" + strings.Join(table.Conflict, ", ") + ") DO UPDATE SET " + strings.Join(updates, ", ") + " " + suffix
	}

	return query.Suffix(suffix)
}

// classify marks errors caused by the row values themselves as *storage.RowError
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) || pgerrcode.IsDataException(pgErr.Code) {
			return &storage.RowError{Wrapping: err}
		}
	}
	return err
}
