package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/Masterminds/squirrel"
	"github.com/skybi/sunshine/internal/contract"
	"github.com/skybi/sunshine/internal/storage"
)

// Column names the fake engine reacts to
const (
	fakeRejectColumn = "reject"
	fakeFatalColumn  = "fatal"
)

var errFakeFatal = errors.New("connection lost")

// fakeEngine stores rows in memory.
// Rows carrying fakeRejectColumn fail as *storage.RowError, rows carrying fakeFatalColumn fail fatally.
// Predicates are supported as long as they are nil or squirrel.Eq.
type fakeEngine struct {
	mtx    sync.Mutex
	nextID int64
	tables map[string][]contract.Values

	queries []string
	args    [][]any
	result  func(sql string, args []any) *storage.ResultSet
}

var _ storage.Engine = (*fakeEngine)(nil)

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		tables: make(map[string][]contract.Values),
	}
}

func (engine *fakeEngine) rows(table *storage.Table) []contract.Values {
	engine.mtx.Lock()
	defer engine.mtx.Unlock()
	return engine.tables[table.Name]
}

func (engine *fakeEngine) insertInto(tables map[string][]contract.Values, table *storage.Table, values contract.Values) (int64, error) {
	if _, ok := values[fakeFatalColumn]; ok {
		return 0, errFakeFatal
	}
	if _, ok := values[fakeRejectColumn]; ok {
		return 0, &storage.RowError{Wrapping: errors.New("constraint violated")}
	}
	if len(values) == 0 {
		return 0, &storage.RowError{Wrapping: errors.New("no values")}
	}
	engine.nextID++
	row := values.Merge(contract.Values{table.Key: engine.nextID})
	tables[table.Name] = append(tables[table.Name], row)
	return engine.nextID, nil
}

func (engine *fakeEngine) Insert(_ context.Context, table *storage.Table, values contract.Values) (int64, error) {
	engine.mtx.Lock()
	defer engine.mtx.Unlock()
	return engine.insertInto(engine.tables, table, values)
}

func (engine *fakeEngine) Update(_ context.Context, table *storage.Table, values contract.Values, where squirrel.Sqlizer) (int64, error) {
	engine.mtx.Lock()
	defer engine.mtx.Unlock()
	var count int64
	for i, row := range engine.tables[table.Name] {
		ok, err := matches(row, where)
		if err != nil {
			return 0, err
		}
		if ok {
			engine.tables[table.Name][i] = row.Merge(values)
			count++
		}
	}
	return count, nil
}

func (engine *fakeEngine) Delete(_ context.Context, table *storage.Table, where squirrel.Sqlizer) (int64, error) {
	engine.mtx.Lock()
	defer engine.mtx.Unlock()
	var kept []contract.Values
	var count int64
	for _, row := range engine.tables[table.Name] {
		ok, err := matches(row, where)
		if err != nil {
			return 0, err
		}
		if ok {
			count++
			continue
		}
		kept = append(kept, row)
	}
	engine.tables[table.Name] = kept
	return count, nil
}

func (engine *fakeEngine) Query(_ context.Context, query squirrel.SelectBuilder) (*storage.ResultSet, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	engine.mtx.Lock()
	defer engine.mtx.Unlock()
	engine.queries = append(engine.queries, sql)
	engine.args = append(engine.args, args)
	if engine.result != nil {
		return engine.result(sql, args), nil
	}
	return &storage.ResultSet{}, nil
}

func (engine *fakeEngine) Batch(ctx context.Context, action func(batch storage.Batch) error) error {
	engine.mtx.Lock()
	staged := make(map[string][]contract.Values, len(engine.tables))
	for name, rows := range engine.tables {
		staged[name] = append([]contract.Values(nil), rows...)
	}
	nextID := engine.nextID
	engine.mtx.Unlock()

	if err := action(&fakeBatch{engine: engine, staged: staged}); err != nil {
		engine.mtx.Lock()
		engine.nextID = nextID
		engine.mtx.Unlock()
		return err
	}

	engine.mtx.Lock()
	engine.tables = staged
	engine.mtx.Unlock()
	return nil
}

type fakeBatch struct {
	engine *fakeEngine
	staged map[string][]contract.Values
}

func (batch *fakeBatch) Insert(_ context.Context, table *storage.Table, values contract.Values) (int64, error) {
	batch.engine.mtx.Lock()
	defer batch.engine.mtx.Unlock()
	return batch.engine.insertInto(batch.staged, table, values)
}

func matches(row contract.Values, where squirrel.Sqlizer) (bool, error) {
	if where == nil {
		return true, nil
	}
	eq, ok := where.(squirrel.Eq)
	if !ok {
		return false, fmt.Errorf("unsupported predicate %T", where)
	}
	for column, expected := range eq {
		if fmt.Sprint(row[column]) != fmt.Sprint(expected) {
			return false, nil
		}
	}
	return true, nil
}

// recordingNotifier records every notified URI
type recordingNotifier struct {
	mtx  sync.Mutex
	uris []string
}

func (notifier *recordingNotifier) NotifyChange(uri *url.URL) {
	notifier.mtx.Lock()
	defer notifier.mtx.Unlock()
	notifier.uris = append(notifier.uris, uri.String())
}

func (notifier *recordingNotifier) notified() []string {
	notifier.mtx.Lock()
	defer notifier.mtx.Unlock()
	return append([]string(nil), notifier.uris...)
}
