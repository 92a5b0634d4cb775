// Package provider implements the URI addressed content provider on top of a storage engine.
// Every operation classifies its URI first (see Match) and fails with an *UnsupportedURIError if the URI is
// unknown or the operation is not available for it. Writes notify the collection URI of the affected table.
package provider

import (
	"context"
	"errors"
	"net/url"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog/log"
	"github.com/skybi/sunshine/internal/contract"
	"github.com/skybi/sunshine/internal/notify"
	"github.com/skybi/sunshine/internal/storage"
)

// ContentProvider defines the operations served on content URIs
type ContentProvider interface {
	// Type returns the MIME type of the content addressed by uri
	Type(uri *url.URL) (string, error)

	// Query returns the rows addressed by uri.
	// A nil projection selects all columns, a nil predicate adds no filter and an empty sort order keeps the
	// database order.
	Query(ctx context.Context, uri *url.URL, projection []string, where squirrel.Sqlizer, sortOrder string) (*Cursor, error)

	// Insert inserts a single row into the collection addressed by uri and returns the URI of the new row
	Insert(ctx context.Context, uri *url.URL, values contract.Values) (*url.URL, error)

	// BulkInsert inserts multiple rows into the collection addressed by uri and returns the amount of rows
	// inserted successfully
	BulkInsert(ctx context.Context, uri *url.URL, values []contract.Values) (int, error)

	// Update updates the rows of the collection addressed by uri matching the predicate
	Update(ctx context.Context, uri *url.URL, values contract.Values, where squirrel.Sqlizer) (int64, error)

	// Delete deletes the rows of the collection addressed by uri matching the predicate
	Delete(ctx context.Context, uri *url.URL, where squirrel.Sqlizer) (int64, error)

	// EnsureLocation returns the identity key of the location with the setting of location, inserting it if
	// it is not known yet
	EnsureLocation(ctx context.Context, location *contract.Location) (int64, error)
}

// Cursor represents the materialized result of a query
type Cursor struct {
	*storage.ResultSet

	// NotificationURI is the URI the result was queried with.
	// Observers registered on it learn when the result becomes stale.
	NotificationURI *url.URL
}

// Provider implements ContentProvider on top of a storage engine
type Provider struct {
	engine   storage.Engine
	notifier notify.Notifier
}

var _ ContentProvider = (*Provider)(nil)

// New creates a new provider.
// Changes are reported to notifier.
func New(engine storage.Engine, notifier notify.Notifier) *Provider {
	return &Provider{
		engine:   engine,
		notifier: notifier,
	}
}

// Type returns the MIME type of the content addressed by uri
func (provider *Provider) Type(uri *url.URL) (string, error) {
	req, err := Match(uri)
	if err != nil {
		return "", err
	}
	return req.ContentType(), nil
}

// Query returns the rows addressed by uri
func (provider *Provider) Query(ctx context.Context, uri *url.URL, projection []string, where squirrel.Sqlizer, sortOrder string) (*Cursor, error) {
	req, err := Match(uri)
	if err != nil {
		return nil, err
	}

	set, err := provider.engine.Query(ctx, BuildQuery(req, projection, where, sortOrder))
	if err != nil {
		return nil, err
	}
	return &Cursor{
		ResultSet:       set,
		NotificationURI: uri,
	}, nil
}

// Insert inserts a single row into the weather or location collection
func (provider *Provider) Insert(ctx context.Context, uri *url.URL, values contract.Values) (*url.URL, error) {
	collection, err := matchCollection(uri)
	if err != nil {
		return nil, err
	}

	id, err := provider.engine.Insert(ctx, collection.table, values)
	if err != nil {
		return nil, &InsertError{URI: uri, Wrapping: err}
	}
	if id <= 0 {
		return nil, &InsertError{URI: uri}
	}

	provider.notifier.NotifyChange(collection.uri)
	return collection.item(id), nil
}

// BulkInsert inserts multiple weather rows inside a single transaction.
// Rows rejected by the database are skipped and not counted. Any other failure rolls back the whole batch.
// Observers are notified once after the batch has been committed.
// The location collection does not support batches; its rows are inserted one by one.
func (provider *Provider) BulkInsert(ctx context.Context, uri *url.URL, values []contract.Values) (int, error) {
	req, err := Match(uri)
	if err != nil {
		return 0, err
	}
	if _, ok := req.(WeatherDir); !ok {
		return provider.insertEach(ctx, uri, values)
	}

	inserted := 0
	err = provider.engine.Batch(ctx, func(batch storage.Batch) error {
		for i, row := range values {
			if _, err := batch.Insert(ctx, storage.WeatherTable, row); err != nil {
				if storage.IsRowError(err) {
					log.Warn().Err(err).Int("row", i).Msg("skipping weather row rejected by the database")
					continue
				}
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	provider.notifier.NotifyChange(contract.WeatherURI)
	return inserted, nil
}

func (provider *Provider) insertEach(ctx context.Context, uri *url.URL, values []contract.Values) (int, error) {
	inserted := 0
	for _, row := range values {
		if _, err := provider.Insert(ctx, uri, row); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// Update updates the rows of the weather or location collection matching the predicate
func (provider *Provider) Update(ctx context.Context, uri *url.URL, values contract.Values, where squirrel.Sqlizer) (int64, error) {
	collection, err := matchCollection(uri)
	if err != nil {
		return 0, err
	}

	count, err := provider.engine.Update(ctx, collection.table, values, where)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		log.Warn().Str("uri", uri.String()).Msg("update did not affect any rows")
	}

	if count > 0 || where == nil {
		provider.notifier.NotifyChange(collection.uri)
	}
	return count, nil
}

// Delete deletes the rows of the weather or location collection matching the predicate.
// A nil predicate deletes every row and always notifies, even if the collection was empty already.
func (provider *Provider) Delete(ctx context.Context, uri *url.URL, where squirrel.Sqlizer) (int64, error) {
	collection, err := matchCollection(uri)
	if err != nil {
		return 0, err
	}

	count, err := provider.engine.Delete(ctx, collection.table, where)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		log.Warn().Str("uri", uri.String()).Msg("delete did not affect any rows")
	}

	if count > 0 || where == nil {
		provider.notifier.NotifyChange(collection.uri)
	}
	return count, nil
}

// EnsureLocation looks up the location by its setting and inserts it if it is not known yet
func (provider *Provider) EnsureLocation(ctx context.Context, location *contract.Location) (int64, error) {
	id, found, err := provider.lookupLocation(ctx, location.LocationSetting)
	if err != nil || found {
		return id, err
	}

	uri, err := provider.Insert(ctx, contract.LocationURI, location.Values())
	if err != nil {
		// Someone else may have inserted the same setting in the meantime
		if errors.Is(err, ErrInsertFailed) {
			if id, found, lookupErr := provider.lookupLocation(ctx, location.LocationSetting); lookupErr == nil && found {
				return id, nil
			}
		}
		return 0, err
	}
	return contract.IDFromURI(uri)
}

func (provider *Provider) lookupLocation(ctx context.Context, locationSetting string) (int64, bool, error) {
	cursor, err := provider.Query(ctx, contract.LocationURI,
		[]string{contract.ColumnID},
		squirrel.Eq{contract.ColumnLocationSetting: locationSetting},
		"")
	if err != nil {
		return 0, false, err
	}
	if cursor.Len() == 0 {
		return 0, false, nil
	}

	raw, _ := cursor.Value(0, contract.ColumnID)
	id, err := contract.Int64(raw)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// collection describes a table writes can be issued against
type collection struct {
	table *storage.Table
	uri   *url.URL
	item  func(id int64) *url.URL
}

var (
	weatherCollection = &collection{
		table: storage.WeatherTable,
		uri:   contract.WeatherURI,
		item:  contract.BuildWeatherURI,
	}
	locationCollection = &collection{
		table: storage.LocationTable,
		uri:   contract.LocationURI,
		item:  contract.BuildLocationURI,
	}
)

// matchCollection classifies uri and makes sure it addresses the root of a collection
func matchCollection(uri *url.URL) (*collection, error) {
	req, err := Match(uri)
	if err != nil {
		return nil, err
	}
	switch req.(type) {
	case WeatherDir:
		return weatherCollection, nil
	case LocationDir:
		return locationCollection, nil
	default:
		return nil, &UnsupportedURIError{URI: uri}
	}
}
