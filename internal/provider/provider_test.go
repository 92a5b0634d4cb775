package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/skybi/sunshine/internal/contract"
	"github.com/skybi/sunshine/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider() (*Provider, *fakeEngine, *recordingNotifier) {
	engine := newFakeEngine()
	notifier := new(recordingNotifier)
	return New(engine, notifier), engine, notifier
}

func weatherValues(locationID int64, date string) contract.Values {
	weather := &contract.Weather{
		LocationID:  locationID,
		Date:        date,
		ShortDesc:   "Asteroids",
		WeatherID:   321,
		MinTemp:     65,
		MaxTemp:     75,
		Humidity:    1.2,
		Pressure:    1.3,
		WindSpeed:   5.5,
		WindDegrees: 1.1,
	}
	return weather.Values()
}

func northPole() *contract.Location {
	return &contract.Location{
		LocationSetting: "99705",
		CityName:        "North Pole",
		Latitude:        64.7488,
		Longitude:       -147.353,
	}
}

func TestProvider_Type(t *testing.T) {
	provider, _, _ := newTestProvider()

	tests := []struct {
		uri  string
		want string
	}{
		{contract.WeatherURI.String(), contract.WeatherContentType},
		{contract.BuildWeatherLocation("94074").String(), contract.WeatherContentType},
		{contract.BuildWeatherLocationWithStartDate("94074", "20140612").String(), contract.WeatherContentType},
		{contract.BuildWeatherLocationWithDate("94074", "20140612").String(), contract.WeatherContentItemType},
		{contract.LocationURI.String(), contract.LocationContentType},
		{contract.BuildLocationURI(1).String(), contract.LocationContentItemType},
	}
	for _, test := range tests {
		t.Run(test.uri, func(t *testing.T) {
			typ, err := provider.Type(mustParse(t, test.uri))
			require.NoError(t, err)
			assert.Equal(t, test.want, typ)
		})
	}

	_, err := provider.Type(mustParse(t, "content://com.example.android.sunshine.app/unknown"))
	assert.ErrorIs(t, err, ErrUnsupportedURI)
}

func TestProvider_Query(t *testing.T) {
	provider, engine, notifier := newTestProvider()
	engine.result = func(_ string, _ []any) *storage.ResultSet {
		return &storage.ResultSet{
			Columns: []string{contract.ColumnID, contract.ColumnDate},
			Rows:    [][]any{{int64(1), "20140611"}, {int64(2), "20140612"}},
		}
	}

	uri := contract.BuildWeatherLocationWithStartDate("94074", "20140611")
	cursor, err := provider.Query(context.Background(), uri, nil, nil, "weather.date ASC")
	require.NoError(t, err)
	assert.Equal(t, 2, cursor.Len())
	assert.Same(t, uri, cursor.NotificationURI)

	require.Len(t, engine.queries, 1)
	assert.Contains(t, engine.queries[0], "weather.date >= ?")
	assert.Equal(t, []any{"94074", "20140611"}, engine.args[0])
	assert.Empty(t, notifier.notified())
}

func TestProvider_QueryUnsupported(t *testing.T) {
	provider, engine, _ := newTestProvider()

	_, err := provider.Query(context.Background(), mustParse(t, "content://com.example.android.sunshine.app/forecast"), nil, nil, "")
	assert.ErrorIs(t, err, ErrUnsupportedURI)
	assert.Empty(t, engine.queries)
}

func TestProvider_Insert(t *testing.T) {
	ctx := context.Background()
	provider, engine, notifier := newTestProvider()

	locationURI, err := provider.Insert(ctx, contract.LocationURI, northPole().Values())
	require.NoError(t, err)
	assert.Equal(t, contract.BuildLocationURI(1).String(), locationURI.String())

	weatherURI, err := provider.Insert(ctx, contract.WeatherURI, weatherValues(1, "20140612"))
	require.NoError(t, err)
	assert.Equal(t, contract.BuildWeatherURI(2).String(), weatherURI.String())

	assert.Len(t, engine.rows(storage.LocationTable), 1)
	assert.Len(t, engine.rows(storage.WeatherTable), 1)
	assert.Equal(t, []string{contract.LocationURI.String(), contract.WeatherURI.String()}, notifier.notified())
}

func TestProvider_InsertFailed(t *testing.T) {
	ctx := context.Background()
	provider, _, notifier := newTestProvider()

	_, err := provider.Insert(ctx, contract.WeatherURI, contract.Values{fakeRejectColumn: true})
	assert.ErrorIs(t, err, ErrInsertFailed)
	var insertErr *InsertError
	require.ErrorAs(t, err, &insertErr)
	assert.True(t, storage.IsRowError(insertErr))

	_, err = provider.Insert(ctx, contract.LocationURI, contract.Values{fakeFatalColumn: true})
	assert.ErrorIs(t, err, ErrInsertFailed)
	assert.ErrorIs(t, err, errFakeFatal)

	assert.Empty(t, notifier.notified())
}

func TestProvider_InsertNotOnCollection(t *testing.T) {
	ctx := context.Background()
	provider, engine, notifier := newTestProvider()

	for _, uri := range []string{
		contract.BuildLocationURI(1).String(),
		contract.BuildWeatherLocation("94074").String(),
		contract.BuildWeatherLocationWithDate("94074", "20140612").String(),
	} {
		_, err := provider.Insert(ctx, mustParse(t, uri), northPole().Values())
		assert.ErrorIs(t, err, ErrUnsupportedURI, uri)
	}
	assert.Empty(t, engine.rows(storage.LocationTable))
	assert.Empty(t, notifier.notified())
}

func TestProvider_UpdateNotifications(t *testing.T) {
	ctx := context.Background()
	provider, _, notifier := newTestProvider()

	id, err := provider.EnsureLocation(ctx, northPole())
	require.NoError(t, err)
	notifier.uris = nil

	// Matching predicate
	count, err := provider.Update(ctx, contract.LocationURI, contract.Values{contract.ColumnCityName: "Santa's Village"},
		squirrel.Eq{contract.ColumnID: id})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Len(t, notifier.notified(), 1)

	// Predicate matching nothing
	count, err = provider.Update(ctx, contract.LocationURI, contract.Values{contract.ColumnCityName: "Nowhere"},
		squirrel.Eq{contract.ColumnID: id + 1})
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
	assert.Len(t, notifier.notified(), 1)

	// Whole table, nothing in it
	count, err = provider.Update(ctx, contract.WeatherURI, contract.Values{contract.ColumnShortDesc: "Clear"}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
	assert.Equal(t, []string{contract.LocationURI.String(), contract.WeatherURI.String()}, notifier.notified())
}

func TestProvider_DeleteNotifications(t *testing.T) {
	ctx := context.Background()
	provider, engine, notifier := newTestProvider()

	_, err := provider.Insert(ctx, contract.WeatherURI, weatherValues(1, "20140610"))
	require.NoError(t, err)
	_, err = provider.Insert(ctx, contract.WeatherURI, weatherValues(1, "20140611"))
	require.NoError(t, err)
	notifier.uris = nil

	count, err := provider.Delete(ctx, contract.WeatherURI, squirrel.Eq{contract.ColumnDate: "20991231"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
	assert.Empty(t, notifier.notified())

	count, err = provider.Delete(ctx, contract.WeatherURI, squirrel.Eq{contract.ColumnDate: "20140610"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Len(t, notifier.notified(), 1)

	// Deleting everything from both tables notifies once per call, even for an empty table
	count, err = provider.Delete(ctx, contract.WeatherURI, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	count, err = provider.Delete(ctx, contract.LocationURI, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	assert.Equal(t, []string{
		contract.WeatherURI.String(),
		contract.WeatherURI.String(),
		contract.LocationURI.String(),
	}, notifier.notified())
	assert.Empty(t, engine.rows(storage.WeatherTable))
}

func TestProvider_UpdateDeleteNotOnCollection(t *testing.T) {
	ctx := context.Background()
	provider, _, notifier := newTestProvider()

	_, err := provider.Update(ctx, contract.BuildLocationURI(1), contract.Values{contract.ColumnCityName: "x"}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedURI)
	_, err = provider.Delete(ctx, contract.BuildWeatherLocation("94074"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedURI)
	assert.Empty(t, notifier.notified())
}

func TestProvider_BulkInsert(t *testing.T) {
	ctx := context.Background()
	provider, engine, notifier := newTestProvider()

	rows := []contract.Values{
		weatherValues(1, "20140610"),
		weatherValues(1, "20140611"),
		weatherValues(1, "20140612").Merge(contract.Values{fakeRejectColumn: true}),
		weatherValues(1, "20140613"),
	}
	inserted, err := provider.BulkInsert(ctx, contract.WeatherURI, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)
	assert.Len(t, engine.rows(storage.WeatherTable), 3)
	assert.Equal(t, []string{contract.WeatherURI.String()}, notifier.notified())
}

func TestProvider_BulkInsertAtomic(t *testing.T) {
	ctx := context.Background()
	provider, engine, notifier := newTestProvider()

	_, err := provider.Insert(ctx, contract.WeatherURI, weatherValues(1, "20140601"))
	require.NoError(t, err)
	before := engine.rows(storage.WeatherTable)
	notifier.uris = nil

	rows := []contract.Values{
		weatherValues(1, "20140610"),
		weatherValues(1, "20140611").Merge(contract.Values{fakeFatalColumn: true}),
		weatherValues(1, "20140612"),
	}
	inserted, err := provider.BulkInsert(ctx, contract.WeatherURI, rows)
	assert.ErrorIs(t, err, errFakeFatal)
	assert.Zero(t, inserted)
	assert.Equal(t, before, engine.rows(storage.WeatherTable))
	assert.Empty(t, notifier.notified())
}

func TestProvider_BulkInsertEmpty(t *testing.T) {
	provider, _, notifier := newTestProvider()

	inserted, err := provider.BulkInsert(context.Background(), contract.WeatherURI, nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Len(t, notifier.notified(), 1)
}

func TestProvider_BulkInsertLocations(t *testing.T) {
	ctx := context.Background()
	provider, engine, notifier := newTestProvider()

	other := northPole()
	other.LocationSetting = "94043"
	inserted, err := provider.BulkInsert(ctx, contract.LocationURI, []contract.Values{northPole().Values(), other.Values()})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.Len(t, engine.rows(storage.LocationTable), 2)
	assert.Len(t, notifier.notified(), 2)

	inserted, err = provider.BulkInsert(ctx, contract.LocationURI, []contract.Values{northPole().Values(), {fakeRejectColumn: true}})
	assert.ErrorIs(t, err, ErrInsertFailed)
	assert.Equal(t, 1, inserted)
}

func TestProvider_BulkInsertUnsupported(t *testing.T) {
	provider, _, _ := newTestProvider()

	_, err := provider.BulkInsert(context.Background(), contract.BuildLocationURI(3), nil)
	assert.ErrorIs(t, err, ErrUnsupportedURI)
}

func TestProvider_EnsureLocation(t *testing.T) {
	ctx := context.Background()
	provider, engine, notifier := newTestProvider()

	// Unknown location gets inserted
	id, err := provider.EnsureLocation(ctx, northPole())
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)
	assert.Len(t, engine.rows(storage.LocationTable), 1)
	assert.Len(t, notifier.notified(), 1)
	require.Len(t, engine.queries, 1)
	assert.Equal(t, "SELECT _id FROM location WHERE location_setting = ?", engine.queries[0])
	assert.Equal(t, []any{"99705"}, engine.args[0])

	// Known location is looked up
	engine.result = func(_ string, _ []any) *storage.ResultSet {
		return &storage.ResultSet{Columns: []string{contract.ColumnID}, Rows: [][]any{{int64(1)}}}
	}
	id, err = provider.EnsureLocation(ctx, northPole())
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)
	assert.Len(t, engine.rows(storage.LocationTable), 1)
	assert.Len(t, notifier.notified(), 1)
}

func TestProvider_EnsureLocationQueryError(t *testing.T) {
	failing := New(errorEngine{err: errors.New("down")}, new(recordingNotifier))
	_, err := failing.EnsureLocation(context.Background(), northPole())
	assert.EqualError(t, err, "down")
}

// errorEngine fails every query
type errorEngine struct {
	storage.Engine
	err error
}

func (engine errorEngine) Query(context.Context, squirrel.SelectBuilder) (*storage.ResultSet, error) {
	return nil, engine.err
}
