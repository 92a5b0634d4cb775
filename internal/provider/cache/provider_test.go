package cache

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/skybi/sunshine/internal/contract"
	"github.com/skybi/sunshine/internal/notify"
	"github.com/skybi/sunshine/internal/provider"
	"github.com/skybi/sunshine/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider answers every query with an empty result and counts the queries per URI
type countingProvider struct {
	mtx     sync.Mutex
	queries map[string]int
}

func (counting *countingProvider) count(uri *url.URL) int {
	counting.mtx.Lock()
	defer counting.mtx.Unlock()
	return counting.queries[uri.String()]
}

func (counting *countingProvider) Type(uri *url.URL) (string, error) {
	req, err := provider.Match(uri)
	if err != nil {
		return "", err
	}
	return req.ContentType(), nil
}

func (counting *countingProvider) Query(_ context.Context, uri *url.URL, _ []string, _ squirrel.Sqlizer, _ string) (*provider.Cursor, error) {
	counting.mtx.Lock()
	defer counting.mtx.Unlock()
	if counting.queries == nil {
		counting.queries = make(map[string]int)
	}
	counting.queries[uri.String()]++
	return &provider.Cursor{ResultSet: &storage.ResultSet{}, NotificationURI: uri}, nil
}

func (counting *countingProvider) Insert(_ context.Context, _ *url.URL, _ contract.Values) (*url.URL, error) {
	return contract.BuildWeatherURI(1), nil
}

func (counting *countingProvider) BulkInsert(_ context.Context, _ *url.URL, values []contract.Values) (int, error) {
	return len(values), nil
}

func (counting *countingProvider) Update(_ context.Context, _ *url.URL, _ contract.Values, _ squirrel.Sqlizer) (int64, error) {
	return 1, nil
}

func (counting *countingProvider) Delete(_ context.Context, _ *url.URL, _ squirrel.Sqlizer) (int64, error) {
	return 0, nil
}

func (counting *countingProvider) EnsureLocation(_ context.Context, _ *contract.Location) (int64, error) {
	return 1, nil
}

func newTestCache(t *testing.T) (*Provider, *countingProvider, *notify.Resolver) {
	resolver, err := notify.NewResolver()
	require.NoError(t, err)
	underlying := new(countingProvider)
	cached := New(underlying, resolver, time.Minute, 0)
	t.Cleanup(func() {
		cached.Close()
		resolver.Close()
	})
	return cached, underlying, resolver
}

func TestProvider_CachesQueries(t *testing.T) {
	ctx := context.Background()
	cached, underlying, _ := newTestCache(t)
	uri := contract.BuildWeatherLocationWithStartDate("94074", "20140611")

	first, err := cached.Query(ctx, uri, nil, nil, "weather.date ASC")
	require.NoError(t, err)
	second, err := cached.Query(ctx, uri, nil, nil, "weather.date ASC")
	require.NoError(t, err)
	assert.Equal(t, 1, underlying.count(uri))
	assert.Same(t, first.ResultSet, second.ResultSet)
	assert.Same(t, uri, second.NotificationURI)

	// Everything influencing the result is part of the key
	_, err = cached.Query(ctx, uri, nil, nil, "weather.date DESC")
	require.NoError(t, err)
	_, err = cached.Query(ctx, uri, []string{contract.ColumnDate}, nil, "weather.date ASC")
	require.NoError(t, err)
	_, err = cached.Query(ctx, uri, nil, squirrel.Eq{"weather.max": 20}, "weather.date ASC")
	require.NoError(t, err)
	_, err = cached.Query(ctx, uri, nil, squirrel.Eq{"weather.max": 21}, "weather.date ASC")
	require.NoError(t, err)
	assert.Equal(t, 5, underlying.count(uri))
	assert.Equal(t, 5, cached.Size())
}

func TestProvider_QueryUnsupported(t *testing.T) {
	cached, _, _ := newTestCache(t)

	_, err := cached.Query(context.Background(), &url.URL{Scheme: "content", Host: "elsewhere"}, nil, nil, "")
	assert.ErrorIs(t, err, provider.ErrUnsupportedURI)
	assert.Zero(t, cached.Size())
}

func TestProvider_WritesInvalidate(t *testing.T) {
	ctx := context.Background()
	cached, underlying, _ := newTestCache(t)
	forecast := contract.BuildWeatherLocation("94074")

	_, err := cached.Query(ctx, forecast, nil, nil, "")
	require.NoError(t, err)
	_, err = cached.Query(ctx, contract.LocationURI, nil, nil, "")
	require.NoError(t, err)

	_, err = cached.BulkInsert(ctx, contract.WeatherURI, []contract.Values{{}})
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Size())

	_, err = cached.Query(ctx, forecast, nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, underlying.count(forecast))
	assert.Equal(t, 1, underlying.count(contract.LocationURI))
}

func TestProvider_LocationChangeDropsForecasts(t *testing.T) {
	ctx := context.Background()
	cached, _, _ := newTestCache(t)

	for _, uri := range []*url.URL{
		contract.WeatherURI,
		contract.BuildWeatherLocation("94074"),
		contract.BuildWeatherLocationWithDate("94074", "20140611"),
		contract.BuildLocationURI(1),
	} {
		_, err := cached.Query(ctx, uri, nil, nil, "")
		require.NoError(t, err)
	}

	_, err := cached.Update(ctx, contract.LocationURI, contract.Values{contract.ColumnCityName: "x"}, nil)
	require.NoError(t, err)

	// Only the plain weather table survives
	assert.Equal(t, 1, cached.Size())
}

func TestProvider_ExternalChangesInvalidate(t *testing.T) {
	ctx := context.Background()
	cached, _, resolver := newTestCache(t)

	_, err := cached.Query(ctx, contract.BuildWeatherLocation("94074"), nil, nil, "")
	require.NoError(t, err)
	_, err = cached.Query(ctx, contract.LocationURI, nil, nil, "")
	require.NoError(t, err)
	require.Equal(t, 2, cached.Size())

	resolver.NotifyChange(contract.WeatherURI)
	assert.Eventually(t, func() bool {
		return cached.Size() == 1
	}, time.Second, time.Millisecond)
}

func TestRelated(t *testing.T) {
	assert.True(t, related("a/weather", "a/weather"))
	assert.True(t, related("a/weather/94074", "a/weather"))
	assert.True(t, related("a/weather", "a/weather/94074/20140611"))
	assert.False(t, related("a/weather/940741", "a/weather/94074"))
	assert.False(t, related("a/location", "a/weather"))
}
