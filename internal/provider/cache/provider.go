// Package cache implements a content provider decorator caching query results in memory.
// Cached results are dropped as soon as the content they were queried from changes.
package cache

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog/log"
	"github.com/skybi/sunshine/internal/contract"
	"github.com/skybi/sunshine/internal/hashmap"
	"github.com/skybi/sunshine/internal/notify"
	"github.com/skybi/sunshine/internal/provider"
)

type entry struct {
	cursor *provider.Cursor
	path   string

	// joined is set for results containing location columns
	joined bool
}

// Provider implements the provider.ContentProvider interface and wraps another one in order to implement
// in-memory caching of query results
type Provider struct {
	underlying provider.ContentProvider
	cache      *hashmap.ExpiringMap[string, *entry]

	// generation is incremented on every invalidation so that queries racing a write do not cache stale results
	generation atomic.Uint64

	subscriptions []*notify.Subscription
	wg            sync.WaitGroup
}

var _ provider.ContentProvider = (*Provider)(nil)

// New creates a new caching provider.
// Results live for lifetime (forever if lifetime <= 0) and expired ones are removed every cleanupInterval.
// Changes announced by resolver invalidate the affected results.
func New(underlying provider.ContentProvider, resolver *notify.Resolver, lifetime, cleanupInterval time.Duration) *Provider {
	cache := hashmap.NewExpiring[string, *entry](lifetime)
	if cleanupInterval > 0 {
		cache.ScheduleCleanupTask(cleanupInterval)
	}

	cached := &Provider{
		underlying: underlying,
		cache:      cache,
	}
	for _, root := range []*url.URL{contract.WeatherURI, contract.LocationURI} {
		sub := resolver.Subscribe(root, true)
		cached.subscriptions = append(cached.subscriptions, sub)
		cached.wg.Add(1)
		go func(sub *notify.Subscription) {
			defer cached.wg.Done()
			for changed := range sub.Changes() {
				cached.invalidate(changed)
			}
		}(sub)
	}
	return cached
}

// Close cancels the subscriptions of the provider and stops the cleanup task
func (cached *Provider) Close() {
	for _, sub := range cached.subscriptions {
		sub.Cancel()
	}
	cached.wg.Wait()
	cached.cache.StopCleanupTask()
	cached.cache.Clear()
}

// Size returns the amount of cached results
func (cached *Provider) Size() int {
	return cached.cache.Size()
}

// Type returns the MIME type of the content addressed by uri
func (cached *Provider) Type(uri *url.URL) (string, error) {
	return cached.underlying.Type(uri)
}

// Query returns the cached result for the exact same query or queries the underlying provider
func (cached *Provider) Query(ctx context.Context, uri *url.URL, projection []string, where squirrel.Sqlizer, sortOrder string) (*provider.Cursor, error) {
	req, err := provider.Match(uri)
	if err != nil {
		return nil, err
	}

	key, ok := cacheKey(uri, projection, where, sortOrder)
	if !ok {
		return cached.underlying.Query(ctx, uri, projection, where, sortOrder)
	}
	if hit, ok := cached.cache.Lookup(key); ok {
		return &provider.Cursor{ResultSet: hit.cursor.ResultSet, NotificationURI: uri}, nil
	}

	generation := cached.generation.Load()
	cursor, err := cached.underlying.Query(ctx, uri, projection, where, sortOrder)
	if err != nil {
		return nil, err
	}
	if cached.generation.Load() == generation {
		cached.cache.Set(key, &entry{
			cursor: cursor,
			path:   contract.Key(uri),
			joined: isJoined(req),
		})
	}
	return cursor, nil
}

// Insert passes through to the underlying provider
func (cached *Provider) Insert(ctx context.Context, uri *url.URL, values contract.Values) (*url.URL, error) {
	inserted, err := cached.underlying.Insert(ctx, uri, values)
	if err == nil {
		cached.invalidate(uri)
	}
	return inserted, err
}

// BulkInsert passes through to the underlying provider
func (cached *Provider) BulkInsert(ctx context.Context, uri *url.URL, values []contract.Values) (int, error) {
	n, err := cached.underlying.BulkInsert(ctx, uri, values)
	// Rows may have been inserted before an error occurred
	if err == nil || n > 0 {
		cached.invalidate(uri)
	}
	return n, err
}

// Update passes through to the underlying provider
func (cached *Provider) Update(ctx context.Context, uri *url.URL, values contract.Values, where squirrel.Sqlizer) (int64, error) {
	n, err := cached.underlying.Update(ctx, uri, values, where)
	if err == nil && n > 0 {
		cached.invalidate(uri)
	}
	return n, err
}

// Delete passes through to the underlying provider
func (cached *Provider) Delete(ctx context.Context, uri *url.URL, where squirrel.Sqlizer) (int64, error) {
	n, err := cached.underlying.Delete(ctx, uri, where)
	if err == nil && n > 0 {
		cached.invalidate(uri)
	}
	return n, err
}

// EnsureLocation passes through to the underlying provider
func (cached *Provider) EnsureLocation(ctx context.Context, location *contract.Location) (int64, error) {
	id, err := cached.underlying.EnsureLocation(ctx, location)
	if err == nil {
		cached.invalidate(contract.LocationURI)
	}
	return id, err
}

// invalidate drops every cached result related to the changed URI.
// Location changes additionally drop every joined forecast as they contain location columns.
func (cached *Provider) invalidate(changed *url.URL) {
	cached.generation.Add(1)

	path := contract.Key(changed)
	locationChanged := related(path, contract.Key(contract.LocationURI))
	n := cached.cache.UnsetFunc(func(_ string, value *entry) bool {
		return related(value.path, path) || (locationChanged && value.joined)
	})
	if n > 0 {
		log.Debug().Str("uri", changed.String()).Int("dropped", n).Msg("invalidated cached query results")
	}
}

// related reports whether one of both paths equals or contains the other one
func related(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

func isJoined(req provider.Request) bool {
	switch req.(type) {
	case provider.WeatherForLocation, provider.WeatherForLocationFromDate, provider.WeatherForLocationOnDate:
		return true
	default:
		return false
	}
}

// cacheKey identifies a query by everything influencing its result.
// The second return value is false if the predicate cannot be rendered.
func cacheKey(uri *url.URL, projection []string, where squirrel.Sqlizer, sortOrder string) (string, bool) {
	var builder strings.Builder
	builder.WriteString(uri.String())
	builder.WriteString("\x00")
	builder.WriteString(strings.Join(projection, ","))
	builder.WriteString("\x00")
	if where != nil {
		sql, args, err := where.ToSql()
		if err != nil {
			return "", false
		}
		builder.WriteString(sql)
		for _, arg := range args {
			fmt.Fprintf(&builder, "\x00%T:%v", arg, arg)
		}
	}
	builder.WriteString("\x00")
	builder.WriteString(sortOrder)
	return builder.String(), true
}
