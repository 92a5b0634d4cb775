package hashmap

import (
	"time"

	"github.com/skybi/sunshine/internal/task"
)

type expiringEntry[T any] struct {
	raw      T
	inserted time.Time
}

// ExpiringMap implements the Map interface and wraps the standard NormalMap in order to implement value expiration.
// Expired values are invisible right away but only removed from memory by the cleanup task.
type ExpiringMap[K comparable, V any] struct {
	normal      *NormalMap[K, *expiringEntry[V]]
	lifetime    time.Duration
	cleanupTask *task.RepeatingTask

	// now is replaced in tests
	now func() time.Time
}

var _ Map[int, any] = (*ExpiringMap[int, any])(nil)

// NewExpiring creates a new expiring map whose values exist for a specific lifetime.
// A lifetime <= 0 disables expiration.
func NewExpiring[K comparable, V any](lifetime time.Duration) *ExpiringMap[K, V] {
	return &ExpiringMap[K, V]{
		normal:   NewNormal[K, *expiringEntry[V]](),
		lifetime: lifetime,
		now:      time.Now,
	}
}

// ScheduleCleanupTask schedules the task that removes expired values in a specific interval.
// A call to StopCleanupTask as soon as the map is no longer needed is highly recommended because it would not be
// garbage collected otherwise.
func (obj *ExpiringMap[K, V]) ScheduleCleanupTask(tick time.Duration) {
	if obj.cleanupTask != nil || obj.lifetime <= 0 {
		return
	}
	obj.cleanupTask = task.NewRepeating(func() {
		obj.RemoveExpired()
	}, tick)
	obj.cleanupTask.Start()
}

// StopCleanupTask stops the cleanup task.
// If no cleanup task is scheduled, this is a no-op.
func (obj *ExpiringMap[K, V]) StopCleanupTask() {
	if obj.cleanupTask == nil {
		return
	}
	obj.cleanupTask.Stop(true)
	obj.cleanupTask = nil
}

// RemoveExpired removes all expired values and returns their amount
func (obj *ExpiringMap[K, V]) RemoveExpired() int {
	return obj.normal.UnsetFunc(func(_ K, val *expiringEntry[V]) bool {
		return obj.expired(val)
	})
}

func (obj *ExpiringMap[K, V]) expired(entry *expiringEntry[V]) bool {
	return obj.lifetime > 0 && obj.now().Sub(entry.inserted) > obj.lifetime
}

// Size returns the amount of stored key-value pairs, including expired ones not removed yet
func (obj *ExpiringMap[K, V]) Size() int {
	return obj.normal.Size()
}

// Has returns whether a non-expired value is assigned to the given key
func (obj *ExpiringMap[K, V]) Has(key K) bool {
	_, ok := obj.Lookup(key)
	return ok
}

// Lookup returns the value assigned to the given key and a boolean indicating if the value was set manually (and
// did not expire yet) or is the type's zero value
func (obj *ExpiringMap[K, V]) Lookup(key K) (V, bool) {
	val, ok := obj.normal.Lookup(key)
	if !ok || obj.expired(val) {
		var zero V
		return zero, false
	}
	return val.raw, true
}

// Get returns the value assigned to the given key.
// Will be the type's zero value if it was not set using Set before or expired.
func (obj *ExpiringMap[K, V]) Get(key K) V {
	val, _ := obj.Lookup(key)
	return val
}

// Set sets a key-value pair, restarting its lifetime
func (obj *ExpiringMap[K, V]) Set(key K, value V) {
	obj.normal.Set(key, &expiringEntry[V]{
		raw:      value,
		inserted: obj.now(),
	})
}

// Unset deletes the value assigned to given key
func (obj *ExpiringMap[K, V]) Unset(key K) {
	obj.normal.Unset(key)
}

// UnsetFunc deletes every key-value pair the predicate returns true for and returns the amount of deleted pairs.
// Expired pairs are passed to the predicate as well.
func (obj *ExpiringMap[K, V]) UnsetFunc(predicate func(key K, value V) bool) int {
	return obj.normal.UnsetFunc(func(key K, val *expiringEntry[V]) bool {
		return predicate(key, val.raw)
	})
}

// Clear clears the whole map (essentially re-creating the underlying map)
func (obj *ExpiringMap[K, V]) Clear() {
	obj.normal.Clear()
}
