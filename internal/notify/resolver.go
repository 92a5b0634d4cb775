// Package notify implements change notification keyed by content URI.
// Observers register on a URI and are told to re-query whenever that URI, one of its descendants or (if they
// asked for it) one of its ancestors changes. Notifications are advisory: they carry no data.
package notify

import (
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
	"github.com/rs/zerolog/log"
	"github.com/skybi/sunshine/internal/contract"
)

// Notifier is implemented by everything that can be told about changed content
type Notifier interface {
	// NotifyChange signals that the content addressed by uri (and everything below it) changed
	NotifyChange(uri *url.URL)
}

var dbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		"observers": {
			Name: "observers",
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:         "id",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "ID"},
				},
				"path": {
					Name:         "path",
					Unique:       false,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "Path"},
				},
			},
		},
	},
}

// Resolver keeps track of subscriptions and dispatches change notifications to them
type Resolver struct {
	db *memdb.MemDB

	mtx    sync.Mutex
	closed bool
}

var _ Notifier = (*Resolver)(nil)

// NewResolver creates a new resolver without any subscriptions
func NewResolver() (*Resolver, error) {
	db, err := memdb.NewMemDB(dbSchema)
	if err != nil {
		return nil, err
	}
	return &Resolver{db: db}, nil
}

// Subscribe registers a new observer on uri.
// If descendants is true, changes of URIs below uri are delivered as well.
// Changes of uri itself and of its ancestors are always delivered.
func (resolver *Resolver) Subscribe(uri *url.URL, descendants bool) *Subscription {
	sub := &Subscription{
		ID:          uuid.NewString(),
		Path:        contract.Key(uri),
		Descendants: descendants,
		URI:         uri,
		changes:     make(chan *url.URL, 1),
		resolver:    resolver,
	}

	resolver.mtx.Lock()
	defer resolver.mtx.Unlock()
	if resolver.closed {
		close(sub.changes)
		return sub
	}

	txn := resolver.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert("observers", sub); err != nil {
		// The schema only rejects objects lacking indexed fields, which a subscription always has
		log.Error().Err(err).Str("uri", uri.String()).Msg("could not register an observer")
		close(sub.changes)
		return sub
	}
	txn.Commit()

	return sub
}

// NotifyChange delivers a change of uri to every affected subscription.
// A subscription that still has an undelivered change pending is not signalled twice.
func (resolver *Resolver) NotifyChange(uri *url.URL) {
	resolver.mtx.Lock()
	defer resolver.mtx.Unlock()
	if resolver.closed {
		return
	}

	affected, err := resolver.collect(contract.Key(uri))
	if err != nil {
		log.Error().Err(err).Str("uri", uri.String()).Msg("could not collect the observers of a changed URI")
		return
	}

	for _, sub := range affected {
		select {
		case sub.changes <- uri:
		default:
		}
	}
	log.Debug().Str("uri", uri.String()).Int("observers", len(affected)).Msg("notified change")
}

// Size returns the amount of active subscriptions
func (resolver *Resolver) Size() int {
	txn := resolver.db.Txn(false)
	it, err := txn.Get("observers", "id")
	if err != nil {
		return 0
	}
	n := 0
	for obj := it.Next(); obj != nil; obj = it.Next() {
		n++
	}
	return n
}

// Close terminates all subscriptions.
// Their channels get closed and further notifications are dropped.
func (resolver *Resolver) Close() {
	resolver.mtx.Lock()
	defer resolver.mtx.Unlock()
	if resolver.closed {
		return
	}
	resolver.closed = true

	txn := resolver.db.Txn(true)
	defer txn.Abort()
	it, err := txn.Get("observers", "id")
	if err == nil {
		for obj := it.Next(); obj != nil; obj = it.Next() {
			close(obj.(*Subscription).changes)
		}
	}
	if _, err := txn.DeleteAll("observers", "id"); err != nil {
		log.Error().Err(err).Msg("could not remove the observers")
	}
	txn.Commit()
}

func (resolver *Resolver) unsubscribe(sub *Subscription) {
	resolver.mtx.Lock()
	defer resolver.mtx.Unlock()
	if resolver.closed {
		return
	}

	txn := resolver.db.Txn(true)
	defer txn.Abort()
	if _, err := txn.DeleteAll("observers", "id", sub.ID); err != nil {
		log.Error().Err(err).Str("uri", sub.URI.String()).Msg("could not remove an observer")
		return
	}
	txn.Commit()
	close(sub.changes)
}

// collect returns the subscriptions registered on path, below path and above path (with descendants)
func (resolver *Resolver) collect(path string) ([]*Subscription, error) {
	txn := resolver.db.Txn(false)
	var affected []*Subscription

	// The changed URI itself
	it, err := txn.Get("observers", "path", path)
	if err != nil {
		return nil, err
	}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		affected = append(affected, obj.(*Subscription))
	}

	// Everything below the changed URI
	it, err = txn.Get("observers", "path_prefix", path+"/")
	if err != nil {
		return nil, err
	}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		affected = append(affected, obj.(*Subscription))
	}

	// Ancestors interested in their descendants
	for ancestor := parent(path); ancestor != ""; ancestor = parent(ancestor) {
		it, err := txn.Get("observers", "path", ancestor)
		if err != nil {
			return nil, err
		}
		for obj := it.Next(); obj != nil; obj = it.Next() {
			if sub := obj.(*Subscription); sub.Descendants {
				affected = append(affected, sub)
			}
		}
	}

	return affected, nil
}

func parent(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}
