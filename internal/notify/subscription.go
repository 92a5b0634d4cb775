package notify

import (
	"net/url"
	"sync"
)

// Subscription represents a single observer registered on a content URI
type Subscription struct {
	ID          string
	Path        string
	Descendants bool
	URI         *url.URL

	changes  chan *url.URL
	resolver *Resolver
	once     sync.Once
}

// Changes returns the channel receiving the URIs of changed content.
// Multiple changes arriving before the observer reads are coalesced into one.
// The channel gets closed once the subscription is cancelled or the resolver is closed.
func (sub *Subscription) Changes() <-chan *url.URL {
	return sub.changes
}

// Cancel removes the subscription from its resolver
func (sub *Subscription) Cancel() {
	sub.once.Do(func() {
		sub.resolver.unsubscribe(sub)
	})
}
