// Package storage holds the persistence collaborators: feed output, the
// validation report store, and the product-hash store for change detection.
package storage

import (
	"context"

	"feed-scraper/pkg/feed"
)

// FeedStorage persists merged entities. The pipeline is agnostic to whether
// this writes a local file or publishes elsewhere.
type FeedStorage interface {
	// SaveFeed persists one or many entities. May be called repeatedly
	// during a crawl in direct-to-storage mode.
	SaveFeed(ctx context.Context, items []*feed.Item) error

	// Shutdown flushes and closes the backend.
	Shutdown() error
}
