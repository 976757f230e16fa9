// Package cache stores company hierarchy snapshots between loads.
//
// Only snapshots fetched from a [source] are cached. Computed layouts are
// never stored: a layout is a pure function of the snapshot and the request,
// and recomputing it is cheaper than keeping it consistent.
//
// Three backends implement [Cache]:
//
//   - [NullCache] disables caching
//   - [FileCache] keeps entries on local disk for the CLI
//   - [RedisCache] shares entries between API instances
//
// Keys come from a [Keyer]; wrap it with [NewScopedKeyer] to isolate
// tenants that share one backend.
//
// [source]: github.com/matzehuels/crmmap/pkg/source
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the value for key and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
