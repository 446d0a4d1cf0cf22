// Package cache is the injected read-through cache used by the catalog
// services.  Entries are JSON-encoded so both backends hand callers a
// fresh copy and a Redis-backed cache can be shared between processes.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache stores JSON-serializable values under string keys with a TTL.
type Cache interface {
	// Get decodes the entry into dst.  It reports false on a miss.
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Set stores v for ttl.  A non-positive ttl stores without expiry.
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	// Delete evicts the given keys.  Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// Clear evicts every key starting with prefix.  An empty prefix
	// clears the whole cache namespace.
	Clear(ctx context.Context, prefix string) error
}

// Key joins key segments with ':'.
func Key(parts ...string) string { return strings.Join(parts, ":") }

// DayKey returns the UTC calendar day of t, used to scope same-day
// entries.
func DayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }
