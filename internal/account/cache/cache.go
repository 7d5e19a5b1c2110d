// Package cache abstracts the short-lived key/value store used for
// verification tickets. A memory backend serves single-node deployments and
// tests; a Redis backend serves multi-node deployments.
package cache

import (
	"context"
	"time"
)

// Cache stores string values with a per-key TTL.
type Cache interface {
	// Set stores value under key for ttl. A ttl of 0 means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value for key. The second return is false on a miss
	// or after the key's TTL has elapsed.
	Get(ctx context.Context, key string) (string, bool, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
