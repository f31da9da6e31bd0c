package core

import (
	"context"
	"time"
)

// Cache stores JSON-encodable values for a limited time.
type Cache interface {
	// Get decodes the value stored at key into dst. It reports false on a miss.
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error
	// DeletePrefix drops every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// DashboardCachePrefix prefixes every cached dashboard and report entry.
const DashboardCachePrefix = "dashboard:"
