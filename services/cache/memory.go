package cachesvc

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// memoryCache stores JSON values like redis does, so that cached results never alias live data.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ core.Cache = (*memoryCache)(nil)

func NewMemoryCache() core.Cache {
	return &memoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *memoryCache) Get(_ context.Context, key string, dst interface{}) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || (!e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)) {
		return false, nil
	}
	if err := json.Unmarshal(e.value, dst); err != nil {
		return false, errors.Wrap(err, "decoding cache value")
	}
	return true, nil
}

// Set stores val for ttl; a ttl <= 0 never expires.
func (c *memoryCache) Set(_ context.Context, key string, val interface{}, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return errors.Wrap(err, "encoding cache value")
	}
	e := memoryEntry{value: b}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
	return nil
}

func (c *memoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}
