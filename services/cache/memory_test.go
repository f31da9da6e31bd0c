package cachesvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	c := NewMemoryCache().(*memoryCache)
	c.now = func() time.Time { return now }

	type stats struct {
		Students int `json:"students"`
	}

	var got stats
	ok, err := c.Get(ctx, "dashboard:stats", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "dashboard:stats", stats{Students: 12}, time.Minute))
	require.NoError(t, c.Set(ctx, "dashboard:alerts", []string{"a"}, 0))
	require.NoError(t, c.Set(ctx, "other", 1, 0))

	ok, err = c.Get(ctx, "dashboard:stats", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, stats{Students: 12}, got)

	// expired
	now = now.Add(time.Minute)
	ok, _ = c.Get(ctx, "dashboard:stats", &got)
	assert.False(t, ok)

	require.NoError(t, c.DeletePrefix(ctx, "dashboard:"))
	var alerts []string
	ok, _ = c.Get(ctx, "dashboard:alerts", &alerts)
	assert.False(t, ok)

	var other int
	ok, _ = c.Get(ctx, "other", &other)
	assert.True(t, ok)
	assert.Equal(t, 1, other)
}
