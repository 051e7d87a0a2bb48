package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetRoundTrip(t *testing.T) {
	c := New()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, c.Set("MSGraph", "users", payload{Name: "alice", Count: 3}))

	var got payload
	require.True(t, c.GetInto("MSGraph", "users", &got))
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestGetMissIsIdempotent(t *testing.T) {
	c := New()

	for i := 0; i < 3; i++ {
		_, ok := c.Get("MSGraph", "absent")
		assert.False(t, ok)
	}

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.SizeBytes())
	assert.Equal(t, uint64(3), c.Counters().Misses)
}

func TestSetRejectsInvalidArguments(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "empty key",
			run:  func() error { return c.Set("MSGraph", "", "value") },
			want: ErrInvalidKey,
		},
		{
			name: "zero ttl",
			run:  func() error { return c.Set("MSGraph", "k", "value", WithTTL(0)) },
			want: ErrInvalidTTL,
		},
		{
			name: "negative ttl",
			run:  func() error { return c.Set("MSGraph", "k", "value", WithTTL(-time.Minute)) },
			want: ErrInvalidTTL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}

	// Rejected writes leave the cache untouched.
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.SizeBytes())
}

func TestExpiredEntryReportsMissAndIsPurged(t *testing.T) {
	c := New()

	require.NoError(t, c.Set("MSGraph", "short", "value", WithTTL(10*time.Millisecond)))

	_, ok := c.Get("MSGraph", "short")
	assert.True(t, ok)

	time.Sleep(25 * time.Millisecond)

	_, ok = c.Get("MSGraph", "short")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.SizeBytes())

	counters := c.Counters()
	assert.Equal(t, uint64(1), counters.Expirations)
	assert.Equal(t, uint64(1), counters.Misses)
}

func TestSetReplacesExistingKey(t *testing.T) {
	c := New()

	require.NoError(t, c.Set("MSGraph", "users", "first"))
	require.NoError(t, c.Set("MSGraph", "users", "second"))

	var got string
	require.True(t, c.GetInto("MSGraph", "users", &got))
	assert.Equal(t, "second", got)
	assert.Equal(t, 1, c.Len())
}

func TestEvictionRemovesLeastRecentlyUsed(t *testing.T) {
	// 38-char strings serialize to 40 bytes of JSON.
	c := New(WithMaxSize(100), WithCompression(false))

	value := strings.Repeat("a", 38)
	require.NoError(t, c.Set("DNS", "first", value))
	require.NoError(t, c.Set("DNS", "second", value))

	// Touch "first" so "second" becomes the LRU entry.
	_, ok := c.Get("DNS", "first")
	require.True(t, ok)

	require.NoError(t, c.Set("DNS", "third", value))

	_, ok = c.Get("DNS", "first")
	assert.True(t, ok, "recently used entry should survive eviction")
	_, ok = c.Get("DNS", "second")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get("DNS", "third")
	assert.True(t, ok)

	assert.Equal(t, uint64(1), c.Counters().Evictions)
	assert.LessOrEqual(t, c.SizeBytes(), int64(100))
}

func TestSetRejectsEntryLargerThanCeiling(t *testing.T) {
	c := New(WithMaxSize(100), WithCompression(false))

	err := c.Set("DNS", "huge", strings.Repeat("a", 200))
	assert.ErrorIs(t, err, ErrEntryTooLarge)
	assert.Equal(t, 0, c.Len())
}

func TestCompressionRoundTrip(t *testing.T) {
	c := New(WithCompression(true))

	original := strings.Repeat("abcdef", 1024)
	require.NoError(t, c.Set("MSGraph", "large", original))

	infos := c.Snapshot()
	require.Len(t, infos, 1)
	assert.True(t, infos[0].Compressed)
	assert.Less(t, infos[0].SizeBytes, int64(len(original)))

	var got string
	require.True(t, c.GetInto("MSGraph", "large", &got))
	assert.Equal(t, original, got)
}

func TestCompressionSkipsSmallEntries(t *testing.T) {
	c := New(WithCompression(true))

	require.NoError(t, c.Set("MSGraph", "small", "tiny"))

	infos := c.Snapshot()
	require.Len(t, infos, 1)
	assert.False(t, infos[0].Compressed)
}

func TestPartitionsAreIsolated(t *testing.T) {
	c := New()

	require.NoError(t, c.Set("MSGraph", "shared", "graph"))
	require.NoError(t, c.Set("AzBatch", "shared", "batch"))

	removed := c.Invalidate("MSGraph")
	assert.Equal(t, 1, removed)

	_, ok := c.Get("MSGraph", "shared")
	assert.False(t, ok)

	var got string
	require.True(t, c.GetInto("AzBatch", "shared", &got))
	assert.Equal(t, "batch", got)
}

func TestInvalidateCounts(t *testing.T) {
	c := New()

	require.NoError(t, c.Set("DNS", "a", 1))
	require.NoError(t, c.Set("DNS", "b", 2))
	require.NoError(t, c.Set("DNS", "c", 3))

	assert.Equal(t, 0, c.Invalidate("missing"))
	assert.Equal(t, 1, c.Invalidate("DNS", "a"))
	assert.Equal(t, 0, c.Invalidate("DNS", "a"))
	assert.Equal(t, 2, c.Invalidate("DNS"))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.SizeBytes())
}

func TestCountersTrackHitsAndMisses(t *testing.T) {
	c := New()

	require.NoError(t, c.Set("MSGraph", "k", "v"))

	c.Get("MSGraph", "k")
	c.Get("MSGraph", "k")
	c.Get("MSGraph", "absent")

	counters := c.Counters()
	assert.Equal(t, uint64(2), counters.Hits)
	assert.Equal(t, uint64(1), counters.Misses)
}
