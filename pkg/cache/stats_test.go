package cache

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCountsExpiredWithoutPurging(t *testing.T) {
	c := New(WithCompression(false))

	for i := 0; i < 7; i++ {
		require.NoError(t, c.Set("MSGraph", fmt.Sprintf("valid-%d", i), "v", WithTTL(time.Hour)))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set("MSGraph", fmt.Sprintf("expired-%d", i), "v", WithTTL(5*time.Millisecond)))
	}
	time.Sleep(20 * time.Millisecond)

	report, err := c.Stats(Filter{})
	require.NoError(t, err)

	assert.Equal(t, 10, report.TotalEntries)
	assert.Equal(t, 7, report.ValidEntries)
	assert.Equal(t, 3, report.ExpiredEntries)
	assert.InDelta(t, 0.7, report.ValidRate, 0.001)

	// 30% expired sits under the advisory threshold.
	assert.Empty(t, report.Recommendations)

	// Stats observes expired entries without removing them.
	assert.Equal(t, 10, c.Len())
}

func TestStatsRecommendsRaisingTTL(t *testing.T) {
	c := New(WithCompression(false))

	require.NoError(t, c.Set("MSGraph", "valid", "v", WithTTL(time.Hour)))
	require.NoError(t, c.Set("MSGraph", "expired-a", "v", WithTTL(5*time.Millisecond)))
	require.NoError(t, c.Set("MSGraph", "expired-b", "v", WithTTL(5*time.Millisecond)))
	time.Sleep(20 * time.Millisecond)

	report, err := c.Stats(Filter{})
	require.NoError(t, err)

	require.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[0], "cache_expiration_minutes")
}

func TestStatsRecommendsCompression(t *testing.T) {
	c := New(WithCompression(false))

	// Incompressible-looking size over the 100 KB advisory average.
	require.NoError(t, c.Set("AzBatch", "big", strings.Repeat("a", 200*1024)))

	report, err := c.Stats(Filter{})
	require.NoError(t, err)

	require.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[0], "compression")
}

func TestStatsHistogramBuckets(t *testing.T) {
	c := New(WithCompression(false))

	const mb = 1024 * 1024
	sizes := []int{mb / 10, 3 * mb / 10, 6 * mb / 10, 3 * mb / 2, 5 * mb / 2}
	for i, size := range sizes {
		require.NoError(t, c.Set("AzBatch", fmt.Sprintf("entry-%d", i), strings.Repeat("a", size)))
	}

	report, err := c.Stats(Filter{})
	require.NoError(t, err)

	require.Len(t, report.Histogram, 5)
	for i, bucket := range report.Histogram {
		assert.Equal(t, 1, bucket.Count, "bucket %d (%s)", i, bucket.Label)
		assert.InDelta(t, 20.0, bucket.Percent, 0.001)
	}
	assert.Equal(t, "0.0-0.2 MB", report.Histogram[0].Label)
	assert.Equal(t, "2.0+ MB", report.Histogram[4].Label)
}

func TestStatsFilters(t *testing.T) {
	c := New(WithCompression(false))

	require.NoError(t, c.Set("MSGraph", "small", strings.Repeat("a", 100)))
	require.NoError(t, c.Set("MSGraph", "large", strings.Repeat("a", 10000)))
	require.NoError(t, c.Set("DNS", "dns", strings.Repeat("a", 500)))

	t.Run("partition", func(t *testing.T) {
		report, err := c.Stats(Filter{Partition: "DNS"})
		require.NoError(t, err)
		assert.Equal(t, 1, report.TotalEntries)
		require.Len(t, report.Entries, 1)
		assert.Equal(t, "dns", report.Entries[0].Key)
	})

	t.Run("min size", func(t *testing.T) {
		report, err := c.Stats(Filter{MinSize: 1000})
		require.NoError(t, err)
		assert.Equal(t, 1, report.TotalEntries)
		require.Len(t, report.Entries, 1)
		assert.Equal(t, "large", report.Entries[0].Key)
	})

	t.Run("max size", func(t *testing.T) {
		report, err := c.Stats(Filter{MaxSize: 200})
		require.NoError(t, err)
		assert.Equal(t, 1, report.TotalEntries)
		require.Len(t, report.Entries, 1)
		assert.Equal(t, "small", report.Entries[0].Key)
	})

	t.Run("compressed flag", func(t *testing.T) {
		compressed := true
		report, err := c.Stats(Filter{Compressed: &compressed})
		require.NoError(t, err)
		assert.Equal(t, 0, report.TotalEntries)
	})

	t.Run("sort by size with top cap", func(t *testing.T) {
		report, err := c.Stats(Filter{SortBy: SortBySize, Top: 2})
		require.NoError(t, err)
		// Aggregates still cover the full filtered population.
		assert.Equal(t, 3, report.TotalEntries)
		require.Len(t, report.Entries, 2)
		assert.Equal(t, "large", report.Entries[0].Key)
		assert.GreaterOrEqual(t, report.Entries[0].SizeBytes, report.Entries[1].SizeBytes)
	})
}

func TestStatsSortByAge(t *testing.T) {
	c := New(WithCompression(false))

	require.NoError(t, c.Set("MSGraph", "older", "v"))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, c.Set("MSGraph", "newer", "v"))

	report, err := c.Stats(Filter{SortBy: SortByAge})
	require.NoError(t, err)

	require.Len(t, report.Entries, 2)
	assert.Equal(t, "older", report.Entries[0].Key)
	assert.Equal(t, "newer", report.Entries[1].Key)
}

func TestStatsRejectsInvalidFilter(t *testing.T) {
	c := New()

	tests := []struct {
		name   string
		filter Filter
	}{
		{name: "negative min size", filter: Filter{MinSize: -1}},
		{name: "negative top", filter: Filter{Top: -1}},
		{name: "min exceeds max", filter: Filter{MinSize: 100, MaxSize: 50}},
		{name: "unknown sort field", filter: Filter{SortBy: SortField("bogus")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Stats(tt.filter)
			assert.ErrorIs(t, err, ErrInvalidFilter)
		})
	}
}

func TestStatsPartitionBreakdownIsSorted(t *testing.T) {
	c := New(WithCompression(false))

	require.NoError(t, c.Set("MSGraph", "a", "v"))
	require.NoError(t, c.Set("AzBatch", "b", "v"))
	require.NoError(t, c.Set("DNS", "c", "v"))

	report, err := c.Stats(Filter{})
	require.NoError(t, err)

	require.Len(t, report.Partitions, 3)
	assert.Equal(t, "AzBatch", report.Partitions[0].Partition)
	assert.Equal(t, "DNS", report.Partitions[1].Partition)
	assert.Equal(t, "MSGraph", report.Partitions[2].Partition)
}

func TestEmptyReportExportsValidJSON(t *testing.T) {
	c := New()

	report, err := c.Stats(Filter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, float64(0), decoded["totalEntries"])
	assert.Equal(t, []any{}, decoded["entries"])
	assert.Equal(t, []any{}, decoded["partitions"])
	assert.Equal(t, []any{}, decoded["recommendations"])
}

func TestReportWriteCSV(t *testing.T) {
	c := New(WithCompression(false))

	require.NoError(t, c.Set("MSGraph", "a", "v"))
	require.NoError(t, c.Set("DNS", "b", "v"))

	report, err := c.Stats(Filter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"partition", "key", "size_bytes", "compressed", "created_at", "expires_at", "expired"}, rows[0])
}

func TestStatsHitRate(t *testing.T) {
	c := New()

	require.NoError(t, c.Set("MSGraph", "k", "v"))
	c.Get("MSGraph", "k")
	c.Get("MSGraph", "k")
	c.Get("MSGraph", "k")
	c.Get("MSGraph", "absent")

	report, err := c.Stats(Filter{})
	require.NoError(t, err)

	assert.InDelta(t, 0.75, report.HitRate, 0.001)
}
