package cache

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"
)

// SortField selects the ordering of entries in a stats report.
type SortField string

const (
	SortBySize   SortField = "size"
	SortByAge    SortField = "age"
	SortByExpiry SortField = "expiry"
)

// Filter narrows and shapes a stats report. The zero value reports on the
// entire cache.
type Filter struct {
	// Partition limits the report to one partition when non-empty.
	Partition string

	// Compressed, when non-nil, keeps only entries matching the flag.
	Compressed *bool

	// MinSize and MaxSize bound entry sizes in bytes. Zero means unbounded.
	MinSize int64
	MaxSize int64

	// MaxAge drops entries older than the duration. Zero means unbounded.
	MaxAge time.Duration

	// SortBy orders the reported entries. Defaults to size, largest first.
	SortBy SortField

	// Top caps the number of entries included in the report. Zero means all.
	Top int
}

func (f Filter) validate() error {
	if f.MinSize < 0 || f.MaxSize < 0 || f.MaxAge < 0 || f.Top < 0 {
		return fmt.Errorf("%w: bounds must be non-negative", ErrInvalidFilter)
	}
	if f.MaxSize > 0 && f.MinSize > f.MaxSize {
		return fmt.Errorf("%w: min size %d exceeds max size %d", ErrInvalidFilter, f.MinSize, f.MaxSize)
	}
	switch f.SortBy {
	case "", SortBySize, SortByAge, SortByExpiry:
	default:
		return fmt.Errorf("%w: unknown sort field %q", ErrInvalidFilter, f.SortBy)
	}
	return nil
}

// PartitionStats aggregates counts for one partition.
type PartitionStats struct {
	Partition  string  `json:"partition"`
	Total      int     `json:"total"`
	Valid      int     `json:"valid"`
	Expired    int     `json:"expired"`
	SizeBytes  int64   `json:"sizeBytes"`
	Compressed int     `json:"compressed"`
	ValidRate  float64 `json:"validRate"`
}

// HistogramBucket is one fixed-edge size bucket. UpperMB of zero marks the
// open-ended top bucket.
type HistogramBucket struct {
	Label   string  `json:"label"`
	UpperMB float64 `json:"upperMB,omitempty"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Report is the full analytics output of a stats run. It is computed from a
// point-in-time snapshot and never mutates the cache.
type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`

	TotalEntries   int     `json:"totalEntries"`
	ValidEntries   int     `json:"validEntries"`
	ExpiredEntries int     `json:"expiredEntries"`
	ValidRate      float64 `json:"validRate"`

	Counters Counters `json:"counters"`
	HitRate  float64  `json:"hitRate"`

	TotalSizeBytes   int64   `json:"totalSizeBytes"`
	MaxSizeBytes     int64   `json:"maxSizeBytes"`
	AverageSizeBytes int64   `json:"averageSizeBytes"`
	CompressedCount  int     `json:"compressedCount"`
	CompressionRate  float64 `json:"compressionRate"`

	OldestEntryAge time.Duration `json:"oldestEntryAgeNs"`
	NewestEntryAge time.Duration `json:"newestEntryAgeNs"`

	// GrowthPerMinute estimates insertions per minute over the trailing
	// growth window.
	GrowthPerMinute float64 `json:"growthPerMinute"`

	Partitions []PartitionStats  `json:"partitions"`
	Histogram  []HistogramBucket `json:"histogram"`
	Entries    []EntryInfo       `json:"entries"`

	Recommendations []string `json:"recommendations"`
}

const (
	// growthWindow is the trailing window for the growth-rate estimate.
	growthWindow = 15 * time.Minute

	// Advisory thresholds for recommendations.
	expiredRateThreshold   = 0.4
	largeUncompressedBytes = 100 * 1024
	memoryWarnFraction     = 0.8
)

var histogramEdgesMB = []float64{0.2, 0.5, 1.0, 2.0}

// Stats computes an analytics report over a consistent snapshot of the
// cache. Filtering, sorting, and the top-N cap apply to the entry listing;
// aggregate counts always cover the filtered population.
func (c *Cache) Stats(f Filter) (*Report, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	infos := c.Snapshot()

	filtered := make([]EntryInfo, 0, len(infos))
	for _, info := range infos {
		if f.Partition != "" && info.Partition != f.Partition {
			continue
		}
		if f.Compressed != nil && info.Compressed != *f.Compressed {
			continue
		}
		if f.MinSize > 0 && info.SizeBytes < f.MinSize {
			continue
		}
		if f.MaxSize > 0 && info.SizeBytes > f.MaxSize {
			continue
		}
		if f.MaxAge > 0 && info.Age(now) > f.MaxAge {
			continue
		}
		filtered = append(filtered, info)
	}

	report := &Report{
		GeneratedAt:     now,
		Counters:        c.Counters(),
		MaxSizeBytes:    c.MaxSizeBytes(),
		Partitions:      []PartitionStats{},
		Entries:         []EntryInfo{},
		Recommendations: []string{},
	}

	perPartition := make(map[string]*PartitionStats)
	var uncompressedBytes int64
	var uncompressedCount int
	var recentInserts int

	for _, info := range filtered {
		report.TotalEntries++
		report.TotalSizeBytes += info.SizeBytes

		ps, ok := perPartition[info.Partition]
		if !ok {
			ps = &PartitionStats{Partition: info.Partition}
			perPartition[info.Partition] = ps
		}
		ps.Total++
		ps.SizeBytes += info.SizeBytes

		if info.Expired {
			report.ExpiredEntries++
			ps.Expired++
		} else {
			report.ValidEntries++
			ps.Valid++
		}

		if info.Compressed {
			report.CompressedCount++
			ps.Compressed++
		} else {
			uncompressedCount++
			uncompressedBytes += info.SizeBytes
		}

		age := info.Age(now)
		if report.OldestEntryAge == 0 || age > report.OldestEntryAge {
			report.OldestEntryAge = age
		}
		if report.NewestEntryAge == 0 || age < report.NewestEntryAge {
			report.NewestEntryAge = age
		}
		if age <= growthWindow {
			recentInserts++
		}
	}

	if report.TotalEntries > 0 {
		report.ValidRate = float64(report.ValidEntries) / float64(report.TotalEntries)
		report.CompressionRate = float64(report.CompressedCount) / float64(report.TotalEntries)
		report.AverageSizeBytes = report.TotalSizeBytes / int64(report.TotalEntries)
		report.GrowthPerMinute = float64(recentInserts) / growthWindow.Minutes()
	}
	if total := report.Counters.Hits + report.Counters.Misses; total > 0 {
		report.HitRate = float64(report.Counters.Hits) / float64(total)
	}

	for _, ps := range perPartition {
		if ps.Total > 0 {
			ps.ValidRate = float64(ps.Valid) / float64(ps.Total)
		}
		report.Partitions = append(report.Partitions, *ps)
	}
	sort.Slice(report.Partitions, func(i, j int) bool {
		return report.Partitions[i].Partition < report.Partitions[j].Partition
	})

	report.Histogram = buildHistogram(filtered)
	report.Recommendations = buildRecommendations(report, uncompressedCount, uncompressedBytes)

	sortEntries(filtered, f.SortBy, now)
	if f.Top > 0 && len(filtered) > f.Top {
		filtered = filtered[:f.Top]
	}
	report.Entries = filtered

	return report, nil
}

func sortEntries(infos []EntryInfo, field SortField, now time.Time) {
	switch field {
	case SortByAge:
		sort.Slice(infos, func(i, j int) bool {
			return infos[i].CreatedAt.Before(infos[j].CreatedAt)
		})
	case SortByExpiry:
		sort.Slice(infos, func(i, j int) bool {
			return infos[i].ExpiresAt.Before(infos[j].ExpiresAt)
		})
	default:
		sort.Slice(infos, func(i, j int) bool {
			return infos[i].SizeBytes > infos[j].SizeBytes
		})
	}
}

func buildHistogram(infos []EntryInfo) []HistogramBucket {
	buckets := make([]HistogramBucket, 0, len(histogramEdgesMB)+1)
	lower := 0.0
	for _, upper := range histogramEdgesMB {
		buckets = append(buckets, HistogramBucket{
			Label:   fmt.Sprintf("%.1f-%.1f MB", lower, upper),
			UpperMB: upper,
		})
		lower = upper
	}
	buckets = append(buckets, HistogramBucket{Label: fmt.Sprintf("%.1f+ MB", lower)})

	for _, info := range infos {
		sizeMB := float64(info.SizeBytes) / (1024 * 1024)
		placed := false
		for i := range buckets[:len(buckets)-1] {
			if sizeMB < buckets[i].UpperMB {
				buckets[i].Count++
				placed = true
				break
			}
		}
		if !placed {
			buckets[len(buckets)-1].Count++
		}
	}

	if len(infos) > 0 {
		for i := range buckets {
			buckets[i].Percent = 100 * float64(buckets[i].Count) / float64(len(infos))
		}
	}
	return buckets
}

func buildRecommendations(r *Report, uncompressedCount int, uncompressedBytes int64) []string {
	recs := []string{}

	if r.TotalEntries > 0 {
		expiredRate := float64(r.ExpiredEntries) / float64(r.TotalEntries)
		if expiredRate > expiredRateThreshold {
			recs = append(recs, fmt.Sprintf(
				"%.0f%% of entries are expired; consider raising cache_expiration_minutes",
				expiredRate*100))
		}
	}

	if uncompressedCount > 0 && uncompressedBytes/int64(uncompressedCount) > largeUncompressedBytes {
		recs = append(recs, fmt.Sprintf(
			"%d uncompressed entries average over %d KB; consider enabling compression",
			uncompressedCount, largeUncompressedBytes/1024))
	}

	if r.MaxSizeBytes > 0 && float64(r.TotalSizeBytes) > memoryWarnFraction*float64(r.MaxSizeBytes) {
		recs = append(recs, fmt.Sprintf(
			"cache is at %.0f%% of its %d MB ceiling; consider raising max_cache_size_bytes or lowering TTLs",
			100*float64(r.TotalSizeBytes)/float64(r.MaxSizeBytes), r.MaxSizeBytes/(1024*1024)))
	}

	return recs
}

// WriteJSON serializes the report as indented JSON. An empty report
// produces a valid document with empty arrays.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes the entry listing as CSV, one row per entry.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"partition", "key", "size_bytes", "compressed", "created_at", "expires_at", "expired"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, e := range r.Entries {
		row := []string{
			e.Partition,
			e.Key,
			strconv.FormatInt(e.SizeBytes, 10),
			strconv.FormatBool(e.Compressed),
			e.CreatedAt.Format(time.RFC3339),
			e.ExpiresAt.Format(time.RFC3339),
			strconv.FormatBool(e.Expired),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
