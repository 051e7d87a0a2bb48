package cache

import (
	"container/list"
	"encoding/json"
	"sync"
	"time"
)

const (
	// DefaultTTL applies when a Set does not carry an explicit TTL.
	DefaultTTL = 60 * time.Minute

	// DefaultMaxSizeBytes bounds the total serialized size of live entries.
	DefaultMaxSizeBytes = 50 * 1024 * 1024
)

// Cache is a process-wide, partitioned key-value store for API responses.
// It is safe for concurrent use; a single mutex guards the entry table.
// Network fetches never happen under the lock, callers consult the cache
// before the call and populate it after.
type Cache struct {
	mu         sync.Mutex
	partitions map[string]map[string]*list.Element
	lru        *list.List // front = most recently used, across all partitions
	totalSize  int64

	defaultTTL  time.Duration
	maxSize     int64
	compression bool

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64
}

// Option configures a Cache at construction time.
type Option func(*Cache)

// WithDefaultTTL overrides the default entry TTL.
func WithDefaultTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.defaultTTL = d
		}
	}
}

// WithMaxSize overrides the eviction ceiling in bytes.
func WithMaxSize(n int64) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// WithCompression sets the default compress flag for new entries.
func WithCompression(enabled bool) Option {
	return func(c *Cache) {
		c.compression = enabled
	}
}

// New constructs an empty cache. The zero configuration caches for an hour
// and holds at most 50 MiB.
func New(opts ...Option) *Cache {
	c := &Cache{
		partitions: make(map[string]map[string]*list.Element),
		lru:        list.New(),
		defaultTTL: DefaultTTL,
		maxSize:    DefaultMaxSizeBytes,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetOption adjusts a single Set call.
type SetOption func(*setParams)

type setParams struct {
	ttl      time.Duration
	compress bool
}

// WithTTL sets the entry TTL. Zero or negative values are rejected by Set.
func WithTTL(d time.Duration) SetOption {
	return func(p *setParams) { p.ttl = d }
}

// WithCompress overrides the cache-wide compression default for one entry.
func WithCompress(enabled bool) SetOption {
	return func(p *setParams) { p.compress = enabled }
}

// Set serializes value and stores it under (partition, key), replacing any
// prior entry for the same key. When the insert would push the total tracked
// size over the ceiling, least-recently-used entries are evicted until it
// fits. Invalid arguments are rejected before any mutation.
func (c *Cache) Set(partition, key string, value any, opts ...SetOption) error {
	if key == "" {
		return ErrInvalidKey
	}

	p := setParams{ttl: c.defaultTTL, compress: c.compression}
	for _, opt := range opts {
		opt(&p)
	}
	if p.ttl <= 0 {
		return ErrInvalidTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	compressed := false
	if p.compress && len(data) >= compressionThreshold {
		if packed, err := compressData(data); err == nil && len(packed) < len(data) {
			data = packed
			compressed = true
		}
	}

	size := int64(len(data))
	if size > c.maxSize {
		return ErrEntryTooLarge
	}

	now := time.Now()
	e := &entry{
		key:        key,
		partition:  partition,
		data:       data,
		compressed: compressed,
		createdAt:  now,
		expiresAt:  now.Add(p.ttl),
		size:       size,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if keys, ok := c.partitions[partition]; ok {
		if elem, ok := keys[key]; ok {
			c.removeLocked(elem)
		}
	}

	for c.totalSize+size > c.maxSize {
		back := c.lru.Back()
		if back == nil {
			break
		}
		c.removeLocked(back)
		c.evictions++
	}

	keys, ok := c.partitions[partition]
	if !ok {
		keys = make(map[string]*list.Element)
		c.partitions[partition] = keys
	}
	keys[key] = c.lru.PushFront(e)
	c.totalSize += size

	return nil
}

// Get returns the decoded value stored under (partition, key). Absent and
// expired entries report a miss; expired entries are purged as a side
// effect. Lookups never fail, decode problems degrade to a miss.
func (c *Cache) Get(partition, key string) (any, bool) {
	var value any
	if !c.GetInto(partition, key, &value) {
		return nil, false
	}
	return value, true
}

// GetInto behaves like Get but decodes the cached payload into dest, which
// must be a non-nil pointer.
func (c *Cache) GetInto(partition, key string, dest any) bool {
	data, ok := c.lookup(partition, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (c *Cache) lookup(partition, key string) ([]byte, bool) {
	if key == "" {
		return nil, false
	}

	c.mu.Lock()
	keys, ok := c.partitions[partition]
	if !ok {
		c.misses++
		c.mu.Unlock()
		return nil, false
	}
	elem, ok := keys[key]
	if !ok {
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	e := elem.Value.(*entry)
	if e.expired(time.Now()) {
		c.removeLocked(elem)
		c.expirations++
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	c.lru.MoveToFront(elem)
	c.hits++
	data := e.data
	compressed := e.compressed
	c.mu.Unlock()

	if compressed {
		plain, err := decompressData(data)
		if err != nil {
			return nil, false
		}
		return plain, true
	}
	return data, true
}

// Invalidate removes entries from a partition. With no keys the whole
// partition is cleared. It reports how many entries were removed and never
// errors on a no-op.
func (c *Cache) Invalidate(partition string, keys ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	table, ok := c.partitions[partition]
	if !ok {
		return 0
	}

	if len(keys) == 0 {
		removed := len(table)
		for _, elem := range table {
			e := elem.Value.(*entry)
			c.totalSize -= e.size
			c.lru.Remove(elem)
		}
		delete(c.partitions, partition)
		return removed
	}

	removed := 0
	for _, key := range keys {
		if elem, ok := table[key]; ok {
			c.removeLocked(elem)
			removed++
		}
	}
	return removed
}

// removeLocked unlinks an entry from the table, the LRU list, and the size
// accounting. Callers must hold c.mu.
func (c *Cache) removeLocked(elem *list.Element) {
	e := elem.Value.(*entry)
	c.lru.Remove(elem)
	c.totalSize -= e.size

	if keys, ok := c.partitions[e.partition]; ok {
		delete(keys, e.key)
		if len(keys) == 0 {
			delete(c.partitions, e.partition)
		}
	}
}

// Snapshot copies the metadata of every live entry under the lock so that
// report generation can run off-lock. Expired entries are included and
// flagged; physical purge stays lazy.
func (c *Cache) Snapshot() []EntryInfo {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	infos := make([]EntryInfo, 0, c.lru.Len())
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*entry)
		infos = append(infos, EntryInfo{
			Partition:  e.partition,
			Key:        e.key,
			SizeBytes:  e.size,
			Compressed: e.compressed,
			CreatedAt:  e.createdAt,
			ExpiresAt:  e.expiresAt,
			Expired:    e.expired(now),
		})
	}
	return infos
}

// Counters reports the observed hit/miss/eviction/expiration totals.
type Counters struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
}

// Counters returns the lifetime operation counters.
func (c *Cache) Counters() Counters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Counters{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
}

// Len returns the number of live entries, expired-but-unpurged included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// SizeBytes returns the total tracked serialized size.
func (c *Cache) SizeBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalSize
}

// MaxSizeBytes returns the configured eviction ceiling.
func (c *Cache) MaxSizeBytes() int64 {
	return c.maxSize
}
