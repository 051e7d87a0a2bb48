// Package cache provides the in-memory response cache used to avoid
// redundant calls against ARM and Microsoft Graph. Entries are partitioned
// per upstream API, expire after a TTL, and are evicted least-recently-used
// when the configured memory ceiling is reached.
package cache

import "time"

// entry is a single cached response. The payload is held serialized so
// size accounting stays honest regardless of what the caller stored.
type entry struct {
	key        string
	partition  string
	data       []byte
	compressed bool
	createdAt  time.Time
	expiresAt  time.Time
	size       int64
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// EntryInfo is the metadata snapshot of a live entry, taken under the cache
// lock so reporting can run without blocking concurrent traffic.
type EntryInfo struct {
	Partition  string    `json:"partition"`
	Key        string    `json:"key"`
	SizeBytes  int64     `json:"sizeBytes"`
	Compressed bool      `json:"compressed"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Expired    bool      `json:"expired"`
}

// Age returns how long ago the entry was inserted, relative to now.
func (i EntryInfo) Age(now time.Time) time.Duration {
	return now.Sub(i.CreatedAt)
}
