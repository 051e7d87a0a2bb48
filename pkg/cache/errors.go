package cache

import "errors"

var (
	// ErrInvalidKey indicates an empty cache key was supplied.
	ErrInvalidKey = errors.New("cache key must be a non-empty string")

	// ErrInvalidTTL indicates a zero or negative TTL was supplied.
	ErrInvalidTTL = errors.New("cache TTL must be positive")

	// ErrInvalidFilter indicates a stats filter with contradictory or
	// negative bounds.
	ErrInvalidFilter = errors.New("invalid stats filter")

	// ErrEntryTooLarge indicates a single payload exceeds the configured
	// cache ceiling. The insert is skipped and existing entries are kept.
	ErrEntryTooLarge = errors.New("entry exceeds maximum cache size")
)
