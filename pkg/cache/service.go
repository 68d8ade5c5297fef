package cache

import "time"

// CacheService is the in-process key/value store used for gateway lookups and wizard sessions.
type CacheService interface {
	// Get returns the value and true when the key is present and not expired.
	Get(key string) (interface{}, bool)

	// Set stores value for duration. Zero uses the store default, negative never expires.
	Set(key string, value interface{}, duration time.Duration)

	Delete(key string)

	Flush()
}
