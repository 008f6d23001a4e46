package core

import "time"

// Cache memoizes computed response payloads under a request key.
//
// The canonical key for an HTTP response is the request path including the
// query string, so paginated or filtered variants of a listing are cached
// independently. The cache is an optimization only: implementations must
// never fail a request — an internal error degrades to a miss.
type Cache interface {
	// Get returns the payload stored under key, or ok=false when the key is
	// absent or its entry has expired.
	Get(key string) (value []byte, ok bool)
	// Set stores value under key for ttl. An existing entry is overwritten.
	Set(key string, value []byte, ttl time.Duration)
	// Delete removes one entry; it is a no-op when the key is absent.
	Delete(key string)
	// Flush removes every entry. Mutations whose blast radius spans many
	// derived views should prefer Flush over enumerating keys: a few extra
	// recomputations are cheaper than serving stale data after an
	// under-enumerated invalidation.
	Flush()
}
