package database

import "errors"

// Connection acquisition errors. Both are request scoped: the pool stays
// usable and a later Acquire may succeed.
var (
	// ErrStoreUnavailable means the store could not hand out a connection
	// (unreachable server, closed pool, failed dial).
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrPoolExhausted means every pooled connection stayed checked out for
	// the whole acquire timeout.
	ErrPoolExhausted = errors.New("connection pool exhausted")
)
