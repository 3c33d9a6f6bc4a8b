package domain

import "time"

// Record is a value held by the persistent key-value store.
// Version is kept beside the value so freshness can be checked
// without decoding the body.
type Record struct {
	// Value is the serialised body (JSON).
	Value []byte

	// Version is the LastUpdatedAt stamp of the stored body.
	Version string

	// StoredAt is when the record was last written.
	StoredAt time.Time
}

// Stale reports whether the record's version differs from the published one.
func (r *Record) Stale(published string) bool {
	return r.Version != published
}
