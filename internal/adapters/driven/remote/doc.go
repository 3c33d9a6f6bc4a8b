// Package remote provides the HTTP implementation of the catalog and
// document source ports.
//
// Every request carries a caller_time query parameter holding the current
// time, so intermediary caches never serve an old catalog or body. Requests
// are spaced by a token bucket and pause after 429 responses.
package remote
