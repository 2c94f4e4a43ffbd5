// Package stores holds defaults and errors shared by the Store backends.
//
// Backends persist entries verbatim and never judge freshness: staleness is
// decided at read time by the client against the caller's TTL. What backends
// may do is garbage-collect entries so old that no plausible TTL would ever
// accept them again (retention), which keeps the otherwise unbounded key
// space from growing forever in durable stores.
package stores

import "time"

var (
	// DefaultRetention is how long a backend keeps an entry around before
	// it may garbage-collect it. Independent of any read-time TTL.
	DefaultRetention = 24 * time.Hour

	// DefaultRetentionTaskTimer is the default interval of the background
	// cleanup task in backends that run one.
	DefaultRetentionTaskTimer = 10 * time.Minute
)
