package fetchcache

import (
	"strings"
	"time"
)

const (
	// DefaultTTL is the freshness window applied when neither the request
	// nor a KeyOverride specifies one.
	DefaultTTL = 30 * time.Second

	// DefaultTimeout bounds a single fetch attempt.
	DefaultTimeout = 10 * time.Second
)

type Config struct {
	// TTL is the default freshness window for cached values. A cached value
	// older than this is treated as absent at read time.
	TTL time.Duration

	// Timeout bounds each request. A request that has not settled within
	// this duration is aborted and reported as KindTimeout.
	Timeout time.Duration

	// KeyOverrides allow callers to pin a different TTL for groups of keys,
	// eg. keep tournament brackets for 5 minutes while default listings
	// refresh every 30 seconds. The first override whose prefix matches the
	// key wins.
	KeyOverrides []KeyOverride
}

type KeyOverride struct {
	Prefix string // eg. "GET#/api/tournaments/"

	TTL time.Duration
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		TTL:     DefaultTTL,
		Timeout: DefaultTimeout,
	}
}

// ttlFor resolves the freshness window for a key: an explicit per-request
// value wins, then the first matching KeyOverride, then the config default.
func (c Config) ttlFor(key string, requestTTL time.Duration) time.Duration {
	if requestTTL > 0 {
		return requestTTL
	}

	for _, o := range c.KeyOverrides {
		if o.Prefix != "" && strings.HasPrefix(key, o.Prefix) {
			return o.TTL
		}
	}

	if c.TTL > 0 {
		return c.TTL
	}
	return DefaultTTL
}
