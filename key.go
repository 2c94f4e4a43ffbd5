package fetchcache

import (
	"fmt"
	"net/url"
)

// Key derives the canonical cache key for an endpoint path and its query or
// body parameters. Parameters are serialized as sorted key=value pairs, so
// two equivalent requests always produce the same key regardless of the
// order the caller assembled them in.
func Key(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}

	// url.Values.Encode sorts by key
	return path + "?" + params.Encode()
}

// requestKey derives a key from the request line when the caller did not
// supply one.
func requestKey(method, rawURL string) string {
	return fmt.Sprintf("%s#%s", method, rawURL)
}
