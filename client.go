package fetchcache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	headerContentType = "Content-Type"

	contentTypeJSON = "application/json"
)

// Request describes one logical fetch. Key identifies the request for caching
// and supersession; when empty it is derived from the method and URL. TTL and
// Timeout override the client defaults when non-zero.
type Request struct {
	Key    string
	Method string
	URL    string
	Header http.Header
	Body   []byte

	TTL     time.Duration
	Timeout time.Duration
}

// envelope is the JSON shape the platform's endpoints answer with.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Client composes the TTL cache, the in-flight registry and the HTTP fetch
// layer. It caches successful responses, serves fresh cached values without
// touching the network, and supersedes an in-flight request whenever a newer
// one starts for the same key.
type Client struct {
	store    Store
	inflight *registry

	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time

	c Config
}

// FetchCached resolves a request through the cache. The process follows
// these steps:
// 1. Returns the cached value if one exists and is fresh
// 2. Supersedes any in-flight request for the same key
// 3. Fetches over HTTP with the supersession token's context
// 4. Caches the result on success, never on failure.
//
// A request superseded while in flight resolves to KindCancelled and its
// result is discarded: the newer request is authoritative and a stale result
// must never overwrite the cache.
func (c *Client) FetchCached(ctx context.Context, req Request) (json.RawMessage, error) {
	key := req.Key
	if key == "" {
		key = requestKey(methodOrDefault(req.Method), req.URL)
	}
	ttl := c.c.ttlFor(key, req.TTL)

	// check if a fresh value exists within the cache
	entry, err := c.store.Get(ctx, key)
	switch {
	case err == nil && c.now().Sub(entry.StoredAt) < ttl:
		c.logger.DebugContext(ctx, "cache hit", "key", key)
		return entry.Value, nil
	case err == nil:
		c.logger.DebugContext(ctx, "cache entry stale", "key", key,
			"stored_at", entry.StoredAt.Format(time.RFC3339))
	case errors.Is(err, ErrNotFound):
		c.logger.DebugContext(ctx, "cache miss", "key", key)
	default:
		// a broken store must not take fetching down with it
		c.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	tok := c.inflight.start(ctx, key)
	defer c.inflight.finish(tok)

	value, fetchErr := c.Do(tok.Context(), req)

	// A newer request for this key is authoritative: drop this result no
	// matter how the transport settled, and never let it reach the cache.
	if tok.Superseded() {
		c.logger.DebugContext(ctx, "request superseded", "key", key)
		return nil, &Error{Kind: KindCancelled, cause: context.Canceled}
	}

	if fetchErr != nil {
		// failures are never cached, the next call retries
		return nil, fetchErr
	}

	if setErr := c.store.Set(ctx, key, &Entry{Value: value, StoredAt: c.now()}); setErr != nil {
		c.logger.WarnContext(ctx, "error caching response", "key", key, "error", setErr)
	}

	// Set can block long enough for a newer request to start and cache its
	// own result, in which case the write above is stale. Deleting the key
	// at worst drops a fresh entry, which the next call refetches; it never
	// leaves a stale one behind.
	if tok.Superseded() {
		if delErr := c.store.Delete(ctx, key); delErr != nil {
			c.logger.WarnContext(ctx, "error removing superseded entry", "key", key, "error", delErr)
		}
		c.logger.DebugContext(ctx, "request superseded", "key", key)
		return nil, &Error{Kind: KindCancelled, cause: context.Canceled}
	}

	return value, nil
}

// Do performs a single uncached fetch and decodes the response envelope.
// Every failure mode maps to a *Error kind; Do never caches and never
// consults the in-flight registry.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.c.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	hr, err := http.NewRequestWithContext(ctx, methodOrDefault(req.Method), req.URL, body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, cause: err}
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			hr.Header.Add(k, v)
		}
	}
	if len(req.Body) > 0 && hr.Header.Get(headerContentType) == "" {
		hr.Header.Set(headerContentType, contentTypeJSON)
	}

	resp, err := c.httpClient.Do(hr)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindHTTPStatus, StatusCode: resp.StatusCode, Body: raw}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &Error{Kind: KindMalformedBody, cause: err}
	}

	if !env.Success {
		return nil, &Error{Kind: KindApplication, Message: env.Error}
	}

	return env.Data, nil
}

// Invalidate removes the cached value for a key. Mutation endpoints call this
// after a successful write, since the cache performs no automatic
// invalidation on writes. Invalidating an absent key is a no-op.
func (c *Client) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// Clear drops every cached value, typically on teardown or navigation.
func (c *Client) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

func methodOrDefault(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return method
}

// classifyTransportError maps a transport failure to an error kind. The
// token's cancellation and the timeout both surface as context errors, so the
// derived context is consulted to tell them apart.
func classifyTransportError(ctx context.Context, err error) *Error {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return &Error{Kind: KindCancelled, cause: err}
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, cause: err}
	default:
		return &Error{Kind: KindNetwork, cause: err}
	}
}

// New creates a fetch client backed by the provided store.
//
// If 'httpClient' is nil, http.DefaultClient is used.
// If the 'now' function is nil, time.Now will be used as the default time provider.
// If the 'logger' is nil, a no-op logger writing to io.Discard will be used.
func New(
	store Store,
	httpClient *http.Client,
	opts *Config,
	now func() time.Time,
	logger *slog.Logger,
) *Client {
	nowFunc := now
	if nowFunc == nil {
		nowFunc = time.Now
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := Config{}
	if opts == nil {
		c = DefaultConfig()
	} else {
		c = *opts
	}

	return &Client{
		store:      store,
		inflight:   newRegistry(),
		httpClient: httpClient,
		logger:     logger,
		now:        nowFunc,
		c:          c,
	}
}
