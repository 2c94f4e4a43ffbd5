package fetchcache

import (
	"context"
	"sync"
	"sync/atomic"
)

// Token represents one in-flight request for a key. Its Context is cancelled
// when the token is superseded by a newer request for the same key, which
// aborts the underlying transport.
type Token struct {
	key string

	ctx    context.Context
	cancel context.CancelFunc

	superseded atomic.Bool
}

// Context returns the request-scoped context to hand to the transport.
func (t *Token) Context() context.Context { return t.ctx }

// Cancel aborts the request and marks the token superseded, so a late
// resolution of its transport call is discarded rather than surfaced.
func (t *Token) Cancel() {
	t.superseded.Store(true)
	t.cancel()
}

// Superseded reports whether a newer request for the same key has replaced
// this one.
func (t *Token) Superseded() bool { return t.superseded.Load() }

// registry tracks in-flight requests by key. For any key it holds zero or one
// live token: starting a request for a key that already has one supersedes
// the old token, it never queues behind it.
type registry struct {
	mu     sync.Mutex
	tokens map[string]*Token
}

func newRegistry() *registry {
	return &registry{tokens: make(map[string]*Token)}
}

// start registers a new token for key, cancelling any prior in-flight token
// for the same key first. The token's context is derived from ctx.
func (r *registry) start(ctx context.Context, key string) *Token {
	tctx, cancel := context.WithCancel(ctx)
	t := &Token{key: key, ctx: tctx, cancel: cancel}

	r.mu.Lock()
	prev := r.tokens[key]
	r.tokens[key] = t
	r.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}

	return t
}

// finish removes the in-flight entry for the token's key once its request has
// settled. If a newer token has already replaced this one, the newer entry is
// left untouched.
func (r *registry) finish(t *Token) {
	r.mu.Lock()
	if r.tokens[t.key] == t {
		delete(r.tokens, t.key)
	}
	r.mu.Unlock()

	// release the derived context's resources
	t.cancel()
}

// live reports whether an in-flight request exists for key.
func (r *registry) live(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.tokens[key]
	return ok
}
