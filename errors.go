package fetchcache

import (
	"errors"
	"fmt"
)

// Kind classifies a fetch failure. Every error returned by Client is an
// *Error carrying exactly one Kind, so callers switch on the kind instead of
// string-matching transport errors.
type Kind int

const (
	// KindTimeout means the request did not settle within its timeout.
	KindTimeout Kind = iota + 1

	// KindNetwork covers transport-level failures: connection refused,
	// DNS failure, broken pipe.
	KindNetwork

	// KindHTTPStatus means the server answered with a non-2xx status.
	KindHTTPStatus

	// KindMalformedBody means the response status was fine but the body
	// could not be decoded as the expected JSON envelope.
	KindMalformedBody

	// KindApplication means the server answered success=false in the
	// response envelope.
	KindApplication

	// KindCancelled means the request was cancelled, either by the caller's
	// context or because a newer request for the same key superseded it.
	// Cancellation is not a failure: callers should discard the result and
	// treat the superseding request as authoritative.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http_status"
	case KindMalformedBody:
		return "malformed_body"
	case KindApplication:
		return "application"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by Client operations.
type Error struct {
	Kind Kind

	// StatusCode and Body are set for KindHTTPStatus.
	StatusCode int
	Body       []byte

	// Message is set for KindApplication and holds the server's error field.
	Message string

	cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("fetch failed: unexpected status %d", e.StatusCode)
	case KindApplication:
		return fmt.Sprintf("fetch failed: application error: %s", e.Message)
	default:
		if e.cause != nil {
			return fmt.Sprintf("fetch failed: %s: %v", e.Kind, e.cause)
		}
		return fmt.Sprintf("fetch failed: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports kind equality, so errors.Is(err, &Error{Kind: KindTimeout})
// matches any timeout regardless of the wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of err if it is a *Error, or 0 otherwise.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// IsCancelled reports whether err represents a cancelled or superseded
// request. Callers use this to silently drop results that a newer request
// has made obsolete.
func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled
}
