package research

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// Kind distinguishes why a research call failed. Kinds are recorded for
// observability only; the orchestrator treats every kind the same way.
type Kind string

const (
	// KindTransport covers network failures, timeouts and 5xx responses.
	KindTransport Kind = "transport"
	// KindQuota covers rate limits and exhausted quotas (HTTP 429).
	KindQuota Kind = "quota"
	// KindEmptyResponse means the provider answered without any text.
	KindEmptyResponse Kind = "empty_response"
	// KindProvider covers every other rejection (bad request, auth, malformed body).
	KindProvider Kind = "provider"
)

// Error is the typed failure returned by every Researcher.
type Error struct {
	Kind       Kind
	Provider   string
	StatusCode int
	// RetryAfter is a provider-reported delay before the next request, if any.
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind carried by err, or KindProvider for untyped errors.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return KindProvider
}

// Classify wraps err in an Error, deriving the kind from the HTTP status code
// when known and from the error chain otherwise. An existing *Error is
// returned unchanged.
func Classify(provider string, statusCode int, err error) *Error {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr
	}
	return &Error{
		Kind:       classifyKind(statusCode, err),
		Provider:   provider,
		StatusCode: statusCode,
		Err:        err,
	}
}

// EmptyResponse builds the error for a response with no usable text.
func EmptyResponse(provider string) *Error {
	return &Error{
		Kind:     KindEmptyResponse,
		Provider: provider,
		Err:      errors.New("response contained no text"),
	}
}

func classifyKind(statusCode int, err error) Kind {
	switch {
	case statusCode == 429:
		return KindQuota
	case statusCode == 408 || statusCode >= 500:
		return KindTransport
	case statusCode != 0:
		return KindProvider
	}

	if err == nil {
		return KindProvider
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransport
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTransport
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return KindTransport
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{"resource_exhausted", "quota", "rate limit", "too many requests"} {
		if strings.Contains(msg, p) {
			return KindQuota
		}
	}
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return KindTransport
		}
	}

	return KindProvider
}

// parseRetryAfter reads a Retry-After header value expressed in seconds.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
