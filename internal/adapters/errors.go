package adapters

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for upstream failure classification. Every *UpstreamError
// matches ErrUpstream plus the sentinel of its kind.
var (
	ErrUpstream          = errors.New("upstream provider failure")
	ErrRateLimited       = errors.New("upstream rate limited")
	ErrContentBlocked    = errors.New("upstream returned no usable content")
	ErrTransport         = errors.New("upstream transport failure")
	ErrMalformedResponse = errors.New("upstream response envelope malformed")
)

// ErrorKind classifies an upstream failure.
type ErrorKind string

const (
	KindRateLimited    ErrorKind = "rate_limited"
	KindContentBlocked ErrorKind = "content_blocked"
	KindTransport      ErrorKind = "transport"
	KindTimeout        ErrorKind = "timeout"
	KindStatus         ErrorKind = "status"
	KindMalformed      ErrorKind = "malformed"
)

// UpstreamError is a failed provider call.
type UpstreamError struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Kind == KindRateLimited:
		return fmt.Sprintf("%s: quota exceeded (status %d): %v", e.Provider, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s API returned status %d: %v", e.Provider, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Kind, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is matches ErrUpstream and the sentinel for the error's kind.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUpstream:
		return true
	case ErrRateLimited:
		return e.Kind == KindRateLimited
	case ErrContentBlocked:
		return e.Kind == KindContentBlocked
	case ErrTransport:
		return e.Kind == KindTransport || e.Kind == KindTimeout || e.Kind == KindStatus
	case ErrMalformedResponse:
		return e.Kind == KindMalformed
	}
	return false
}

// KindOf returns the kind of an upstream error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return ""
}

func statusError(provider string, status int, body []byte) error {
	kind := KindStatus
	if status == http.StatusTooManyRequests {
		kind = KindRateLimited
	}
	return &UpstreamError{
		Kind:       kind,
		Provider:   provider,
		StatusCode: status,
		Err:        errors.New(truncate(string(body), maxErrorBodyLen)),
	}
}

func malformed(provider, format string, args ...any) error {
	return &UpstreamError{Kind: KindMalformed, Provider: provider, Err: fmt.Errorf(format, args...)}
}
