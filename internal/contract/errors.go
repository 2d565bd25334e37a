package contract

import (
	"errors"
	"fmt"

	"github.com/huangsam/repometrics/schema"
)

// ErrRetriesExhausted is returned when the operator retry ceiling is reached.
var ErrRetriesExhausted = errors.New("retry ceiling reached")

// TransportError is a network-level or server-side failure on a page request.
// It is retried after the transport wait.
type TransportError struct {
	Page       int
	StatusCode int // zero when no response arrived
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error on page %d: status %d: %v", e.Page, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport error on page %d: %v", e.Page, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RateLimitError means the API throttled the request. The same page is
// requested again after the cool-down.
type RateLimitError struct {
	Page       int
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited on page %d (status %d)", e.Page, e.StatusCode)
}

// APIError is a non-retryable response, such as a query past the search window.
type APIError struct {
	Page       int
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error on page %d: status %d", e.Page, e.StatusCode)
	}
	return fmt.Sprintf("api error on page %d: status %d: %s", e.Page, e.StatusCode, e.Message)
}

// ParseError means a single raw record could not be summarized.
type ParseError struct {
	Repository string // full_name when known
	Field      string
	Err        error
}

func (e *ParseError) Error() string {
	repo := e.Repository
	if repo == "" {
		repo = "<unknown>"
	}
	if e.Field == "" {
		return fmt.Sprintf("parse error for %s: %v", repo, e.Err)
	}
	return fmt.Sprintf("parse error for %s field %s: %v", repo, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InsufficientDataError means a correlation could not be computed for one pair.
type InsufficientDataError struct {
	Pair    schema.MetricPair
	Samples int
	Reason  string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s vs %s: %s (%d paired samples)", e.Pair.Process, e.Pair.Quality, e.Reason, e.Samples)
}

// IsRetryable reports whether err should trigger another attempt on the same page.
func IsRetryable(err error) bool {
	var rl *RateLimitError
	var te *TransportError
	return errors.As(err, &rl) || errors.As(err, &te)
}
