package image

import (
	"fmt"

	"github.com/kailas-cloud/atango/internal/domain"
)

// Outcome classifies a lookup.
type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
	OutcomeError    Outcome = "error"
)

// Result is the outcome of one lookup: a URL, nothing, or a failure reason.
type Result struct {
	outcome Outcome
	url     string
	reason  string
}

// Found returns a successful result.
func Found(url string) Result { return Result{outcome: OutcomeFound, url: url} }

// NotFound returns an empty result.
func NotFound() Result { return Result{outcome: OutcomeNotFound} }

// LookupError returns a failed result. It is soft: callers degrade instead of failing.
func LookupError(reason string) Result { return Result{outcome: OutcomeError, reason: reason} }

// Outcome returns the result kind.
func (r Result) Outcome() Outcome { return r.outcome }

// URL returns the image URL when found.
func (r Result) URL() string { return r.url }

// Err returns nil unless the lookup failed.
func (r Result) Err() error {
	if r.outcome != OutcomeError {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrImageLookup, r.reason)
}
