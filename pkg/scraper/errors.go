package scraper

import (
	"errors"
	"fmt"
)

// ErrNoData means every extraction tier was exhausted without a usable
// record. Callers translate it to a not-found response, never a 500.
var ErrNoData = errors.New("no usable data found")

// UpstreamError reports a failure fetching a page that is expected to exist.
// Probing failures never produce it; those are swallowed as soft misses.
type UpstreamError struct {
	URL    string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream unreachable: %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.URL)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NotFound reports whether the upstream answered with HTTP 404, which is
// distinguishable from transient network failure and never retried.
func (e *UpstreamError) NotFound() bool { return e.Status == 404 }
