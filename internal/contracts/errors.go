package contracts

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every data-access component.
var (
	// ErrNotFound: symbol could not be resolved by catalog or quote lookup
	ErrNotFound = errors.New("not found")

	// ErrNoData: a legitimate empty result (no futures line, no bars in window)
	ErrNoData = errors.New("no data")

	// ErrUpstream: the provider call failed (network, auth, malformed response)
	ErrUpstream = errors.New("upstream failure")
)

// NotFoundError names the symbol that failed to resolve
type NotFoundError struct {
	Symbol   string
	Exchange string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("symbol %s not found on %s", e.Symbol, e.Exchange)
}

// Is lets errors.Is(err, ErrNotFound) match
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UpstreamError wraps a provider failure
type UpstreamError struct {
	Op     string // provider operation, e.g. "instruments", "historical", "quote"
	Status int    // HTTP status, 0 for transport/decode errors
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the cause
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}
