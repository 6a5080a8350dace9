package catalog

import (
	"errors"
	"fmt"
)

// FailureKind is the closed set of browse failures the presentation layer
// can render. An empty result is a state, not a failure.
type FailureKind string

const (
	FailureNetwork     FailureKind = "network_failure"
	FailureInvalidSlug FailureKind = "invalid_slug"
)

// Failure is the error stored in view state.
type Failure struct {
	Kind     FailureKind
	Slug     string
	Redirect string
	Cause    error
}

func (f *Failure) Error() string {
	switch f.Kind {
	case FailureInvalidSlug:
		return fmt.Sprintf("unknown collection %q", f.Slug)
	case FailureNetwork:
		if f.Cause != nil {
			return fmt.Sprintf("fetch collection %q: %v", f.Slug, f.Cause)
		}
		return fmt.Sprintf("fetch collection %q failed", f.Slug)
	}
	return string(f.Kind)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// NetworkFailure wraps a remote client error.
func NetworkFailure(slug Slug, cause error) *Failure {
	return &Failure{Kind: FailureNetwork, Slug: string(slug), Cause: cause}
}

// KindOf extracts the failure kind from err, or "" if err is not a Failure.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
