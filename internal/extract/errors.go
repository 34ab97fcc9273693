package extract

import (
	"errors"
	"fmt"
)

// UnsupportedDomainError means no extractor is registered for the URL's
// domain. Callers can pick it out with errors.As to special-case it.
type UnsupportedDomainError struct {
	Domain string
}

func (e *UnsupportedDomainError) Error() string {
	return fmt.Sprintf("no extractor found for domain: %s", e.Domain)
}

// ExtractionError wraps any failure during metadata retrieval (network,
// response shape, upstream non-success) for a single source URL.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract from %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IsUnsupportedDomain reports whether err is an UnsupportedDomainError.
func IsUnsupportedDomain(err error) bool {
	var ude *UnsupportedDomainError
	return errors.As(err, &ude)
}
