package enrichment

import (
	"errors"
	"fmt"
)

// ErrorCategory normalizes upstream failure modes so callers and metrics can
// branch without inspecting transport details.
type ErrorCategory string

const (
	// ErrorTimeout indicates the upstream took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the upstream returned invalid or malformed data.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorOutage indicates the upstream is unavailable.
	ErrorOutage ErrorCategory = "outage"

	// ErrorNotFound indicates the upstream has no record for the domain.
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorInternal indicates an unexpected local failure.
	ErrorInternal ErrorCategory = "internal"
)

// LookupError wraps an enrichment failure with a normalized category.
type LookupError struct {
	Category   ErrorCategory
	Domain     string
	Message    string
	Underlying error
}

func (e *LookupError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("enrichment %q [%s]: %s: %v", e.Domain, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("enrichment %q [%s]: %s", e.Domain, e.Category, e.Message)
}

func (e *LookupError) Unwrap() error {
	return e.Underlying
}

// NewLookupError creates a categorized enrichment error.
func NewLookupError(category ErrorCategory, domain, message string, underlying error) *LookupError {
	return &LookupError{
		Category:   category,
		Domain:     domain,
		Message:    message,
		Underlying: underlying,
	}
}

// CategoryOf extracts the category from an error, defaulting to ErrorInternal
// for errors that did not come from this package.
func CategoryOf(err error) ErrorCategory {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Category
	}
	return ErrorInternal
}

// ErrCircuitOpen is returned without contacting the upstream while the
// circuit breaker is open.
var ErrCircuitOpen = errors.New("enrichment circuit open")
