// Package enrichment augments new company records with data from an external
// company-profile API, keyed by normalized domain.
//
// Enrichment is best-effort and never load-bearing: every failure mode
// (timeout, outage, malformed response, missing record) is surfaced as an
// error value that callers substitute with a deterministic fallback.
package enrichment

import "context"

// Profile is the loosely-typed response of a domain lookup. Both fields are
// optional; the upstream payload is treated as untrusted.
type Profile struct {
	Name string `json:"name,omitempty"`
	City string `json:"city,omitempty"`
}

// Lookup resolves a company profile for a normalized domain. Implementations
// must honor ctx cancellation and bound their own network timeouts.
type Lookup interface {
	Lookup(ctx context.Context, domain string) (Profile, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, domain string) (Profile, error)

func (f LookupFunc) Lookup(ctx context.Context, domain string) (Profile, error) {
	return f(ctx, domain)
}
