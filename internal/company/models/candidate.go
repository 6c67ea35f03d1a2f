package models

import (
	"orgbook/pkg/webdomain"

	id "orgbook/pkg/domain"
)

// CreationSource records the provenance of a company creation request.
type CreationSource string

const (
	SourceContactImport CreationSource = "contact_import"
	SourceEmailSync     CreationSource = "email_sync"
	SourceManual        CreationSource = "manual"
	SourceAPI           CreationSource = "api"
)

// Valid reports whether the source is one of the known provenance values.
func (s CreationSource) Valid() bool {
	switch s {
	case SourceContactImport, SourceEmailSync, SourceManual, SourceAPI:
		return true
	}
	return false
}

// Candidate is a company creation request derived from a contact or email
// domain. Domain may be empty: contacts without a resolvable domain still
// request a company, and the reconciler collapses all such candidates onto a
// single key-less entry.
type Candidate struct {
	Domain      string            `json:"domain,omitempty"`
	Source      CreationSource    `json:"source"`
	CreatedBy   id.ContactID      `json:"created_by,omitempty"`
	Attribution map[string]string `json:"attribution,omitempty"`
}

// NormalizedDomain returns the candidate's dedup and lookup identity.
func (c Candidate) NormalizedDomain() string {
	return webdomain.Normalize(c.Domain)
}
