package models

import (
	"time"

	id "orgbook/pkg/domain"
	dErrors "orgbook/pkg/domain-errors"
)

// Company is a persisted company record.
//
// Invariants:
//   - Domain, when non-empty, is stored in normalized form and never mutated
//   - Name is non-empty
//   - Position is strictly increasing within a workspace and never reused
//   - CreatedAt is immutable after construction
//
// Companies are created exactly once per normalized domain within a workspace
// and are never updated or deleted by the reconciler.
type Company struct {
	ID          id.CompanyID      `json:"id"`
	WorkspaceID id.WorkspaceID    `json:"workspace_id"`
	Domain      string            `json:"domain,omitempty"`
	Name        string            `json:"name"`
	City        string            `json:"city,omitempty"`
	Position    int64             `json:"position"`
	Source      CreationSource    `json:"source"`
	CreatedBy   id.ContactID      `json:"created_by,omitempty"`
	Attribution map[string]string `json:"attribution,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewCompany constructs a company and validates its invariants. The domain is
// expected to already be normalized; the constructor does not re-normalize.
func NewCompany(workspaceID id.WorkspaceID, domain, name string, position int64, now time.Time) (*Company, error) {
	if workspaceID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "company requires a workspace")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "company name cannot be empty")
	}
	if position <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "company position must be positive")
	}
	return &Company{
		WorkspaceID: workspaceID,
		Domain:      domain,
		Name:        name,
		Position:    position,
		CreatedAt:   now,
	}, nil
}
