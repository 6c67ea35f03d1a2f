// Package domain defines typed identifiers shared across modules.
//
// IDs are distinct uuid wrappers so a CompanyID can never be passed where a
// WorkspaceID is expected. Parsing enforces the invariant that IDs are valid,
// non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "orgbook/pkg/domain-errors"
)

type (
	// WorkspaceID identifies a workspace, the isolation boundary for
	// company ordering positions and domain uniqueness.
	WorkspaceID uuid.UUID

	// CompanyID identifies a company record.
	CompanyID uuid.UUID

	// ContactID identifies the contact that triggered a company creation.
	ContactID uuid.UUID
)

func (id WorkspaceID) String() string { return uuid.UUID(id).String() }
func (id CompanyID) String() string   { return uuid.UUID(id).String() }
func (id ContactID) String() string   { return uuid.UUID(id).String() }

func (id WorkspaceID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id CompanyID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ContactID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders IDs as canonical UUID strings in JSON and text
// encodings. Defined types do not inherit uuid.UUID's methods, so each
// wrapper carries its own.
func (id WorkspaceID) MarshalText() ([]byte, error) { return []byte(uuid.UUID(id).String()), nil }
func (id CompanyID) MarshalText() ([]byte, error)   { return []byte(uuid.UUID(id).String()), nil }
func (id ContactID) MarshalText() ([]byte, error)   { return []byte(uuid.UUID(id).String()), nil }

func (id *WorkspaceID) UnmarshalText(text []byte) error {
	u, err := unmarshalUUID(text)
	if err != nil {
		return err
	}
	*id = WorkspaceID(u)
	return nil
}

func (id *CompanyID) UnmarshalText(text []byte) error {
	u, err := unmarshalUUID(text)
	if err != nil {
		return err
	}
	*id = CompanyID(u)
	return nil
}

func (id *ContactID) UnmarshalText(text []byte) error {
	u, err := unmarshalUUID(text)
	if err != nil {
		return err
	}
	*id = ContactID(u)
	return nil
}

func unmarshalUUID(text []byte) (uuid.UUID, error) {
	if len(text) == 0 {
		return uuid.Nil, nil
	}
	return uuid.Parse(string(text))
}

// ParseWorkspaceID parses and validates a workspace ID.
func ParseWorkspaceID(s string) (WorkspaceID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return WorkspaceID{}, err
	}
	return WorkspaceID(u), nil
}

// ParseCompanyID parses and validates a company ID.
func ParseCompanyID(s string) (CompanyID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return CompanyID{}, err
	}
	return CompanyID(u), nil
}

// ParseContactID parses and validates a contact ID.
func ParseContactID(s string) (ContactID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ContactID{}, err
	}
	return ContactID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}
