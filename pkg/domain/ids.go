// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "visitorreg/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a VisitorID where an AuditEntryID is expected.
type (
	VisitorID    uuid.UUID
	AuditEntryID uuid.UUID
)

// NewVisitorID returns a fresh random visitor identifier.
func NewVisitorID() VisitorID { return VisitorID(uuid.New()) }

// NewAuditEntryID returns a fresh random audit entry identifier.
func NewAuditEntryID() AuditEntryID { return AuditEntryID(uuid.New()) }

// ParseVisitorID parses an identifier at a trust boundary (handlers, API inputs).
func ParseVisitorID(s string) (VisitorID, error) {
	id, err := parseUUID(s, "visitor ID")
	return VisitorID(id), err
}

func (id VisitorID) String() string    { return uuid.UUID(id).String() }
func (id AuditEntryID) String() string { return uuid.UUID(id).String() }

func (id VisitorID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id AuditEntryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets VisitorID render as a plain UUID string in JSON.
func (id VisitorID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText parses a UUID string into a VisitorID.
func (id *VisitorID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*id = VisitorID(u)
	return nil
}

func (id AuditEntryID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *AuditEntryID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*id = AuditEntryID(u)
	return nil
}

// parseUUID is the shared validation logic. Nil UUIDs are rejected.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, label+" cannot be nil")
	}
	return id, nil
}
