package models

import (
	"time"

	id "visitorreg/pkg/domain"
	dErrors "visitorreg/pkg/domain-errors"
)

// Visitor is the aggregate root for one visit to the site.
//
// Invariants:
//   - ID and RegisterNo are assigned at construction and never change
//   - Status starts at InSite; once it leaves InSite it never returns
//   - CheckOutAt is set if and only if Status == CheckedOut
//   - IDNumberMasked only ever holds a masked identifier (see privacy.MaskIdentifier)
//   - Checkout and Void are the only mutators; both take the current time explicitly
//   - Version is owned by the store and changes on every persisted update
type Visitor struct {
	ID             id.VisitorID
	RegisterNo     string
	Name           string
	IDNumberMasked string
	Company        string
	Purpose        string
	HostName       string
	CheckInAt      time.Time
	CheckOutAt     *time.Time
	Phone          string
	Note           string
	Status         Status
	CreatedAt      time.Time
	CreatedBy      string
	UpdatedAt      *time.Time
	UpdatedBy      string
	Version        int64
}

// NewVisitorParams carries already-normalized fields for NewVisitor.
type NewVisitorParams struct {
	ID             id.VisitorID
	RegisterNo     string
	Name           string
	IDNumberMasked string
	Company        string
	Purpose        string
	HostName       string
	CheckInAt      time.Time
	Phone          string
	Note           string
	CreatedBy      string
	Now            time.Time
}

// NewVisitor constructs an InSite visitor. Field-level input rules are enforced by
// CreateVisitorRequest.Validate; this guards the structural invariants only.
func NewVisitor(p NewVisitorParams) (*Visitor, error) {
	if p.ID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "visitor id is required")
	}
	if p.RegisterNo == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "register number is required")
	}
	if p.CheckInAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "check-in time is required")
	}
	return &Visitor{
		ID:             p.ID,
		RegisterNo:     p.RegisterNo,
		Name:           p.Name,
		IDNumberMasked: p.IDNumberMasked,
		Company:        p.Company,
		Purpose:        p.Purpose,
		HostName:       p.HostName,
		CheckInAt:      p.CheckInAt,
		Phone:          p.Phone,
		Note:           p.Note,
		Status:         StatusInSite,
		CreatedAt:      p.Now,
		CreatedBy:      p.CreatedBy,
	}, nil
}

// CanCheckout reports whether the visit is still open.
func (v *Visitor) CanCheckout() bool {
	return v.Status.IsValid() && !v.Status.IsTerminal()
}

// Checkout closes the visit at the given time. A visit that has already ended or
// was voided is left untouched and an invariant violation is returned.
func (v *Visitor) Checkout(at time.Time, by string, now time.Time) error {
	if !v.CanCheckout() {
		return dErrors.New(dErrors.CodeInvariantViolation, "visit has already ended or was voided and cannot be checked out again")
	}
	v.CheckOutAt = &at
	v.Status = StatusCheckedOut
	v.touch(by, now)
	return nil
}

// CanVoid reports whether the visit may still be voided.
func (v *Visitor) CanVoid() bool {
	return v.Status.IsValid() && !v.Status.IsTerminal()
}

// Void cancels an open visit. Voiding a checked-out visit is rejected so that
// CheckOutAt stays paired with the CheckedOut status.
func (v *Visitor) Void(by string, now time.Time) error {
	if !v.CanVoid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "visit has already ended or was voided and cannot be voided")
	}
	v.Status = StatusVoided
	v.touch(by, now)
	return nil
}

func (v *Visitor) touch(by string, now time.Time) {
	v.UpdatedAt = &now
	v.UpdatedBy = by
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (v *Visitor) Clone() *Visitor {
	if v == nil {
		return nil
	}
	c := *v
	if v.CheckOutAt != nil {
		t := *v.CheckOutAt
		c.CheckOutAt = &t
	}
	if v.UpdatedAt != nil {
		t := *v.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}
