package models

import (
	"strings"
	"time"

	"visitorreg/pkg/privacy"
	"visitorreg/pkg/validation"
)

// CreateVisitorRequest is the check-in input. IDNumber is the raw identifier and
// is masked before anything is stored.
type CreateVisitorRequest struct {
	Name      string     `json:"name" validate:"notblank,max=80"`
	IDNumber  string     `json:"id_number" validate:"max=30"`
	Company   string     `json:"company" validate:"max=120"`
	Purpose   string     `json:"purpose" validate:"notblank,max=200"`
	HostName  string     `json:"host_name" validate:"notblank,max=80"`
	CheckInAt *time.Time `json:"check_in_at,omitempty"`
	Phone     string     `json:"phone" validate:"max=30"`
	Note      string     `json:"note" validate:"max=400"`

	// CheckIDFormat enables the local id format check on IDNumber.
	CheckIDFormat bool `json:"check_id_format"`
}

// Normalize trims every string field in place.
func (r *CreateVisitorRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.IDNumber = strings.TrimSpace(r.IDNumber)
	r.Company = strings.TrimSpace(r.Company)
	r.Purpose = strings.TrimSpace(r.Purpose)
	r.HostName = strings.TrimSpace(r.HostName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Note = strings.TrimSpace(r.Note)
}

// Validate reports every field violation at once.
func (r *CreateVisitorRequest) Validate() error {
	if r == nil {
		return validation.Join([]string{"request is required"})
	}
	violations := validation.Violations(r)
	if r.CheckIDFormat && r.IDNumber != "" && !privacy.IsValidLocalID(r.IDNumber) {
		violations = append(violations, "id_number must be one letter followed by 9 digits")
	}
	return validation.Join(violations)
}

// SearchFilter narrows a visitor search. Zero values mean "no filter".
// From and To are inclusive bounds on CheckInAt.
type SearchFilter struct {
	From     *time.Time
	To       *time.Time
	Name     string
	Company  string
	HostName string
	Status   *Status
}

// Normalize trims the substring filters.
func (f *SearchFilter) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Company = strings.TrimSpace(f.Company)
	f.HostName = strings.TrimSpace(f.HostName)
}

// Matches applies the filter to one visitor. Substring filters ignore case.
func (f SearchFilter) Matches(v *Visitor) bool {
	if f.From != nil && v.CheckInAt.Before(*f.From) {
		return false
	}
	if f.To != nil && v.CheckInAt.After(*f.To) {
		return false
	}
	if f.Status != nil && v.Status != *f.Status {
		return false
	}
	return containsFold(v.Name, f.Name) &&
		containsFold(v.Company, f.Company) &&
		containsFold(v.HostName, f.HostName)
}

func containsFold(value, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(needle))
}
