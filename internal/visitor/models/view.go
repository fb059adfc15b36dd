package models

import (
	"time"

	id "visitorreg/pkg/domain"
)

// VisitorView is the only outward shape of a visitor. It never carries the raw
// identifier.
type VisitorView struct {
	ID             id.VisitorID `json:"id"`
	RegisterNo     string       `json:"register_no"`
	Name           string       `json:"name"`
	IDNumberMasked string       `json:"id_number_masked,omitempty"`
	Company        string       `json:"company,omitempty"`
	Purpose        string       `json:"purpose"`
	HostName       string       `json:"host_name"`
	CheckInAt      time.Time    `json:"check_in_at"`
	CheckOutAt     *time.Time   `json:"check_out_at,omitempty"`
	Phone          string       `json:"phone,omitempty"`
	Note           string       `json:"note,omitempty"`
	Status         string       `json:"status"`
	StatusLabel    string       `json:"status_label"`
	CreatedAt      time.Time    `json:"created_at"`
	CreatedBy      string       `json:"created_by"`
}

// ToView projects the visitor for callers.
func (v *Visitor) ToView() *VisitorView {
	view := &VisitorView{
		ID:             v.ID,
		RegisterNo:     v.RegisterNo,
		Name:           v.Name,
		IDNumberMasked: v.IDNumberMasked,
		Company:        v.Company,
		Purpose:        v.Purpose,
		HostName:       v.HostName,
		CheckInAt:      v.CheckInAt,
		Phone:          v.Phone,
		Note:           v.Note,
		Status:         v.Status.String(),
		StatusLabel:    v.Status.Label(),
		CreatedAt:      v.CreatedAt,
		CreatedBy:      v.CreatedBy,
	}
	if v.CheckOutAt != nil {
		t := *v.CheckOutAt
		view.CheckOutAt = &t
	}
	return view
}
