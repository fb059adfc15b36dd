package models

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a visit. Stored as SMALLINT 0/1/2.
type Status int16

const (
	StatusInSite     Status = 0
	StatusCheckedOut Status = 1
	StatusVoided     Status = 2
)

// UnknownStatusLabel is shown for any value outside the three defined states.
const UnknownStatusLabel = "Unknown"

var statusLabels = map[Status]string{
	StatusInSite:     "On site",
	StatusCheckedOut: "Checked out",
	StatusVoided:     "Voided",
}

var statusCodes = map[Status]string{
	StatusInSite:     "in_site",
	StatusCheckedOut: "checked_out",
	StatusVoided:     "voided",
}

// IsValid reports whether s is one of the defined states.
func (s Status) IsValid() bool {
	_, ok := statusCodes[s]
	return ok
}

// IsTerminal reports whether no transition can leave s.
func (s Status) IsTerminal() bool {
	return s == StatusCheckedOut || s == StatusVoided
}

// Label returns the human-readable label, never blank.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return UnknownStatusLabel
}

// String returns the wire code (in_site, checked_out, voided).
func (s Status) String() string {
	if code, ok := statusCodes[s]; ok {
		return code
	}
	return fmt.Sprintf("status(%d)", int16(s))
}

// ParseStatus parses a wire code, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for s, code := range statusCodes {
		if code == normalized {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown visitor status %q", raw)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("cannot encode visitor status %d", int16(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
