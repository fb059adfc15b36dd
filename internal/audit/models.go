package audit

import (
	"time"

	id "visitorreg/pkg/domain"
)

// Result is the outcome recorded for one mutation attempt.
type Result string

const (
	ResultSuccess Result = "SUCCESS"
	ResultFail    Result = "FAIL"
)

// Action is the verb of an audited mutation.
type Action string

const (
	ActionCreate   Action = "CREATE"
	ActionCheckout Action = "CHECKOUT"
	ActionVoid     Action = "VOID"
)

// TargetVisitors is the target type of every visitor mutation.
const TargetVisitors = "Visitors"

// Entry is one immutable audit record. Entries are appended and never updated
// or deleted. Detail must never contain raw personal identifiers.
type Entry struct {
	ID            id.AuditEntryID `json:"id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Actor         string          `json:"actor"`
	Action        Action          `json:"action"`
	TargetType    string          `json:"target_type"`
	TargetID      string          `json:"target_id,omitempty"`
	Result        Result          `json:"result"`
	Detail        string          `json:"detail,omitempty"`
	SourceAddress string          `json:"source_address,omitempty"`
	ClientDevice  string          `json:"client_device,omitempty"`
	RequestID     string          `json:"request_id,omitempty"`
}

// Record is the caller-supplied part of an entry. Actor, SourceAddress and
// ClientDevice are filled from the request context when left empty.
type Record struct {
	Actor         string
	Action        Action
	TargetType    string
	TargetID      string
	Result        Result
	Detail        string
	SourceAddress string
}

// Filter narrows an audit search. From and To are inclusive bounds on OccurredAt;
// Actor matches as a case-insensitive substring; Actions match exactly.
type Filter struct {
	From    *time.Time
	To      *time.Time
	Actor   string
	Actions []Action
	Result  Result
}

// Matches applies the filter to one entry.
func (f Filter) Matches(e *Entry) bool {
	if f.From != nil && e.OccurredAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.OccurredAt.After(*f.To) {
		return false
	}
	if f.Result != "" && e.Result != f.Result {
		return false
	}
	if len(f.Actions) > 0 && !containsAction(f.Actions, e.Action) {
		return false
	}
	if f.Actor != "" && !containsFold(e.Actor, f.Actor) {
		return false
	}
	return true
}

func containsAction(actions []Action, a Action) bool {
	for _, candidate := range actions {
		if candidate == a {
			return true
		}
	}
	return false
}
