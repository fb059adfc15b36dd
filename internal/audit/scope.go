package audit

import (
	"context"

	dErrors "visitorreg/pkg/domain-errors"
)

// Scope guarantees exactly one entry per operation. Open it once the operation
// has passed its preconditions and close it with a deferred End:
//
//	scope := recorder.Begin(ctx, audit.ActionCheckout, audit.TargetVisitors, id)
//	defer func() { scope.End(err) }()
//
// End records SUCCESS when err is nil and FAIL with the error message otherwise.
type Scope struct {
	recorder *Recorder
	ctx      context.Context
	rec      Record
	ended    bool
}

// Begin opens an audit scope for one mutation attempt.
func (r *Recorder) Begin(ctx context.Context, action Action, targetType, targetID string) *Scope {
	return &Scope{
		recorder: r,
		ctx:      ctx,
		rec:      Record{Action: action, TargetType: targetType, TargetID: targetID},
	}
}

// SetDetail sets the summary used for a successful outcome.
func (s *Scope) SetDetail(detail string) {
	s.rec.Detail = detail
}

// End writes the entry. Calls after the first are ignored. The write does not
// observe cancellation of the context passed to Begin.
func (s *Scope) End(err error) {
	if s == nil || s.ended {
		return
	}
	s.ended = true
	ctx := context.WithoutCancel(s.ctx)
	if err == nil {
		s.recorder.RecordSuccess(ctx, s.rec)
		return
	}
	rec := s.rec
	rec.Detail = dErrors.Message(err)
	s.recorder.RecordFailure(ctx, rec)
}
