package audit

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mssola/useragent"

	"visitorreg/internal/audit/metrics"
	id "visitorreg/pkg/domain"
	dErrors "visitorreg/pkg/domain-errors"
	"visitorreg/pkg/paging"
	"visitorreg/pkg/requestcontext"
)

// Store persists entries. It is append-only.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	Search(ctx context.Context, filter Filter, page paging.Request) ([]*Entry, int, error)
}

// Recorder appends an audit entry for every attempted mutation. A failed audit
// write is logged and counted but never changes the outcome of the mutation that
// triggered it.
type Recorder struct {
	store    Store
	outbox   chan<- *Entry
	logger   *slog.Logger
	metrics  *metrics.Metrics
	clock    func() time.Time
	pageSize int
}

type Option func(*Recorder)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithOutbox forwards every stored entry to ch for asynchronous streaming.
// Entries are dropped (and counted) when ch is full.
func WithOutbox(ch chan<- *Entry) Option {
	return func(r *Recorder) {
		r.outbox = ch
	}
}

// WithClock overrides the time source used to stamp OccurredAt.
func WithClock(clock func() time.Time) Option {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithPageSize sets the fixed page size used by Search.
func WithPageSize(size int) Option {
	return func(r *Recorder) {
		if size > 0 {
			r.pageSize = size
		}
	}
}

func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{store: store, clock: time.Now, pageSize: 20}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends one entry stamped with the current time.
func (r *Recorder) Record(ctx context.Context, rec Record) {
	entry := r.newEntry(ctx, rec)

	attrs := []any{
		"log_type", "audit",
		"event", strings.ToLower(string(entry.Action)),
		"actor", entry.Actor,
		"target_type", entry.TargetType,
		"target_id", entry.TargetID,
		"result", string(entry.Result),
	}
	if entry.RequestID != "" {
		attrs = append(attrs, "request_id", entry.RequestID)
	}

	if err := r.store.Append(ctx, entry); err != nil {
		r.incrementWriteFailure()
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "failed to write audit entry", append(attrs, "error", err)...)
		}
		return
	}
	r.incrementRecorded(entry)
	if r.logger != nil {
		r.logger.InfoContext(ctx, string(entry.Action), attrs...)
	}
	r.forward(ctx, entry)
}

// RecordSuccess records rec with a SUCCESS result.
func (r *Recorder) RecordSuccess(ctx context.Context, rec Record) {
	rec.Result = ResultSuccess
	r.Record(ctx, rec)
}

// RecordFailure records rec with a FAIL result.
func (r *Recorder) RecordFailure(ctx context.Context, rec Record) {
	rec.Result = ResultFail
	r.Record(ctx, rec)
}

// Search returns one page of entries, most recent first.
func (r *Recorder) Search(ctx context.Context, filter Filter, pageIndex int) (paging.Page[*Entry], error) {
	page := paging.Request{Index: pageIndex, Size: r.pageSize}.Normalize(r.pageSize)
	filter.Actor = strings.TrimSpace(filter.Actor)
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return paging.Page[*Entry]{}, dErrors.New(dErrors.CodeValidation, "to must not be before from")
	}
	items, total, err := r.store.Search(ctx, filter, page)
	if err != nil {
		return paging.Page[*Entry]{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search audit entries")
	}
	return paging.New(items, total, page), nil
}

func (r *Recorder) newEntry(ctx context.Context, rec Record) *Entry {
	actor := rec.Actor
	if actor == "" {
		actor = requestcontext.Operator(ctx)
	}
	source := rec.SourceAddress
	if source == "" {
		source = requestcontext.ClientIP(ctx)
	}
	return &Entry{
		ID:            id.NewAuditEntryID(),
		OccurredAt:    r.clock(),
		Actor:         actor,
		Action:        rec.Action,
		TargetType:    rec.TargetType,
		TargetID:      rec.TargetID,
		Result:        rec.Result,
		Detail:        rec.Detail,
		SourceAddress: source,
		ClientDevice:  DeviceName(requestcontext.UserAgent(ctx)),
		RequestID:     requestcontext.RequestID(ctx),
	}
}

func (r *Recorder) forward(ctx context.Context, entry *Entry) {
	if r.outbox == nil {
		return
	}
	select {
	case r.outbox <- entry:
	default:
		if r.metrics != nil {
			r.metrics.IncrementStreamDropped()
		}
		if r.logger != nil {
			r.logger.WarnContext(ctx, "audit outbox full, entry not streamed", "audit_entry_id", entry.ID.String())
		}
	}
}

func (r *Recorder) incrementRecorded(entry *Entry) {
	if r.metrics != nil {
		r.metrics.IncrementRecorded(string(entry.Action), string(entry.Result))
	}
}

func (r *Recorder) incrementWriteFailure() {
	if r.metrics != nil {
		r.metrics.IncrementWriteFailure()
	}
}

// DeviceName summarizes a User-Agent as "Browser on OS". Empty input yields "".
func DeviceName(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return ""
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()
	if browser == "" {
		browser = "Unknown browser"
	}
	if os == "" {
		return browser
	}
	return browser + " on " + os
}

func containsFold(value, needle string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(needle))
}
