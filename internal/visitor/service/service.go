package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"visitorreg/internal/audit"
	"visitorreg/internal/visitor/metrics"
	"visitorreg/internal/visitor/models"
	id "visitorreg/pkg/domain"
	dErrors "visitorreg/pkg/domain-errors"
	"visitorreg/pkg/paging"
	"visitorreg/pkg/platform/sentinel"
)

// Store is the persistence port for visitors.
type Store interface {
	// Add stores a new visitor at version 1; a taken register number returns
	// sentinel.ErrAlreadyUsed.
	Add(ctx context.Context, v *models.Visitor) error
	// Update persists a transition when v.Version still matches; otherwise it
	// returns sentinel.ErrConflict. On success v.Version holds the new version.
	Update(ctx context.Context, v *models.Visitor) error
	FindByID(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error)
	FindByRegisterNo(ctx context.Context, registerNo string) (*models.Visitor, error)
	Search(ctx context.Context, filter models.SearchFilter, page paging.Request) ([]*models.Visitor, int, error)
}

// RegisterNoAllocator hands out the next register number for a moment in time.
type RegisterNoAllocator interface {
	Allocate(ctx context.Context, now time.Time) (string, error)
}

// AuditRecorder opens one audit scope per mutation attempt.
type AuditRecorder interface {
	Begin(ctx context.Context, action audit.Action, targetType, targetID string) *audit.Scope
}

// Cache is an optional read-through cache of projections.
type Cache interface {
	Find(ctx context.Context, visitorID id.VisitorID) (*models.VisitorView, error)
	Save(ctx context.Context, view *models.VisitorView) error
	Invalidate(ctx context.Context, visitorID id.VisitorID) error
}

const (
	defaultPageSize           = 20
	defaultRegisterNoAttempts = 3
)

// Service orchestrates the visitor register: check-in, checkout, void, search and
// lookups. Every mutation that passes validation and lookup is audited exactly once.
type Service struct {
	store      Store
	allocator  RegisterNoAllocator
	auditor    AuditRecorder
	cache      Cache
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	pageSize   int
	maxAttempt int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithTracer overrides the OpenTelemetry tracer (defaults to the global provider).
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithPageSize sets the fixed search page size.
func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithRegisterNoAttempts bounds how many register numbers Create tries before
// giving up on repeated collisions.
func WithRegisterNoAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempt = n
		}
	}
}

// New constructs a Service. store, allocator and auditor are required.
func New(store Store, allocator RegisterNoAllocator, auditor AuditRecorder, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("visitor store is required")
	}
	if allocator == nil {
		return nil, errors.New("register number allocator is required")
	}
	if auditor == nil {
		return nil, errors.New("audit recorder is required")
	}
	s := &Service{
		store:      store,
		allocator:  allocator,
		auditor:    auditor,
		pageSize:   defaultPageSize,
		maxAttempt: defaultRegisterNoAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("visitorreg/visitor")
	}
	return s, nil
}

// loadVisitor maps store lookups to domain errors.
func (s *Service) loadVisitor(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	v, err := s.store.FindByID(ctx, visitorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "visitor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load visitor")
	}
	return v, nil
}

// persistTransition writes a transitioned visitor. Stale versions surface as
// CodeConflict and are not retried.
func (s *Service) persistTransition(ctx context.Context, v *models.Visitor) error {
	if err := s.store.Update(ctx, v); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			s.incrementStaleWrite()
			return dErrors.Wrap(err, dErrors.CodeConflict, "visitor was modified concurrently, reload and retry")
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "visitor not found")
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save visitor")
		}
	}
	s.invalidate(ctx, v.ID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, visitorID id.VisitorID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, visitorID); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cached visitor",
			"visitor_id", visitorID.String(),
			"error", err,
		)
	}
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, dErrors.Message(err))
	}
	span.End()
}

func (s *Service) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, start)
	}
}

func (s *Service) incrementStaleWrite() {
	if s.metrics != nil {
		s.metrics.IncrementStaleWrite()
	}
}
