package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"visitorreg/internal/audit"
	"visitorreg/internal/visitor/models"
	id "visitorreg/pkg/domain"
	dErrors "visitorreg/pkg/domain-errors"
	"visitorreg/pkg/platform/sentinel"
	"visitorreg/pkg/privacy"
	"visitorreg/pkg/requestcontext"
)

// Create checks a visitor in. Validation failures return before anything is
// allocated, stored or audited. Register number collisions are retried with a
// fresh allocation up to the configured attempt limit.
func (s *Service) Create(ctx context.Context, req *models.CreateVisitorRequest) (view *models.VisitorView, err error) {
	start := time.Now()
	defer s.observe("create", start)
	ctx, span := s.startSpan(ctx, "visitor.create")
	defer func() { endSpan(span, err) }()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	actor := requestcontext.Operator(ctx)
	checkInAt := now
	if req.CheckInAt != nil {
		checkInAt = *req.CheckInAt
	}
	visitorID := id.NewVisitorID()

	scope := s.auditor.Begin(ctx, audit.ActionCreate, audit.TargetVisitors, visitorID.String())
	defer func() { scope.End(err) }()

	v, err := s.createWithRetry(ctx, models.NewVisitorParams{
		ID:             visitorID,
		Name:           req.Name,
		IDNumberMasked: privacy.MaskIdentifier(req.IDNumber),
		Company:        req.Company,
		Purpose:        req.Purpose,
		HostName:       req.HostName,
		CheckInAt:      checkInAt,
		Phone:          req.Phone,
		Note:           req.Note,
		CreatedBy:      actor,
		Now:            now,
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("visitor.register_no", v.RegisterNo))
	scope.SetDetail(fmt.Sprintf("visitor created: %s", v.RegisterNo))
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "visitor checked in",
			"visitor_id", v.ID.String(),
			"register_no", v.RegisterNo,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return v.ToView(), nil
}

func (s *Service) createWithRetry(ctx context.Context, params models.NewVisitorParams) (*models.Visitor, error) {
	for attempt := 1; ; attempt++ {
		registerNo, err := s.allocator.Allocate(ctx, params.Now)
		if err != nil {
			return nil, err
		}
		params.RegisterNo = registerNo

		v, err := models.NewVisitor(params)
		if err != nil {
			return nil, err
		}

		err = s.store.Add(ctx, v)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save visitor")
		}

		if s.metrics != nil {
			s.metrics.IncrementRegisterNoCollision()
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "register number collision",
				"register_no", registerNo,
				"attempt", attempt,
			)
		}
		if attempt >= s.maxAttempt {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "could not allocate a unique register number, retry the check-in")
		}
	}
}

// Checkout closes an open visit. A missing visitor returns not-found without an
// audit entry; every later outcome, including an invalid transition, is audited.
// checkoutAt defaults to the request time when nil.
func (s *Service) Checkout(ctx context.Context, visitorID id.VisitorID, checkoutAt *time.Time) (view *models.VisitorView, err error) {
	start := time.Now()
	defer s.observe("checkout", start)
	ctx, span := s.startSpan(ctx, "visitor.checkout", attribute.String("visitor.id", visitorID.String()))
	defer func() { endSpan(span, err) }()

	v, err := s.loadVisitor(ctx, visitorID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	at := now
	if checkoutAt != nil {
		at = *checkoutAt
		// A closed visit falls through to the audited transition failure below.
		if v.CanCheckout() && at.Before(v.CheckInAt) {
			return nil, dErrors.New(dErrors.CodeValidation, "checkout_at must not be before the check-in time")
		}
	}

	scope := s.auditor.Begin(ctx, audit.ActionCheckout, audit.TargetVisitors, visitorID.String())
	defer func() { scope.End(err) }()

	if err := v.Checkout(at, requestcontext.Operator(ctx), now); err != nil {
		return nil, err
	}
	if err := s.persistTransition(ctx, v); err != nil {
		return nil, err
	}

	scope.SetDetail(fmt.Sprintf("visitor checked out: %s", v.RegisterNo))
	if s.metrics != nil {
		s.metrics.IncrementCheckedOut()
	}
	return v.ToView(), nil
}

// Void cancels an open visit, e.g. one registered by mistake. Only InSite visits
// can be voided; audit behaviour matches Checkout.
func (s *Service) Void(ctx context.Context, visitorID id.VisitorID) (view *models.VisitorView, err error) {
	start := time.Now()
	defer s.observe("void", start)
	ctx, span := s.startSpan(ctx, "visitor.void", attribute.String("visitor.id", visitorID.String()))
	defer func() { endSpan(span, err) }()

	v, err := s.loadVisitor(ctx, visitorID)
	if err != nil {
		return nil, err
	}

	scope := s.auditor.Begin(ctx, audit.ActionVoid, audit.TargetVisitors, visitorID.String())
	defer func() { scope.End(err) }()

	if err := v.Void(requestcontext.Operator(ctx), requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.persistTransition(ctx, v); err != nil {
		return nil, err
	}

	scope.SetDetail(fmt.Sprintf("visitor voided: %s", v.RegisterNo))
	if s.metrics != nil {
		s.metrics.IncrementVoided()
	}
	return v.ToView(), nil
}
