package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"visitorreg/internal/visitor/models"
	id "visitorreg/pkg/domain"
	dErrors "visitorreg/pkg/domain-errors"
	"visitorreg/pkg/paging"
	"visitorreg/pkg/platform/sentinel"
)

// Search returns one page of visitors matching every supplied filter, most recent
// check-in first. The page size is fixed by configuration.
func (s *Service) Search(ctx context.Context, filter models.SearchFilter, pageIndex int) (result paging.Page[*models.VisitorView], err error) {
	start := time.Now()
	defer s.observe("search", start)
	ctx, span := s.startSpan(ctx, "visitor.search")
	defer func() { endSpan(span, err) }()

	filter.Normalize()
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return paging.Page[*models.VisitorView]{}, dErrors.New(dErrors.CodeValidation, "to must not be before from")
	}
	page := paging.Request{Index: pageIndex, Size: s.pageSize}.Normalize(s.pageSize)

	items, total, err := s.store.Search(ctx, filter, page)
	if err != nil {
		return paging.Page[*models.VisitorView]{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search visitors")
	}
	return paging.Map(paging.New(items, total, page), (*models.Visitor).ToView), nil
}

// GetDetail returns the projection for visitorID. found is false when no such
// visitor exists; that is not an error.
func (s *Service) GetDetail(ctx context.Context, visitorID id.VisitorID) (view *models.VisitorView, found bool, err error) {
	start := time.Now()
	defer s.observe("get_detail", start)

	if s.cache != nil {
		cached, cacheErr := s.cache.Find(ctx, visitorID)
		switch {
		case cacheErr == nil:
			s.countCache(true)
			return cached, true, nil
		case !errors.Is(cacheErr, sentinel.ErrNotFound) && s.logger != nil:
			s.logger.WarnContext(ctx, "visitor cache read failed", "error", cacheErr)
		}
		s.countCache(false)
	}

	v, err := s.store.FindByID(ctx, visitorID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load visitor")
	}

	view = v.ToView()
	if s.cache != nil {
		if err := s.cache.Save(ctx, view); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to cache visitor", "error", err)
		}
	}
	return view, true, nil
}

// GetByRegisterNo returns the projection for a register number, or found=false.
func (s *Service) GetByRegisterNo(ctx context.Context, registerNo string) (*models.VisitorView, bool, error) {
	registerNo = strings.ToUpper(strings.TrimSpace(registerNo))
	if registerNo == "" {
		return nil, false, dErrors.New(dErrors.CodeValidation, "register number is required")
	}
	v, err := s.store.FindByRegisterNo(ctx, registerNo)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load visitor")
	}
	return v.ToView(), true, nil
}

func (s *Service) countCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.IncrementCacheHit()
	} else {
		s.metrics.IncrementCacheMiss()
	}
}
