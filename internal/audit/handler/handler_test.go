package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"visitorreg/internal/audit"
	"visitorreg/internal/audit/store/memory"
	"visitorreg/pkg/paging"
	"visitorreg/pkg/requestcontext"
)

// AuditHandlerSuite runs against a real recorder and in-memory store.
type AuditHandlerSuite struct {
	suite.Suite
	router chi.Router
	base   time.Time
}

func TestAuditHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuditHandlerSuite))
}

func (s *AuditHandlerSuite) SetupTest() {
	s.base = time.Date(2026, 2, 4, 9, 0, 0, 0, time.UTC)
	clock := s.base
	recorder := audit.NewRecorder(memory.NewInMemoryStore(),
		audit.WithClock(func() time.Time { return clock }),
		audit.WithPageSize(2),
	)

	ctx := requestcontext.WithOperator(context.Background(), "guard-1")
	seed := []struct {
		action audit.Action
		result audit.Result
	}{
		{audit.ActionCreate, audit.ResultSuccess},
		{audit.ActionCheckout, audit.ResultSuccess},
		{audit.ActionCheckout, audit.ResultFail},
		{audit.ActionVoid, audit.ResultSuccess},
	}
	for i, e := range seed {
		clock = s.base.Add(time.Duration(i) * time.Minute)
		recorder.Record(ctx, audit.Record{Action: e.action, TargetType: audit.TargetVisitors, Result: e.result})
	}

	s.router = chi.NewRouter()
	New(recorder, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *AuditHandlerSuite) get(target string) (*httptest.ResponseRecorder, paging.Page[*audit.Entry]) {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	var page paging.Page[*audit.Entry]
	if w.Code == http.StatusOK {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	}
	return w, page
}

func (s *AuditHandlerSuite) TestPagesNewestFirst() {
	w, page := s.get("/audit-entries")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(4, page.TotalCount)
	s.Equal(2, page.TotalPages)
	s.True(page.HasNextPage)
	s.Equal(audit.ActionVoid, page.Items[0].Action)

	_, page = s.get("/audit-entries?page=1")
	s.Equal(audit.ActionCreate, page.Items[1].Action)
	s.False(page.HasNextPage)
}

func (s *AuditHandlerSuite) TestFilters() {
	_, page := s.get("/audit-entries?action=checkout")
	s.Equal(2, page.TotalCount)

	_, page = s.get("/audit-entries?action=CREATE,void")
	s.Equal(2, page.TotalCount)

	_, page = s.get("/audit-entries?action=CHECKOUT&result=fail")
	s.Equal(1, page.TotalCount)

	_, page = s.get("/audit-entries?actor=GUARD&from=2026-02-04T09:02:00Z")
	s.Equal(2, page.TotalCount)

	_, page = s.get("/audit-entries?actor=nobody")
	s.Equal(0, page.TotalCount)
	s.NotNil(page.Items)
}

func (s *AuditHandlerSuite) TestRejectsBadQuery() {
	w, _ := s.get("/audit-entries?action=DELETE&result=maybe&from=today")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "action must be one of")
	s.Contains(w.Body.String(), "result must be SUCCESS or FAIL")
	s.Contains(w.Body.String(), "from must be an RFC 3339 timestamp")

	w, _ = s.get("/audit-entries?from=2026-02-05T00:00:00Z&to=2026-02-04T00:00:00Z")
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.get("/audit-entries?page=9223372036854775807")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "page must be at most")
}
