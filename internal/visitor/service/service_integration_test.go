//go:build integration

package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"visitorreg/internal/audit"
	auditpostgres "visitorreg/internal/audit/store/postgres"
	"visitorreg/internal/visitor/models"
	"visitorreg/internal/visitor/registerno"
	"visitorreg/internal/visitor/service"
	"visitorreg/internal/visitor/store"
	"visitorreg/pkg/paging"
	"visitorreg/pkg/requestcontext"
	"visitorreg/pkg/testutil/containers"
)

// PostgresServiceSuite runs the orchestrators over the Postgres stores, where
// register number uniqueness is decided by the database.
type PostgresServiceSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	audit    *auditpostgres.Store
	service  *service.Service
	ctx      context.Context
}

func TestPostgresServiceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresServiceSuite))
}

func (s *PostgresServiceSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
}

func (s *PostgresServiceSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))

	visitors := store.NewPostgres(s.postgres.DB)
	s.audit = auditpostgres.New(s.postgres.DB)
	svc, err := service.New(visitors,
		registerno.New(visitors, registerno.WithLocation(time.UTC)),
		audit.NewRecorder(s.audit),
		service.WithRegisterNoAttempts(25),
	)
	s.Require().NoError(err)
	s.service = svc

	now := time.Date(2026, 2, 4, 9, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithOperator(requestcontext.WithTime(context.Background(), now), "guard-1")
}

func (s *PostgresServiceSuite) TestConcurrentCheckInsGetDistinctRegisterNumbers() {
	const visitors = 12

	registerNos := make([]string, visitors)
	var g errgroup.Group
	for i := range visitors {
		g.Go(func() error {
			view, err := s.service.Create(s.ctx, &models.CreateVisitorRequest{
				Name:     fmt.Sprintf("Visitor %d", i),
				Purpose:  "Delivery",
				HostName: "Lin",
			})
			if err != nil {
				return err
			}
			registerNos[i] = view.RegisterNo
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	seen := map[string]bool{}
	for _, no := range registerNos {
		s.Regexp(`^V20260204\d{4}$`, no)
		s.False(seen[no], "register number %s issued twice", no)
		seen[no] = true
	}
	s.Len(seen, visitors)

	entries, total, err := s.audit.Search(s.ctx, audit.Filter{Actions: []audit.Action{audit.ActionCreate}}, paging.Request{Size: 50})
	s.Require().NoError(err)
	s.Equal(visitors, total, "one audit entry per check-in, collisions are not audited")
	for _, e := range entries {
		s.Equal(audit.ResultSuccess, e.Result)
		s.Equal("guard-1", e.Actor)
	}
}

func (s *PostgresServiceSuite) TestLifecycleIsAuditedInPostgres() {
	view, err := s.service.Create(s.ctx, &models.CreateVisitorRequest{
		Name:     "王小明",
		IDNumber: "A123456789",
		Purpose:  "Meeting",
		HostName: "Lee",
	})
	s.Require().NoError(err)
	s.Equal("A12****789", view.IDNumberMasked)

	_, err = s.service.Checkout(s.ctx, view.ID, nil)
	s.Require().NoError(err)
	_, err = s.service.Void(s.ctx, view.ID)
	s.Require().Error(err)

	got, found, err := s.service.GetByRegisterNo(s.ctx, view.RegisterNo)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal(models.StatusCheckedOut.String(), got.Status)

	entries, total, err := s.audit.Search(s.ctx, audit.Filter{}, paging.Request{Size: 10})
	s.Require().NoError(err)
	s.Equal(3, total)
	results := map[audit.Action]audit.Result{}
	for _, e := range entries {
		results[e.Action] = e.Result
		s.NotContains(e.Detail, "A123456789")
	}
	s.Equal(audit.ResultSuccess, results[audit.ActionCreate])
	s.Equal(audit.ResultSuccess, results[audit.ActionCheckout])
	s.Equal(audit.ResultFail, results[audit.ActionVoid])
}
