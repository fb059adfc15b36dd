//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"visitorreg/internal/visitor/models"
	"visitorreg/internal/visitor/store"
	id "visitorreg/pkg/domain"
	"visitorreg/pkg/paging"
	"visitorreg/pkg/platform/sentinel"
	"visitorreg/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "visitors"))
}

func pgVisitor(registerNo, name string, checkIn time.Time) *models.Visitor {
	// Postgres keeps microseconds; truncate so round-tripped values compare equal.
	checkIn = checkIn.UTC().Truncate(time.Microsecond)
	return &models.Visitor{
		ID:         id.NewVisitorID(),
		RegisterNo: registerNo,
		Name:       name,
		Purpose:    "Meeting",
		HostName:   "Lin",
		CheckInAt:  checkIn,
		Status:     models.StatusInSite,
		CreatedAt:  checkIn,
		CreatedBy:  "guard-1",
	}
}

func (s *PostgresStoreSuite) TestAddAndFind() {
	ctx := context.Background()
	v := pgVisitor("V202602040001", "張三", time.Now())
	v.IDNumberMasked = "A12****789"
	v.Company = "Acme"

	s.Require().NoError(s.store.Add(ctx, v))
	s.Equal(int64(1), v.Version)

	byID, err := s.store.FindByID(ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(v.RegisterNo, byID.RegisterNo)
	s.Equal("A12****789", byID.IDNumberMasked)
	s.Equal("Acme", byID.Company)
	s.Empty(byID.Phone, "absent optional fields come back empty")
	s.Nil(byID.CheckOutAt)
	s.Nil(byID.UpdatedAt)
	s.True(v.CheckInAt.Equal(byID.CheckInAt))
	s.Equal(models.StatusInSite, byID.Status)

	byNo, err := s.store.FindByRegisterNo(ctx, "V202602040001")
	s.Require().NoError(err)
	s.Equal(v.ID, byNo.ID)

	_, err = s.store.FindByID(ctx, id.NewVisitorID())
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindByRegisterNo(ctx, "V000000000000")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateRegisterNoIsAlreadyUsed() {
	ctx := context.Background()
	s.Require().NoError(s.store.Add(ctx, pgVisitor("V202602040001", "A", time.Now())))

	err := s.store.Add(ctx, pgVisitor("V202602040001", "B", time.Now()))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

// Concurrent inserts of the same register number must let exactly one through.
func (s *PostgresStoreSuite) TestConcurrentDuplicateRegisterNo() {
	ctx := context.Background()
	const goroutines = 20

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Add(ctx, pgVisitor("V202602040007", "Racer", time.Now()))
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()

	s.Run("bumps version and persists transition", func() {
		v := pgVisitor("V202602040001", "A", time.Now().Add(-time.Hour))
		s.Require().NoError(s.store.Add(ctx, v))

		now := time.Now().UTC().Truncate(time.Microsecond)
		s.Require().NoError(v.Checkout(now, "guard-2", now))
		s.Require().NoError(s.store.Update(ctx, v))
		s.Equal(int64(2), v.Version)

		got, err := s.store.FindByID(ctx, v.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCheckedOut, got.Status)
		s.Require().NotNil(got.CheckOutAt)
		s.True(now.Equal(*got.CheckOutAt))
		s.Equal("guard-2", got.UpdatedBy)
		s.Equal(int64(2), got.Version)
	})

	s.Run("stale version is a conflict", func() {
		v := pgVisitor("V202602040002", "B", time.Now().Add(-time.Hour))
		s.Require().NoError(s.store.Add(ctx, v))

		stale, err := s.store.FindByID(ctx, v.ID)
		s.Require().NoError(err)

		now := time.Now()
		s.Require().NoError(v.Checkout(now, "guard-1", now))
		s.Require().NoError(s.store.Update(ctx, v))

		s.Require().NoError(stale.Void("guard-2", now))
		err = s.store.Update(ctx, stale)
		s.ErrorIs(err, sentinel.ErrConflict)

		got, err := s.store.FindByID(ctx, v.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCheckedOut, got.Status, "the losing write must not land")
	})

	s.Run("missing visitor is not found", func() {
		v := pgVisitor("V202602040003", "C", time.Now())
		v.Version = 1
		err := s.store.Update(ctx, v)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestSearch() {
	ctx := context.Background()
	base := time.Date(2026, 2, 4, 9, 0, 0, 0, time.UTC)

	fixtures := []*models.Visitor{
		pgVisitor("V202602040001", "Alice Wang", base),
		pgVisitor("V202602040002", "Bob Chen", base.Add(time.Hour)),
		pgVisitor("V202602040003", "alice_lee", base.Add(2*time.Hour)),
		pgVisitor("V202602050001", "Carol 100%", base.Add(24*time.Hour)),
	}
	fixtures[0].Company = "Acme"
	fixtures[1].Company = "Globex"
	fixtures[1].HostName = "Mei"
	for _, v := range fixtures {
		s.Require().NoError(s.store.Add(ctx, v))
	}
	now := base.Add(3 * time.Hour)
	s.Require().NoError(fixtures[1].Checkout(now, "guard-1", now))
	s.Require().NoError(s.store.Update(ctx, fixtures[1]))

	all := paging.Request{Index: 0, Size: 10}

	s.Run("no filter returns everything most recent first", func() {
		got, total, err := s.store.Search(ctx, models.SearchFilter{}, all)
		s.Require().NoError(err)
		s.Equal(4, total)
		s.Require().Len(got, 4)
		s.Equal("V202602050001", got[0].RegisterNo)
		s.Equal("V202602040001", got[3].RegisterNo)
	})

	s.Run("name matches case-insensitively", func() {
		got, total, err := s.store.Search(ctx, models.SearchFilter{Name: "ALICE"}, all)
		s.Require().NoError(err)
		s.Equal(2, total)
		s.Len(got, 2)
	})

	s.Run("wildcards in the filter are literal", func() {
		got, _, err := s.store.Search(ctx, models.SearchFilter{Name: "_"}, all)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal("alice_lee", got[0].Name)

		got, _, err = s.store.Search(ctx, models.SearchFilter{Name: "%"}, all)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal("Carol 100%", got[0].Name)
	})

	s.Run("date range is inclusive", func() {
		from := base
		to := base.Add(time.Hour)
		got, total, err := s.store.Search(ctx, models.SearchFilter{From: &from, To: &to}, all)
		s.Require().NoError(err)
		s.Equal(2, total)
		s.Len(got, 2)
	})

	s.Run("company host and status combine", func() {
		status := models.StatusCheckedOut
		got, _, err := s.store.Search(ctx, models.SearchFilter{
			Company:  "glob",
			HostName: "mei",
			Status:   &status,
		}, all)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal("Bob Chen", got[0].Name)
	})

	s.Run("paging keeps total", func() {
		got, total, err := s.store.Search(ctx, models.SearchFilter{}, paging.Request{Index: 1, Size: 3})
		s.Require().NoError(err)
		s.Equal(4, total)
		s.Require().Len(got, 1)
		s.Equal("V202602040001", got[0].RegisterNo)
	})

	s.Run("no match is empty not nil", func() {
		got, total, err := s.store.Search(ctx, models.SearchFilter{Name: "nobody"}, all)
		s.Require().NoError(err)
		s.Zero(total)
		s.NotNil(got)
		s.Empty(got)
	})
}

func (s *PostgresStoreSuite) TestPeekLatestRegisterNo() {
	ctx := context.Background()

	_, ok, err := s.store.PeekLatestRegisterNo(ctx, "V20260204")
	s.Require().NoError(err)
	s.False(ok)

	for _, no := range []string{"V202602040002", "V202602040010", "V202602040009", "V202602050001"} {
		s.Require().NoError(s.store.Add(ctx, pgVisitor(no, "X", time.Now())))
	}

	latest, ok, err := s.store.PeekLatestRegisterNo(ctx, "V20260204")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("V202602040010", latest)
}
