//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"visitorreg/internal/visitor/cache"
	"visitorreg/internal/visitor/models"
	id "visitorreg/pkg/domain"
	"visitorreg/pkg/platform/sentinel"
	"visitorreg/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.cache = cache.NewRedis(s.redis.Client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func testView() *models.VisitorView {
	return &models.VisitorView{
		ID:             id.NewVisitorID(),
		RegisterNo:     "V202602040001",
		Name:           "張三",
		IDNumberMasked: "A12****789",
		Purpose:        "Meeting",
		HostName:       "Lin",
		CheckInAt:      time.Date(2026, 2, 4, 9, 0, 0, 0, time.UTC),
		Status:         models.StatusInSite.String(),
		StatusLabel:    models.StatusInSite.Label(),
	}
}

func (s *RedisCacheSuite) TestSaveFindInvalidate() {
	ctx := context.Background()
	view := testView()

	_, err := s.cache.Find(ctx, view.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.cache.Save(ctx, view))

	got, err := s.cache.Find(ctx, view.ID)
	s.Require().NoError(err)
	s.Equal(view.RegisterNo, got.RegisterNo)
	s.Equal(view.IDNumberMasked, got.IDNumberMasked)
	s.True(view.CheckInAt.Equal(got.CheckInAt))
	s.Equal(models.StatusInSite.String(), got.Status)
	s.Equal(view.StatusLabel, got.StatusLabel)

	s.Require().NoError(s.cache.Invalidate(ctx, view.ID))
	_, err = s.cache.Find(ctx, view.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisCacheSuite) TestEntriesExpire() {
	ctx := context.Background()
	view := testView()
	s.Require().NoError(s.cache.Save(ctx, view))

	ttl, err := s.redis.Client.TTL(ctx, "visitor:"+view.ID.String()).Result()
	s.Require().NoError(err)
	s.Positive(ttl)
	s.LessOrEqual(ttl, time.Minute)
}

func (s *RedisCacheSuite) TestInvalidateMissingKeyIsNoop() {
	s.NoError(s.cache.Invalidate(context.Background(), id.NewVisitorID()))
}

func (s *RedisCacheSuite) TestCorruptEntryIsAnError() {
	ctx := context.Background()
	visitorID := id.NewVisitorID()
	s.Require().NoError(s.redis.Client.Set(ctx, "visitor:"+visitorID.String(), "{not json", time.Minute).Err())

	_, err := s.cache.Find(ctx, visitorID)
	s.Require().Error(err)
	s.NotErrorIs(err, sentinel.ErrNotFound)
}
