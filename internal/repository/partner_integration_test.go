//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"food-dispatch/internal/apperr"
	"food-dispatch/internal/domain"
	"food-dispatch/internal/repository"
)

type PartnerRepositorySuite struct {
	suite.Suite
	repo *repository.PartnerRepo
}

func (s *PartnerRepositorySuite) SetupSuite() {
	s.Require().NotNil(tcPool, "tcPool must be initialized in TestMain")
	s.repo = repository.NewPartnerRepo(tcPool)
}

func (s *PartnerRepositorySuite) SetupTest() {
	s.Require().NoError(truncateAll(context.Background()))
}

func (s *PartnerRepositorySuite) seed(names ...string) {
	for i, n := range names {
		s.Require().NoError(s.repo.Create(context.Background(), &domain.Partner{ID: fmt.Sprintf("p%d", i+1), Name: n}))
	}
}

func (s *PartnerRepositorySuite) TestCreateAndGet() {
	ctx := context.Background()
	s.seed("bob")

	got, err := s.repo.Get(ctx, "p1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("bob", got.Name)
	s.Equal(domain.PartnerIdle, got.Status)
	s.True(got.Consistent())

	missing, err := s.repo.Get(ctx, "nope")
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *PartnerRepositorySuite) TestCreate_Duplicate() {
	s.seed("bob")
	err := s.repo.Create(context.Background(), &domain.Partner{ID: "p1", Name: "other"})
	s.ErrorIs(err, apperr.ErrConflict)
}

func (s *PartnerRepositorySuite) TestListIdleInRegistrationOrder() {
	ctx := context.Background()
	s.seed("zed", "amy", "kim")

	ok, err := s.repo.MarkBusy(ctx, "p2", "o1", time.Now().Add(time.Minute))
	s.Require().NoError(err)
	s.Require().True(ok)

	idle, err := s.repo.ListIdle(ctx)
	s.Require().NoError(err)
	s.Require().Len(idle, 2)
	s.Equal("p1", idle[0].ID)
	s.Equal("p3", idle[1].ID)

	busy, err := s.repo.ListBusy(ctx)
	s.Require().NoError(err)
	s.Require().Len(busy, 1)
	s.Equal("o1", busy[0].CurrentOrderID)
	s.NotNil(busy[0].DeliveryEndTime)
}

func (s *PartnerRepositorySuite) TestMarkBusy_ConcurrentSingleWinner() {
	ctx := context.Background()
	s.seed("bob")

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := s.repo.MarkBusy(ctx, "p1", fmt.Sprintf("o%d", i), time.Now().Add(time.Minute))
			s.NoError(err)
			if ok {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()
	s.EqualValues(1, wins.Load())
}

func (s *PartnerRepositorySuite) TestRelease_KeyedOnOrder() {
	ctx := context.Background()
	s.seed("bob")

	_, err := s.repo.MarkBusy(ctx, "p1", "o1", time.Now().Add(time.Minute))
	s.Require().NoError(err)

	ok, err := s.repo.Release(ctx, "p1", "o2")
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.repo.Release(ctx, "p1", "o1")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.repo.Release(ctx, "p1", "o1")
	s.Require().NoError(err)
	s.False(ok)

	got, err := s.repo.Get(ctx, "p1")
	s.Require().NoError(err)
	s.Equal(domain.PartnerIdle, got.Status)
	s.Empty(got.CurrentOrderID)
	s.Nil(got.DeliveryEndTime)
}

func (s *PartnerRepositorySuite) TestCanceledContextIsStoreUnavailable() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.repo.ListBusy(ctx)
	s.ErrorIs(err, apperr.ErrStoreUnavailable)
}

func TestPartnerRepositorySuite(t *testing.T) {
	suite.Run(t, new(PartnerRepositorySuite))
}
