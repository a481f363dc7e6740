package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"attesta/internal/purpose"
	"attesta/internal/verification/models"
	id "attesta/pkg/domain"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store    *InMemoryStore
	holderID id.HolderID
	now      time.Time
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = New()
	s.holderID = id.NewHolderID()
	s.now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) newRequest(createdAt time.Time) *models.Request {
	p, err := purpose.Get(purpose.KeyAgeVerification)
	s.Require().NoError(err)
	request, err := models.NewRequest(
		id.NewRequestID(),
		s.holderID,
		p,
		[]models.AttributeValue{{Key: purpose.AttrAgeOver18, Value: "true"}},
		createdAt,
		createdAt.Add(24*time.Hour),
	)
	s.Require().NoError(err)
	return request
}

func (s *InMemoryStoreSuite) TestFind() {
	s.Run("unknown id returns ErrNotFound", func() {
		_, err := s.store.Find(context.Background(), id.NewRequestID())
		s.ErrorIs(err, ErrNotFound)
	})

	s.Run("returns a copy, not the stored record", func() {
		request := s.newRequest(s.now)
		s.Require().NoError(s.store.Save(context.Background(), request))

		found, err := s.store.Find(context.Background(), request.ID)
		s.Require().NoError(err)
		found.Status = models.StatusExpired

		again, err := s.store.Find(context.Background(), request.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, again.Status, "caller mutation must not leak into the store")
	})
}

func (s *InMemoryStoreSuite) TestListByHolder() {
	s.Run("empty history lists nothing", func() {
		requests, err := s.store.ListByHolder(context.Background(), s.holderID)
		s.Require().NoError(err)
		s.Empty(requests)
	})

	s.Run("lists only the holder's requests, newest first", func() {
		older := s.newRequest(s.now.Add(-2 * time.Hour))
		newer := s.newRequest(s.now.Add(-time.Hour))
		other := s.newRequest(s.now)
		other.HolderID = id.NewHolderID()
		for _, request := range []*models.Request{older, newer, other} {
			s.Require().NoError(s.store.Save(context.Background(), request))
		}

		requests, err := s.store.ListByHolder(context.Background(), s.holderID)
		s.Require().NoError(err)
		s.Require().Len(requests, 2)
		s.Equal(newer.ID, requests[0].ID)
		s.Equal(older.ID, requests[1].ID)
	})
}

func (s *InMemoryStoreSuite) TestMarkRedeemed() {
	s.Run("unknown id returns ErrNotFound", func() {
		_, err := s.store.MarkRedeemed(context.Background(), id.NewRequestID(), s.now, "")
		s.ErrorIs(err, ErrNotFound)
	})

	s.Run("pending request transitions and records the verifier device", func() {
		request := s.newRequest(s.now)
		s.Require().NoError(s.store.Save(context.Background(), request))

		redeemed, err := s.store.MarkRedeemed(context.Background(), request.ID, s.now.Add(time.Minute), "Firefox on Linux")
		s.Require().NoError(err)
		s.Equal(models.StatusRedeemed, redeemed.Status)
		s.Require().NotNil(redeemed.RedeemedAt)
		s.Equal(s.now.Add(time.Minute), *redeemed.RedeemedAt)
		s.Equal("Firefox on Linux", redeemed.VerifierDevice)
	})

	s.Run("second redemption returns ErrNotPending with the redeemed record", func() {
		request := s.newRequest(s.now)
		s.Require().NoError(s.store.Save(context.Background(), request))

		_, err := s.store.MarkRedeemed(context.Background(), request.ID, s.now, "")
		s.Require().NoError(err)

		current, err := s.store.MarkRedeemed(context.Background(), request.ID, s.now.Add(time.Minute), "")
		s.ErrorIs(err, ErrNotPending)
		s.Require().NotNil(current)
		s.Equal(models.StatusRedeemed, current.Status)
	})

	s.Run("expired request returns ErrNotPending with the current record", func() {
		request := s.newRequest(s.now)
		s.Require().NoError(s.store.Save(context.Background(), request))

		current, err := s.store.MarkRedeemed(context.Background(), request.ID, s.now.Add(25*time.Hour), "")
		s.ErrorIs(err, ErrNotPending)
		s.Require().NotNil(current)
		s.Equal(models.StatusExpired, current.ComputeStatus(s.now.Add(25*time.Hour)))
	})
}

// TestMarkRedeemed_SingleWinner drives concurrent redeemers at one pending
// request and asserts exactly one observes the pending->redeemed transition.
func (s *InMemoryStoreSuite) TestMarkRedeemed_SingleWinner() {
	request := s.newRequest(s.now)
	s.Require().NoError(s.store.Save(context.Background(), request))

	const redeemers = 32
	var wg sync.WaitGroup
	results := make([]error, redeemers)
	for i := 0; i < redeemers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.store.MarkRedeemed(context.Background(), request.ID, s.now.Add(time.Minute), "")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			s.ErrorIs(err, ErrNotPending)
		}
	}
	s.Equal(1, winners, "exactly one concurrent redeemer may win")
}
