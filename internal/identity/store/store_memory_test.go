package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"attesta/internal/identity/models"
	"attesta/internal/identity/store"
	id "attesta/pkg/domain"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *store.InMemoryStore
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = store.New()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) TestFind() {
	s.Run("unknown holder returns ErrNotFound", func() {
		_, err := s.store.Find(context.Background(), id.NewHolderID())
		s.ErrorIs(err, store.ErrNotFound)
	})

	s.Run("returns a copy the caller cannot mutate through", func() {
		holderID := id.NewHolderID()
		s.Require().NoError(s.store.Save(context.Background(), &models.Identity{
			HolderID: holderID,
			FullName: "Ananya Rao",
			DOB:      time.Date(1994, 6, 2, 0, 0, 0, 0, time.UTC),
		}))

		first, err := s.store.Find(context.Background(), holderID)
		s.Require().NoError(err)
		first.FullName = "Mallory"

		second, err := s.store.Find(context.Background(), holderID)
		s.Require().NoError(err)
		s.Equal("Ananya Rao", second.FullName)
	})
}

func (s *InMemoryStoreSuite) TestSave() {
	s.Run("detaches from the caller's struct", func() {
		holderID := id.NewHolderID()
		identity := &models.Identity{HolderID: holderID, FullName: "Ananya Rao"}
		s.Require().NoError(s.store.Save(context.Background(), identity))

		identity.FullName = "Mallory"

		stored, err := s.store.Find(context.Background(), holderID)
		s.Require().NoError(err)
		s.Equal("Ananya Rao", stored.FullName)
	})

	s.Run("overwrites the previous record for the holder", func() {
		holderID := id.NewHolderID()
		s.Require().NoError(s.store.Save(context.Background(), &models.Identity{HolderID: holderID, FullName: "Ananya Rao"}))
		s.Require().NoError(s.store.Save(context.Background(), &models.Identity{HolderID: holderID, FullName: "Ananya R. Rao", Verified: true}))

		stored, err := s.store.Find(context.Background(), holderID)
		s.Require().NoError(err)
		s.Equal("Ananya R. Rao", stored.FullName)
		s.True(stored.Verified)
	})
}
