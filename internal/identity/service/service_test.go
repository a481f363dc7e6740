package service_test

//go:generate mockgen -destination=mocks/mocks.go -package=mocks attesta/internal/identity/store Store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"attesta/internal/audit"
	"attesta/internal/identity/models"
	"attesta/internal/identity/service"
	"attesta/internal/identity/service/mocks"
	"attesta/internal/identity/store"
	id "attesta/pkg/domain"
	pkgerrors "attesta/pkg/domain-errors"
)

// stubAttestor succeeds or fails on demand.
type stubAttestor struct {
	authorityID string
	err         error
	calls       int
}

func (a *stubAttestor) Attest(_ context.Context, _ *models.Identity) (string, error) {
	a.calls++
	return a.authorityID, a.err
}

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockStore  *mocks.MockStore
	attestor   *stubAttestor
	auditStore *audit.InMemoryStore
	service    *service.Service
	holderID   id.HolderID
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.attestor = &stubAttestor{authorityID: "ANDI-1A2B3C4D"}
	s.auditStore = audit.NewInMemoryStore()
	s.holderID = id.NewHolderID()
	s.service = service.NewService(
		s.mockStore,
		s.attestor,
		audit.NewPublisher(s.auditStore),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) captureInput() service.CaptureInput {
	return service.CaptureInput{
		FullName:    "Ananya Rao",
		DOB:         time.Date(1994, 6, 2, 0, 0, 0, 0, time.UTC),
		Gender:      "female",
		Address:     "12 MG Road, Bengaluru",
		TaxID:       "ABCDE1234F",
		BloodGroup:  "O+",
		CreditScore: 760,
	}
}

func (s *ServiceSuite) TestCapture() {
	s.Run("creates an identity on first capture", func() {
		s.mockStore.EXPECT().Find(gomock.Any(), s.holderID).Return(nil, store.ErrNotFound)
		var saved *models.Identity
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, identity *models.Identity) error {
				saved = identity
				return nil
			})

		identity, err := s.service.Capture(context.Background(), s.holderID, s.captureInput())
		s.Require().NoError(err)
		s.Equal("Ananya Rao", identity.FullName)
		s.Equal(760, identity.CreditScore)
		s.False(identity.Verified)
		s.Equal(saved.HolderID, s.holderID)
	})

	s.Run("update keeps attestation state", func() {
		existing := &models.Identity{
			HolderID:    s.holderID,
			FullName:    "Ananya Rao",
			Verified:    true,
			AuthorityID: "ANDI-1A2B3C4D",
		}
		s.mockStore.EXPECT().Find(gomock.Any(), s.holderID).Return(existing, nil)
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		in := s.captureInput()
		in.Address = "44 Residency Road, Bengaluru"
		identity, err := s.service.Capture(context.Background(), s.holderID, in)
		s.Require().NoError(err)
		s.Equal("44 Residency Road, Bengaluru", identity.Address)
		s.True(identity.Verified, "re-capture must not strip attestation")
		s.Equal("ANDI-1A2B3C4D", identity.AuthorityID)
	})

	s.Run("rejects empty full name", func() {
		_, err := s.service.Capture(context.Background(), s.holderID, service.CaptureInput{})
		s.True(pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	})

	s.Run("rejects negative credit score", func() {
		in := s.captureInput()
		in.CreditScore = -1
		_, err := s.service.Capture(context.Background(), s.holderID, in)
		s.True(pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	})

	s.Run("nil holder is unauthorized", func() {
		_, err := s.service.Capture(context.Background(), id.HolderID{}, s.captureInput())
		s.True(pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
	})

	s.Run("store save failure wraps as internal", func() {
		s.mockStore.EXPECT().Find(gomock.Any(), s.holderID).Return(nil, store.ErrNotFound)
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := s.service.Capture(context.Background(), s.holderID, s.captureInput())
		s.True(pkgerrors.HasCode(err, pkgerrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestAttest() {
	s.Run("marks the identity verified and audits", func() {
		captured := &models.Identity{HolderID: s.holderID, FullName: "Ananya Rao", DOB: time.Date(1994, 6, 2, 0, 0, 0, 0, time.UTC)}
		s.mockStore.EXPECT().Find(gomock.Any(), s.holderID).Return(captured, nil)
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		identity, err := s.service.Attest(context.Background(), s.holderID)
		s.Require().NoError(err)
		s.True(identity.Verified)
		s.True(strings.HasPrefix(identity.AuthorityID, "ANDI-"))
		s.Equal(1, s.attestor.calls)

		events, listErr := s.auditStore.ListByHolder(context.Background(), s.holderID.String())
		s.Require().NoError(listErr)
		s.Require().Len(events, 1)
		s.Equal(audit.ActionIdentityAttested, events[0].Action)
	})

	s.Run("fails without a captured identity", func() {
		s.mockStore.EXPECT().Find(gomock.Any(), s.holderID).Return(nil, store.ErrNotFound)

		_, err := s.service.Attest(context.Background(), s.holderID)
		s.True(pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
		s.Zero(s.attestor.calls)
	})

	s.Run("already verified is a conflict", func() {
		s.mockStore.EXPECT().Find(gomock.Any(), s.holderID).
			Return(&models.Identity{HolderID: s.holderID, Verified: true}, nil)

		_, err := s.service.Attest(context.Background(), s.holderID)
		s.True(pkgerrors.HasCode(err, pkgerrors.CodeConflict))
		s.Zero(s.attestor.calls)
	})

	s.Run("authority failure surfaces as internal", func() {
		s.attestor.err = errors.New("locker unavailable")
		s.mockStore.EXPECT().Find(gomock.Any(), s.holderID).
			Return(&models.Identity{HolderID: s.holderID, FullName: "Ananya Rao"}, nil)

		_, err := s.service.Attest(context.Background(), s.holderID)
		s.True(pkgerrors.HasCode(err, pkgerrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestGet() {
	s.Run("returns the stored identity", func() {
		s.mockStore.EXPECT().Find(gomock.Any(), s.holderID).
			Return(&models.Identity{HolderID: s.holderID, FullName: "Ananya Rao"}, nil)

		identity, err := s.service.Get(context.Background(), s.holderID)
		s.Require().NoError(err)
		s.Equal("Ananya Rao", identity.FullName)
	})

	s.Run("missing identity keeps the not_found code", func() {
		s.mockStore.EXPECT().Find(gomock.Any(), s.holderID).Return(nil, store.ErrNotFound)

		_, err := s.service.Get(context.Background(), s.holderID)
		s.True(pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	})
}
