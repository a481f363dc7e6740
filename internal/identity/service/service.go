package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"attesta/internal/audit"
	"attesta/internal/identity/models"
	"attesta/internal/identity/store"
	"attesta/internal/platform/metrics"
	id "attesta/pkg/domain"
	pkgerrors "attesta/pkg/domain-errors"
)

// Attestor is the external identity authority boundary (e.g. DigiLocker).
// It is a black box: on success the holder's captured attributes are
// considered attested and an authority identifier is returned.
type Attestor interface {
	Attest(ctx context.Context, identity *models.Identity) (authorityID string, err error)
}

type Option func(*Service)

// Service owns identity capture and attestation. The proof issuer reads
// identities through it but never mutates them.
type Service struct {
	store    store.Store
	attestor Attestor
	auditor  *audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(st store.Store, attestor Attestor, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:    st,
		attestor: attestor,
		auditor:  auditor,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Get returns the holder's identity.
func (s *Service) Get(ctx context.Context, holderID id.HolderID) (*models.Identity, error) {
	if holderID.IsNil() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing holder context")
	}
	identity, err := s.store.Find(ctx, holderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read identity")
	}
	return identity, nil
}

// CaptureInput carries holder-supplied attribute values.
type CaptureInput struct {
	FullName    string
	DOB         time.Time
	Gender      string
	Address     string
	TaxID       string
	BloodGroup  string
	CreditScore int
}

// Capture creates or updates the holder's attribute bag. Attestation state
// survives updates: only the external authority grants or re-grants it.
func (s *Service) Capture(ctx context.Context, holderID id.HolderID, in CaptureInput) (*models.Identity, error) {
	if holderID.IsNil() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing holder context")
	}
	if in.FullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	if in.CreditScore < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit score cannot be negative")
	}

	identity, err := s.store.Find(ctx, holderID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read identity")
	}
	if identity == nil {
		identity = &models.Identity{HolderID: holderID}
	}

	identity.FullName = in.FullName
	identity.DOB = in.DOB
	identity.Gender = in.Gender
	identity.Address = in.Address
	identity.TaxID = in.TaxID
	identity.BloodGroup = in.BloodGroup
	identity.CreditScore = in.CreditScore
	identity.UpdatedAt = time.Now()

	if err := s.store.Save(ctx, identity); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to save identity")
	}
	return identity, nil
}

// Attest runs the external attestation flow. Fails if no identity has been
// captured yet; a second attestation of an already verified identity is a
// conflict so callers can treat it as "nothing to do".
func (s *Service) Attest(ctx context.Context, holderID id.HolderID) (*models.Identity, error) {
	if holderID.IsNil() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing holder context")
	}
	identity, err := s.store.Find(ctx, holderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no identity captured for holder")
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read identity")
	}
	if identity.Verified {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "identity already attested")
	}

	authorityID, err := s.attestor.Attest(ctx, identity)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "attestation failed")
	}

	identity.Verified = true
	identity.AuthorityID = authorityID
	identity.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, identity); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to save identity")
	}

	s.emitAudit(ctx, audit.Event{
		HolderID: holderID.String(),
		Action:   audit.ActionIdentityAttested,
		Decision: audit.DecisionAttested,
		Reason:   audit.ReasonHolderInitiated,
	})
	if s.metrics != nil {
		s.metrics.IdentitiesAttested.Inc()
	}
	s.logger.InfoContext(ctx, "identity attested",
		"holder_id", holderID.String(),
		"authority_id", authorityID,
	)
	return identity, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Emit(ctx, event)
}
