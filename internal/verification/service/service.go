package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"attesta/internal/audit"
	identitymodels "attesta/internal/identity/models"
	"attesta/internal/platform/metrics"
	"attesta/internal/purpose"
	"attesta/internal/verification/device"
	"attesta/internal/verification/models"
	"attesta/internal/verification/store"
	id "attesta/pkg/domain"
	pkgerrors "attesta/pkg/domain-errors"
)

// IdentityReader is the read-only view of the identity module the issuer
// needs. The proof lifecycle never mutates identities.
type IdentityReader interface {
	Get(ctx context.Context, holderID id.HolderID) (*identitymodels.Identity, error)
}

type Option func(*Service)

const defaultRequestTTL = 24 * time.Hour

// Service owns the verification request lifecycle: issuance on the holder
// side and redemption on the authority side.
type Service struct {
	store      store.Store
	identities IdentityReader
	auditor    *audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	requestTTL time.Duration
	now        func() time.Time
}

func NewService(st store.Store, identities IdentityReader, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:      st,
		identities: identities,
		auditor:    auditor,
		logger:     logger,
		requestTTL: defaultRequestTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.requestTTL <= 0 {
		svc.requestTTL = defaultRequestTTL
	}
	return svc
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRequestTTL configures the time-to-live for issued requests.
// If not set or set to zero/negative, defaults to 24 hours.
func WithRequestTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.requestTTL = ttl
		}
	}
}

// WithClock overrides the time source, for tests that exercise expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Issue mints a fresh verification request for (holder, purpose).
//
// Preconditions: the holder's identity is attested (the system's single hard
// authorization gate) and the purpose resolves in the catalog. The disclosed
// attributes are always the purpose's full allow-list; a missing attribute
// fails loudly with incomplete_identity naming the gaps, because a verifier
// must be able to trust that an issued financial_kyc proof really carries a
// credit score.
//
// Every call creates an independently redeemable record; issuances are never
// coalesced, so a holder may hold many simultaneous pending requests for the
// same purpose.
func (s *Service) Issue(ctx context.Context, holderID id.HolderID, purposeKey purpose.Key) (*models.Request, error) {
	if holderID.IsNil() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing holder context")
	}
	p, err := purpose.Get(purposeKey)
	if err != nil {
		return nil, err
	}

	identity, err := s.identities.Get(ctx, holderID)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "no identity captured for holder")
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read identity")
	}
	now := s.now()

	if !identity.Verified {
		s.emitAudit(ctx, audit.Event{
			HolderID: holderID.String(),
			Purpose:  string(purposeKey),
			Action:   audit.ActionIssuanceRejected,
			Decision: audit.DecisionRejected,
			Reason:   audit.ReasonUnverifiedIdentity,
		})
		s.incrementIssuanceRejected(audit.ReasonUnverifiedIdentity)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity is not attested")
	}

	if missing := identity.MissingAttributes(p.RequiredAttributes, now); len(missing) > 0 {
		s.emitAudit(ctx, audit.Event{
			HolderID: holderID.String(),
			Purpose:  string(purposeKey),
			Action:   audit.ActionIssuanceRejected,
			Decision: audit.DecisionRejected,
			Reason:   audit.ReasonIncompleteIdentity,
		})
		s.incrementIssuanceRejected(audit.ReasonIncompleteIdentity)
		return nil, pkgerrors.New(pkgerrors.CodeIncompleteIdentity,
			"identity is missing required attributes: "+strings.Join(missing, ", "))
	}

	attrs := make([]models.AttributeValue, 0, len(p.RequiredAttributes))
	for _, key := range p.RequiredAttributes {
		value, _ := identity.Attribute(key, now)
		attrs = append(attrs, models.AttributeValue{Key: key, Value: value})
	}

	request, err := models.NewRequest(id.NewRequestID(), holderID, p, attrs, now, now.Add(s.requestTTL))
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to save verification request")
	}

	s.emitAudit(ctx, audit.Event{
		HolderID:  holderID.String(),
		RequestID: request.ID.String(),
		Purpose:   string(purposeKey),
		Action:    audit.ActionProofIssued,
		Decision:  audit.DecisionIssued,
		Reason:    audit.ReasonHolderInitiated,
	})
	s.incrementProofsIssued(purposeKey)
	s.logger.InfoContext(ctx, "verification request issued",
		"holder_id", holderID.String(),
		"request_id", request.ID.String(),
		"purpose", purposeKey,
		"expires_at", request.ExpiresAt,
	)
	return request, nil
}

// Redeem exchanges a raw token payload for a disclosure result. All expected
// negative outcomes (unknown id, expired, already redeemed) return a
// Valid=false result with a nil error: they are user-facing verdicts, not
// faults. Only infrastructure failures surface as errors.
func (s *Service) Redeem(ctx context.Context, rawRequestID string, verifierUA string) (*models.DisclosureResult, error) {
	requestID, err := id.ParseRequestID(rawRequestID)
	if err != nil {
		// A token that decodes but does not reference a request is an
		// expected negative, same as an unknown id.
		s.incrementRedemptions("invalid")
		return &models.DisclosureResult{Valid: false, Reason: audit.ReasonUnknownRequest}, nil
	}

	now := s.now()
	verifierDevice := device.Describe(verifierUA)

	request, err := s.store.MarkRedeemed(ctx, requestID, now, verifierDevice)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.incrementRedemptions("invalid")
			return &models.DisclosureResult{Valid: false, Reason: audit.ReasonUnknownRequest}, nil
		case errors.Is(err, store.ErrNotPending):
			reason := audit.ReasonAlreadyRedeemed
			if request.ComputeStatus(now) == models.StatusExpired {
				reason = audit.ReasonExpired
			}
			s.emitAudit(ctx, audit.Event{
				HolderID:  request.HolderID.String(),
				RequestID: requestID.String(),
				Purpose:   string(request.Purpose),
				Action:    audit.ActionRedemptionDenied,
				Decision:  audit.DecisionDenied,
				Reason:    reason,
				Device:    verifierDevice,
			})
			s.incrementRedemptions("invalid")
			return &models.DisclosureResult{Valid: false, Purpose: request.Purpose, Reason: reason}, nil
		default:
			s.incrementRedemptions("failed")
			return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to redeem verification request")
		}
	}

	s.emitAudit(ctx, audit.Event{
		HolderID:  request.HolderID.String(),
		RequestID: requestID.String(),
		Purpose:   string(request.Purpose),
		Action:    audit.ActionProofRedeemed,
		Decision:  audit.DecisionRedeemed,
		Reason:    audit.ReasonVerifierInitiated,
		Device:    verifierDevice,
	})
	s.incrementRedemptions("verified")
	s.logger.InfoContext(ctx, "verification request redeemed",
		"request_id", requestID.String(),
		"purpose", request.Purpose,
		"verifier_device", verifierDevice,
	)

	return &models.DisclosureResult{
		Valid:      true,
		Purpose:    request.Purpose,
		Attributes: request.AttributeMap(),
	}, nil
}

// Get returns one of the holder's requests with its derived status. Another
// holder's request is reported as not found, never as forbidden, so request
// IDs cannot be probed for existence.
func (s *Service) Get(ctx context.Context, holderID id.HolderID, requestID id.RequestID) (*models.Request, error) {
	if holderID.IsNil() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing holder context")
	}
	request, err := s.store.Find(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to load verification request")
	}
	if request.HolderID != holderID {
		return nil, store.ErrNotFound
	}
	request.Status = request.ComputeStatus(s.now())
	return request, nil
}

// List returns the holder's access log, newest first, with derived statuses.
func (s *Service) List(ctx context.Context, holderID id.HolderID) ([]*models.Request, error) {
	if holderID.IsNil() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing holder context")
	}
	requests, err := s.store.ListByHolder(ctx, holderID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to list verification requests")
	}
	now := s.now()
	for _, request := range requests {
		request.Status = request.ComputeStatus(now)
	}
	return requests, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Emit(ctx, event)
}

// incrementProofsIssued increments the proofs issued metric if metrics are enabled.
func (s *Service) incrementProofsIssued(p purpose.Key) {
	if s.metrics != nil {
		s.metrics.ProofsIssued.WithLabelValues(string(p)).Inc()
		s.metrics.PendingRequests.Inc()
	}
}

// incrementIssuanceRejected increments the rejection metric if metrics are enabled.
func (s *Service) incrementIssuanceRejected(reason string) {
	if s.metrics != nil {
		s.metrics.IssuanceRejected.WithLabelValues(reason).Inc()
	}
}

// incrementRedemptions increments the redemption outcome metric if metrics are enabled.
func (s *Service) incrementRedemptions(outcome string) {
	if s.metrics != nil {
		s.metrics.Redemptions.WithLabelValues(outcome).Inc()
		if outcome == "verified" {
			s.metrics.PendingRequests.Dec()
		}
	}
}
