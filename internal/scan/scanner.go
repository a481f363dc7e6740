package scan

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"

	"attesta/internal/authority"
	"attesta/internal/platform/metrics"
	"attesta/internal/scan/tracer"
	"attesta/internal/token"
	dErrors "attesta/pkg/domain-errors"
)

// Disclosure is the authority's verdict as seen by the verifier.
type Disclosure = authority.Disclosure

// Redeemer exchanges an extracted token for a disclosure verdict. The
// identifier is passed through exactly as extracted; a token that names no
// real request comes back as a Valid:false verdict from the authority.
type Redeemer interface {
	Redeem(ctx context.Context, requestID string) (*Disclosure, error)
}

// Failure reasons carried on Failed and Invalid outcomes.
const (
	ReasonTokenNotFound = string(dErrors.CodeTokenNotFound)
	ReasonInvalidProof  = string(dErrors.CodeInvalidProof)
	ReasonFault         = string(dErrors.CodeInternal)
	ReasonAborted       = string(dErrors.CodeTimeout)
)

// Scanner runs submissions through the scan state machine. At most one
// submission is in flight; a landed verdict must be Reset before the next.
type Scanner struct {
	session   *Session
	authority Redeemer
	tracer    tracer.Tracer
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type ScannerOption func(*Scanner)

// WithTracer replaces the default no-op tracer.
func WithTracer(t tracer.Tracer) ScannerOption {
	return func(s *Scanner) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithMetrics sets the metrics instance for the scanner.
func WithMetrics(m *metrics.Metrics) ScannerOption {
	return func(s *Scanner) {
		s.metrics = m
	}
}

// NewScanner creates a Scanner redeeming against the given authority.
func NewScanner(redeemer Redeemer, logger *slog.Logger, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		session:   NewSession(),
		authority: redeemer,
		tracer:    tracer.NewNoop(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current phase of the scan flow.
func (s *Scanner) State() State {
	return s.session.State()
}

// Reset acknowledges a landed verdict and readies the scanner for the next
// submission.
func (s *Scanner) Reset() {
	s.session.Reset()
}

// Submit runs one image through the full flow and returns where it landed.
// Every landed verdict, Verified, Invalid, or Failed, returns a non-nil
// Outcome with a nil error; an error means the submission was refused or the
// state machine was violated. Exactly one redemption call is made per
// successfully decoded image, and cancelling ctx aborts it mid-flight.
func (s *Scanner) Submit(ctx context.Context, r io.Reader) (*Outcome, error) {
	if err := s.session.begin(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanScanSubmit)
	outcome, err := s.run(ctx, r)
	span.End(err)
	if err != nil {
		return nil, err
	}

	if outcome.State == StateFailed && s.metrics != nil {
		s.metrics.ScanFailures.WithLabelValues(outcome.Reason).Inc()
	}
	return outcome, nil
}

func (s *Scanner) run(ctx context.Context, r io.Reader) (*Outcome, error) {
	// Acquiring: read the submitted raster.
	img, _, decodeErr := image.Decode(r)
	if decodeErr != nil {
		s.logger.WarnContext(ctx, "submitted image unreadable", "error", decodeErr)
		return s.fail(EventTokenMissing, ReasonTokenNotFound)
	}
	if err := s.session.advance(EventImageDecoded); err != nil {
		return nil, err
	}

	// Analyzing: find and extract the token.
	_, decodeSpan := s.tracer.Start(ctx, tracer.SpanScanDecode)
	requestID, tokenErr := extractToken(img)
	decodeSpan.End(tokenErr)
	if tokenErr != nil {
		s.logger.WarnContext(ctx, "no verification token in image", "error", tokenErr)
		return s.fail(EventTokenMissing, ReasonTokenNotFound)
	}
	if err := s.session.advance(EventTokenExtracted); err != nil {
		return nil, err
	}

	// Redeeming: one shot against the authority.
	redeemCtx, redeemSpan := s.tracer.Start(ctx, tracer.SpanScanRedeem,
		tracer.String(tracer.AttrRequestID, requestID),
	)
	disclosure, redeemErr := s.authority.Redeem(redeemCtx, requestID)
	redeemSpan.End(redeemErr)
	if redeemErr != nil {
		reason := ReasonFault
		if dErrors.HasCode(redeemErr, dErrors.CodeTimeout) {
			reason = ReasonAborted
		}
		s.logger.ErrorContext(ctx, "redemption fault",
			"request_id", requestID,
			"error", redeemErr,
		)
		outcome, err := s.fail(EventFaulted, reason)
		if outcome != nil {
			outcome.RequestID = requestID
		}
		return outcome, err
	}

	event := EventRedeemAccepted
	outcome := &Outcome{
		RequestID:  requestID,
		Disclosure: disclosure,
	}
	if !disclosure.Valid {
		event = EventRedeemRejected
		outcome.Reason = ReasonInvalidProof
	}
	if err := s.session.land(event, outcome); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "scan landed",
		"request_id", requestID,
		"state", outcome.State,
		"purpose", disclosure.Purpose,
	)
	return outcome, nil
}

func (s *Scanner) fail(event Event, reason string) (*Outcome, error) {
	outcome := &Outcome{Reason: reason}
	if err := s.session.land(event, outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

func extractToken(img image.Image) (string, error) {
	payload, err := token.DecodeImage(img)
	if err != nil {
		return "", err
	}
	return token.ExtractRequestID(payload)
}
