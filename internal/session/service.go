// Package session owns holder authentication: credentials, signed session
// tokens, and revocation. Handlers read holder identity from the request
// context that the auth middleware populates; nothing is ambient.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"attesta/internal/platform/metrics"
	id "attesta/pkg/domain"
	dErrors "attesta/pkg/domain-errors"
)

// Holder is the authenticated holder context a validated token resolves to.
type Holder struct {
	HolderID  id.HolderID
	SessionID id.SessionID
}

// Service signs holders in and out and validates their tokens.
type Service struct {
	credentials *CredentialStore
	tokens      *TokenService
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time

	mu      sync.Mutex
	revoked map[id.SessionID]struct{}
}

type Option func(*Service)

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source, for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a session Service.
func NewService(credentials *CredentialStore, tokens *TokenService, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		credentials: credentials,
		tokens:      tokens,
		logger:      logger,
		now:         time.Now,
		revoked:     make(map[id.SessionID]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a holder account and signs it in.
func (s *Service) Register(ctx context.Context, username, secret string) (string, error) {
	holderID, err := s.credentials.Register(ctx, username, secret)
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "holder registered", "holder_id", holderID.String())
	return s.issue(ctx, holderID)
}

// SignIn verifies the credential and issues a fresh session token.
func (s *Service) SignIn(ctx context.Context, username, secret string) (string, error) {
	holderID, err := s.credentials.Verify(ctx, username, secret)
	if err != nil {
		return "", err
	}
	return s.issue(ctx, holderID)
}

func (s *Service) issue(ctx context.Context, holderID id.HolderID) (string, error) {
	sessionID := id.NewSessionID()
	token, err := s.tokens.Generate(holderID, sessionID, s.now())
	if err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.Inc()
	}
	s.logger.InfoContext(ctx, "session opened",
		"holder_id", holderID.String(),
		"session_id", sessionID.String(),
	)
	return token, nil
}

// Validate resolves a token to its holder context, rejecting revoked
// sessions.
func (s *Service) Validate(_ context.Context, token string) (*Holder, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	holderID, err := id.ParseHolderID(claims.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	sessionID, err := id.ParseSessionID(claims.SessionID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}

	s.mu.Lock()
	_, revoked := s.revoked[sessionID]
	s.mu.Unlock()
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session has been signed out")
	}
	return &Holder{HolderID: holderID, SessionID: sessionID}, nil
}

// SignOut revokes the session. The token stays cryptographically valid until
// expiry, so revocation is checked on every Validate.
func (s *Service) SignOut(ctx context.Context, sessionID id.SessionID) {
	s.mu.Lock()
	_, already := s.revoked[sessionID]
	s.revoked[sessionID] = struct{}{}
	s.mu.Unlock()
	if !already && s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
	}
	s.logger.InfoContext(ctx, "session closed", "session_id", sessionID.String())
}
