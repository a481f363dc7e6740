package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "attesta/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

// Token expiry is checked against the wall clock by the JWT library, so the
// suite issues with the real clock and backdates only where a test needs an
// expired token.
func (s *ServiceSuite) SetupTest() {
	s.service = NewService(
		NewCredentialStore(),
		NewTokenService("test-signing-key-0123456789abcdef", "attesta", time.Hour),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestLifecycle() {
	ctx := context.Background()

	token, err := s.service.Register(ctx, "jane", "correct-horse-battery")
	s.Require().NoError(err)
	s.NotEmpty(token)

	holder, err := s.service.Validate(ctx, token)
	s.Require().NoError(err)
	s.False(holder.HolderID.IsNil())
	s.False(holder.SessionID.IsNil())

	s.service.SignOut(ctx, holder.SessionID)
	_, err = s.service.Validate(ctx, token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	// A fresh sign-in opens a new session unaffected by the revocation.
	again, err := s.service.SignIn(ctx, "jane", "correct-horse-battery")
	s.Require().NoError(err)
	fresh, err := s.service.Validate(ctx, again)
	s.Require().NoError(err)
	s.Equal(holder.HolderID, fresh.HolderID)
	s.NotEqual(holder.SessionID, fresh.SessionID)
}

func (s *ServiceSuite) TestRegister_Validation() {
	ctx := context.Background()

	s.Run("empty username", func() {
		_, err := s.service.Register(ctx, "  ", "correct-horse-battery")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("short secret", func() {
		_, err := s.service.Register(ctx, "jane", "short")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("duplicate username is a conflict, case-insensitively", func() {
		_, err := s.service.Register(ctx, "jane", "correct-horse-battery")
		s.Require().NoError(err)
		_, err = s.service.Register(ctx, "Jane", "correct-horse-battery")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestSignIn_InvalidCredentials() {
	ctx := context.Background()
	_, err := s.service.Register(ctx, "jane", "correct-horse-battery")
	s.Require().NoError(err)

	s.Run("unknown username", func() {
		_, err := s.service.SignIn(ctx, "nobody", "correct-horse-battery")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("wrong secret", func() {
		_, err := s.service.SignIn(ctx, "jane", "wrong-horse-battery")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestValidate_RejectsGarbageAndExpiry() {
	ctx := context.Background()

	s.Run("garbage token", func() {
		_, err := s.service.Validate(ctx, "not.a.token")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("expired token", func() {
		expired := NewService(
			NewCredentialStore(),
			NewTokenService("test-signing-key-0123456789abcdef", "attesta", time.Hour),
			slog.New(slog.NewTextHandler(io.Discard, nil)),
			WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }),
		)
		token, err := expired.Register(ctx, "jane", "correct-horse-battery")
		s.Require().NoError(err)

		_, err = s.service.Validate(ctx, token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("token signed with a different key", func() {
		foreign := NewService(
			NewCredentialStore(),
			NewTokenService("some-other-signing-key-fedcba98765", "attesta", time.Hour),
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)
		token, err := foreign.Register(ctx, "jane", "correct-horse-battery")
		s.Require().NoError(err)

		_, err = s.service.Validate(ctx, token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
