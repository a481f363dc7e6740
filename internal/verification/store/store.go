package store

import (
	"context"
	"time"

	"attesta/internal/verification/models"
	id "attesta/pkg/domain"
	pkgerrors "attesta/pkg/domain-errors"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested request does not exist
// - MarkRedeemed returns ErrNotPending (with the current record) when the
//   request exists but is no longer redeemable
// - Return nil for successful operations
var (
	ErrNotFound   = pkgerrors.New(pkgerrors.CodeNotFound, "verification request not found")
	ErrNotPending = pkgerrors.New(pkgerrors.CodeConflict, "verification request is not pending")
)

// Store defines the persistence interface for verification requests.
type Store interface {
	Save(ctx context.Context, request *models.Request) error
	Find(ctx context.Context, requestID id.RequestID) (*models.Request, error)
	ListByHolder(ctx context.Context, holderID id.HolderID) ([]*models.Request, error)
	// MarkRedeemed atomically transitions pending->redeemed. Exactly one of
	// any set of concurrent callers succeeds; the rest receive ErrNotPending
	// together with the current record so callers can derive the denial
	// reason (expired vs already redeemed).
	MarkRedeemed(ctx context.Context, requestID id.RequestID, redeemedAt time.Time, verifierDevice string) (*models.Request, error)
}
