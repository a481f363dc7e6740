package store

import (
	"context"

	"attesta/internal/identity/models"
	id "attesta/pkg/domain"
	pkgerrors "attesta/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "identity not found")

// Store defines the persistence interface for identities.
// Error Contract:
// - Find returns ErrNotFound when no identity exists for the holder
// - Other methods return nil on success or wrapped errors on failure
type Store interface {
	Save(ctx context.Context, identity *models.Identity) error
	Find(ctx context.Context, holderID id.HolderID) (*models.Identity, error)
}
