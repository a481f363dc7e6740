package session

import (
	"context"
	"strings"
	"sync"

	id "attesta/pkg/domain"
	dErrors "attesta/pkg/domain-errors"
	"attesta/pkg/secrets"
)

// credential is one holder's login record. Only the bcrypt hash is kept.
type credential struct {
	holderID   id.HolderID
	secretHash string
}

// CredentialStore holds login credentials in process memory.
type CredentialStore struct {
	mu          sync.RWMutex
	credentials map[string]credential // keyed by lowercased username
}

// NewCredentialStore creates an empty CredentialStore.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{credentials: make(map[string]credential)}
}

// Register creates a holder for username. Usernames are case-insensitive
// and single-use.
func (s *CredentialStore) Register(_ context.Context, username, secret string) (id.HolderID, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return id.HolderID{}, dErrors.New(dErrors.CodeBadRequest, "username is required")
	}
	if len(secret) < 8 {
		return id.HolderID{}, dErrors.New(dErrors.CodeBadRequest, "secret must be at least 8 characters")
	}
	hash, err := secrets.Hash(secret)
	if err != nil {
		return id.HolderID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash secret")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.credentials[username]; exists {
		return id.HolderID{}, dErrors.New(dErrors.CodeConflict, "username already registered")
	}
	holderID := id.NewHolderID()
	s.credentials[username] = credential{holderID: holderID, secretHash: hash}
	return holderID, nil
}

// Verify checks username/secret and returns the holder. Unknown username and
// wrong secret are indistinguishable to the caller.
func (s *CredentialStore) Verify(_ context.Context, username, secret string) (id.HolderID, error) {
	s.mu.RLock()
	cred, ok := s.credentials[strings.ToLower(strings.TrimSpace(username))]
	s.mu.RUnlock()
	if !ok {
		return id.HolderID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err := secrets.Verify(secret, cred.secretHash); err != nil {
		return id.HolderID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	return cred.holderID, nil
}
