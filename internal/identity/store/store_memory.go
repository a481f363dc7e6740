package store

import (
	"context"
	"sync"

	"attesta/internal/identity/models"
	id "attesta/pkg/domain"
)

// InMemoryStore keeps identities in process memory. The store interface is
// the seam for a real persistence engine later.
type InMemoryStore struct {
	mu         sync.RWMutex
	identities map[id.HolderID]*models.Identity
}

// New constructs an empty in-memory identity store.
func New() *InMemoryStore {
	return &InMemoryStore{identities: make(map[id.HolderID]*models.Identity)}
}

func (s *InMemoryStore) Save(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copyIdentity := *identity
	s.identities[identity.HolderID] = &copyIdentity
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, holderID id.HolderID) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[holderID]
	if !ok {
		return nil, ErrNotFound
	}
	copyIdentity := *identity
	return &copyIdentity, nil
}
