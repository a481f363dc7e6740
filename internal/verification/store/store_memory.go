package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"attesta/internal/verification/models"
	id "attesta/pkg/domain"
)

// InMemoryStore stores verification requests in process memory. Records are
// append-only apart from the single pending->redeemed transition.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[id.RequestID]*models.Request
}

// New constructs an empty in-memory verification request store.
func New() *InMemoryStore {
	return &InMemoryStore{requests: make(map[id.RequestID]*models.Request)}
}

func (s *InMemoryStore) Save(_ context.Context, request *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copyRequest := *request
	s.requests[request.ID] = &copyRequest
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, requestID id.RequestID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	copyRequest := *request
	return &copyRequest, nil
}

func (s *InMemoryStore) ListByHolder(_ context.Context, holderID id.HolderID) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Request
	for _, request := range s.requests {
		if request.HolderID != holderID {
			continue
		}
		copyRequest := *request
		result = append(result, &copyRequest)
	}

	// Newest first; the access log is a reverse-chronological history.
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// MarkRedeemed performs the compare-and-swap on Status under the write lock,
// so only one concurrent redeemer observes pending.
func (s *InMemoryStore) MarkRedeemed(_ context.Context, requestID id.RequestID, redeemedAt time.Time, verifierDevice string) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.requests[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	if request.ComputeStatus(redeemedAt) != models.StatusPending {
		copyRequest := *request
		return &copyRequest, ErrNotPending
	}

	request.Status = models.StatusRedeemed
	request.RedeemedAt = &redeemedAt
	request.VerifierDevice = verifierDevice
	copyRequest := *request
	return &copyRequest, nil
}
