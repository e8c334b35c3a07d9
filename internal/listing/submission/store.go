package submission

import (
	"context"
	"sync"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
)

// Store keeps flows between requests. Get returns
// domain.ErrSubmissionNotFound for unknown or expired IDs.
type Store interface {
	Save(ctx context.Context, f *Flow) error
	Get(ctx context.Context, id string) (*Flow, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.RWMutex
	flows map[string]*Flow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{flows: make(map[string]*Flow)}
}

func (s *MemoryStore) Save(_ context.Context, f *Flow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[f.ID] = f.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flows[id]
	if !ok {
		return nil, domain.ErrSubmissionNotFound
	}
	return f.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, id)
	return nil
}
