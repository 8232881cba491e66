package transcript

import (
	"context"
	"sync"

	"github.com/marketloop/negotiator/internal/model/negotiation"
)

// MemoryStore keeps transcripts in process memory, suitable for single-node
// deployments and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	turns map[string][]negotiation.Turn
}

// NewMemoryStore bootstraps the in-memory transcript store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{turns: make(map[string][]negotiation.Turn)}
}

// Create registers an empty transcript for the session.
func (s *MemoryStore) Create(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.turns[sessionID]; ok {
		return ErrSessionExists
	}
	s.turns[sessionID] = make([]negotiation.Turn, 0, 16)
	return nil
}

// Append adds a turn to the session transcript.
func (s *MemoryStore) Append(_ context.Context, turn negotiation.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.turns[turn.SessionID]; !ok {
		return ErrSessionNotFound
	}
	s.turns[turn.SessionID] = append(s.turns[turn.SessionID], turn)
	return nil
}

// List returns stored turns in append order.
func (s *MemoryStore) List(_ context.Context, sessionID string) ([]negotiation.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.turns[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := make([]negotiation.Turn, len(turns))
	copy(copied, turns)
	return copied, nil
}
