package negotiation

import (
	"context"
	"errors"
	"sync"

	model "github.com/marketloop/negotiator/internal/model/negotiation"
	"github.com/marketloop/negotiator/internal/service/transcript"
)

var ErrSessionNotFound = errors.New("session not found")

// Result bundles everything a caller gets back from a finished session.
type Result struct {
	Session    *model.Session `json:"session"`
	Outcome    model.Outcome  `json:"outcome"`
	Transcript []model.Turn   `json:"transcript"`
}

// Service runs sessions through the engine and keeps finished session records
// for later transcript retrieval. Sessions share no mutable state, so
// concurrent Negotiate calls are safe.
type Service struct {
	engine      *Engine
	transcripts transcript.Store

	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewService wires the service to the engine and transcript store.
func NewService(engine *Engine, transcripts transcript.Store) *Service {
	return &Service{
		engine:      engine,
		transcripts: transcripts,
		sessions:    make(map[string]*model.Session),
	}
}

// Negotiate runs one full session to completion. observer may be nil.
func (s *Service) Negotiate(ctx context.Context, cfg Config, observer func(model.Turn)) (Result, error) {
	session, outcome, err := s.engine.Run(ctx, cfg, observer)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	turns, err := s.transcripts.List(ctx, session.ID)
	if err != nil {
		return Result{}, err
	}
	return Result{Session: session, Outcome: outcome, Transcript: turns}, nil
}

// GetSession retrieves a finished session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetTranscript returns the stored turns for a session.
func (s *Service) GetTranscript(ctx context.Context, sessionID string) ([]model.Turn, error) {
	turns, err := s.transcripts.List(ctx, sessionID)
	if err != nil {
		if errors.Is(err, transcript.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return turns, nil
}
