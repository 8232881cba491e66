// Package transcript persists the append-only conversation log. One
// transcript exists per session, created empty at session start; each turn is
// appended exactly once and never rewritten.
package transcript

import (
	"context"
	"errors"

	"github.com/marketloop/negotiator/internal/model/negotiation"
)

var (
	ErrSessionExists   = errors.New("transcript already exists for session")
	ErrSessionNotFound = errors.New("transcript not found")
)

// Store is the persistence contract for conversation logs. Append must be
// atomic from the log's perspective: a turn is either fully recorded or not
// recorded at all.
type Store interface {
	Create(ctx context.Context, sessionID string) error
	Append(ctx context.Context, turn negotiation.Turn) error
	List(ctx context.Context, sessionID string) ([]negotiation.Turn, error)
}
