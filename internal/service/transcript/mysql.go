package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/marketloop/negotiator/internal/model/negotiation"
)

// SQLStore persists transcripts in MySQL.
//
// Schema:
//
//	CREATE TABLE transcripts (session_id VARCHAR(64) PRIMARY KEY, created_at DATETIME);
//	CREATE TABLE turns (
//	    id CHAR(26) PRIMARY KEY,
//	    session_id VARCHAR(64) NOT NULL,
//	    created_at DATETIME NOT NULL,
//	    sender VARCHAR(8) NOT NULL,
//	    content TEXT NOT NULL,
//	    turn_type VARCHAR(8) NOT NULL,
//	    price INT NULL,
//	    INDEX idx_turns_session (session_id, id)
//	);
type SQLStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// Create registers an empty transcript row for the session.
func (s *SQLStore) Create(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transcripts (session_id, created_at) VALUES (?, ?)`,
		sessionID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("create transcript: %w", err)
	}
	return nil
}

// Append inserts one turn row. Row IDs are ULIDs so lexical order matches
// append order.
func (s *SQLStore) Append(ctx context.Context, turn negotiation.Turn) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transcripts WHERE session_id = ?`, turn.SessionID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check transcript: %w", err)
	}
	if exists == 0 {
		return ErrSessionNotFound
	}

	var price sql.NullInt64
	if turn.Price != nil {
		price = sql.NullInt64{Int64: int64(*turn.Price), Valid: true}
	}

	s.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(turn.Timestamp), s.entropy).String()
	s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO turns (id, session_id, created_at, sender, content, turn_type, price)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, turn.SessionID, turn.Timestamp.UTC(), string(turn.Sender), turn.Content, string(turn.Type), price)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// List returns the session's turns in append order.
func (s *SQLStore) List(ctx context.Context, sessionID string) ([]negotiation.Turn, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transcripts WHERE session_id = ?`, sessionID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check transcript: %w", err)
	}
	if exists == 0 {
		return nil, ErrSessionNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at, sender, content, turn_type, price
		 FROM turns WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var turns []negotiation.Turn
	for rows.Next() {
		turn := negotiation.Turn{SessionID: sessionID}
		var price sql.NullInt64
		if err := rows.Scan(&turn.Timestamp, &turn.Sender, &turn.Content, &turn.Type, &price); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if price.Valid {
			value := int(price.Int64)
			turn.Price = &value
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	return turns, nil
}
