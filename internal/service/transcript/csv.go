package transcript

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/marketloop/negotiator/internal/model/negotiation"
)

// csvHeader matches the on-disk transcript format of the original
// marketplace: one CSV file per session.
var csvHeader = []string{"dateTime", "content", "sender", "type", "price"}

// CSVStore writes one transcript file per session under a base directory.
// Each Append is a single O_APPEND write of one record, so a turn is either
// fully on disk or absent.
type CSVStore struct {
	dir string
}

// NewCSVStore ensures the base directory exists and returns the store.
func NewCSVStore(dir string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}
	return &CSVStore{dir: dir}, nil
}

func (s *CSVStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".csv")
}

// Create writes the header row for a new session transcript.
func (s *CSVStore) Create(_ context.Context, sessionID string) error {
	file, err := os.OpenFile(s.path(sessionID), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return ErrSessionExists
		}
		return fmt.Errorf("create transcript: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write transcript header: %w", err)
	}
	writer.Flush()
	return writer.Error()
}

// Append adds one record to the session file.
func (s *CSVStore) Append(_ context.Context, turn negotiation.Turn) error {
	file, err := os.OpenFile(s.path(turn.SessionID), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close()

	price := ""
	if turn.Price != nil {
		price = strconv.Itoa(*turn.Price)
	}

	writer := csv.NewWriter(file)
	record := []string{
		turn.Timestamp.UTC().Format(time.RFC3339),
		turn.Content,
		string(turn.Sender),
		string(turn.Type),
		price,
	}
	if err := writer.Write(record); err != nil {
		return fmt.Errorf("append transcript record: %w", err)
	}
	writer.Flush()
	return writer.Error()
}

// List reads the session file back into turns in append order.
func (s *CSVStore) List(_ context.Context, sessionID string) ([]negotiation.Turn, error) {
	file, err := os.Open(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	turns := make([]negotiation.Turn, 0, len(records))
	for i, record := range records {
		if i == 0 || len(record) != len(csvHeader) {
			continue
		}
		timestamp, err := time.Parse(time.RFC3339, record[0])
		if err != nil {
			return nil, fmt.Errorf("parse transcript timestamp: %w", err)
		}
		turn := negotiation.Turn{
			SessionID: sessionID,
			Timestamp: timestamp,
			Content:   record[1],
			Sender:    negotiation.Role(record[2]),
			Type:      negotiation.TurnType(record[3]),
		}
		if record[4] != "" {
			price, err := strconv.Atoi(record[4])
			if err != nil {
				return nil, fmt.Errorf("parse transcript price: %w", err)
			}
			turn.Price = &price
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
