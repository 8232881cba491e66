package negotiation

import "time"

// Turn records one party's utterance and its classification. Turns are
// immutable once appended; transcript order is append order.
type Turn struct {
	SessionID string    `json:"sessionId"`
	Timestamp time.Time `json:"timestamp"`
	Sender    Role      `json:"sender"`
	Content   string    `json:"content"`
	Type      TurnType  `json:"type"`
	Price     *int      `json:"price,omitempty"`
}

// NewTurn stamps a turn with the current UTC time.
func NewTurn(sessionID string, sender Role, content string, kind TurnType, price *int) Turn {
	return Turn{
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Sender:    sender,
		Content:   content,
		Type:      kind,
		Price:     price,
	}
}
