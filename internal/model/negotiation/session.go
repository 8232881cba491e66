package negotiation

import (
	"time"

	"github.com/marketloop/negotiator/internal/model/listing"
)

// Session is one end-to-end negotiation attempt over a single listing.
// BuyerBudget and SellerMin are role-private: each is surfaced only in its
// owning role's generation context, never the counter-party's.
type Session struct {
	ID           string          `json:"id"`
	Listing      listing.Listing `json:"listing"`
	BuyerBudget  int             `json:"-"`
	SellerMin    int             `json:"-"`
	MaxRounds    int             `json:"maxRounds"`
	Interactive  bool            `json:"interactive"`
	Stage        Stage           `json:"stage"`
	Round        int             `json:"round"`
	Status       Status          `json:"status"`
	CurrentPrice int             `json:"currentPrice"`
	Reason       string          `json:"reason,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Open reports whether the session can still accept turns.
func (s *Session) Open() bool {
	return s.Status == StatusOpen
}

// Bound returns the private limit belonging to the given role.
func (s *Session) Bound(role Role) int {
	if role == RoleBuyer {
		return s.BuyerBudget
	}
	return s.SellerMin
}
