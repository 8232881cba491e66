package negotiation

import (
	"context"
	"fmt"
	"sync"

	model "github.com/marketloop/negotiator/internal/model/negotiation"
)

// Scripted replays fixed responses per role and stage, used by tests and
// offline demo runs. Bargaining responses are consumed in order; stage
// prompts (verification, shipping, closure) get static replies.
type Scripted struct {
	mu        sync.Mutex
	Bargain   map[model.Role][]string
	Verify    string
	Ship      string
	Close     string
	Err       error
	FailTimes int

	next map[model.Role]int
}

// NewScripted builds a scripted generator from per-role bargaining lines.
func NewScripted(buyer, seller []string) *Scripted {
	return &Scripted{
		Bargain: map[model.Role][]string{
			model.RoleBuyer:  buyer,
			model.RoleSeller: seller,
		},
		Verify: "Product verified and ready for negotiation.",
		Ship:   "Standard shipping available within 5 business days.",
		Close:  "Transaction summary prepared for both parties.",
	}
}

// Generate returns the next scripted line for the input's stage and role.
func (s *Scripted) Generate(_ context.Context, input model.PromptInput, _ []model.Turn) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailTimes > 0 && s.Err != nil {
		s.FailTimes--
		return "", s.Err
	}

	switch input.Stage {
	case model.StageVerification:
		return s.Verify, nil
	case model.StageShipping:
		return s.Ship, nil
	case model.StageClosure:
		return s.Close, nil
	}

	if s.next == nil {
		s.next = make(map[model.Role]int)
	}
	lines := s.Bargain[input.Role]
	idx := s.next[input.Role]
	if idx >= len(lines) {
		return "", fmt.Errorf("script exhausted for %s", input.Role)
	}
	s.next[input.Role] = idx + 1
	return lines[idx], nil
}

// RuleBased is a deterministic collaborator used when no LLM credentials are
// configured. It reproduces the original demo heuristics: the buyer opens
// below list and inches upward within budget, the seller accepts at or above
// its minimum and counters otherwise.
type RuleBased struct{}

// Generate derives an utterance from the structured context alone.
func (RuleBased) Generate(_ context.Context, input model.PromptInput, _ []model.Turn) (string, error) {
	switch input.Stage {
	case model.StageVerification:
		if input.Listing.Description == "" {
			return "Verification found a concern: the listing has no description.", nil
		}
		return "Product verified. Ready for negotiation.", nil
	case model.StageShipping:
		return fmt.Sprintf("Shipping confirmed for %s: tracked delivery within 5 business days.", input.Listing.Name), nil
	case model.StageClosure:
		return fmt.Sprintf("Transaction completed for %s at $%d.", input.Listing.Name, derefOr(input.AgreedPrice, input.CurrentPrice)), nil
	}

	if input.Role == model.RoleBuyer {
		// Open below list, then undercut whatever is on the table, never
		// exceeding the private budget.
		offer := input.Listing.Price - 20
		if input.Round > 1 {
			offer = input.CurrentPrice - 10
		}
		if offer > input.Bound {
			offer = input.Bound
		}
		if offer < 1 {
			offer = 1
		}
		return fmt.Sprintf("My offer is $%d.", offer), nil
	}

	if input.CounterOffer != nil && *input.CounterOffer >= input.Bound {
		return fmt.Sprintf("Accept offer of $%d.", *input.CounterOffer), nil
	}
	counter := input.Bound
	if input.CounterOffer != nil && *input.CounterOffer+10 > counter {
		counter = *input.CounterOffer + 10
	}
	return fmt.Sprintf("Counteroffer: $%d. I cannot go lower.", counter), nil
}

func derefOr(value *int, fallback int) int {
	if value != nil {
		return *value
	}
	return fallback
}
