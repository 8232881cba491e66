package negotiation

import (
	"context"

	"github.com/marketloop/negotiator/internal/model/listing"
)

// PromptInput is the structured context handed to the generative collaborator
// for one utterance. Bound carries only the acting role's private limit; the
// counter-party's limit is never included.
type PromptInput struct {
	Role         Role
	Stage        Stage
	Listing      listing.Listing
	Bound        int
	CurrentPrice int
	Round        int
	MaxRounds    int
	CounterOffer *int
	AgreedPrice  *int
	Concern      string
}

// Generator is the external text-completion collaborator. Implementations
// return arbitrary free-form text; the orchestrator treats it as a black box.
type Generator interface {
	Generate(ctx context.Context, input PromptInput, history []Turn) (string, error)
}

// HumanInput lets a party supply its own utterance instead of delegating to
// the generator. A false second return (or blank text) means "delegate".
type HumanInput interface {
	TryGetUtterance(role Role, round int) (string, bool)
}
