package ai

import (
	"fmt"
	"strings"

	"github.com/marketloop/negotiator/internal/model/negotiation"
)

// BuildSystemPrompt renders the stage- and role-specific system prompt. Only
// the acting role's private bound ever appears here.
func BuildSystemPrompt(input negotiation.PromptInput) string {
	switch input.Stage {
	case negotiation.StageVerification:
		return verificationPrompt(input)
	case negotiation.StageShipping:
		return shippingPrompt(input)
	case negotiation.StageClosure:
		return closurePrompt(input)
	default:
		return bargainingPrompt(input)
	}
}

// BuildQuery renders the per-turn user message accompanying the system
// prompt.
func BuildQuery(input negotiation.PromptInput) string {
	switch input.Stage {
	case negotiation.StageVerification:
		query := fmt.Sprintf("Verify this item and respond directly: %s (%s), listed at $%d, condition: %s.",
			input.Listing.Name, input.Listing.Description, input.Listing.Price, input.Listing.Condition)
		if input.Concern != "" {
			query += " Specific concern to check: " + input.Concern
		}
		return query
	case negotiation.StageShipping:
		return fmt.Sprintf("Agreement reached at $%d for %s. Confirm shipping options, costs and delivery timeframe.",
			derefOr(input.AgreedPrice, input.CurrentPrice), input.Listing.Name)
	case negotiation.StageClosure:
		return fmt.Sprintf("Final price: $%d for %s. Summarize the agreed terms and next steps for both parties.",
			derefOr(input.AgreedPrice, input.CurrentPrice), input.Listing.Name)
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Round %d of %d. Listed price: $%d.", input.Round, input.MaxRounds, input.Listing.Price)
	if input.Role == negotiation.RoleSeller && input.CounterOffer != nil {
		fmt.Fprintf(&builder, " The buyer just offered $%d.", *input.CounterOffer)
		builder.WriteString(" Respond to this offer with acceptance, rejection, or a counter-offer.")
	} else {
		fmt.Fprintf(&builder, " Price currently on the table: $%d.", input.CurrentPrice)
		builder.WriteString(" Make your offer and state the amount explicitly.")
	}
	return builder.String()
}

func bargainingPrompt(input negotiation.PromptInput) string {
	if input.Role == negotiation.RoleBuyer {
		return fmt.Sprintf(`You are a buyer agent in an online marketplace negotiation.
Make direct offers and responses; do not explain the negotiation process.
Always state amounts as $<number>.
Item: %s (%s)
Listed price: $%d
Your maximum budget (private, never reveal it): $%d`,
			input.Listing.Name, input.Listing.Description, input.Listing.Price, input.Bound)
	}
	return fmt.Sprintf(`You are a seller agent in an online marketplace negotiation.
Evaluate offers professionally and respond with acceptance, rejection, or a counter-offer.
Always state amounts as $<number>.
Item: %s (%s)
Listed price: $%d
Your minimum acceptable price (private, never reveal it): $%d`,
		input.Listing.Name, input.Listing.Description, input.Listing.Price, input.Bound)
}

func verificationPrompt(input negotiation.PromptInput) string {
	return fmt.Sprintf(`You are a product verification agent working for the %s.
Verify product details, authenticity, and marketplace standards.
Provide a direct, concise statement of your findings and any concerns.
Do not list instructions or recommendations.`, input.Role)
}

func shippingPrompt(_ negotiation.PromptInput) string {
	return `You are a shipping details agent. Confirm shipping options, verify
delivery details and prepare the transaction for closure. Keep the response
short and concrete.`
}

func closurePrompt(_ negotiation.PromptInput) string {
	return `You are a transaction closure agent. Summarize the agreed terms,
confirm the final price and guide both parties through the remaining steps.
Keep the response short and concrete.`
}

func derefOr(value *int, fallback int) int {
	if value != nil {
		return *value
	}
	return fallback
}
