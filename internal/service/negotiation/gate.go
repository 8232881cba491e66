package negotiation

import (
	"context"
	"log"
	"strings"

	model "github.com/marketloop/negotiator/internal/model/negotiation"
)

// negativeMarkers are the lexical cues that make a verification reply count
// as an explicit rejection. Anything else passes: the gate is fail-open, and
// missing item data is the only local hard-fail condition.
var negativeMarkers = []string{"concern", "discrepanc", "fail", "not ready"}

// VerificationGate produces exactly one verdict per session, before any
// bargaining turn.
type VerificationGate struct {
	generator model.Generator
}

// NewVerificationGate wires the gate to its collaborator.
func NewVerificationGate(generator model.Generator) *VerificationGate {
	return &VerificationGate{generator: generator}
}

// Verify checks the session's listing. Incomplete item data fails immediately
// without consulting the collaborator; otherwise the collaborator's reply is
// scanned for negative signals and passes in their absence.
func (g *VerificationGate) Verify(ctx context.Context, session *model.Session, concern string) model.Verdict {
	item := session.Listing
	if strings.TrimSpace(item.Name) == "" || item.Price <= 0 {
		return model.Verdict{OK: false, Reason: "product verification failed: missing or incomplete details"}
	}

	input := model.PromptInput{
		Role:    model.RoleBuyer,
		Stage:   model.StageVerification,
		Listing: item,
		Concern: concern,
	}

	reply, err := g.generator.Generate(ctx, input, nil)
	if err != nil {
		reply, err = g.generator.Generate(ctx, input, nil)
	}
	if err != nil {
		// Collaborator unavailable is not a rejection.
		log.Printf("[gate] verification collaborator unavailable: %v", err)
		return model.Verdict{OK: true, Reason: "verification unavailable, proceeding"}
	}

	lowered := strings.ToLower(reply)
	for _, marker := range negativeMarkers {
		if strings.Contains(lowered, marker) {
			return model.Verdict{OK: false, Reason: reply}
		}
	}
	return model.Verdict{OK: true, Reason: reply}
}
