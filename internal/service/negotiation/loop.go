package negotiation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/marketloop/negotiator/internal/analysis/offer"
	model "github.com/marketloop/negotiator/internal/model/negotiation"
	"github.com/marketloop/negotiator/internal/service/transcript"
)

// ReasonMaxRounds is recorded when a rejection lands on the final configured
// round.
const ReasonMaxRounds = "maximum rounds reached without agreement"

// ReasonNoAgreement is recorded when the round budget runs out without any
// accept or reject marker.
const ReasonNoAgreement = "no agreement reached"

// BargainingLoop drives the alternating, round-bounded turn protocol. One
// round is a buyer turn followed by a seller turn; the loop runs until a
// deal-closing turn or the round budget is spent.
type BargainingLoop struct {
	generator   model.Generator
	human       model.HumanInput
	transcripts transcript.Store
	turnTimeout time.Duration
	observer    func(model.Turn)
}

// NewBargainingLoop wires the loop to its collaborators. human and observer
// may be nil.
func NewBargainingLoop(generator model.Generator, human model.HumanInput, transcripts transcript.Store, turnTimeout time.Duration, observer func(model.Turn)) *BargainingLoop {
	return &BargainingLoop{
		generator:   generator,
		human:       human,
		transcripts: transcripts,
		turnTimeout: turnTimeout,
		observer:    observer,
	}
}

// Run executes bargaining rounds until agreement, rejection on the final
// round, or budget exhaustion. The session's round counter and current price
// are updated in place; status transitions stay with the stage controller.
func (l *BargainingLoop) Run(ctx context.Context, session *model.Session) (model.Outcome, error) {
	for round := 1; round <= session.MaxRounds; round++ {
		session.Round = round
		var buyerOffer *int

	roles:
		for _, role := range []model.Role{model.RoleBuyer, model.RoleSeller} {
			utterance := l.obtainUtterance(ctx, session, role, round, buyerOffer)
			kind, price := offer.Analyze(utterance)

			turn := model.NewTurn(session.ID, role, utterance, kind, price)
			if err := l.append(ctx, turn); err != nil {
				return model.Outcome{}, err
			}

			switch kind {
			case model.TurnAccepted:
				// The acceptor's own restated price wins over the price in
				// effect at acceptance.
				final := session.CurrentPrice
				if price != nil {
					final = *price
				}
				session.CurrentPrice = final
				log.Printf("[loop] session=%s agreed at $%d in round %d", session.ID, final, round)
				return model.Outcome{Agreed: true, FinalPrice: &final, Reason: "offer accepted", Rounds: round}, nil

			case model.TurnRejected:
				if round == session.MaxRounds {
					log.Printf("[loop] session=%s rejected on final round %d", session.ID, round)
					return model.Outcome{Agreed: false, Reason: ReasonMaxRounds, Rounds: round}, nil
				}
				// The rejection consumes the rest of the round; the price on
				// the table is unchanged.
				break roles

			case model.TurnOffer:
				session.CurrentPrice = *price
				if role == model.RoleBuyer {
					buyerOffer = price
				}

			case model.TurnText:
				// No price, no marker. The counter-party still gets its turn;
				// a round where both parties produce text advances anyway.
			}
		}
	}

	return model.Outcome{Agreed: false, Reason: ReasonNoAgreement, Rounds: session.MaxRounds}, nil
}

// obtainUtterance resolves one turn's text: the human override is consulted
// first, then the generator with the acting role's private context. A
// generator failure is retried once, then degrades to an empty text turn
// rather than aborting the session.
func (l *BargainingLoop) obtainUtterance(ctx context.Context, session *model.Session, role model.Role, round int, buyerOffer *int) string {
	if session.Interactive && l.human != nil {
		if text, ok := l.human.TryGetUtterance(role, round); ok && strings.TrimSpace(text) != "" {
			return text
		}
	}

	input := model.PromptInput{
		Role:         role,
		Stage:        model.StageNegotiation,
		Listing:      session.Listing,
		Bound:        session.Bound(role),
		CurrentPrice: session.CurrentPrice,
		Round:        round,
		MaxRounds:    session.MaxRounds,
	}
	if role == model.RoleSeller {
		input.CounterOffer = buyerOffer
	}

	history, err := l.transcripts.List(ctx, session.ID)
	if err != nil {
		log.Printf("[loop] session=%s failed to load history: %v", session.ID, err)
	}

	utterance, err := l.generate(ctx, input, history)
	if err != nil {
		utterance, err = l.generate(ctx, input, history)
	}
	if err != nil {
		log.Printf("[loop] session=%s %s turn failed twice, degrading to empty text: %v", session.ID, role, err)
		return ""
	}
	return utterance
}

func (l *BargainingLoop) generate(ctx context.Context, input model.PromptInput, history []model.Turn) (string, error) {
	if l.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.turnTimeout)
		defer cancel()
	}
	return l.generator.Generate(ctx, input, history)
}

func (l *BargainingLoop) append(ctx context.Context, turn model.Turn) error {
	if err := l.transcripts.Append(ctx, turn); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	if l.observer != nil {
		l.observer(turn)
	}
	return nil
}
