package negotiation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/marketloop/negotiator/internal/analysis/offer"
	"github.com/marketloop/negotiator/internal/model/listing"
	model "github.com/marketloop/negotiator/internal/model/negotiation"
	"github.com/marketloop/negotiator/internal/service/transcript"
)

// DefaultMaxRounds bounds a session when no explicit budget is configured.
const DefaultMaxRounds = 5

// Config describes one negotiation session request.
type Config struct {
	Listing     listing.Listing
	BuyerBudget int
	SellerMin   int
	MaxRounds   int
	Interactive bool
	Concern     string
}

// Engine is the top-level stage controller: Verification -> Negotiation ->
// (Shipping -> Closure | Aborted). No stage is revisited.
type Engine struct {
	generator   model.Generator
	human       model.HumanInput
	transcripts transcript.Store
	turnTimeout time.Duration
}

// NewEngine wires the engine to its collaborators. human may be nil for
// non-interactive deployments.
func NewEngine(generator model.Generator, human model.HumanInput, transcripts transcript.Store, turnTimeout time.Duration) *Engine {
	return &Engine{
		generator:   generator,
		human:       human,
		transcripts: transcripts,
		turnTimeout: turnTimeout,
	}
}

// Run executes one full session. observer, when non-nil, receives every turn
// right after it is appended to the transcript. The returned session is
// terminal: its status is StatusAgreed or StatusAborted.
func (e *Engine) Run(ctx context.Context, cfg Config, observer func(model.Turn)) (*model.Session, model.Outcome, error) {
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	session := &model.Session{
		ID:           uuid.NewString(),
		Listing:      cfg.Listing,
		BuyerBudget:  cfg.BuyerBudget,
		SellerMin:    cfg.SellerMin,
		MaxRounds:    maxRounds,
		Interactive:  cfg.Interactive,
		Stage:        model.StageVerification,
		Status:       model.StatusOpen,
		CurrentPrice: cfg.Listing.Price,
		CreatedAt:    time.Now().UTC(),
	}

	if err := e.transcripts.Create(ctx, session.ID); err != nil {
		return nil, model.Outcome{}, fmt.Errorf("create transcript: %w", err)
	}

	gate := NewVerificationGate(e.generator)
	verdict := gate.Verify(ctx, session, cfg.Concern)
	if !verdict.OK {
		session.Stage = model.StageAborted
		session.Status = model.StatusAborted
		session.Reason = verdict.Reason
		log.Printf("[engine] session=%s aborted at verification: %s", session.ID, verdict.Reason)
		return session, model.Outcome{Agreed: false, Reason: verdict.Reason}, nil
	}

	session.Stage = model.StageNegotiation
	loop := NewBargainingLoop(e.generator, e.human, e.transcripts, e.turnTimeout, observer)
	outcome, err := loop.Run(ctx, session)
	if err != nil {
		session.Stage = model.StageAborted
		session.Status = model.StatusAborted
		session.Reason = "transcript failure"
		return session, model.Outcome{}, err
	}

	if !outcome.Agreed {
		session.Stage = model.StageAborted
		session.Status = model.StatusAborted
		session.Reason = outcome.Reason
		log.Printf("[engine] session=%s aborted: %s", session.ID, outcome.Reason)
		return session, outcome, nil
	}

	// Shipping and Closure are pass-through delegation stages; a collaborator
	// error there is non-fatal.
	for _, stage := range []model.Stage{model.StageShipping, model.StageClosure} {
		session.Stage = stage
		turn := e.delegate(ctx, session, stage, outcome.FinalPrice)
		if err := e.transcripts.Append(ctx, turn); err != nil {
			return nil, model.Outcome{}, fmt.Errorf("append %s turn: %w", stage, err)
		}
		if observer != nil {
			observer(turn)
		}
	}

	session.Status = model.StatusAgreed
	session.Reason = outcome.Reason
	log.Printf("[engine] session=%s closed at $%d after %d rounds", session.ID, *outcome.FinalPrice, outcome.Rounds)
	return session, outcome, nil
}

// delegate asks the collaborator for a stage summary, degrading to a
// placeholder on repeated failure. Summaries are recorded as plain text
// turns; any amount they restate is kept as the extracted price.
func (e *Engine) delegate(ctx context.Context, session *model.Session, stage model.Stage, agreedPrice *int) model.Turn {
	input := model.PromptInput{
		Role:         model.RoleSeller,
		Stage:        stage,
		Listing:      session.Listing,
		CurrentPrice: session.CurrentPrice,
		AgreedPrice:  agreedPrice,
	}

	summary, err := e.generateWithTimeout(ctx, input)
	if err != nil {
		summary, err = e.generateWithTimeout(ctx, input)
	}
	if err != nil {
		log.Printf("[engine] session=%s %s summary unavailable: %v", session.ID, stage, err)
		summary = fmt.Sprintf("%s summary unavailable", stage)
	}

	var price *int
	if value, ok := offer.Extract(summary); ok {
		price = &value
	}
	return model.NewTurn(session.ID, model.RoleSeller, summary, model.TurnText, price)
}

func (e *Engine) generateWithTimeout(ctx context.Context, input model.PromptInput) (string, error) {
	if e.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.turnTimeout)
		defer cancel()
	}
	return e.generator.Generate(ctx, input, nil)
}
