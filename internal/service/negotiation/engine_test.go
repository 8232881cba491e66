package negotiation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marketloop/negotiator/internal/model/listing"
	model "github.com/marketloop/negotiator/internal/model/negotiation"
	"github.com/marketloop/negotiator/internal/service/transcript"
)

func demoListing() listing.Listing {
	return listing.Listing{
		ID:          "vintage-camera",
		Name:        "Vintage Camera",
		Description: "Rare vintage film camera in good condition",
		Price:       100,
		Condition:   "Good",
	}
}

func runEngine(t *testing.T, generator model.Generator, cfg Config) (*model.Session, model.Outcome, []model.Turn) {
	t.Helper()
	store := transcript.NewMemoryStore()
	engine := NewEngine(generator, nil, store, 0)

	session, outcome, err := engine.Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	turns, err := store.List(context.Background(), session.ID)
	require.NoError(t, err)
	return session, outcome, turns
}

func TestEngineAcceptedWithRestatedPrice(t *testing.T) {
	// Buyer opens at $70, seller counters $90, buyer accepts restating $90.
	generator := NewScripted(
		[]string{"My offer is $70.", "ACCEPT $90"},
		[]string{"COUNTER: $90"},
	)
	session, outcome, turns := runEngine(t, generator, Config{
		Listing:     demoListing(),
		BuyerBudget: 95,
		SellerMin:   80,
		MaxRounds:   5,
	})

	require.True(t, outcome.Agreed)
	require.NotNil(t, outcome.FinalPrice)
	require.Equal(t, 90, *outcome.FinalPrice)
	require.Equal(t, 2, outcome.Rounds)

	require.Equal(t, model.StatusAgreed, session.Status)
	require.Equal(t, model.StageClosure, session.Stage)

	// Three bargaining turns plus shipping and closure summaries.
	require.Len(t, turns, 5)
	require.Equal(t, model.TurnOffer, turns[0].Type)
	require.Equal(t, model.TurnOffer, turns[1].Type)
	require.Equal(t, model.TurnAccepted, turns[2].Type)
	require.Equal(t, model.TurnText, turns[3].Type)
	require.Equal(t, model.TurnText, turns[4].Type)
}

func TestEngineAcceptedInheritsPriceInEffect(t *testing.T) {
	generator := NewScripted(
		[]string{"My offer is $70.", "Fine, it's a deal"},
		[]string{"COUNTER: $90"},
	)
	_, outcome, _ := runEngine(t, generator, Config{
		Listing:     demoListing(),
		BuyerBudget: 95,
		SellerMin:   80,
	})

	require.True(t, outcome.Agreed)
	require.Equal(t, 90, *outcome.FinalPrice)
}

func TestEngineNoAgreementAfterMaxRounds(t *testing.T) {
	// Buyer never goes above $60, no closing markers ever appear.
	buyer := []string{"My offer is $52.", "My offer is $54.", "My offer is $56.", "My offer is $58.", "My offer is $60."}
	seller := []string{"COUNTER: $95", "COUNTER: $94", "COUNTER: $93", "COUNTER: $92", "COUNTER: $91"}
	generator := NewScripted(buyer, seller)

	session, outcome, turns := runEngine(t, generator, Config{
		Listing:     demoListing(),
		BuyerBudget: 60,
		SellerMin:   80,
		MaxRounds:   5,
	})

	require.False(t, outcome.Agreed)
	require.Equal(t, ReasonNoAgreement, outcome.Reason)
	require.Equal(t, 5, outcome.Rounds)
	require.Equal(t, model.StatusAborted, session.Status)
	require.LessOrEqual(t, session.Round, session.MaxRounds)
	require.Len(t, turns, 10)
}

func TestEngineVerificationFailsOnMissingName(t *testing.T) {
	item := demoListing()
	item.Name = ""
	generator := NewScripted(nil, nil)

	session, outcome, turns := runEngine(t, generator, Config{
		Listing:     item,
		BuyerBudget: 90,
		SellerMin:   80,
	})

	require.False(t, outcome.Agreed)
	require.Equal(t, model.StatusAborted, session.Status)
	require.Equal(t, model.StageAborted, session.Stage)
	require.Empty(t, turns, "transcript must be empty when verification fails")
}

func TestEngineVerificationFailsOnCollaboratorConcern(t *testing.T) {
	generator := NewScripted(nil, nil)
	generator.Verify = "I have a concern about the serial number on this item."

	session, outcome, turns := runEngine(t, generator, Config{
		Listing:     demoListing(),
		BuyerBudget: 90,
		SellerMin:   80,
	})

	require.False(t, outcome.Agreed)
	require.Equal(t, model.StatusAborted, session.Status)
	require.Contains(t, session.Reason, "concern")
	require.Empty(t, turns)
}

func TestEngineRejectionConsumesRoundThenContinues(t *testing.T) {
	// Seller rejects on round 3 of 5: bargaining continues, price on the
	// table unchanged. An identical rejection on round 5 aborts the session.
	buyer := []string{"My offer is $70.", "My offer is $72.", "My offer is $74.", "My offer is $76.", "My offer is $78."}
	seller := []string{"COUNTER: $90", "COUNTER: $88", "REJECT: too low", "COUNTER: $86", "REJECT: too low"}
	generator := NewScripted(buyer, seller)

	session, outcome, turns := runEngine(t, generator, Config{
		Listing:     demoListing(),
		BuyerBudget: 80,
		SellerMin:   85,
		MaxRounds:   5,
	})

	require.False(t, outcome.Agreed)
	require.Equal(t, ReasonMaxRounds, outcome.Reason)
	require.Equal(t, 5, outcome.Rounds)
	require.Equal(t, model.StatusAborted, session.Status)
	require.Len(t, turns, 10)

	// The round-3 rejection left the buyer's $74 as the price in effect
	// going into round 4.
	require.Equal(t, model.TurnRejected, turns[5].Type)
	require.Equal(t, "My offer is $76.", turns[6].Content)
}

func TestEngineBuyerRejectionSkipsSellerTurn(t *testing.T) {
	generator := NewScripted(
		[]string{"REJECT: not interested at that price", "My offer is $50."},
		[]string{"COUNTER: $90"},
	)
	_, outcome, turns := runEngine(t, generator, Config{
		Listing:     demoListing(),
		BuyerBudget: 60,
		SellerMin:   80,
		MaxRounds:   2,
	})

	require.False(t, outcome.Agreed)
	require.Equal(t, []model.Role{model.RoleBuyer, model.RoleBuyer, model.RoleSeller},
		[]model.Role{turns[0].Sender, turns[1].Sender, turns[2].Sender})
}

func TestEngineTextTurnsStillAdvanceRounds(t *testing.T) {
	buyer := []string{"is it still available?", "what about the lens?"}
	seller := []string{"yes it is", "the lens is original"}
	generator := NewScripted(buyer, seller)

	_, outcome, turns := runEngine(t, generator, Config{
		Listing:     demoListing(),
		BuyerBudget: 90,
		SellerMin:   80,
		MaxRounds:   2,
	})

	require.False(t, outcome.Agreed)
	require.Equal(t, ReasonNoAgreement, outcome.Reason)
	require.Len(t, turns, 4)
	for _, turn := range turns {
		require.Equal(t, model.TurnText, turn.Type)
		require.Nil(t, turn.Price)
	}
}

func TestEngineReplayProducesIdenticalTranscript(t *testing.T) {
	script := func() *Scripted {
		return NewScripted(
			[]string{"My offer is $70.", "ACCEPT $90"},
			[]string{"COUNTER: $90"},
		)
	}
	cfg := Config{Listing: demoListing(), BuyerBudget: 95, SellerMin: 80}

	_, firstOutcome, firstTurns := runEngine(t, script(), cfg)
	_, secondOutcome, secondTurns := runEngine(t, script(), cfg)

	require.Equal(t, firstOutcome.Agreed, secondOutcome.Agreed)
	require.Equal(t, *firstOutcome.FinalPrice, *secondOutcome.FinalPrice)
	require.Equal(t, firstOutcome.Rounds, secondOutcome.Rounds)

	require.Equal(t, len(firstTurns), len(secondTurns))
	for i := range firstTurns {
		require.Equal(t, firstTurns[i].Sender, secondTurns[i].Sender)
		require.Equal(t, firstTurns[i].Content, secondTurns[i].Content)
		require.Equal(t, firstTurns[i].Type, secondTurns[i].Type)
		if firstTurns[i].Price == nil {
			require.Nil(t, secondTurns[i].Price)
		} else {
			require.Equal(t, *firstTurns[i].Price, *secondTurns[i].Price)
		}
	}
}

// flakyGenerator fails bargaining-stage calls a configured number of times
// before delegating to the wrapped generator.
type flakyGenerator struct {
	inner     model.Generator
	failTimes int
}

func (f *flakyGenerator) Generate(ctx context.Context, input model.PromptInput, history []model.Turn) (string, error) {
	if input.Stage == model.StageNegotiation && f.failTimes > 0 {
		f.failTimes--
		return "", errors.New("transport error")
	}
	return f.inner.Generate(ctx, input, history)
}

func TestEngineRetriesOnceThenRecovers(t *testing.T) {
	inner := NewScripted(
		[]string{"My offer is $70.", "ACCEPT $90"},
		[]string{"COUNTER: $90"},
	)
	generator := &flakyGenerator{inner: inner, failTimes: 1}

	_, outcome, _ := runEngine(t, generator, Config{
		Listing:     demoListing(),
		BuyerBudget: 95,
		SellerMin:   80,
	})

	require.True(t, outcome.Agreed)
	require.Equal(t, 90, *outcome.FinalPrice)
}

func TestEngineDegradesToEmptyTextAfterRetry(t *testing.T) {
	inner := NewScripted(
		[]string{"My offer is $70."},
		[]string{"COUNTER: $90"},
	)
	// Both attempts of the buyer's first turn fail; the turn degrades to an
	// empty text turn and the round continues with the seller.
	generator := &flakyGenerator{inner: inner, failTimes: 2}

	_, outcome, turns := runEngine(t, generator, Config{
		Listing:     demoListing(),
		BuyerBudget: 95,
		SellerMin:   80,
		MaxRounds:   1,
	})

	require.False(t, outcome.Agreed)
	require.Len(t, turns, 2)
	require.Equal(t, model.TurnText, turns[0].Type)
	require.Empty(t, turns[0].Content)
	require.Equal(t, model.TurnOffer, turns[1].Type)
}

func TestEngineShippingFailureIsNonFatal(t *testing.T) {
	inner := NewScripted(
		[]string{"ACCEPT $90"},
		nil,
	)
	generator := &stageFailGenerator{inner: inner, failStage: model.StageShipping}

	session, outcome, turns := runEngine(t, generator, Config{
		Listing:     demoListing(),
		BuyerBudget: 95,
		SellerMin:   80,
	})

	require.True(t, outcome.Agreed)
	require.Equal(t, model.StatusAgreed, session.Status)
	require.Len(t, turns, 3)
	require.Contains(t, turns[1].Content, "unavailable")
}

type stageFailGenerator struct {
	inner     model.Generator
	failStage model.Stage
}

func (s *stageFailGenerator) Generate(ctx context.Context, input model.PromptInput, history []model.Turn) (string, error) {
	if input.Stage == s.failStage {
		return "", errors.New("collaborator error")
	}
	return s.inner.Generate(ctx, input, history)
}

// scriptedHuman returns canned utterances for specific (role, round) pairs.
type scriptedHuman struct {
	lines map[model.Role]map[int]string
}

func (h *scriptedHuman) TryGetUtterance(role model.Role, round int) (string, bool) {
	text, ok := h.lines[role][round]
	return text, ok
}

func TestEngineHumanOverrideTakesPrecedence(t *testing.T) {
	generator := NewScripted(
		[]string{"My offer is $70."},
		[]string{"COUNTER: $95"},
	)
	human := &scriptedHuman{lines: map[model.Role]map[int]string{
		model.RoleSeller: {1: "Accept offer of $70."},
	}}

	store := transcript.NewMemoryStore()
	engine := NewEngine(generator, human, store, time.Second)

	session, outcome, err := engine.Run(context.Background(), Config{
		Listing:     demoListing(),
		BuyerBudget: 90,
		SellerMin:   60,
		Interactive: true,
	}, nil)
	require.NoError(t, err)

	require.True(t, outcome.Agreed)
	require.Equal(t, 70, *outcome.FinalPrice)
	require.Equal(t, model.StatusAgreed, session.Status)
}

func TestEngineObserverSeesEveryTurn(t *testing.T) {
	generator := NewScripted(
		[]string{"My offer is $70.", "ACCEPT $90"},
		[]string{"COUNTER: $90"},
	)
	store := transcript.NewMemoryStore()
	engine := NewEngine(generator, nil, store, 0)

	var seen []model.Turn
	session, _, err := engine.Run(context.Background(), Config{
		Listing:     demoListing(),
		BuyerBudget: 95,
		SellerMin:   80,
	}, func(turn model.Turn) {
		seen = append(seen, turn)
	})
	require.NoError(t, err)

	stored, err := store.List(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, len(stored), len(seen))
}
