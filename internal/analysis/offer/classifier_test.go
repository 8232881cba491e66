package offer

import (
	"testing"

	"github.com/marketloop/negotiator/internal/model/negotiation"
)

func TestClassifyAccepted(t *testing.T) {
	for _, utterance := range []string{
		"ACCEPT $90",
		"Sounds like a deal to me",
		"Sold! Pleasure doing business",
	} {
		if got := Classify(utterance); got != negotiation.TurnAccepted {
			t.Fatalf("Classify(%q) = %s, want accepted", utterance, got)
		}
	}
}

func TestClassifyRejected(t *testing.T) {
	for _, utterance := range []string{
		"REJECT: too low",
		"I will terminate this negotiation",
	} {
		if got := Classify(utterance); got != negotiation.TurnRejected {
			t.Fatalf("Classify(%q) = %s, want rejected", utterance, got)
		}
	}
}

func TestClassifyOffer(t *testing.T) {
	if got := Classify("COUNTER: $90"); got != negotiation.TurnOffer {
		t.Fatalf("got %s, want offer", got)
	}
}

func TestClassifyText(t *testing.T) {
	if got := Classify("tell me more about the condition"); got != negotiation.TurnText {
		t.Fatalf("got %s, want text", got)
	}
}

func TestClassifyAcceptBeatsPrice(t *testing.T) {
	if got := Classify("I accept your offer of $90"); got != negotiation.TurnAccepted {
		t.Fatalf("got %s, want accepted", got)
	}
}

func TestAnalyzeCarriesPriceOnAcceptance(t *testing.T) {
	kind, price := Analyze("ACCEPT $90")
	if kind != negotiation.TurnAccepted {
		t.Fatalf("got %s, want accepted", kind)
	}
	if price == nil || *price != 90 {
		t.Fatalf("got price %v, want 90", price)
	}
}

func TestAnalyzePlainText(t *testing.T) {
	kind, price := Analyze("is shipping included?")
	if kind != negotiation.TurnText || price != nil {
		t.Fatalf("got %s price=%v, want text with no price", kind, price)
	}
}
