package offer

import (
	"strings"

	"github.com/marketloop/negotiator/internal/model/negotiation"
)

// Marker buckets for deal-closing language. Substring matching is a
// best-effort heuristic: "accept" inside an unrelated sentence still counts.
// Classify is the single place to harden the policy (e.g. a structured
// response format) without touching the bargaining state machine.
var (
	acceptMarkers = []string{"accept", "deal", "sold"}
	rejectMarkers = []string{"reject", "terminate"}
)

// Classify buckets an utterance into a turn type. Accept markers take
// precedence over reject markers, and both take precedence over a bare
// price, so "I accept $90" classifies as accepted, not offer.
func Classify(utterance string) negotiation.TurnType {
	lowered := strings.ToLower(utterance)

	for _, marker := range acceptMarkers {
		if strings.Contains(lowered, marker) {
			return negotiation.TurnAccepted
		}
	}
	for _, marker := range rejectMarkers {
		if strings.Contains(lowered, marker) {
			return negotiation.TurnRejected
		}
	}
	if _, ok := Extract(utterance); ok {
		return negotiation.TurnOffer
	}
	return negotiation.TurnText
}

// Analyze classifies an utterance and extracts its price in one pass. The
// price pointer is set for any utterance carrying an amount, including
// accepted/rejected turns, so acceptance can restate its own price.
func Analyze(utterance string) (negotiation.TurnType, *int) {
	kind := Classify(utterance)
	if value, ok := Extract(utterance); ok {
		return kind, &value
	}
	return kind, nil
}
