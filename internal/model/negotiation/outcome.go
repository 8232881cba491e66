package negotiation

// Outcome summarizes how a bargaining run ended.
type Outcome struct {
	Agreed     bool   `json:"agreed"`
	FinalPrice *int   `json:"finalPrice,omitempty"`
	Reason     string `json:"reason"`
	Rounds     int    `json:"rounds"`
}

// Verdict is the one-shot result of the pre-bargaining verification gate.
type Verdict struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason"`
}
