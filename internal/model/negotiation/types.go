package negotiation

// Role identifies one of the two bargaining parties.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Opposite returns the counter-party role.
func (r Role) Opposite() Role {
	if r == RoleBuyer {
		return RoleSeller
	}
	return RoleBuyer
}

// Valid reports whether the role is one of the two known parties.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// Status tracks the lifecycle of a session. Once it leaves StatusOpen the
// session is terminal and no further turns are appended.
type Status string

const (
	StatusOpen    Status = "open"
	StatusAgreed  Status = "agreed"
	StatusAborted Status = "aborted"
)

// Stage names the pipeline step a session is currently in.
type Stage string

const (
	StageVerification Stage = "verification"
	StageNegotiation  Stage = "negotiation"
	StageShipping     Stage = "shipping"
	StageClosure      Stage = "closure"
	StageAborted      Stage = "aborted"
)

// TurnType classifies a single utterance.
type TurnType string

const (
	TurnText     TurnType = "text"
	TurnOffer    TurnType = "offer"
	TurnAccepted TurnType = "accepted"
	TurnRejected TurnType = "rejected"
)
