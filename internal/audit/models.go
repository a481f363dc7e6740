package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	HolderID  string
	RequestID string
	Purpose   string
	Action    string
	Decision  string
	Reason    string
	Device    string
}

// Audit event actions.
const (
	ActionProofIssued      = "proof_issued"
	ActionIssuanceRejected = "issuance_rejected"
	ActionProofRedeemed    = "proof_redeemed"
	ActionRedemptionDenied = "redemption_denied"
	ActionIdentityAttested = "identity_attested"
)

// Audit event decisions.
const (
	DecisionIssued   = "issued"
	DecisionRejected = "rejected"
	DecisionRedeemed = "redeemed"
	DecisionDenied   = "denied"
	DecisionAttested = "attested"
)

// Audit event reasons.
const (
	ReasonHolderInitiated    = "holder_initiated"
	ReasonVerifierInitiated  = "verifier_initiated"
	ReasonUnverifiedIdentity = "unverified_identity"
	ReasonIncompleteIdentity = "incomplete_identity"
	ReasonExpired            = "expired"
	ReasonAlreadyRedeemed    = "already_redeemed"
	ReasonUnknownRequest     = "unknown_request"
)
