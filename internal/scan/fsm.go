// Package scan drives the verifier's proof checking flow: acquire an image,
// find the token, redeem it against the authority, and land on a verdict.
// The flow is an explicit state machine; every phase change goes through
// Transition so illegal moves fail loudly instead of racing.
package scan

import (
	"fmt"

	dErrors "attesta/pkg/domain-errors"
)

// State is a phase of the scan flow.
type State string

const (
	// StateIdle accepts a new submission.
	StateIdle State = "idle"
	// StateAcquiring reads the submitted image.
	StateAcquiring State = "acquiring"
	// StateAnalyzing looks for a token in the decoded image.
	StateAnalyzing State = "analyzing"
	// StateRedeeming has the redemption call in flight.
	StateRedeeming State = "redeeming"
	// StateVerified is terminal: the authority accepted the token.
	StateVerified State = "verified"
	// StateInvalid is terminal: the authority rejected the token.
	StateInvalid State = "invalid"
	// StateFailed is terminal: no token found, or a fault before a verdict.
	StateFailed State = "failed"
)

// IsTerminal reports whether the state only leaves via EventReset.
func (s State) IsTerminal() bool {
	return s == StateVerified || s == StateInvalid || s == StateFailed
}

// Event is a stimulus applied to the scan flow.
type Event string

const (
	EventImageSubmitted Event = "image_submitted"
	EventImageDecoded   Event = "image_decoded"
	EventTokenExtracted Event = "token_extracted"
	EventTokenMissing   Event = "token_missing"
	EventRedeemAccepted Event = "redeem_accepted"
	EventRedeemRejected Event = "redeem_rejected"
	EventFaulted        Event = "faulted"
	EventReset          Event = "reset"
)

// transitions is the complete legal move table. Anything absent is illegal.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventImageSubmitted: StateAcquiring,
		EventReset:          StateIdle,
	},
	StateAcquiring: {
		EventImageDecoded: StateAnalyzing,
		EventTokenMissing: StateFailed,
		EventFaulted:      StateFailed,
		EventReset:        StateIdle,
	},
	StateAnalyzing: {
		EventTokenExtracted: StateRedeeming,
		EventTokenMissing:   StateFailed,
		EventFaulted:        StateFailed,
		EventReset:          StateIdle,
	},
	StateRedeeming: {
		EventRedeemAccepted: StateVerified,
		EventRedeemRejected: StateInvalid,
		EventFaulted:        StateFailed,
		EventReset:          StateIdle,
	},
	StateVerified: {
		EventReset: StateIdle,
	},
	StateInvalid: {
		EventReset: StateIdle,
	},
	StateFailed: {
		EventReset: StateIdle,
	},
}

// Transition applies event to state. Illegal moves return the unchanged
// state and an invariant violation.
func Transition(state State, event Event) (State, error) {
	next, ok := transitions[state][event]
	if !ok {
		return state, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("illegal scan transition: %s on %s", event, state))
	}
	return next, nil
}
