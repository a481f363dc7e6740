package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "attesta/pkg/domain-errors"
)

var allStates = []State{
	StateIdle, StateAcquiring, StateAnalyzing, StateRedeeming,
	StateVerified, StateInvalid, StateFailed,
}

var allEvents = []Event{
	EventImageSubmitted, EventImageDecoded, EventTokenExtracted,
	EventTokenMissing, EventRedeemAccepted, EventRedeemRejected,
	EventFaulted, EventReset,
}

func TestTransition_HappyPath(t *testing.T) {
	steps := []struct {
		event Event
		want  State
	}{
		{EventImageSubmitted, StateAcquiring},
		{EventImageDecoded, StateAnalyzing},
		{EventTokenExtracted, StateRedeeming},
		{EventRedeemAccepted, StateVerified},
		{EventReset, StateIdle},
	}
	state := StateIdle
	for _, step := range steps {
		next, err := Transition(state, step.event)
		require.NoError(t, err, "%s on %s", step.event, state)
		assert.Equal(t, step.want, next)
		state = next
	}
}

func TestTransition_VerdictBranches(t *testing.T) {
	t.Run("rejected redemption lands Invalid", func(t *testing.T) {
		next, err := Transition(StateRedeeming, EventRedeemRejected)
		require.NoError(t, err)
		assert.Equal(t, StateInvalid, next)
	})

	t.Run("missing token lands Failed from Acquiring and Analyzing", func(t *testing.T) {
		for _, state := range []State{StateAcquiring, StateAnalyzing} {
			next, err := Transition(state, EventTokenMissing)
			require.NoError(t, err)
			assert.Equal(t, StateFailed, next)
		}
	})

	t.Run("faults land Failed from every active phase", func(t *testing.T) {
		for _, state := range []State{StateAcquiring, StateAnalyzing, StateRedeeming} {
			next, err := Transition(state, EventFaulted)
			require.NoError(t, err)
			assert.Equal(t, StateFailed, next)
		}
	})
}

func TestTransition_ResetFromEveryState(t *testing.T) {
	for _, state := range allStates {
		next, err := Transition(state, EventReset)
		require.NoError(t, err, "reset from %s", state)
		assert.Equal(t, StateIdle, next)
	}
}

// TestTransition_IllegalMovesRejected sweeps the full state x event grid:
// everything outside the legal table must return an invariant violation and
// leave the state unchanged.
func TestTransition_IllegalMovesRejected(t *testing.T) {
	for _, state := range allStates {
		for _, event := range allEvents {
			if _, legal := transitions[state][event]; legal {
				continue
			}
			next, err := Transition(state, event)
			require.Error(t, err, "%s on %s must be illegal", event, state)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
			assert.Equal(t, state, next, "illegal move must not change state")
		}
	}
}

func TestTransition_TerminalStatesOnlyLeaveViaReset(t *testing.T) {
	for _, state := range []State{StateVerified, StateInvalid, StateFailed} {
		assert.True(t, state.IsTerminal())
		for _, event := range allEvents {
			if event == EventReset {
				continue
			}
			_, err := Transition(state, event)
			assert.Error(t, err, "%s must not leave %s", event, state)
		}
	}
}
