package scan

import (
	"sync"

	dErrors "attesta/pkg/domain-errors"
)

// Outcome is where one submission landed.
type Outcome struct {
	State      State
	RequestID  string      // empty unless a token was extracted
	Disclosure *Disclosure // nil unless the authority returned a verdict
	Reason     string      // set on Invalid and Failed
}

// Session serializes the scan flow: one submission at a time, and a landed
// verdict must be acknowledged with Reset before the next image is accepted.
type Session struct {
	mu      sync.Mutex
	state   State
	outcome *Outcome
}

// NewSession creates an idle Session.
func NewSession() *Session {
	return &Session{state: StateIdle}
}

// State returns the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Outcome returns the landed outcome, or nil while no submission has landed.
func (s *Session) Outcome() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Reset returns the session to Idle from any state and clears the outcome.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.outcome = nil
}

// begin claims the session for a new submission. Any state other than Idle
// refuses the input.
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return dErrors.New(dErrors.CodeConflict, "a scan is already in progress; reset before submitting again")
	}
	next, err := Transition(s.state, EventImageSubmitted)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// advance applies a non-terminal event. The scanner only emits events legal
// for the current phase, so a transition error here is a programming bug and
// is returned for the caller to surface.
func (s *Session) advance(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Transition(s.state, event)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// land applies a terminal event and records the outcome.
func (s *Session) land(event Event, outcome *Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Transition(s.state, event)
	if err != nil {
		return err
	}
	s.state = next
	outcome.State = next
	s.outcome = outcome
	return nil
}
