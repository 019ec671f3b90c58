package videogen

import "errors"

// State represents the stage a generation request has reached. Every request
// walks Received → CredentialChecked → InputValidated → Generating →
// Uploading → Completed, with Failed reachable from any non-terminal state.
// State is request-scoped: there is no persistence and no resumption.
type State string

const (
	StateReceived          State = "RECEIVED"
	StateCredentialChecked State = "CREDENTIAL_CHECKED"
	StateInputValidated    State = "INPUT_VALIDATED"
	StateGenerating        State = "GENERATING"
	StateUploading         State = "UPLOADING"
	StateCompleted         State = "COMPLETED"
	StateFailed            State = "FAILED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("videogen: invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[State][]State{
	StateReceived:          {StateCredentialChecked, StateFailed},
	StateCredentialChecked: {StateInputValidated, StateFailed},
	StateInputValidated:    {StateGenerating, StateFailed},
	StateGenerating:        {StateUploading, StateFailed},
	StateUploading:         {StateCompleted, StateFailed},
	StateCompleted:         {},
	StateFailed:            {},
}

// IsTerminal returns true if the state is a terminal state.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransition returns true if moving from s to the given state is allowed.
func (s State) CanTransition(to State) bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, next := range allowed {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns the next state, or ErrInvalidTransition if the move is
// not allowed.
func (s State) Transition(to State) (State, error) {
	if !s.CanTransition(to) {
		return s, ErrInvalidTransition
	}
	return to, nil
}
