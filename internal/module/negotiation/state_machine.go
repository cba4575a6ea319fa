package negotiation

import "fmt"

// StateMachine validates and executes collaboration state transitions.
type StateMachine struct {
	transitions map[Status][]Status
}

// NewStateMachine creates the collaboration workflow state machine.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		transitions: map[Status][]Status{
			StatusDraft:                     {StatusPendingAdminReview},
			StatusPendingAdminReview:        {StatusPendingRecipientResponse, StatusDeclined},
			StatusPendingRecipientResponse:  {StatusCountered, StatusAccepted, StatusDeclined},
			StatusCountered:                 {StatusPendingAdminReviewCounter},
			StatusPendingAdminReviewCounter: {StatusPendingRecipientResponse, StatusDeclined},
			StatusAccepted:                  {}, // Terminal state
			StatusDeclined:                  {}, // Terminal state
		},
	}
}

// CanTransition checks if a transition from `from` to `to` is valid.
func (sm *StateMachine) CanTransition(from, to Status) bool {
	allowed, ok := sm.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Transition attempts to move a collaboration to a new status.
func (sm *StateMachine) Transition(c *Collaboration, to Status) error {
	if !sm.CanTransition(c.Status, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, c.Status, to)
	}
	c.Status = to
	return nil
}

// GetAllowedTransitions returns all allowed transitions from the given status.
func (sm *StateMachine) GetAllowedTransitions(from Status) []Status {
	allowed, ok := sm.transitions[from]
	if !ok {
		return []Status{}
	}
	result := make([]Status, len(allowed))
	copy(result, allowed)
	return result
}
