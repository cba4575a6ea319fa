package negotiation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateMachine_CanTransition(t *testing.T) {
	sm := NewStateMachine()

	tests := []struct {
		from     Status
		to       Status
		expected bool
	}{
		{StatusDraft, StatusPendingAdminReview, true},
		{StatusDraft, StatusPendingRecipientResponse, false},
		{StatusPendingAdminReview, StatusPendingRecipientResponse, true},
		{StatusPendingAdminReview, StatusDeclined, true},
		{StatusPendingAdminReview, StatusAccepted, false},
		{StatusPendingRecipientResponse, StatusCountered, true},
		{StatusPendingRecipientResponse, StatusAccepted, true},
		{StatusPendingRecipientResponse, StatusDeclined, true},
		{StatusCountered, StatusPendingAdminReviewCounter, true},
		{StatusCountered, StatusAccepted, false},
		{StatusPendingAdminReviewCounter, StatusPendingRecipientResponse, true},
		{StatusPendingAdminReviewCounter, StatusDeclined, true},

		// Terminal states accept nothing
		{StatusAccepted, StatusDeclined, false},
		{StatusAccepted, StatusPendingRecipientResponse, false},
		{StatusDeclined, StatusAccepted, false},
		{StatusDeclined, StatusPendingAdminReview, false},

		{Status("unknown"), StatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, sm.CanTransition(tt.from, tt.to))
		})
	}
}

func TestStateMachine_Transition(t *testing.T) {
	sm := NewStateMachine()

	c := &Collaboration{Status: StatusPendingAdminReview}
	err := sm.Transition(c, StatusPendingRecipientResponse)
	assert.NoError(t, err)
	assert.Equal(t, StatusPendingRecipientResponse, c.Status)

	err = sm.Transition(c, StatusDraft)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusPendingRecipientResponse, c.Status, "failed transition has no side effect")
}

func TestStateMachine_TerminalStates(t *testing.T) {
	sm := NewStateMachine()
	all := []Status{
		StatusDraft, StatusPendingAdminReview, StatusPendingRecipientResponse,
		StatusCountered, StatusPendingAdminReviewCounter, StatusAccepted, StatusDeclined,
	}

	for _, terminal := range []Status{StatusAccepted, StatusDeclined} {
		assert.True(t, terminal.IsTerminal())
		assert.Empty(t, sm.GetAllowedTransitions(terminal))
		for _, to := range all {
			c := &Collaboration{Status: terminal}
			err := sm.Transition(c, to)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, terminal, c.Status)
		}
	}
}
