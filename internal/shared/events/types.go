package events

import "github.com/google/uuid"

// Negotiation workflow event type constants.
const (
	ProposalSubmittedType     = "ProposalSubmitted"
	ProposalApprovedType      = "ProposalApproved"
	ProposalRejectedType      = "ProposalRejected"
	CounterSubmittedType      = "CounterSubmitted"
	CounterApprovedType       = "CounterApproved"
	CounterRejectedType       = "CounterRejected"
	CollaborationAcceptedType = "CollaborationAccepted"
	CollaborationDeclinedType = "CollaborationDeclined"
)

// WorkflowEvent is emitted on every negotiation workflow transition.
// It is defined in the events package to avoid cyclic imports between
// the negotiation and notification modules.
type WorkflowEvent struct {
	BaseEvent

	// CollaborationID is the negotiation thread this event belongs to.
	CollaborationID uuid.UUID `json:"collaboration_id"`

	// CollaborationType is the proposal direction (e.g., "communityToVenue").
	CollaborationType string `json:"collaboration_type"`

	// ProposerID and RecipientID identify the two negotiating parties.
	ProposerID  uuid.UUID `json:"proposer_id"`
	RecipientID uuid.UUID `json:"recipient_id"`

	// ActorID is the party (or admin) whose action produced the event.
	ActorID uuid.UUID `json:"actor_id"`

	// CounterID is set for counter-related events.
	CounterID *uuid.UUID `json:"counter_id,omitempty"`

	// CounterAuthorID is the party that authored the counter, for
	// counter-related events. The turn belongs to the other party.
	CounterAuthorID uuid.UUID `json:"counter_author_id,omitempty"`

	// Round is the counter round at the time of the event (0 = original proposal).
	Round int `json:"round"`

	// Reason carries a decline/reject reason when present.
	Reason string `json:"reason,omitempty"`
}

// NewWorkflowEvent creates a workflow event of the given type.
func NewWorkflowEvent(
	eventType string,
	collaborationID uuid.UUID,
	collaborationType string,
	proposerID, recipientID, actorID uuid.UUID,
	counterID *uuid.UUID,
	round int,
	reason string,
) *WorkflowEvent {
	return &WorkflowEvent{
		BaseEvent:         NewBaseEvent(eventType, collaborationID, "Collaboration"),
		CollaborationID:   collaborationID,
		CollaborationType: collaborationType,
		ProposerID:        proposerID,
		RecipientID:       recipientID,
		ActorID:           actorID,
		CounterID:         counterID,
		Round:             round,
		Reason:            reason,
	}
}
