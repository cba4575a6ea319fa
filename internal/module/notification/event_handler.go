package notification

import (
	"context"
	"fmt"

	"github.com/gatherly/server/internal/shared/events"
	"go.uber.org/zap"
)

// EventHandler projects negotiation workflow events into notification
// rows. Registered on the in-process event bus; failures are logged by
// the bus and never fail the originating request.
type EventHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewEventHandler creates a new workflow event handler.
func NewEventHandler(service *Service, logger *zap.Logger) *EventHandler {
	return &EventHandler{service: service, logger: logger}
}

// Handles returns the workflow event types this handler consumes.
func (h *EventHandler) Handles() []string {
	return []string{
		events.ProposalSubmittedType,
		events.ProposalApprovedType,
		events.ProposalRejectedType,
		events.CounterSubmittedType,
		events.CounterApprovedType,
		events.CounterRejectedType,
		events.CollaborationAcceptedType,
		events.CollaborationDeclinedType,
	}
}

// Handle converts one workflow event into notifications for the parties
// who need to act or know.
func (h *EventHandler) Handle(event events.Event) error {
	we, ok := event.(*events.WorkflowEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	ctx := context.Background()

	switch we.EventType() {
	case events.ProposalSubmittedType:
		// Confirmation to the proposer; the recipient sees nothing
		// until moderation passes.
		return h.service.Notify(ctx, we.ProposerID, KindProposalSubmitted, we.CollaborationID,
			"Your proposal was submitted and is awaiting review.")

	case events.ProposalApprovedType:
		if err := h.service.Notify(ctx, we.ProposerID, KindProposalApproved, we.CollaborationID,
			"Your proposal passed review and was forwarded."); err != nil {
			return err
		}
		return h.service.Notify(ctx, we.RecipientID, KindProposalReceived, we.CollaborationID,
			"You received a new collaboration proposal.")

	case events.ProposalRejectedType:
		return h.service.Notify(ctx, we.ProposerID, KindProposalRejected, we.CollaborationID,
			h.withReason("Your proposal was rejected during review.", we.Reason))

	case events.CounterSubmittedType:
		return h.service.Notify(ctx, we.ActorID, KindCounterSubmitted, we.CollaborationID,
			"Your counter-offer was submitted and is awaiting review.")

	case events.CounterApprovedType:
		// The turn passes to whichever party did not author the counter.
		author := we.CounterAuthorID
		responder := we.RecipientID
		if author == we.RecipientID {
			responder = we.ProposerID
		}
		if err := h.service.Notify(ctx, author, KindCounterApproved, we.CollaborationID,
			fmt.Sprintf("Your counter-offer (round %d) passed review.", we.Round)); err != nil {
			return err
		}
		return h.service.Notify(ctx, responder, KindCounterReceived, we.CollaborationID,
			fmt.Sprintf("A counter-offer (round %d) is ready for your response.", we.Round))

	case events.CounterRejectedType:
		if err := h.service.Notify(ctx, we.ProposerID, KindCounterRejected, we.CollaborationID,
			h.withReason("The negotiation ended: a counter-offer was rejected during review.", we.Reason)); err != nil {
			return err
		}
		return h.service.Notify(ctx, we.RecipientID, KindCounterRejected, we.CollaborationID,
			h.withReason("The negotiation ended: a counter-offer was rejected during review.", we.Reason))

	case events.CollaborationAcceptedType:
		if err := h.service.Notify(ctx, we.ProposerID, KindCollaborationAccepted, we.CollaborationID,
			"The collaboration was accepted."); err != nil {
			return err
		}
		return h.service.Notify(ctx, we.RecipientID, KindCollaborationAccepted, we.CollaborationID,
			"The collaboration was accepted.")

	case events.CollaborationDeclinedType:
		if err := h.service.Notify(ctx, we.ProposerID, KindCollaborationDeclined, we.CollaborationID,
			h.withReason("The collaboration was declined.", we.Reason)); err != nil {
			return err
		}
		return h.service.Notify(ctx, we.RecipientID, KindCollaborationDeclined, we.CollaborationID,
			h.withReason("The collaboration was declined.", we.Reason))
	}

	h.logger.Debug("ignoring workflow event", zap.String("event_type", we.EventType()))
	return nil
}

func (h *EventHandler) withReason(message, reason string) string {
	if reason == "" {
		return message
	}
	return fmt.Sprintf("%s Reason: %s", message, reason)
}
