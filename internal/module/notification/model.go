package notification

import (
	"time"

	"github.com/google/uuid"
)

// Kind categorizes a notification by the workflow event that produced it.
type Kind string

const (
	KindProposalSubmitted     Kind = "proposal_submitted"
	KindProposalApproved      Kind = "proposal_approved"
	KindProposalRejected      Kind = "proposal_rejected"
	KindProposalReceived      Kind = "proposal_received"
	KindCounterSubmitted      Kind = "counter_submitted"
	KindCounterApproved       Kind = "counter_approved"
	KindCounterRejected       Kind = "counter_rejected"
	KindCounterReceived       Kind = "counter_received"
	KindCollaborationAccepted Kind = "collaboration_accepted"
	KindCollaborationDeclined Kind = "collaboration_declined"
)

// Notification is a per-party projection of a workflow event.
type Notification struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RecipientID     uuid.UUID `json:"recipient_id" gorm:"type:uuid;not null;index"`
	Kind            Kind      `json:"kind" gorm:"not null"`
	CollaborationID uuid.UUID `json:"collaboration_id" gorm:"type:uuid;not null;index"`
	Message         string    `json:"message" gorm:"not null"`
	Read            bool      `json:"read" gorm:"not null;default:false;index"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (Notification) TableName() string {
	return "notifications"
}
