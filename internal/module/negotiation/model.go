package negotiation

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle status of a collaboration.
type Status string

const (
	StatusDraft                     Status = "draft"
	StatusPendingAdminReview        Status = "pending_admin_review"
	StatusPendingRecipientResponse  Status = "pending_recipient_response"
	StatusCountered                 Status = "countered"
	StatusPendingAdminReviewCounter Status = "pending_admin_review_counter"
	StatusAccepted                  Status = "accepted"
	StatusDeclined                  Status = "declined"
)

// IsTerminal reports whether no further transition is ever accepted.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// CollaborationType identifies which pair of party roles a collaboration
// connects, and thereby which form shape it carries.
type CollaborationType string

const (
	TypeCommunityToVenue CollaborationType = "communityToVenue"
	TypeCommunityToBrand CollaborationType = "communityToBrand"
	TypeBrandToCommunity CollaborationType = "brandToCommunity"
	TypeVenueToCommunity CollaborationType = "venueToCommunity"
)

// IsValid checks if the collaboration type is recognized.
func (t CollaborationType) IsValid() bool {
	switch t {
	case TypeCommunityToVenue, TypeCommunityToBrand, TypeBrandToCommunity, TypeVenueToCommunity:
		return true
	}
	return false
}

// ProposerRole returns the party type that initiates this collaboration type.
func (t CollaborationType) ProposerRole() string {
	switch t {
	case TypeCommunityToVenue, TypeCommunityToBrand:
		return "community"
	case TypeBrandToCommunity:
		return "brand"
	case TypeVenueToCommunity:
		return "venue"
	}
	return ""
}

// RecipientRole returns the party type that receives this collaboration type.
func (t CollaborationType) RecipientRole() string {
	switch t {
	case TypeCommunityToVenue:
		return "venue"
	case TypeCommunityToBrand:
		return "brand"
	case TypeBrandToCommunity, TypeVenueToCommunity:
		return "community"
	}
	return ""
}

// FormDocument stores the typed proposal form as a JSONB column. The
// concrete shape is resolved through DecodeForm using the parent
// collaboration's type.
type FormDocument json.RawMessage

// Value implements driver.Valuer.
func (d FormDocument) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return []byte(d), nil
}

// Scan implements sql.Scanner.
func (d *FormDocument) Scan(value any) error {
	if value == nil {
		*d = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*d = append((*d)[0:0], v...)
		return nil
	case string:
		*d = FormDocument(v)
		return nil
	}
	return fmt.Errorf("unsupported form document type %T", value)
}

// MarshalJSON returns the raw document.
func (d FormDocument) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return []byte(d), nil
}

// UnmarshalJSON stores the raw document.
func (d *FormDocument) UnmarshalJSON(data []byte) error {
	*d = append((*d)[0:0], data...)
	return nil
}

// Collaboration is the aggregate representing one negotiation thread
// between a proposer and a recipient.
type Collaboration struct {
	ID            uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Type          CollaborationType `json:"type" gorm:"not null;index"`
	ProposerID    uuid.UUID         `json:"proposer_id" gorm:"type:uuid;not null;index"`
	ProposerType  string            `json:"proposer_type" gorm:"not null"`
	RecipientID   uuid.UUID         `json:"recipient_id" gorm:"type:uuid;not null;index"`
	RecipientType string            `json:"recipient_type" gorm:"not null"`
	Status        Status            `json:"status" gorm:"not null;default:draft;index"`
	FormData      FormDocument      `json:"form_data" gorm:"type:jsonb"`

	HasCounter      bool       `json:"has_counter" gorm:"not null;default:false"`
	LatestCounterID *uuid.UUID `json:"latest_counter_id,omitempty" gorm:"type:uuid"`
	Round           int        `json:"round" gorm:"not null;default:0"`

	// Version guards against concurrent writes. Every state-changing
	// update is a single-row UPDATE conditioned on the version read.
	Version int `json:"version" gorm:"not null;default:1"`

	DeclinedBy    *uuid.UUID `json:"declined_by,omitempty" gorm:"type:uuid"`
	DeclineReason string     `json:"decline_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Counters []Counter `json:"counters,omitempty" gorm:"foreignKey:CollaborationID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name.
func (Collaboration) TableName() string {
	return "collaborations"
}

// IsParty reports whether the given actor is one of the two negotiating
// parties.
func (c *Collaboration) IsParty(actorID uuid.UUID) bool {
	return actorID == c.ProposerID || actorID == c.RecipientID
}

// OtherParty returns the party opposite the given one.
func (c *Collaboration) OtherParty(actorID uuid.UUID) uuid.UUID {
	if actorID == c.ProposerID {
		return c.RecipientID
	}
	return c.ProposerID
}

// CounterStatus represents the moderation status of a counter.
type CounterStatus string

const (
	CounterStatusPendingAdminReview CounterStatus = "pending_admin_review"
	CounterStatusApproved           CounterStatus = "approved"
	CounterStatusRejected           CounterStatus = "rejected"
)

// Counter captures one party's field-by-field response to the current
// proposal or counter. Counters are immutable once submitted; a new round
// creates a new row.
type Counter struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CollaborationID uuid.UUID `json:"collaboration_id" gorm:"type:uuid;not null;index"`
	AuthorID        uuid.UUID `json:"author_id" gorm:"type:uuid;not null"`
	AuthorRole      string    `json:"author_role" gorm:"not null"`

	FieldResponses     FieldResponseMap   `json:"field_responses" gorm:"type:jsonb;not null"`
	ModelSpecificTerms FormDocument       `json:"model_specific_terms,omitempty" gorm:"type:jsonb"`
	CommercialCounter  *CommercialCounter `json:"commercial_counter,omitempty" gorm:"type:jsonb"`
	GeneralNotes       string             `json:"general_notes,omitempty"`

	Status    CounterStatus `json:"status" gorm:"not null;default:pending_admin_review"`
	Round     int           `json:"round" gorm:"not null"`
	CreatedAt time.Time     `json:"created_at"`
}

// TableName returns the database table name.
func (Counter) TableName() string {
	return "counters"
}

// CommercialCounter carries an optional alternative commercial arrangement.
type CommercialCounter struct {
	Model      string  `json:"model,omitempty"`
	Amount     string  `json:"value,omitempty"`
	Percentage float64 `json:"percentage,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// Value implements driver.Valuer.
func (cc CommercialCounter) Value() (driver.Value, error) {
	return json.Marshal(cc)
}

// Scan implements sql.Scanner.
func (cc *CommercialCounter) Scan(value any) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, cc)
	case string:
		return json.Unmarshal([]byte(v), cc)
	}
	return fmt.Errorf("unsupported commercial counter type %T", value)
}
