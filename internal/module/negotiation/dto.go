package negotiation

import (
	"encoding/json"
	"time"

	"github.com/gatherly/server/internal/utils/pagination"
	"github.com/google/uuid"
)

// ProposeRequest creates a collaboration in pending_admin_review.
type ProposeRequest struct {
	Type        CollaborationType `json:"type" binding:"required"`
	RecipientID uuid.UUID         `json:"recipient_id" binding:"required"`
	FormData    json.RawMessage   `json:"form_data" binding:"required"`
}

// DraftRequest persists a draft without required-field validation.
// When ID is set, the existing draft is updated in place.
type DraftRequest struct {
	ID          *uuid.UUID        `json:"id,omitempty"`
	Type        CollaborationType `json:"type" binding:"required"`
	RecipientID uuid.UUID         `json:"recipient_id" binding:"required"`
	FormData    json.RawMessage   `json:"form_data"`
}

// CounterRequest submits a counter against the current proposal.
type CounterRequest struct {
	FieldResponses     FieldResponseMap   `json:"field_responses" binding:"required"`
	ModelSpecificTerms json.RawMessage    `json:"model_specific_terms,omitempty"`
	CommercialCounter  *CommercialCounter `json:"commercial_counter,omitempty"`
	GeneralNotes       string             `json:"general_notes,omitempty"`
}

// DeclineRequest ends the negotiation with an optional reason.
type DeclineRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// RejectRequest carries the admin's moderation reason.
type RejectRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// ListQuery filters per-actor collaboration listings. Pagination is
// bound separately.
type ListQuery struct {
	Status Status `form:"status" binding:"omitempty,oneof=draft pending_admin_review pending_recipient_response countered pending_admin_review_counter accepted declined"`
}

// CounterResponse is the API shape of a counter.
type CounterResponse struct {
	ID                 uuid.UUID          `json:"id"`
	CollaborationID    uuid.UUID          `json:"collaboration_id"`
	AuthorID           uuid.UUID          `json:"author_id"`
	AuthorRole         string             `json:"author_role"`
	FieldResponses     FieldResponseMap   `json:"field_responses"`
	ModelSpecificTerms json.RawMessage    `json:"model_specific_terms,omitempty"`
	CommercialCounter  *CommercialCounter `json:"commercial_counter,omitempty"`
	GeneralNotes       string             `json:"general_notes,omitempty"`
	Status             CounterStatus      `json:"status"`
	Round              int                `json:"round"`
	CreatedAt          time.Time          `json:"created_at"`
}

// ToResponse converts a counter to its API shape.
func (c *Counter) ToResponse() *CounterResponse {
	return &CounterResponse{
		ID:                 c.ID,
		CollaborationID:    c.CollaborationID,
		AuthorID:           c.AuthorID,
		AuthorRole:         c.AuthorRole,
		FieldResponses:     c.FieldResponses,
		ModelSpecificTerms: json.RawMessage(c.ModelSpecificTerms),
		CommercialCounter:  c.CommercialCounter,
		GeneralNotes:       c.GeneralNotes,
		Status:             c.Status,
		Round:              c.Round,
		CreatedAt:          c.CreatedAt,
	}
}

// CollaborationResponse is the API shape of a collaboration.
type CollaborationResponse struct {
	ID              uuid.UUID         `json:"id"`
	Type            CollaborationType `json:"type"`
	ProposerID      uuid.UUID         `json:"proposer_id"`
	ProposerType    string            `json:"proposer_type"`
	RecipientID     uuid.UUID         `json:"recipient_id"`
	RecipientType   string            `json:"recipient_type"`
	Status          Status            `json:"status"`
	FormData        json.RawMessage   `json:"form_data"`
	HasCounter      bool              `json:"has_counter"`
	LatestCounterID *uuid.UUID        `json:"latest_counter_id,omitempty"`
	Round           int               `json:"round"`
	DeclinedBy      *uuid.UUID        `json:"declined_by,omitempty"`
	DeclineReason   string            `json:"decline_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`

	LatestCounter *CounterResponse   `json:"latest_counter,omitempty"`
	Counters      []*CounterResponse `json:"counters,omitempty"`
}

// ToResponse converts a collaboration to its API shape. The counter
// history is included when withHistory is set.
func (c *Collaboration) ToResponse(withHistory bool) *CollaborationResponse {
	resp := &CollaborationResponse{
		ID:              c.ID,
		Type:            c.Type,
		ProposerID:      c.ProposerID,
		ProposerType:    c.ProposerType,
		RecipientID:     c.RecipientID,
		RecipientType:   c.RecipientType,
		Status:          c.Status,
		FormData:        json.RawMessage(c.FormData),
		HasCounter:      c.HasCounter,
		LatestCounterID: c.LatestCounterID,
		Round:           c.Round,
		DeclinedBy:      c.DeclinedBy,
		DeclineReason:   c.DeclineReason,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}

	if withHistory {
		resp.Counters = make([]*CounterResponse, len(c.Counters))
		for i := range c.Counters {
			resp.Counters[i] = c.Counters[i].ToResponse()
			if c.LatestCounterID != nil && c.Counters[i].ID == *c.LatestCounterID {
				resp.LatestCounter = resp.Counters[i]
			}
		}
	}
	return resp
}

// ListResponse wraps a paginated listing.
type ListResponse struct {
	Collaborations []*CollaborationResponse `json:"collaborations"`
	PageInfo       pagination.PageInfo      `json:"page_info"`
}

// PendingModerationResponse is the admin moderation queue.
type PendingModerationResponse struct {
	Proposals []*CollaborationResponse `json:"proposals"`
	Counters  []*CounterResponse       `json:"counters"`
}
