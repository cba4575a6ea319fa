package negotiation

import (
	"encoding/json"
	"fmt"
)

// Form is the typed proposal document behind a collaboration. Each
// collaboration type has one concrete shape; DecodeForm resolves the
// tag to the right struct.
type Form interface {
	// Validate checks the type-specific required fields.
	Validate() error
	// FieldNames returns the closed set of top-level fields a counter
	// may respond to.
	FieldNames() []string
}

// DecodeForm unmarshals a raw form document into the concrete struct
// for the given collaboration type.
func DecodeForm(t CollaborationType, raw FormDocument) (Form, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: form data is required", ErrValidation)
	}

	var form Form
	switch t {
	case TypeCommunityToVenue:
		form = &CommunityToVenueForm{}
	case TypeCommunityToBrand:
		form = &CommunityToBrandForm{}
	case TypeBrandToCommunity:
		form = &BrandToCommunityForm{}
	case TypeVenueToCommunity:
		form = &VenueToCommunityForm{}
	default:
		return nil, fmt.Errorf("%w: unknown collaboration type %q", ErrValidation, t)
	}

	if err := json.Unmarshal(raw, form); err != nil {
		return nil, fmt.Errorf("%w: malformed form data: %v", ErrValidation, err)
	}
	return form, nil
}

// OptionSelection is one selectable option within a form section, with
// optional sub-options and a free comment.
type OptionSelection struct {
	Selected   bool            `json:"selected"`
	SubOptions map[string]bool `json:"sub_options,omitempty"`
	Comment    string          `json:"comment,omitempty"`
}

// OptionMap maps option identifiers to selections.
type OptionMap map[string]OptionSelection

// EventDate carries the proposed date and time window for an event.
type EventDate struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// SupportingInfo carries reference images and a free note.
type SupportingInfo struct {
	Images []string `json:"images,omitempty"`
	Note   string   `json:"note,omitempty"`
}

// Pricing carries the proposer's commercial expectation.
type Pricing struct {
	Model  string `json:"model,omitempty"`
	Amount string `json:"amount,omitempty"`
	Note   string `json:"note,omitempty"`
}

// CommunityToVenueForm is the proposal a community sends to a venue.
type CommunityToVenueForm struct {
	EventType         string          `json:"event_type"`
	ExpectedAttendees string          `json:"expected_attendees"`
	SeatingCapacity   string          `json:"seating_capacity,omitempty"`
	EventDate         EventDate       `json:"event_date"`
	BackupDate        *EventDate      `json:"backup_date,omitempty"`
	Requirements      OptionMap       `json:"requirements,omitempty"`
	Pricing           *Pricing        `json:"pricing,omitempty"`
	SupportingInfo    *SupportingInfo `json:"supporting_info,omitempty"`
}

func (f *CommunityToVenueForm) Validate() error {
	if f.EventType == "" {
		return fmt.Errorf("%w: event_type is required", ErrValidation)
	}
	if f.ExpectedAttendees == "" {
		return fmt.Errorf("%w: expected_attendees is required", ErrValidation)
	}
	if f.EventDate.Date == "" {
		return fmt.Errorf("%w: event_date.date is required", ErrValidation)
	}
	return nil
}

func (f *CommunityToVenueForm) FieldNames() []string {
	return []string{
		"event_type", "expected_attendees", "seating_capacity",
		"event_date", "backup_date", "requirements", "pricing",
		"supporting_info",
	}
}

// CommunityToBrandForm is the proposal a community sends to a brand.
type CommunityToBrandForm struct {
	EventCategory     string          `json:"event_category"`
	ExpectedAttendees string          `json:"expected_attendees"`
	TargetAudience    string          `json:"target_audience,omitempty"`
	City              string          `json:"city"`
	BrandDeliverables OptionMap       `json:"brand_deliverables,omitempty"`
	Pricing           *Pricing        `json:"pricing,omitempty"`
	SupportingInfo    *SupportingInfo `json:"supporting_info,omitempty"`
}

func (f *CommunityToBrandForm) Validate() error {
	if f.EventCategory == "" {
		return fmt.Errorf("%w: event_category is required", ErrValidation)
	}
	if f.ExpectedAttendees == "" {
		return fmt.Errorf("%w: expected_attendees is required", ErrValidation)
	}
	if f.City == "" {
		return fmt.Errorf("%w: city is required", ErrValidation)
	}
	return nil
}

func (f *CommunityToBrandForm) FieldNames() []string {
	return []string{
		"event_category", "expected_attendees", "target_audience",
		"city", "brand_deliverables", "pricing", "supporting_info",
	}
}

// BrandToCommunityForm is the proposal a brand sends to a community.
type BrandToCommunityForm struct {
	CampaignObjectives OptionMap       `json:"campaign_objectives"`
	TargetAudience     string          `json:"target_audience"`
	PreferredFormats   []string        `json:"preferred_formats,omitempty"`
	BrandOffers        OptionMap       `json:"brand_offers,omitempty"`
	BrandExpectations  OptionMap       `json:"brand_expectations,omitempty"`
	AdditionalTerms    string          `json:"additional_terms,omitempty"`
	SupportingInfo     *SupportingInfo `json:"supporting_info,omitempty"`
}

func (f *BrandToCommunityForm) Validate() error {
	if len(f.CampaignObjectives) == 0 {
		return fmt.Errorf("%w: at least one campaign objective is required", ErrValidation)
	}
	if f.TargetAudience == "" {
		return fmt.Errorf("%w: target_audience is required", ErrValidation)
	}
	return nil
}

func (f *BrandToCommunityForm) FieldNames() []string {
	return []string{
		"campaign_objectives", "target_audience", "preferred_formats",
		"brand_offers", "brand_expectations", "additional_terms",
		"supporting_info",
	}
}

// VenueToCommunityForm is the proposal a venue sends to a community.
type VenueToCommunityForm struct {
	VenueType        string          `json:"venue_type"`
	CapacityRange    string          `json:"capacity_range"`
	PreferredFormats []string        `json:"preferred_formats,omitempty"`
	VenueOfferings   OptionMap       `json:"venue_offerings,omitempty"`
	CommercialModels OptionMap       `json:"commercial_models,omitempty"`
	AdditionalTerms  string          `json:"additional_terms,omitempty"`
	SupportingInfo   *SupportingInfo `json:"supporting_info,omitempty"`
}

func (f *VenueToCommunityForm) Validate() error {
	if f.VenueType == "" {
		return fmt.Errorf("%w: venue_type is required", ErrValidation)
	}
	if f.CapacityRange == "" {
		return fmt.Errorf("%w: capacity_range is required", ErrValidation)
	}
	return nil
}

func (f *VenueToCommunityForm) FieldNames() []string {
	return []string{
		"venue_type", "capacity_range", "preferred_formats",
		"venue_offerings", "commercial_models", "additional_terms",
		"supporting_info",
	}
}
