package negotiation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeForm(t *testing.T) {
	raw := FormDocument(`{
		"event_type": "Music & Concerts",
		"expected_attendees": "100-250",
		"event_date": {"date": "2026-03-15", "start_time": "19:00"},
		"requirements": {"av": {"selected": true, "sub_options": {"mic": true}}}
	}`)

	form, err := DecodeForm(TypeCommunityToVenue, raw)
	require.NoError(t, err)

	ctv, ok := form.(*CommunityToVenueForm)
	require.True(t, ok)
	assert.Equal(t, "Music & Concerts", ctv.EventType)
	assert.Equal(t, "2026-03-15", ctv.EventDate.Date)
	assert.True(t, ctv.Requirements["av"].Selected)
	assert.True(t, ctv.Requirements["av"].SubOptions["mic"])
}

func TestDecodeForm_Errors(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		_, err := DecodeForm(TypeCommunityToVenue, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := DecodeForm(CollaborationType("venueToBrand"), FormDocument(`{}`))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := DecodeForm(TypeCommunityToVenue, FormDocument(`{broken`))
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestForms_Validate(t *testing.T) {
	tests := []struct {
		name    string
		form    Form
		wantErr bool
	}{
		{
			"community to venue valid",
			&CommunityToVenueForm{EventType: "Workshop", ExpectedAttendees: "25-50", EventDate: EventDate{Date: "2026-04-01"}},
			false,
		},
		{
			"community to venue missing date",
			&CommunityToVenueForm{EventType: "Workshop", ExpectedAttendees: "25-50"},
			true,
		},
		{
			"community to brand valid",
			&CommunityToBrandForm{EventCategory: "Tech", ExpectedAttendees: "100-250", City: "Berlin"},
			false,
		},
		{
			"community to brand missing city",
			&CommunityToBrandForm{EventCategory: "Tech", ExpectedAttendees: "100-250"},
			true,
		},
		{
			"brand to community valid",
			&BrandToCommunityForm{
				CampaignObjectives: OptionMap{"awareness": {Selected: true}},
				TargetAudience:     "students",
			},
			false,
		},
		{
			"brand to community no objectives",
			&BrandToCommunityForm{TargetAudience: "students"},
			true,
		},
		{
			"venue to community valid",
			&VenueToCommunityForm{VenueType: "club", CapacityRange: "200-400"},
			false,
		},
		{
			"venue to community missing capacity",
			&VenueToCommunityForm{VenueType: "club"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestForms_FieldNames(t *testing.T) {
	// Every form exposes a closed, non-empty field set.
	forms := []Form{
		&CommunityToVenueForm{},
		&CommunityToBrandForm{},
		&BrandToCommunityForm{},
		&VenueToCommunityForm{},
	}
	for _, f := range forms {
		names := f.FieldNames()
		assert.NotEmpty(t, names)
		seen := make(map[string]struct{})
		for _, n := range names {
			_, dup := seen[n]
			assert.False(t, dup, "duplicate field %s", n)
			seen[n] = struct{}{}
		}
	}
}

func TestFormDocument_RoundTrip(t *testing.T) {
	raw := FormDocument(`{"event_type":"Meetup"}`)

	// Fetching a proposal must return the form data byte-identical.
	out, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))

	var scanned FormDocument
	require.NoError(t, scanned.Scan([]byte(raw)))
	assert.Equal(t, raw, scanned)

	v, err := raw.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte(raw), v)
}

func TestCommercialCounter_Codec(t *testing.T) {
	cc := CommercialCounter{Model: "revenue_share", Amount: "70/30", Percentage: 30, Note: "net of fees"}

	// The alternative amount travels under the "value" wire key.
	v, err := cc.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"model":"revenue_share","value":"70/30","percentage":30,"note":"net of fees"}`, string(v.([]byte)))

	var scanned CommercialCounter
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, cc, scanned)
}
