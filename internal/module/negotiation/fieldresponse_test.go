package negotiation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldResponse_Validate(t *testing.T) {
	tests := []struct {
		name    string
		fr      FieldResponse
		wantErr bool
	}{
		{"accept", FieldResponse{Action: ActionAccept}, false},
		{"decline with note", FieldResponse{Action: ActionDecline, Note: "too early"}, false},
		{"modify with value", FieldResponse{Action: ActionModify, ModifiedValue: "2026-03-16"}, false},
		{"partial with value", FieldResponse{Action: ActionPartial, ModifiedValue: "half the hall"}, false},
		{"missing action", FieldResponse{}, true},
		{"unknown action", FieldResponse{Action: "veto"}, true},
		{"modify without value", FieldResponse{Action: ActionModify}, true},
		{"partial without value", FieldResponse{Action: ActionPartial}, true},
		{"note at limit", FieldResponse{Action: ActionAccept, Note: strings.Repeat("x", 120)}, false},
		{"note over limit", FieldResponse{Action: ActionAccept, Note: strings.Repeat("x", 121)}, true},
		{"multibyte note at limit", FieldResponse{Action: ActionAccept, Note: strings.Repeat("é", 120)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fr.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFieldResponseMap_Validate(t *testing.T) {
	form := &CommunityToVenueForm{
		EventType:         "Music & Concerts",
		ExpectedAttendees: "100-250",
		EventDate:         EventDate{Date: "2026-03-15"},
	}

	t.Run("valid responses", func(t *testing.T) {
		m := FieldResponseMap{
			"event_date": {Action: ActionModify, ModifiedValue: "2026-03-16"},
			"pricing":    {Action: ActionAccept},
		}
		assert.NoError(t, m.Validate(form))
	})

	t.Run("empty map rejected", func(t *testing.T) {
		assert.ErrorIs(t, FieldResponseMap{}.Validate(form), ErrValidation)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		m := FieldResponseMap{
			"venue_type": {Action: ActionAccept}, // belongs to another form shape
		}
		assert.ErrorIs(t, m.Validate(form), ErrValidation)
	})

	t.Run("invalid entry rejected", func(t *testing.T) {
		m := FieldResponseMap{
			"event_date": {Action: ActionModify, ModifiedValue: ""},
		}
		err := m.Validate(form)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "event_date")
	})
}

func TestResponseAction_RequiresModifiedValue(t *testing.T) {
	assert.True(t, ActionModify.RequiresModifiedValue())
	assert.True(t, ActionPartial.RequiresModifiedValue())
	assert.False(t, ActionAccept.RequiresModifiedValue())
	assert.False(t, ActionDecline.RequiresModifiedValue())
}
