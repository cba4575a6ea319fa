package negotiation

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// noteMaxLength caps every free-text note on a counter. The UI truncates
// too, but the API is the true boundary.
const noteMaxLength = 120

// ResponseAction is the per-field decision a counterparty takes.
type ResponseAction string

const (
	ActionAccept  ResponseAction = "accept"
	ActionModify  ResponseAction = "modify"
	ActionDecline ResponseAction = "decline"
	// ActionPartial is accepted on the wire as an alias of modify.
	ActionPartial ResponseAction = "partial"
)

// IsValid checks if the action is recognized.
func (a ResponseAction) IsValid() bool {
	switch a {
	case ActionAccept, ActionModify, ActionDecline, ActionPartial:
		return true
	}
	return false
}

// RequiresModifiedValue reports whether the action must carry a non-empty
// modified value.
func (a ResponseAction) RequiresModifiedValue() bool {
	return a == ActionModify || a == ActionPartial
}

// FieldResponse is the atomic decision record applied to one named field
// of the proposal. Immutable once its counter is submitted.
type FieldResponse struct {
	Action        ResponseAction `json:"action"`
	ModifiedValue string         `json:"modified_value,omitempty"`
	Note          string         `json:"note,omitempty"`
}

// Validate checks a single field response.
func (fr FieldResponse) Validate() error {
	if fr.Action == "" {
		return fmt.Errorf("%w: field response missing action", ErrValidation)
	}
	if !fr.Action.IsValid() {
		return fmt.Errorf("%w: unknown action %q", ErrValidation, fr.Action)
	}
	if fr.Action.RequiresModifiedValue() && fr.ModifiedValue == "" {
		return fmt.Errorf("%w: action %q requires a modified value", ErrValidation, fr.Action)
	}
	// Character count, not bytes; notes may carry non-ASCII text.
	if utf8.RuneCountInString(fr.Note) > noteMaxLength {
		return fmt.Errorf("%w: note exceeds %d characters", ErrValidation, noteMaxLength)
	}
	return nil
}

// FieldResponseMap maps proposal field names to field responses. Stored
// as a JSONB column.
type FieldResponseMap map[string]FieldResponse

// Validate checks the whole response set against the proposal's form.
// The map must be non-empty, every entry must validate, and every key
// must name a recognized field of the form.
func (m FieldResponseMap) Validate(form Form) error {
	if len(m) == 0 {
		return fmt.Errorf("%w: field responses must not be empty", ErrValidation)
	}

	known := make(map[string]struct{})
	for _, name := range form.FieldNames() {
		known[name] = struct{}{}
	}

	for field, fr := range m {
		if _, ok := known[field]; !ok {
			return fmt.Errorf("%w: %q is not a field of this proposal", ErrValidation, field)
		}
		if err := fr.Validate(); err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
	}
	return nil
}

// Value implements driver.Valuer.
func (m FieldResponseMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *FieldResponseMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("unsupported field response type %T", value)
}
