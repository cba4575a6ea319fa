package negotiation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DirectoryParty is the slice of a party record this module needs to
// verify negotiation participants.
type DirectoryParty struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type   string
	Name   string
	Status string
}

// TableName points the lookup at the party registry table.
func (DirectoryParty) TableName() string {
	return "parties"
}

// IsActive reports whether the party may participate in negotiations.
func (p *DirectoryParty) IsActive() bool {
	return p.Status == "active"
}

// PartyDirectory defines the interface for party lookup.
type PartyDirectory interface {
	GetParty(ctx context.Context, id uuid.UUID) (*DirectoryParty, error)
}

// partyDirectory implements PartyDirectory.
type partyDirectory struct {
	db *gorm.DB
}

// NewPartyDirectory creates a party lookup for the negotiation module.
func NewPartyDirectory(db *gorm.DB) PartyDirectory {
	return &partyDirectory{db: db}
}

// GetParty retrieves a party by ID.
func (d *partyDirectory) GetParty(ctx context.Context, id uuid.UUID) (*DirectoryParty, error) {
	var p DirectoryParty
	err := d.db.WithContext(ctx).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found is not an error
		}
		return nil, err
	}
	return &p, nil
}
