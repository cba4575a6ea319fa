package party

import (
	"time"

	"github.com/google/uuid"
)

// PartyType represents the kind of organization on the platform.
type PartyType string

const (
	TypeCommunity PartyType = "community"
	TypeVenue     PartyType = "venue"
	TypeBrand     PartyType = "brand"
)

// IsValid checks if the type is a valid party type.
func (t PartyType) IsValid() bool {
	switch t {
	case TypeCommunity, TypeVenue, TypeBrand:
		return true
	default:
		return false
	}
}

// PartyStatus represents the lifecycle status of a party.
type PartyStatus string

const (
	StatusActive    PartyStatus = "active"
	StatusSuspended PartyStatus = "suspended" // Admin suspended
)

// Party represents an organization account: a community, venue or brand.
// Platform staff accounts carry IsAdmin and moderate the negotiation queue.
type Party struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Type         PartyType `json:"type" gorm:"not null;index"`
	Name         string    `json:"name" gorm:"not null"`
	Slug         string    `json:"slug" gorm:"uniqueIndex;not null"`
	City         string    `json:"city,omitempty" gorm:"index"`
	About        string    `json:"about,omitempty"`
	ContactEmail string    `json:"contact_email" gorm:"uniqueIndex;not null"`
	LogoURL      string    `json:"logo_url,omitempty" gorm:"column:logo_url"`

	// Authentication
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	IsAdmin      bool   `json:"is_admin" gorm:"column:is_admin;default:false"`

	// Status
	Status        PartyStatus `json:"status" gorm:"default:active"`
	SuspendedAt   *time.Time  `json:"suspended_at,omitempty" gorm:"column:suspended_at"`
	SuspendReason *string     `json:"suspend_reason,omitempty" gorm:"column:suspend_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Party) TableName() string {
	return "parties"
}

// IsActive returns true if the party may act on the platform.
func (p *Party) IsActive() bool {
	return p.Status == StatusActive
}
