package party

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest represents a request to register a party.
type RegisterRequest struct {
	Type         PartyType `json:"type" binding:"required,oneof=community venue brand"`
	Name         string    `json:"name" binding:"required,min=1,max=100"`
	City         string    `json:"city" binding:"max=100"`
	About        string    `json:"about" binding:"max=1000"`
	ContactEmail string    `json:"contact_email" binding:"required,email"`
	LogoURL      string    `json:"logo_url" binding:"omitempty,url"`
	Password     string    `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Party     *PartyResponse `json:"party"`
}

// UpdateProfileRequest represents a profile update.
type UpdateProfileRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=100"`
	City    *string `json:"city" binding:"omitempty,max=100"`
	About   *string `json:"about" binding:"omitempty,max=1000"`
	LogoURL *string `json:"logo_url" binding:"omitempty,url"`
}

// SuspendRequest carries an admin suspension reason.
type SuspendRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// PartyResponse represents a party in API responses.
type PartyResponse struct {
	ID           uuid.UUID   `json:"id"`
	Type         PartyType   `json:"type"`
	Name         string      `json:"name"`
	Slug         string      `json:"slug"`
	City         string      `json:"city,omitempty"`
	About        string      `json:"about,omitempty"`
	ContactEmail string      `json:"contact_email,omitempty"`
	LogoURL      string      `json:"logo_url,omitempty"`
	Status       PartyStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

// ToResponse converts a Party to PartyResponse.
// Contact details are included only for the owner or an admin; the
// moderation gate exists to keep them out of counterparty view.
func (p *Party) ToResponse(includeContact bool) *PartyResponse {
	resp := &PartyResponse{
		ID:        p.ID,
		Type:      p.Type,
		Name:      p.Name,
		Slug:      p.Slug,
		City:      p.City,
		About:     p.About,
		LogoURL:   p.LogoURL,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}
	if includeContact {
		resp.ContactEmail = p.ContactEmail
	}
	return resp
}

// ListQuery represents query parameters for listing parties.
type ListQuery struct {
	Type   PartyType `form:"type" binding:"omitempty,oneof=community venue brand"`
	City   string    `form:"city" binding:"omitempty,max=100"`
	Limit  int       `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int       `form:"offset" binding:"omitempty,min=0"`
}
