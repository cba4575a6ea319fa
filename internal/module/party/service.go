package party

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// nowFunc is swapped out in tests.
var nowFunc = time.Now

// Service provides party business logic.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new party service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Register registers a new party account.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*Party, error) {
	if !req.Type.IsValid() {
		return nil, ErrInvalidType
	}

	email := strings.ToLower(strings.TrimSpace(req.ContactEmail))

	// Check for existing account
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil && err != ErrPartyNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyUsed
	}

	slug := generateSlug(req.Name)
	if conflicting, err := s.repo.GetBySlug(ctx, slug); err != nil && err != ErrPartyNotFound {
		return nil, err
	} else if conflicting != nil {
		// Keep slugs unique by suffixing a short random fragment
		slug = slug + "-" + uuid.NewString()[:8]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p := &Party{
		ID:           uuid.New(),
		Type:         req.Type,
		Name:         req.Name,
		Slug:         slug,
		City:         req.City,
		About:        req.About,
		ContactEmail: email,
		LogoURL:      req.LogoURL,
		PasswordHash: string(hash),
		Status:       StatusActive,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("party registered",
		zap.String("party_id", p.ID.String()),
		zap.String("type", string(p.Type)),
		zap.String("name", p.Name),
	)

	return p, nil
}

// Authenticate verifies credentials and returns the party.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Party, error) {
	p, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == ErrPartyNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !p.IsActive() {
		return nil, ErrPartySuspended
	}

	return p, nil
}

// GetByID retrieves a party by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Party, error) {
	return s.repo.GetByID(ctx, id)
}

// List lists active parties matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Party, int64, error) {
	if filter.Status == "" {
		filter.Status = StatusActive
	}
	return s.repo.List(ctx, filter, limit, offset)
}

// ListAll lists parties without defaulting the status filter. An empty
// status matches every status; intended for admin use.
func (s *Service) ListAll(ctx context.Context, filter ListFilter, limit, offset int) ([]*Party, int64, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// UpdateProfile updates a party's own profile.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*Party, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.About != nil {
		p.About = *req.About
	}
	if req.LogoURL != nil {
		p.LogoURL = *req.LogoURL
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Suspend suspends a party (admin action).
func (s *Service) Suspend(ctx context.Context, id uuid.UUID, reason string) (*Party, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusSuspended {
		return nil, ErrAlreadySuspended
	}

	now := nowFunc()
	p.Status = StatusSuspended
	p.SuspendedAt = &now
	p.SuspendReason = &reason

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("party suspended",
		zap.String("party_id", id.String()),
		zap.String("reason", reason),
	)
	return p, nil
}

// Reinstate lifts a suspension (admin action).
func (s *Service) Reinstate(ctx context.Context, id uuid.UUID) (*Party, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusSuspended {
		return nil, ErrNotSuspended
	}

	p.Status = StatusActive
	p.SuspendedAt = nil
	p.SuspendReason = nil

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// generateSlug generates a URL-friendly slug from a name.
func generateSlug(name string) string {
	slug := strings.ToLower(name)

	reg := regexp.MustCompile(`[^a-z0-9]+`)
	slug = reg.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > 50 {
		slug = slug[:50]
	}

	return slug
}
