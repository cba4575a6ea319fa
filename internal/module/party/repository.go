package party

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for party data access.
type Repository interface {
	Create(ctx context.Context, p *Party) error
	GetByID(ctx context.Context, id uuid.UUID) (*Party, error)
	GetByEmail(ctx context.Context, email string) (*Party, error)
	GetBySlug(ctx context.Context, slug string) (*Party, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Party, int64, error)
	Update(ctx context.Context, p *Party) error
}

// ListFilter narrows party listings.
type ListFilter struct {
	Type   PartyType
	City   string
	Status PartyStatus
}

// repository implements Repository using GORM.
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new party repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create creates a new party.
func (r *repository) Create(ctx context.Context, p *Party) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// GetByID retrieves a party by ID.
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Party, error) {
	var p Party
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByEmail retrieves a party by contact email.
func (r *repository) GetByEmail(ctx context.Context, email string) (*Party, error) {
	var p Party
	err := r.db.WithContext(ctx).Where("contact_email = ?", email).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetBySlug retrieves a party by slug.
func (r *repository) GetBySlug(ctx context.Context, slug string) (*Party, error) {
	var p Party
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List lists parties matching the filter.
func (r *repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Party, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	query := r.db.WithContext(ctx).Model(&Party{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var parties []*Party
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&parties).Error
	if err != nil {
		return nil, 0, err
	}
	return parties, total, nil
}

// Update saves a party.
func (r *repository) Update(ctx context.Context, p *Party) error {
	return r.db.WithContext(ctx).Save(p).Error
}
