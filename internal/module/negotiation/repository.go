package negotiation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for collaboration data access.
type Repository interface {
	Create(ctx context.Context, c *Collaboration) error
	GetByID(ctx context.Context, id uuid.UUID) (*Collaboration, error)
	GetByIDWithCounters(ctx context.Context, id uuid.UUID) (*Collaboration, error)
	// UpdateVersioned writes all state-bearing columns of the
	// collaboration in a single row update conditioned on the version
	// the caller read. ErrVersionConflict when a concurrent writer won.
	UpdateVersioned(ctx context.Context, c *Collaboration) error
	UpdateDraft(ctx context.Context, c *Collaboration) error

	CreateCounter(ctx context.Context, counter *Counter) error
	GetCounterByID(ctx context.Context, id uuid.UUID) (*Counter, error)
	UpdateCounterStatus(ctx context.Context, id uuid.UUID, status CounterStatus) error
	ListCountersByCollaboration(ctx context.Context, collaborationID uuid.UUID) ([]Counter, error)

	ListByProposer(ctx context.Context, proposerID uuid.UUID, status Status, limit, offset int) ([]*Collaboration, int64, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, status Status, limit, offset int) ([]*Collaboration, int64, error)
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Collaboration, int64, error)
	ListCountersByStatus(ctx context.Context, status CounterStatus, limit, offset int) ([]*Counter, int64, error)

	// Transaction support
	WithTx(tx *gorm.DB) Repository
	BeginTx(ctx context.Context) (*gorm.DB, error)
}

// repository implements Repository using GORM.
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new collaboration repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a new repository bound to the given transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// BeginTx starts a new transaction.
func (r *repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// Create creates a new collaboration.
func (r *repository) Create(ctx context.Context, c *Collaboration) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// GetByID retrieves a collaboration by ID.
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Collaboration, error) {
	var c Collaboration
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetByIDWithCounters retrieves a collaboration with its counter history,
// oldest first.
func (r *repository) GetByIDWithCounters(ctx context.Context, id uuid.UUID) (*Collaboration, error) {
	var c Collaboration
	err := r.db.WithContext(ctx).
		Preload("Counters", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// UpdateVersioned performs the optimistic-lock write. The row is matched
// on (id, version) and the version is bumped; zero rows affected means a
// concurrent writer got there first.
func (r *repository) UpdateVersioned(ctx context.Context, c *Collaboration) error {
	result := r.db.WithContext(ctx).
		Model(&Collaboration{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]any{
			"status":            c.Status,
			"form_data":         c.FormData,
			"has_counter":       c.HasCounter,
			"latest_counter_id": c.LatestCounterID,
			"round":             c.Round,
			"declined_by":       c.DeclinedBy,
			"decline_reason":    c.DeclineReason,
			"version":           c.Version + 1,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	c.Version++
	return nil
}

// UpdateDraft saves a draft in place without touching the version guard.
func (r *repository) UpdateDraft(ctx context.Context, c *Collaboration) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// CreateCounter inserts a new counter row.
func (r *repository) CreateCounter(ctx context.Context, counter *Counter) error {
	return r.db.WithContext(ctx).Create(counter).Error
}

// GetCounterByID retrieves a counter by ID.
func (r *repository) GetCounterByID(ctx context.Context, id uuid.UUID) (*Counter, error) {
	var counter Counter
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCounterNotFound
		}
		return nil, err
	}
	return &counter, nil
}

// UpdateCounterStatus sets a counter's moderation status.
func (r *repository) UpdateCounterStatus(ctx context.Context, id uuid.UUID, status CounterStatus) error {
	result := r.db.WithContext(ctx).
		Model(&Counter{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCounterNotFound
	}
	return nil
}

// ListCountersByCollaboration returns the full counter history, oldest first.
func (r *repository) ListCountersByCollaboration(ctx context.Context, collaborationID uuid.UUID) ([]Counter, error) {
	var counters []Counter
	err := r.db.WithContext(ctx).
		Where("collaboration_id = ?", collaborationID).
		Order("created_at ASC").
		Find(&counters).Error
	if err != nil {
		return nil, err
	}
	return counters, nil
}

// ListByProposer lists collaborations sent by a party.
func (r *repository) ListByProposer(ctx context.Context, proposerID uuid.UUID, status Status, limit, offset int) ([]*Collaboration, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&Collaboration{}).Where("proposer_id = ?", proposerID), status, limit, offset)
}

// ListByRecipient lists collaborations received by a party. Drafts are
// never visible to the recipient.
func (r *repository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, status Status, limit, offset int) ([]*Collaboration, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&Collaboration{}).
		Where("recipient_id = ? AND status <> ?", recipientID, StatusDraft)
	return r.list(ctx, query, status, limit, offset)
}

// ListByStatus lists collaborations in a given status.
func (r *repository) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Collaboration, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&Collaboration{}), status, limit, offset)
}

func (r *repository) list(_ context.Context, query *gorm.DB, status Status, limit, offset int) ([]*Collaboration, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var collaborations []*Collaboration
	err := query.
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&collaborations).Error
	if err != nil {
		return nil, 0, err
	}
	return collaborations, total, nil
}

// ListCountersByStatus lists counters in a given moderation status.
func (r *repository) ListCountersByStatus(ctx context.Context, status CounterStatus, limit, offset int) ([]*Counter, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.db.WithContext(ctx).Model(&Counter{}).Where("status = ?", status)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var counters []*Counter
	err := query.
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&counters).Error
	if err != nil {
		return nil, 0, err
	}
	return counters, total, nil
}
