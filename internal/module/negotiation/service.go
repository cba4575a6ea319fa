package negotiation

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/gatherly/server/internal/shared/events"
	"github.com/gatherly/server/internal/utils/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Limits holds configurable workflow limits.
type Limits struct {
	// MaxRounds caps counter rounds per collaboration. Zero means unlimited.
	MaxRounds int
}

// Service implements the collaboration negotiation workflow.
type Service struct {
	repo      Repository
	directory PartyDirectory
	sm        *StateMachine
	bus       *events.Bus
	metrics   *metrics.Metrics
	logger    *zap.Logger
	limits    Limits
}

// NewService creates a new negotiation service.
func NewService(repo Repository, directory PartyDirectory, bus *events.Bus, m *metrics.Metrics, logger *zap.Logger, limits Limits) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		sm:        NewStateMachine(),
		bus:       bus,
		metrics:   m,
		logger:    logger,
		limits:    limits,
	}
}

// Actor identifies the authenticated caller for workflow operations.
// Capability checks happen once here, not per screen.
type Actor struct {
	ID    uuid.UUID
	Type  string
	Admin bool
}

// Propose validates the typed form and creates a collaboration in
// pending_admin_review.
func (s *Service) Propose(ctx context.Context, actor Actor, req *ProposeRequest) (*Collaboration, error) {
	c, err := s.buildCollaboration(ctx, actor, req.Type, req.RecipientID, FormDocument(req.FormData))
	if err != nil {
		return nil, err
	}

	form, err := DecodeForm(c.Type, c.FormData)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	c.Status = StatusPendingAdminReview
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(StatusDraft), string(StatusPendingAdminReview))
	s.publish(events.ProposalSubmittedType, c, actor.ID, nil, "")

	s.logger.Info("proposal submitted",
		zap.String("collaboration_id", c.ID.String()),
		zap.String("type", string(c.Type)),
		zap.String("proposer_id", c.ProposerID.String()))
	return c, nil
}

// SaveDraft persists a draft without required-field validation. When the
// request carries an ID, the existing draft is updated in place.
func (s *Service) SaveDraft(ctx context.Context, actor Actor, req *DraftRequest) (*Collaboration, error) {
	if req.ID != nil {
		existing, err := s.repo.GetByID(ctx, *req.ID)
		if err != nil {
			return nil, err
		}
		if existing.ProposerID != actor.ID {
			return nil, ErrNotAuthorized
		}
		if existing.Status != StatusDraft {
			return nil, fmt.Errorf("%w: only drafts can be re-saved", ErrInvalidTransition)
		}
		existing.FormData = FormDocument(req.FormData)
		if err := s.repo.UpdateDraft(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	c, err := s.buildCollaboration(ctx, actor, req.Type, req.RecipientID, FormDocument(req.FormData))
	if err != nil {
		return nil, err
	}
	c.Status = StatusDraft
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SubmitDraft promotes a draft through the same validation as Propose.
func (s *Service) SubmitDraft(ctx context.Context, actor Actor, id uuid.UUID) (*Collaboration, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.ProposerID != actor.ID {
		return nil, ErrNotAuthorized
	}

	form, err := DecodeForm(c.Type, c.FormData)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	from := c.Status
	if err := s.sm.Transition(c, StatusPendingAdminReview); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateVersioned(ctx, c); err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(from), string(c.Status))
	s.publish(events.ProposalSubmittedType, c, actor.ID, nil, "")
	return c, nil
}

// ApproveProposal moves a moderated proposal on to its recipient.
func (s *Service) ApproveProposal(ctx context.Context, adminID, id uuid.UUID) (*Collaboration, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusPendingAdminReview {
		return nil, fmt.Errorf("%w: cannot approve from %s", ErrInvalidTransition, c.Status)
	}

	from := c.Status
	if err := s.sm.Transition(c, StatusPendingRecipientResponse); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateVersioned(ctx, c); err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(from), string(c.Status))
	s.metrics.RecordModerationDecision("proposal", "approve")
	s.publish(events.ProposalApprovedType, c, adminID, nil, "")

	s.logger.Info("proposal approved",
		zap.String("collaboration_id", c.ID.String()),
		zap.String("admin_id", adminID.String()))
	return c, nil
}

// RejectProposal declines the collaboration at the moderation gate.
// Rejected items are terminal; there is no re-queue.
func (s *Service) RejectProposal(ctx context.Context, adminID, id uuid.UUID, reason string) (*Collaboration, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusPendingAdminReview {
		return nil, fmt.Errorf("%w: cannot reject from %s", ErrInvalidTransition, c.Status)
	}

	from := c.Status
	if err := s.sm.Transition(c, StatusDeclined); err != nil {
		return nil, err
	}
	c.DeclinedBy = &adminID
	c.DeclineReason = reason
	if err := s.repo.UpdateVersioned(ctx, c); err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(from), string(c.Status))
	s.metrics.RecordModerationDecision("proposal", "reject")
	s.publish(events.ProposalRejectedType, c, adminID, nil, reason)
	return c, nil
}

// SubmitCounter validates and records a counter from the current
// counterparty. The counter insert and the collaboration update share a
// transaction; the version check rejects a concurrent second submission.
func (s *Service) SubmitCounter(ctx context.Context, actor Actor, id uuid.UUID, req *CounterRequest) (*Counter, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.Status != StatusPendingRecipientResponse {
		return nil, fmt.Errorf("%w: cannot counter from %s", ErrInvalidTransition, c.Status)
	}

	counterparty, err := s.currentCounterparty(ctx, c)
	if err != nil {
		return nil, err
	}
	if actor.ID != counterparty {
		return nil, ErrNotAuthorized
	}

	if s.limits.MaxRounds > 0 && c.Round >= s.limits.MaxRounds {
		return nil, fmt.Errorf("%w: counter round limit (%d) reached", ErrInvalidTransition, s.limits.MaxRounds)
	}

	form, err := DecodeForm(c.Type, c.FormData)
	if err != nil {
		return nil, err
	}
	if err := req.FieldResponses.Validate(form); err != nil {
		s.metrics.RecordCounterValidationError()
		return nil, err
	}
	if req.CommercialCounter != nil && utf8.RuneCountInString(req.CommercialCounter.Note) > noteMaxLength {
		s.metrics.RecordCounterValidationError()
		return nil, fmt.Errorf("%w: commercial counter note exceeds %d characters", ErrValidation, noteMaxLength)
	}
	if utf8.RuneCountInString(req.GeneralNotes) > noteMaxLength {
		s.metrics.RecordCounterValidationError()
		return nil, fmt.Errorf("%w: general notes exceed %d characters", ErrValidation, noteMaxLength)
	}

	counter := &Counter{
		ID:                 uuid.New(),
		CollaborationID:    c.ID,
		AuthorID:           actor.ID,
		AuthorRole:         actor.Type,
		FieldResponses:     req.FieldResponses,
		ModelSpecificTerms: FormDocument(req.ModelSpecificTerms),
		CommercialCounter:  req.CommercialCounter,
		GeneralNotes:       req.GeneralNotes,
		Status:             CounterStatusPendingAdminReview,
		Round:              c.Round + 1,
	}

	from := c.Status
	// Counter submission passes through countered straight into the
	// moderation queue.
	c.Status = StatusPendingAdminReviewCounter
	c.HasCounter = true
	c.LatestCounterID = &counter.ID
	c.Round = counter.Round

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txRepo := s.repo.WithTx(tx)
	if err := txRepo.CreateCounter(ctx, counter); err != nil {
		return nil, err
	}
	if err := txRepo.UpdateVersioned(ctx, c); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(from), string(c.Status))
	s.publishCounter(events.CounterSubmittedType, c, actor.ID, counter, "")

	s.logger.Info("counter submitted",
		zap.String("collaboration_id", c.ID.String()),
		zap.String("counter_id", counter.ID.String()),
		zap.Int("round", counter.Round))
	return counter, nil
}

// ApproveCounter forwards a moderated counter, bouncing the turn to the
// other side.
func (s *Service) ApproveCounter(ctx context.Context, adminID, counterID uuid.UUID) (*Collaboration, error) {
	counter, err := s.repo.GetCounterByID(ctx, counterID)
	if err != nil {
		return nil, err
	}
	if counter.Status != CounterStatusPendingAdminReview {
		return nil, fmt.Errorf("%w: counter already %s", ErrInvalidTransition, counter.Status)
	}

	c, err := s.repo.GetByID(ctx, counter.CollaborationID)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusPendingAdminReviewCounter {
		return nil, fmt.Errorf("%w: cannot approve counter from %s", ErrInvalidTransition, c.Status)
	}

	from := c.Status
	if err := s.sm.Transition(c, StatusPendingRecipientResponse); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txRepo := s.repo.WithTx(tx)
	if err := txRepo.UpdateCounterStatus(ctx, counter.ID, CounterStatusApproved); err != nil {
		return nil, err
	}
	if err := txRepo.UpdateVersioned(ctx, c); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(from), string(c.Status))
	s.metrics.RecordModerationDecision("counter", "approve")
	s.publishCounter(events.CounterApprovedType, c, adminID, counter, "")
	return c, nil
}

// RejectCounter declines the collaboration at the counter moderation gate.
func (s *Service) RejectCounter(ctx context.Context, adminID, counterID uuid.UUID, reason string) (*Collaboration, error) {
	counter, err := s.repo.GetCounterByID(ctx, counterID)
	if err != nil {
		return nil, err
	}
	if counter.Status != CounterStatusPendingAdminReview {
		return nil, fmt.Errorf("%w: counter already %s", ErrInvalidTransition, counter.Status)
	}

	c, err := s.repo.GetByID(ctx, counter.CollaborationID)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusPendingAdminReviewCounter {
		return nil, fmt.Errorf("%w: cannot reject counter from %s", ErrInvalidTransition, c.Status)
	}

	from := c.Status
	if err := s.sm.Transition(c, StatusDeclined); err != nil {
		return nil, err
	}
	c.DeclinedBy = &adminID
	c.DeclineReason = reason

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txRepo := s.repo.WithTx(tx)
	if err := txRepo.UpdateCounterStatus(ctx, counter.ID, CounterStatusRejected); err != nil {
		return nil, err
	}
	if err := txRepo.UpdateVersioned(ctx, c); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(from), string(c.Status))
	s.metrics.RecordModerationDecision("counter", "reject")
	s.publishCounter(events.CounterRejectedType, c, adminID, counter, reason)
	return c, nil
}

// Accept closes the negotiation in favor of the latest terms. Only the
// current counterparty may accept.
func (s *Service) Accept(ctx context.Context, actor Actor, id uuid.UUID) (*Collaboration, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusPendingRecipientResponse {
		return nil, fmt.Errorf("%w: cannot accept from %s", ErrInvalidTransition, c.Status)
	}

	counterparty, err := s.currentCounterparty(ctx, c)
	if err != nil {
		return nil, err
	}
	if actor.ID != counterparty {
		return nil, ErrNotAuthorized
	}

	from := c.Status
	if err := s.sm.Transition(c, StatusAccepted); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateVersioned(ctx, c); err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(from), string(c.Status))
	s.publish(events.CollaborationAcceptedType, c, actor.ID, c.LatestCounterID, "")

	s.logger.Info("collaboration accepted",
		zap.String("collaboration_id", c.ID.String()),
		zap.Int("round", c.Round))
	return c, nil
}

// Decline ends the negotiation. Either party may decline while the
// collaboration is in any pending state.
func (s *Service) Decline(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*Collaboration, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsParty(actor.ID) {
		return nil, ErrNotAuthorized
	}

	from := c.Status
	if err := s.sm.Transition(c, StatusDeclined); err != nil {
		return nil, err
	}
	c.DeclinedBy = &actor.ID
	c.DeclineReason = reason
	if err := s.repo.UpdateVersioned(ctx, c); err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(from), string(c.Status))
	s.publish(events.CollaborationDeclinedType, c, actor.ID, nil, reason)
	return c, nil
}

// Get returns the full negotiation state including counter history.
// Visible only to the two parties and admins.
func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*Collaboration, error) {
	c, err := s.repo.GetByIDWithCounters(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && !c.IsParty(actor.ID) {
		return nil, ErrNotAuthorized
	}
	return c, nil
}

// ListSent lists collaborations the actor proposed.
func (s *Service) ListSent(ctx context.Context, actorID uuid.UUID, status Status, limit, offset int) ([]*Collaboration, int64, error) {
	return s.repo.ListByProposer(ctx, actorID, status, limit, offset)
}

// ListReceived lists collaborations sent to the actor.
func (s *Service) ListReceived(ctx context.Context, actorID uuid.UUID, status Status, limit, offset int) ([]*Collaboration, int64, error) {
	return s.repo.ListByRecipient(ctx, actorID, status, limit, offset)
}

// ListPendingModeration returns proposals and counters awaiting admin
// review.
func (s *Service) ListPendingModeration(ctx context.Context, limit, offset int) ([]*Collaboration, []*Counter, error) {
	proposals, _, err := s.repo.ListByStatus(ctx, StatusPendingAdminReview, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	counters, _, err := s.repo.ListCountersByStatus(ctx, CounterStatusPendingAdminReview, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	return proposals, counters, nil
}

// buildCollaboration checks actor and recipient eligibility and builds
// an unsaved collaboration.
func (s *Service) buildCollaboration(ctx context.Context, actor Actor, t CollaborationType, recipientID uuid.UUID, formData FormDocument) (*Collaboration, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: unknown collaboration type %q", ErrValidation, t)
	}
	if actor.Type != t.ProposerRole() {
		return nil, fmt.Errorf("%w: a %s cannot propose a %s collaboration", ErrNotAuthorized, actor.Type, t)
	}
	if recipientID == actor.ID {
		return nil, fmt.Errorf("%w: cannot propose to yourself", ErrValidation)
	}

	recipient, err := s.directory.GetParty(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient == nil || !recipient.IsActive() {
		return nil, ErrPartyUnavailable
	}
	if recipient.Type != t.RecipientRole() {
		return nil, fmt.Errorf("%w: recipient is a %s, expected %s", ErrValidation, recipient.Type, t.RecipientRole())
	}

	return &Collaboration{
		ID:            uuid.New(),
		Type:          t,
		ProposerID:    actor.ID,
		ProposerType:  actor.Type,
		RecipientID:   recipientID,
		RecipientType: recipient.Type,
		FormData:      formData,
		Version:       1,
	}, nil
}

// currentCounterparty returns the party whose turn it is: the recipient
// until the first counter, afterwards whichever party did not author the
// latest counter.
func (s *Service) currentCounterparty(ctx context.Context, c *Collaboration) (uuid.UUID, error) {
	if c.LatestCounterID == nil {
		return c.RecipientID, nil
	}
	latest, err := s.repo.GetCounterByID(ctx, *c.LatestCounterID)
	if err != nil {
		return uuid.Nil, err
	}
	return c.OtherParty(latest.AuthorID), nil
}

// publish emits a workflow event. Handler failures are logged by the
// bus and never fail the request.
func (s *Service) publish(eventType string, c *Collaboration, actorID uuid.UUID, counterID *uuid.UUID, reason string) {
	s.bus.Publish(events.NewWorkflowEvent(
		eventType,
		c.ID,
		string(c.Type),
		c.ProposerID,
		c.RecipientID,
		actorID,
		counterID,
		c.Round,
		reason,
	))
}

// publishCounter emits a counter event carrying the counter's author,
// so consumers can tell whose turn the approval hands over to.
func (s *Service) publishCounter(eventType string, c *Collaboration, actorID uuid.UUID, counter *Counter, reason string) {
	e := events.NewWorkflowEvent(
		eventType,
		c.ID,
		string(c.Type),
		c.ProposerID,
		c.RecipientID,
		actorID,
		&counter.ID,
		c.Round,
		reason,
	)
	e.CounterAuthorID = counter.AuthorID
	s.bus.Publish(e)
}
