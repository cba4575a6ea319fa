package negotiation

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/gatherly/server/internal/shared/events"
	"github.com/gatherly/server/internal/utils/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeTxConn satisfies gorm's transaction plumbing so the mock
// repository can hand out committable *gorm.DB values.
type fakeTxConn struct {
	committed  bool
	rolledBack bool
}

func (*fakeTxConn) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, nil
}

func (*fakeTxConn) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (*fakeTxConn) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (*fakeTxConn) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (c *fakeTxConn) Commit() error {
	c.committed = true
	return nil
}

func (c *fakeTxConn) Rollback() error {
	c.rolledBack = true
	return nil
}

// mockRepo is an in-memory Repository for workflow tests.
type mockRepo struct {
	collaborations map[uuid.UUID]*Collaboration
	counters       map[uuid.UUID]*Counter

	// staleReads serves an outdated snapshot on the next GetByID,
	// simulating a concurrent writer between read and write.
	staleReads map[uuid.UUID]*Collaboration
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		collaborations: make(map[uuid.UUID]*Collaboration),
		counters:       make(map[uuid.UUID]*Counter),
		staleReads:     make(map[uuid.UUID]*Collaboration),
	}
}

func (m *mockRepo) Create(_ context.Context, c *Collaboration) error {
	cp := *c
	m.collaborations[c.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Collaboration, error) {
	if stale, ok := m.staleReads[id]; ok {
		delete(m.staleReads, id)
		cp := *stale
		return &cp, nil
	}
	c, ok := m.collaborations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockRepo) GetByIDWithCounters(ctx context.Context, id uuid.UUID) (*Collaboration, error) {
	c, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, counter := range m.counters {
		if counter.CollaborationID == id {
			c.Counters = append(c.Counters, *counter)
		}
	}
	return c, nil
}

func (m *mockRepo) UpdateVersioned(_ context.Context, c *Collaboration) error {
	stored, ok := m.collaborations[c.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != c.Version {
		return ErrVersionConflict
	}
	cp := *c
	cp.Version = c.Version + 1
	m.collaborations[c.ID] = &cp
	c.Version++
	return nil
}

func (m *mockRepo) UpdateDraft(_ context.Context, c *Collaboration) error {
	if _, ok := m.collaborations[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	m.collaborations[c.ID] = &cp
	return nil
}

func (m *mockRepo) CreateCounter(_ context.Context, counter *Counter) error {
	cp := *counter
	m.counters[counter.ID] = &cp
	return nil
}

func (m *mockRepo) GetCounterByID(_ context.Context, id uuid.UUID) (*Counter, error) {
	counter, ok := m.counters[id]
	if !ok {
		return nil, ErrCounterNotFound
	}
	cp := *counter
	return &cp, nil
}

func (m *mockRepo) UpdateCounterStatus(_ context.Context, id uuid.UUID, status CounterStatus) error {
	counter, ok := m.counters[id]
	if !ok {
		return ErrCounterNotFound
	}
	counter.Status = status
	return nil
}

func (m *mockRepo) ListCountersByCollaboration(_ context.Context, collaborationID uuid.UUID) ([]Counter, error) {
	var out []Counter
	for _, counter := range m.counters {
		if counter.CollaborationID == collaborationID {
			out = append(out, *counter)
		}
	}
	return out, nil
}

func (m *mockRepo) ListByProposer(_ context.Context, proposerID uuid.UUID, status Status, _, _ int) ([]*Collaboration, int64, error) {
	return m.filter(func(c *Collaboration) bool {
		return c.ProposerID == proposerID && (status == "" || c.Status == status)
	})
}

func (m *mockRepo) ListByRecipient(_ context.Context, recipientID uuid.UUID, status Status, _, _ int) ([]*Collaboration, int64, error) {
	return m.filter(func(c *Collaboration) bool {
		return c.RecipientID == recipientID && c.Status != StatusDraft &&
			(status == "" || c.Status == status)
	})
}

func (m *mockRepo) ListByStatus(_ context.Context, status Status, _, _ int) ([]*Collaboration, int64, error) {
	return m.filter(func(c *Collaboration) bool {
		return status == "" || c.Status == status
	})
}

func (m *mockRepo) filter(keep func(*Collaboration) bool) ([]*Collaboration, int64, error) {
	var out []*Collaboration
	for _, c := range m.collaborations {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockRepo) ListCountersByStatus(_ context.Context, status CounterStatus, _, _ int) ([]*Counter, int64, error) {
	var out []*Counter
	for _, counter := range m.counters {
		if counter.Status == status {
			cp := *counter
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockRepo) WithTx(*gorm.DB) Repository { return m }

func (m *mockRepo) BeginTx(context.Context) (*gorm.DB, error) {
	return &gorm.DB{
		Config:    &gorm.Config{},
		Statement: &gorm.Statement{ConnPool: &fakeTxConn{}},
	}, nil
}

// mockDirectory is an in-memory PartyDirectory.
type mockDirectory struct {
	parties map[uuid.UUID]*DirectoryParty
}

func (d *mockDirectory) GetParty(_ context.Context, id uuid.UUID) (*DirectoryParty, error) {
	p, ok := d.parties[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

var (
	communityID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	venueID     = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	brandID     = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	adminID     = uuid.MustParse("99999999-9999-9999-9999-999999999999")
	strangerID  = uuid.MustParse("44444444-4444-4444-4444-444444444444")
)

var (
	community = Actor{ID: communityID, Type: "community"}
	venue     = Actor{ID: venueID, Type: "venue"}
	admin     = Actor{ID: adminID, Type: "admin", Admin: true}
	stranger  = Actor{ID: strangerID, Type: "brand"}
)

type fixture struct {
	svc       *Service
	repo      *mockRepo
	events    []string
	lastEvent *events.WorkflowEvent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{repo: newMockRepo()}

	dir := &mockDirectory{parties: map[uuid.UUID]*DirectoryParty{
		communityID: {ID: communityID, Type: "community", Name: "Midnight Runners", Status: "active"},
		venueID:     {ID: venueID, Type: "venue", Name: "Warehouse 9", Status: "active"},
		brandID:     {ID: brandID, Type: "brand", Name: "Fizz Co", Status: "active"},
	}}

	bus := events.NewBus(zap.NewNop())
	bus.Register(events.NewHandlerFunc([]string{
		events.ProposalSubmittedType, events.ProposalApprovedType, events.ProposalRejectedType,
		events.CounterSubmittedType, events.CounterApprovedType, events.CounterRejectedType,
		events.CollaborationAcceptedType, events.CollaborationDeclinedType,
	}, func(e events.Event) error {
		f.events = append(f.events, e.EventType())
		if we, ok := e.(*events.WorkflowEvent); ok {
			f.lastEvent = we
		}
		return nil
	}))

	m := metrics.NewWith("test", prometheus.NewRegistry())
	f.svc = NewService(f.repo, dir, bus, m, zap.NewNop(), Limits{})
	return f
}

func venueProposal() *ProposeRequest {
	return &ProposeRequest{
		Type:        TypeCommunityToVenue,
		RecipientID: venueID,
		FormData: []byte(`{
			"event_type": "Music & Concerts",
			"expected_attendees": "100-250",
			"event_date": {"date": "2026-03-15"}
		}`),
	}
}

func validCounter() *CounterRequest {
	return &CounterRequest{
		FieldResponses: FieldResponseMap{
			"event_date": {Action: ActionModify, ModifiedValue: "2026-03-16"},
		},
	}
}

// propose + admin approve, returning the collaboration awaiting the
// venue's response.
func (f *fixture) approvedProposal(t *testing.T) *Collaboration {
	t.Helper()
	c, err := f.svc.Propose(context.Background(), community, venueProposal())
	require.NoError(t, err)
	c, err = f.svc.ApproveProposal(context.Background(), adminID, c.ID)
	require.NoError(t, err)
	return c
}

func TestService_Propose(t *testing.T) {
	f := newFixture(t)

	c, err := f.svc.Propose(context.Background(), community, venueProposal())
	require.NoError(t, err)

	assert.Equal(t, StatusPendingAdminReview, c.Status)
	assert.Equal(t, communityID, c.ProposerID)
	assert.Equal(t, venueID, c.RecipientID)
	assert.Equal(t, "venue", c.RecipientType)
	assert.Equal(t, 1, c.Version)
	assert.Equal(t, []string{events.ProposalSubmittedType}, f.events)

	// Round-trip: fetching returns the same form data.
	got, err := f.svc.Get(context.Background(), community, c.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(c.FormData), string(got.FormData))
}

func TestService_Propose_Validation(t *testing.T) {
	f := newFixture(t)

	t.Run("missing required field", func(t *testing.T) {
		req := venueProposal()
		req.FormData = []byte(`{"event_type": "Workshop"}`)
		_, err := f.svc.Propose(context.Background(), community, req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("wrong proposer role", func(t *testing.T) {
		_, err := f.svc.Propose(context.Background(), venue, venueProposal())
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		req := venueProposal()
		req.RecipientID = uuid.New()
		_, err := f.svc.Propose(context.Background(), community, req)
		assert.ErrorIs(t, err, ErrPartyUnavailable)
	})

	t.Run("recipient role mismatch", func(t *testing.T) {
		req := venueProposal()
		req.RecipientID = brandID
		_, err := f.svc.Propose(context.Background(), community, req)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestService_DraftFlow(t *testing.T) {
	f := newFixture(t)

	// Drafts skip required-field validation.
	draft, err := f.svc.SaveDraft(context.Background(), community, &DraftRequest{
		Type:        TypeCommunityToVenue,
		RecipientID: venueID,
		FormData:    []byte(`{"event_type": "Workshop"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, draft.Status)

	// Submitting the incomplete draft fails validation.
	_, err = f.svc.SubmitDraft(context.Background(), community, draft.ID)
	assert.ErrorIs(t, err, ErrValidation)

	// Re-saving updates the same draft.
	updated, err := f.svc.SaveDraft(context.Background(), community, &DraftRequest{
		ID:          &draft.ID,
		Type:        TypeCommunityToVenue,
		RecipientID: venueID,
		FormData:    venueProposal().FormData,
	})
	require.NoError(t, err)
	assert.Equal(t, draft.ID, updated.ID)

	// Now it submits through the same validation as propose.
	submitted, err := f.svc.SubmitDraft(context.Background(), community, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingAdminReview, submitted.Status)

	// Someone else's draft cannot be touched.
	_, err = f.svc.SubmitDraft(context.Background(), venue, draft.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestService_ApproveProposal(t *testing.T) {
	f := newFixture(t)

	c, err := f.svc.Propose(context.Background(), community, venueProposal())
	require.NoError(t, err)

	c, err = f.svc.ApproveProposal(context.Background(), adminID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingRecipientResponse, c.Status)
	assert.Contains(t, f.events, events.ProposalApprovedType)

	// Re-approving is an explicit invalid transition, never a duplicate
	// state change.
	_, err = f.svc.ApproveProposal(context.Background(), adminID, c.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_RejectProposal(t *testing.T) {
	f := newFixture(t)

	c, err := f.svc.Propose(context.Background(), community, venueProposal())
	require.NoError(t, err)

	c, err = f.svc.RejectProposal(context.Background(), adminID, c.ID, "contact details in free text")
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, c.Status)
	assert.Equal(t, "contact details in free text", c.DeclineReason)
	require.NotNil(t, c.DeclinedBy)
	assert.Equal(t, adminID, *c.DeclinedBy)

	// Rejection is terminal, no re-queue.
	_, err = f.svc.ApproveProposal(context.Background(), adminID, c.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_SubmitCounter(t *testing.T) {
	f := newFixture(t)
	c := f.approvedProposal(t)

	req := validCounter()
	// Note at the limit in multi-byte characters; the cap counts runes.
	req.CommercialCounter = &CommercialCounter{
		Model:  "revenue_share",
		Amount: "70/30",
		Note:   strings.Repeat("ü", 120),
	}
	counter, err := f.svc.SubmitCounter(context.Background(), venue, c.ID, req)
	require.NoError(t, err)

	assert.Equal(t, CounterStatusPendingAdminReview, counter.Status)
	assert.Equal(t, 1, counter.Round)
	assert.Equal(t, venueID, counter.AuthorID)
	require.NotNil(t, counter.CommercialCounter)
	assert.Equal(t, "70/30", counter.CommercialCounter.Amount)

	stored, err := f.repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingAdminReviewCounter, stored.Status)
	assert.True(t, stored.HasCounter)
	require.NotNil(t, stored.LatestCounterID)
	assert.Equal(t, counter.ID, *stored.LatestCounterID)
	assert.Contains(t, f.events, events.CounterSubmittedType)
}

func TestService_SubmitCounter_Guards(t *testing.T) {
	f := newFixture(t)
	c := f.approvedProposal(t)

	t.Run("wrong party", func(t *testing.T) {
		_, err := f.svc.SubmitCounter(context.Background(), community, c.ID, validCounter())
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("modify without value", func(t *testing.T) {
		req := &CounterRequest{
			FieldResponses: FieldResponseMap{
				"event_date": {Action: ActionModify, ModifiedValue: ""},
			},
		}
		_, err := f.svc.SubmitCounter(context.Background(), venue, c.ID, req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty responses", func(t *testing.T) {
		_, err := f.svc.SubmitCounter(context.Background(), venue, c.ID, &CounterRequest{
			FieldResponses: FieldResponseMap{},
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown collaboration", func(t *testing.T) {
		_, err := f.svc.SubmitCounter(context.Background(), venue, uuid.New(), validCounter())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("general notes over limit", func(t *testing.T) {
		req := validCounter()
		req.GeneralNotes = strings.Repeat("x", 121)
		_, err := f.svc.SubmitCounter(context.Background(), venue, c.ID, req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	// No partial write happened along the way.
	stored, err := f.repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingRecipientResponse, stored.Status)
	assert.False(t, stored.HasCounter)
}

func TestService_CounterModeration(t *testing.T) {
	f := newFixture(t)
	c := f.approvedProposal(t)

	counter, err := f.svc.SubmitCounter(context.Background(), venue, c.ID, validCounter())
	require.NoError(t, err)

	t.Run("approve bounces turn to proposer", func(t *testing.T) {
		updated, err := f.svc.ApproveCounter(context.Background(), adminID, counter.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPendingRecipientResponse, updated.Status)

		stored, err := f.repo.GetCounterByID(context.Background(), counter.ID)
		require.NoError(t, err)
		assert.Equal(t, CounterStatusApproved, stored.Status)
	})

	t.Run("re-approving is rejected", func(t *testing.T) {
		_, err := f.svc.ApproveCounter(context.Background(), adminID, counter.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("author cannot respond to own counter", func(t *testing.T) {
		_, err := f.svc.SubmitCounter(context.Background(), venue, c.ID, validCounter())
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("proposer accepts the counter", func(t *testing.T) {
		updated, err := f.svc.Accept(context.Background(), community, c.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, updated.Status)
		assert.Contains(t, f.events, events.CollaborationAcceptedType)
	})

	t.Run("terminal state blocks further counters", func(t *testing.T) {
		_, err := f.svc.SubmitCounter(context.Background(), community, c.ID, validCounter())
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestService_RejectCounter(t *testing.T) {
	f := newFixture(t)
	c := f.approvedProposal(t)

	counter, err := f.svc.SubmitCounter(context.Background(), venue, c.ID, validCounter())
	require.NoError(t, err)

	updated, err := f.svc.RejectCounter(context.Background(), adminID, counter.ID, "unreasonable terms")
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, updated.Status)

	stored, err := f.repo.GetCounterByID(context.Background(), counter.ID)
	require.NoError(t, err)
	assert.Equal(t, CounterStatusRejected, stored.Status)
}

func TestService_CounterRounds(t *testing.T) {
	f := newFixture(t)
	c := f.approvedProposal(t)

	// Round 1: venue counters, admin approves.
	first, err := f.svc.SubmitCounter(context.Background(), venue, c.ID, validCounter())
	require.NoError(t, err)
	_, err = f.svc.ApproveCounter(context.Background(), adminID, first.ID)
	require.NoError(t, err)

	// The approval event names the counter's author so consumers can
	// address the party whose turn it now is.
	require.NotNil(t, f.lastEvent)
	assert.Equal(t, events.CounterApprovedType, f.lastEvent.EventType())
	assert.Equal(t, venueID, f.lastEvent.CounterAuthorID)

	// Round 2: turn reversed, community counters back.
	second, err := f.svc.SubmitCounter(context.Background(), community, c.ID, &CounterRequest{
		FieldResponses: FieldResponseMap{
			"pricing": {Action: ActionModify, ModifiedValue: "revenue share 70/30"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Round)

	// Round-2 approval flips the named author to the proposer side.
	_, err = f.svc.ApproveCounter(context.Background(), adminID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, events.CounterApprovedType, f.lastEvent.EventType())
	assert.Equal(t, communityID, f.lastEvent.CounterAuthorID)

	stored, err := f.repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, *stored.LatestCounterID)
	assert.Equal(t, 2, stored.Round)

	// History keeps the first counter untouched.
	history, err := f.repo.ListCountersByCollaboration(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestService_CounterRoundLimit(t *testing.T) {
	f := newFixture(t)
	f.svc.limits = Limits{MaxRounds: 1}
	c := f.approvedProposal(t)

	first, err := f.svc.SubmitCounter(context.Background(), venue, c.ID, validCounter())
	require.NoError(t, err)
	_, err = f.svc.ApproveCounter(context.Background(), adminID, first.ID)
	require.NoError(t, err)

	_, err = f.svc.SubmitCounter(context.Background(), community, c.ID, &CounterRequest{
		FieldResponses: FieldResponseMap{
			"pricing": {Action: ActionModify, ModifiedValue: "revenue share 70/30"},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_ConcurrentCounterConflict(t *testing.T) {
	f := newFixture(t)
	c := f.approvedProposal(t)

	// Snapshot the state a second writer would have read before the
	// first counter landed.
	snapshot, err := f.repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)

	_, err = f.svc.SubmitCounter(context.Background(), venue, c.ID, validCounter())
	require.NoError(t, err)

	// The second submission reads the stale snapshot and must lose the
	// version check; exactly one counter wins.
	f.repo.staleReads[c.ID] = snapshot
	_, err = f.svc.SubmitCounter(context.Background(), venue, c.ID, validCounter())
	assert.ErrorIs(t, err, ErrVersionConflict)

	stored, err := f.repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingAdminReviewCounter, stored.Status)
}

func TestService_Decline(t *testing.T) {
	f := newFixture(t)

	t.Run("recipient declines a pending proposal", func(t *testing.T) {
		c := f.approvedProposal(t)
		declined, err := f.svc.Decline(context.Background(), venue, c.ID, "dates unavailable")
		require.NoError(t, err)
		assert.Equal(t, StatusDeclined, declined.Status)
		assert.Equal(t, venueID, *declined.DeclinedBy)
		assert.Equal(t, "dates unavailable", declined.DeclineReason)
	})

	t.Run("stranger cannot decline", func(t *testing.T) {
		c := f.approvedProposal(t)
		_, err := f.svc.Decline(context.Background(), stranger, c.ID, "")
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("terminal state cannot be declined again", func(t *testing.T) {
		c := f.approvedProposal(t)
		_, err := f.svc.Decline(context.Background(), venue, c.ID, "")
		require.NoError(t, err)
		_, err = f.svc.Decline(context.Background(), community, c.ID, "")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestService_Get_Authorization(t *testing.T) {
	f := newFixture(t)
	c := f.approvedProposal(t)

	_, err := f.svc.Get(context.Background(), stranger, c.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	got, err := f.svc.Get(context.Background(), admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestService_ListPendingModeration(t *testing.T) {
	f := newFixture(t)

	// One proposal awaiting review, one counter awaiting review.
	_, err := f.svc.Propose(context.Background(), community, venueProposal())
	require.NoError(t, err)

	c := f.approvedProposal(t)
	_, err = f.svc.SubmitCounter(context.Background(), venue, c.ID, validCounter())
	require.NoError(t, err)

	proposals, counters, err := f.svc.ListPendingModeration(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Len(t, proposals, 1)
	assert.Len(t, counters, 1)
}
