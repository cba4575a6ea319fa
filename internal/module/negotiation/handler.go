package negotiation

import (
	"context"
	"net/http"

	"github.com/gatherly/server/internal/shared/middleware"
	"github.com/gatherly/server/internal/shared/response"
	"github.com/gatherly/server/internal/utils/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for the negotiation workflow.
type Handler struct {
	service *Service
}

// NewHandler creates a new negotiation handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers authenticated negotiation routes.
func (h *Handler) RegisterRoutes(authed *gin.RouterGroup) {
	authed.POST("/collaborations/propose", h.Propose)
	authed.POST("/collaborations/draft", h.SaveDraft)
	authed.POST("/collaborations/:id/submit", h.SubmitDraft)
	authed.POST("/collaborations/:id/counter", h.SubmitCounter)
	authed.POST("/collaborations/:id/counter/accept", h.Accept)
	authed.POST("/collaborations/:id/decline", h.Decline)
	authed.GET("/collaborations/:id", h.Get)
	authed.GET("/collaborations/sent", h.ListSent)
	authed.GET("/collaborations/received", h.ListReceived)
}

// Propose handles proposal submission.
//
//	@Summary		Submit proposal
//	@Description	Create a collaboration proposal in admin review
//	@Tags			Collaboration
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ProposeRequest	true	"Proposal"
//	@Success		201		{object}	CollaborationResponse
//	@Failure		422		{object}	response.ErrorResponse
//	@Router			/collaborations/propose [post]
func (h *Handler) Propose(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req ProposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	collab, err := h.service.Propose(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, collab.ToResponse(false))
}

// SaveDraft persists a draft proposal.
//
//	@Summary		Save draft
//	@Tags			Collaboration
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		DraftRequest	true	"Draft"
//	@Success		200		{object}	CollaborationResponse
//	@Router			/collaborations/draft [post]
func (h *Handler) SaveDraft(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	collab, err := h.service.SaveDraft(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	status := http.StatusOK
	if req.ID == nil {
		status = http.StatusCreated
	}
	c.JSON(status, collab.ToResponse(false))
}

// SubmitDraft promotes a draft into admin review.
//
//	@Summary		Submit draft
//	@Tags			Collaboration
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Collaboration ID"
//	@Success		200	{object}	CollaborationResponse
//	@Router			/collaborations/{id}/submit [post]
func (h *Handler) SubmitDraft(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	collab, err := h.service.SubmitDraft(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, collab.ToResponse(false))
}

// SubmitCounter handles counter submission by the current counterparty.
//
//	@Summary		Submit counter
//	@Description	Field-by-field counter against the current proposal
//	@Tags			Collaboration
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Collaboration ID"
//	@Param			request	body		CounterRequest	true	"Counter"
//	@Success		201		{object}	CounterResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Failure		422		{object}	response.ErrorResponse
//	@Router			/collaborations/{id}/counter [post]
func (h *Handler) SubmitCounter(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req CounterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	counter, err := h.service.SubmitCounter(c.Request.Context(), actor, id, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, counter.ToResponse())
}

// Accept closes the negotiation in favor of the latest terms.
//
//	@Summary		Accept
//	@Tags			Collaboration
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Collaboration ID"
//	@Success		200	{object}	CollaborationResponse
//	@Router			/collaborations/{id}/counter/accept [post]
func (h *Handler) Accept(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	collab, err := h.service.Accept(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, collab.ToResponse(false))
}

// Decline ends the negotiation.
//
//	@Summary		Decline
//	@Tags			Collaboration
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Collaboration ID"
//	@Param			request	body		DeclineRequest	false	"Reason"
//	@Success		200		{object}	CollaborationResponse
//	@Router			/collaborations/{id}/decline [post]
func (h *Handler) Decline(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req DeclineRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, err.Error())
		return
	}

	collab, err := h.service.Decline(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, collab.ToResponse(false))
}

// Get returns the full negotiation state with counter history.
//
//	@Summary		Get collaboration
//	@Tags			Collaboration
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Collaboration ID"
//	@Success		200	{object}	CollaborationResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/collaborations/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	collab, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, collab.ToResponse(true))
}

// ListSent lists collaborations the actor proposed.
//
//	@Summary		List sent
//	@Tags			Collaboration
//	@Produce		json
//	@Security		BearerAuth
//	@Param			status	query		string	false	"Status filter"
//	@Success		200		{object}	ListResponse
//	@Router			/collaborations/sent [get]
func (h *Handler) ListSent(c *gin.Context) {
	h.listFor(c, h.service.ListSent)
}

// ListReceived lists collaborations sent to the actor.
//
//	@Summary		List received
//	@Tags			Collaboration
//	@Produce		json
//	@Security		BearerAuth
//	@Param			status	query		string	false	"Status filter"
//	@Success		200		{object}	ListResponse
//	@Router			/collaborations/received [get]
func (h *Handler) ListReceived(c *gin.Context) {
	h.listFor(c, h.service.ListReceived)
}

type listFn func(ctx context.Context, actorID uuid.UUID, status Status, limit, offset int) ([]*Collaboration, int64, error)

func (h *Handler) listFor(c *gin.Context, list listFn) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	page := pagination.New()
	if err := c.ShouldBindQuery(page); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	collaborations, total, err := list(c.Request.Context(), actor.ID, query.Status, page.Limit(), page.Offset())
	if err != nil {
		handleError(c, err)
		return
	}

	responses := make([]*CollaborationResponse, len(collaborations))
	for i, collab := range collaborations {
		responses[i] = collab.ToResponse(false)
	}

	c.JSON(http.StatusOK, ListResponse{
		Collaborations: responses,
		PageInfo:       page.Info(total),
	})
}

// requireActor reads the authenticated actor or rejects the request.
func requireActor(c *gin.Context) (Actor, bool) {
	a := middleware.GetActor(c)
	if a == nil {
		response.Unauthorized(c, "")
		return Actor{}, false
	}
	return Actor{ID: a.ID, Type: a.Type, Admin: a.Admin}, true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid collaboration id")
		return uuid.Nil, false
	}
	return id, true
}

// handleError maps workflow errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
		{Err: ErrValidation, Status: http.StatusUnprocessableEntity, Code: "VALIDATION_FAILED"},
		{Err: ErrInvalidTransition, Status: http.StatusConflict, Code: "INVALID_TRANSITION"},
		{Err: ErrNotFound, Status: http.StatusNotFound, Code: "NOT_FOUND"},
		{Err: ErrCounterNotFound, Status: http.StatusNotFound, Code: "COUNTER_NOT_FOUND"},
		{Err: ErrNotAuthorized, Status: http.StatusForbidden, Code: "NOT_AUTHORIZED"},
		{Err: ErrVersionConflict, Status: http.StatusConflict, Code: "VERSION_CONFLICT"},
		{Err: ErrPartyUnavailable, Status: http.StatusUnprocessableEntity, Code: "PARTY_UNAVAILABLE"},
	})
}
