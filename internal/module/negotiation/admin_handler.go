package negotiation

import (
	"net/http"

	"github.com/gatherly/server/internal/shared/middleware"
	"github.com/gatherly/server/internal/shared/response"
	"github.com/gatherly/server/internal/utils/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles the moderation surface of the workflow.
type AdminHandler struct {
	service *Service
}

// NewAdminHandler creates a new negotiation admin handler.
func NewAdminHandler(service *Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers admin moderation routes. The group must
// already carry RequireAdmin.
func (h *AdminHandler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/collaborations/pending", h.ListPending)
	admin.PUT("/collaborations/:id/approve", h.ApproveProposal)
	admin.PUT("/collaborations/:id/reject", h.RejectProposal)
	admin.PUT("/collaborations/counters/:id/approve", h.ApproveCounter)
	admin.PUT("/collaborations/counters/:id/reject", h.RejectCounter)
}

// ListPending returns the moderation queue.
//
//	@Summary		Moderation queue
//	@Description	Proposals and counters awaiting admin review
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	PendingModerationResponse
//	@Router			/admin/collaborations/pending [get]
func (h *AdminHandler) ListPending(c *gin.Context) {
	page := pagination.New()
	if err := c.ShouldBindQuery(page); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	proposals, counters, err := h.service.ListPendingModeration(c.Request.Context(), page.Limit(), page.Offset())
	if err != nil {
		handleError(c, err)
		return
	}

	resp := PendingModerationResponse{
		Proposals: make([]*CollaborationResponse, len(proposals)),
		Counters:  make([]*CounterResponse, len(counters)),
	}
	for i, p := range proposals {
		resp.Proposals[i] = p.ToResponse(false)
	}
	for i, counter := range counters {
		resp.Counters[i] = counter.ToResponse()
	}

	c.JSON(http.StatusOK, resp)
}

// ApproveProposal forwards a proposal to its recipient.
//
//	@Summary		Approve proposal
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Collaboration ID"
//	@Success		200	{object}	CollaborationResponse
//	@Failure		409	{object}	response.ErrorResponse
//	@Router			/admin/collaborations/{id}/approve [put]
func (h *AdminHandler) ApproveProposal(c *gin.Context) {
	adminID, id, ok := h.adminAndID(c)
	if !ok {
		return
	}

	collab, err := h.service.ApproveProposal(c.Request.Context(), adminID, id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, collab.ToResponse(false))
}

// RejectProposal declines a proposal at the moderation gate.
//
//	@Summary		Reject proposal
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Collaboration ID"
//	@Param			request	body		RejectRequest	false	"Reason"
//	@Success		200		{object}	CollaborationResponse
//	@Router			/admin/collaborations/{id}/reject [put]
func (h *AdminHandler) RejectProposal(c *gin.Context) {
	adminID, id, ok := h.adminAndID(c)
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, err.Error())
		return
	}

	collab, err := h.service.RejectProposal(c.Request.Context(), adminID, id, req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, collab.ToResponse(false))
}

// ApproveCounter forwards a counter, bouncing the turn to the other side.
//
//	@Summary		Approve counter
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Counter ID"
//	@Success		200	{object}	CollaborationResponse
//	@Router			/admin/collaborations/counters/{id}/approve [put]
func (h *AdminHandler) ApproveCounter(c *gin.Context) {
	adminID, id, ok := h.adminAndID(c)
	if !ok {
		return
	}

	collab, err := h.service.ApproveCounter(c.Request.Context(), adminID, id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, collab.ToResponse(false))
}

// RejectCounter declines the collaboration at the counter moderation gate.
//
//	@Summary		Reject counter
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Counter ID"
//	@Param			request	body		RejectRequest	false	"Reason"
//	@Success		200		{object}	CollaborationResponse
//	@Router			/admin/collaborations/counters/{id}/reject [put]
func (h *AdminHandler) RejectCounter(c *gin.Context) {
	adminID, id, ok := h.adminAndID(c)
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, err.Error())
		return
	}

	collab, err := h.service.RejectCounter(c.Request.Context(), adminID, id, req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, collab.ToResponse(false))
}

func (h *AdminHandler) adminAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	actor := middleware.GetActor(c)
	if actor == nil {
		response.Unauthorized(c, "")
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid id")
		return uuid.Nil, uuid.Nil, false
	}
	return actor.ID, id, true
}
