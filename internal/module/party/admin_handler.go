package party

import (
	"net/http"

	"github.com/gatherly/server/internal/shared/response"
	"github.com/gatherly/server/internal/utils/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles admin operations on parties.
type AdminHandler struct {
	service *Service
	metrics *metrics.Metrics
}

// NewAdminHandler creates a new admin party handler.
func NewAdminHandler(service *Service, m *metrics.Metrics) *AdminHandler {
	return &AdminHandler{service: service, metrics: m}
}

// RegisterRoutes registers admin party routes. The group must already
// carry RequireAdmin.
func (h *AdminHandler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/parties", h.List)
	admin.PUT("/parties/:id/suspend", h.Suspend)
	admin.PUT("/parties/:id/reinstate", h.Reinstate)
}

// List lists parties of any status for moderation.
//
//	@Summary		List parties (admin)
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			status	query		string	false	"Party status"
//	@Success		200		{object}	map[string]interface{}
//	@Router			/admin/parties [get]
func (h *AdminHandler) List(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// Admins see every status unless they ask for one.
	filter := ListFilter{
		Type:   query.Type,
		City:   query.City,
		Status: PartyStatus(c.Query("status")),
	}

	parties, total, err := h.service.ListAll(c.Request.Context(), filter, query.Limit, query.Offset)
	if err != nil {
		h.handleError(c, err)
		return
	}

	responses := make([]*PartyResponse, len(parties))
	for i, p := range parties {
		responses[i] = p.ToResponse(true)
	}

	c.JSON(http.StatusOK, gin.H{"parties": responses, "total": total})
}

// Suspend suspends a party.
//
//	@Summary		Suspend party
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Party ID"
//	@Param			request	body		SuspendRequest	true	"Suspend request"
//	@Success		200		{object}	PartyResponse
//	@Router			/admin/parties/{id}/suspend [put]
func (h *AdminHandler) Suspend(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid party id")
		return
	}

	var req SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	p, err := h.service.Suspend(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.metrics.RecordModerationDecision("party", "suspend")
	c.JSON(http.StatusOK, p.ToResponse(true))
}

// Reinstate lifts a suspension.
//
//	@Summary		Reinstate party
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Party ID"
//	@Success		200	{object}	PartyResponse
//	@Router			/admin/parties/{id}/reinstate [put]
func (h *AdminHandler) Reinstate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid party id")
		return
	}

	p, err := h.service.Reinstate(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.metrics.RecordModerationDecision("party", "reinstate")
	c.JSON(http.StatusOK, p.ToResponse(true))
}

func (h *AdminHandler) handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
		{Err: ErrPartyNotFound, Status: http.StatusNotFound, Code: "PARTY_NOT_FOUND"},
		{Err: ErrAlreadySuspended, Status: http.StatusConflict, Code: "ALREADY_SUSPENDED"},
		{Err: ErrNotSuspended, Status: http.StatusConflict, Code: "NOT_SUSPENDED"},
	})
}
