package notification

import (
	"net/http"

	"github.com/gatherly/server/internal/shared/middleware"
	"github.com/gatherly/server/internal/shared/response"
	"github.com/gatherly/server/internal/utils/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for notifications.
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers authenticated notification routes.
func (h *Handler) RegisterRoutes(authed *gin.RouterGroup) {
	authed.GET("/notifications", h.List)
	authed.GET("/notifications/unread-count", h.UnreadCount)
	authed.PUT("/notifications/:id/read", h.MarkRead)
	authed.PUT("/notifications/read-all", h.MarkAllRead)
}

// List returns the actor's notifications.
//
//	@Summary		List notifications
//	@Tags			Notification
//	@Produce		json
//	@Security		BearerAuth
//	@Param			unread	query		bool	false	"Unread only"
//	@Success		200		{object}	map[string]interface{}
//	@Router			/notifications [get]
func (h *Handler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		response.Unauthorized(c, "")
		return
	}

	page := pagination.New()
	if err := c.ShouldBindQuery(page); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.service.List(c.Request.Context(), actor.ID, unreadOnly, page.Limit(), page.Offset())
	if err != nil {
		response.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"page_info":     page.Info(total),
	})
}

// UnreadCount returns the actor's unread notification count.
//
//	@Summary		Unread count
//	@Tags			Notification
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	map[string]int64
//	@Router			/notifications/unread-count [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		response.Unauthorized(c, "")
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), actor.ID)
	if err != nil {
		response.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkRead marks one notification read.
//
//	@Summary		Mark read
//	@Tags			Notification
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Notification ID"
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/notifications/{id}/read [put]
func (h *Handler) MarkRead(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		response.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid notification id")
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id, actor.ID); err != nil {
		response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
			{Err: ErrNotificationNotFound, Status: http.StatusNotFound, Code: "NOTIFICATION_NOT_FOUND"},
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkAllRead marks every unread notification read.
//
//	@Summary		Mark all read
//	@Tags			Notification
//	@Security		BearerAuth
//	@Success		204
//	@Router			/notifications/read-all [put]
func (h *Handler) MarkAllRead(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		response.Unauthorized(c, "")
		return
	}

	if err := h.service.MarkAllRead(c.Request.Context(), actor.ID); err != nil {
		response.InternalError(c, "")
		return
	}

	c.Status(http.StatusNoContent)
}
