package party

import (
	"net/http"

	"github.com/gatherly/server/internal/module/auth"
	"github.com/gatherly/server/internal/shared/middleware"
	"github.com/gatherly/server/internal/shared/response"
	"github.com/gatherly/server/internal/utils/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for parties.
type Handler struct {
	service *Service
	tokens  *auth.TokenManager
	metrics *metrics.Metrics
}

// NewHandler creates a new party handler.
func NewHandler(service *Service, tokens *auth.TokenManager, m *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		tokens:  tokens,
		metrics: m,
	}
}

// RegisterRoutes registers public party routes.
// The register/login routes are mounted without auth; the rest require it.
func (h *Handler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.POST("/parties/register", h.Register)
	public.POST("/parties/login", h.Login)

	authed.GET("/parties", h.List)
	authed.GET("/parties/:id", h.Get)
	authed.GET("/parties/me", h.Me)
	authed.PATCH("/parties/me", h.UpdateProfile)
}

// Register handles party registration.
//
//	@Summary		Register party
//	@Description	Register a community, venue or brand account
//	@Tags			Party
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Registration request"
//	@Success		201		{object}	PartyResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Router			/parties/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	p, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.metrics.RecordAuthEvent("register")
	c.JSON(http.StatusCreated, p.ToResponse(true))
}

// Login handles party login.
//
//	@Summary		Login
//	@Description	Authenticate a party and issue a token
//	@Tags			Party
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login request"
//	@Success		200		{object}	LoginResponse
//	@Failure		401		{object}	response.ErrorResponse
//	@Router			/parties/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	p, err := h.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.RecordAuthEvent("login_failed")
		h.handleError(c, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(p.ID, string(p.Type), p.Name, p.IsAdmin)
	if err != nil {
		response.InternalError(c, "")
		return
	}

	h.metrics.RecordAuthEvent("login_success")
	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Party:     p.ToResponse(true),
	})
}

// Get handles fetching a party profile.
//
//	@Summary		Get party
//	@Description	Get a party profile by ID
//	@Tags			Party
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Party ID"
//	@Success		200	{object}	PartyResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/parties/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid party id")
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	actor := middleware.GetActor(c)
	includeContact := actor != nil && (actor.Admin || actor.ID == p.ID)
	c.JSON(http.StatusOK, p.ToResponse(includeContact))
}

// Me returns the authenticated party's own profile.
//
//	@Summary		Get own profile
//	@Tags			Party
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	PartyResponse
//	@Router			/parties/me [get]
func (h *Handler) Me(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		response.Unauthorized(c, "")
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), actor.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, p.ToResponse(true))
}

// UpdateProfile updates the authenticated party's profile.
//
//	@Summary		Update own profile
//	@Tags			Party
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		UpdateProfileRequest	true	"Profile update"
//	@Success		200		{object}	PartyResponse
//	@Router			/parties/me [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		response.Unauthorized(c, "")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	p, err := h.service.UpdateProfile(c.Request.Context(), actor.ID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, p.ToResponse(true))
}

// List handles listing parties.
//
//	@Summary		List parties
//	@Description	List active parties filtered by type and city
//	@Tags			Party
//	@Produce		json
//	@Security		BearerAuth
//	@Param			type	query		string	false	"Party type"
//	@Param			city	query		string	false	"City"
//	@Success		200		{object}	map[string]interface{}
//	@Router			/parties [get]
func (h *Handler) List(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	parties, total, err := h.service.List(c.Request.Context(), ListFilter{
		Type: query.Type,
		City: query.City,
	}, query.Limit, query.Offset)
	if err != nil {
		h.handleError(c, err)
		return
	}

	responses := make([]*PartyResponse, len(parties))
	for i, p := range parties {
		responses[i] = p.ToResponse(false)
	}

	c.JSON(http.StatusOK, gin.H{"parties": responses, "total": total})
}

// handleError maps service errors to HTTP responses.
func (h *Handler) handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
		{Err: ErrPartyNotFound, Status: http.StatusNotFound, Code: "PARTY_NOT_FOUND"},
		{Err: ErrEmailAlreadyUsed, Status: http.StatusConflict, Code: "EMAIL_ALREADY_USED"},
		{Err: ErrSlugAlreadyExists, Status: http.StatusConflict, Code: "SLUG_ALREADY_EXISTS"},
		{Err: ErrInvalidType, Status: http.StatusBadRequest, Code: "INVALID_TYPE"},
		{Err: ErrInvalidCredentials, Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIALS"},
		{Err: ErrPartySuspended, Status: http.StatusForbidden, Code: "PARTY_SUSPENDED"},
		{Err: ErrAlreadySuspended, Status: http.StatusConflict, Code: "ALREADY_SUSPENDED"},
		{Err: ErrNotSuspended, Status: http.StatusConflict, Code: "NOT_SUSPENDED"},
	})
}
