package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/workboard/workboard-api/internal/dto"
	apierrors "github.com/workboard/workboard-api/internal/errors"
	"github.com/workboard/workboard-api/internal/middleware"
	"github.com/workboard/workboard-api/internal/services"
)

// InviteHandler coordinates invite HTTP handlers for both flows: shareable
// token links and email-addressed pending invites.
type InviteHandler struct {
	inviteService *services.InviteService
}

// NewInviteHandler creates a new InviteHandler.
func NewInviteHandler(inviteService *services.InviteService) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
	}
}

// CreateInvite issues a shareable invite link for a workspace
func (h *InviteHandler) CreateInvite(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateInviteRequest struct {
		Hours   int `json:"hours" binding:"required"`
		MaxUses int `json:"max_uses" binding:"required"`
	}

	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	invite, url, err := h.inviteService.CreateTokenInvite(services.CreateTokenInviteInput{
		WorkspaceID:   ws.ID,
		ValidityHours: req.Hours,
		MaxUses:       req.MaxUses,
		CreatedBy:     userID,
	})
	if err != nil {
		respondInviteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCreatedInviteDTO(*invite, url))
}

// ResolveInvite previews an invite link without redeeming it
func (h *InviteHandler) ResolveInvite(c *gin.Context) {
	token := c.Param("token")

	invite, ws, err := h.inviteService.ResolveTokenInviteWithWorkspace(token)
	if err != nil {
		respondInviteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitePreviewDTO(*invite, *ws))
}

// AcceptInvite redeems an invite link for the authenticated user
func (h *InviteHandler) AcceptInvite(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	token := c.Param("token")

	ws, err := h.inviteService.AcceptTokenInvite(token, userID)
	if err != nil {
		respondInviteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Successfully joined workspace",
		"workspace": dto.ToWorkspaceDTO(*ws),
	})
}

// SendEmailInvite sends a pending invite to a registered user by email
func (h *InviteHandler) SendEmailInvite(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type EmailInviteRequest struct {
		Email string `json:"email" binding:"required,email"`
	}

	var req EmailInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	invite, err := h.inviteService.SendPendingInvite(services.SendPendingInviteInput{
		WorkspaceID: ws.ID,
		TargetEmail: req.Email,
		InviterID:   userID,
	})
	if err != nil {
		respondInviteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToPendingInviteDTO(*invite))
}

// ListPendingInvites returns the caller's outstanding invites
func (h *InviteHandler) ListPendingInvites(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	invites, err := h.inviteService.ListPendingInvites(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch pending invites")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invites": dto.ToPendingInviteDTOs(invites),
	})
}

// AcceptPendingInvite accepts a pending invite for the caller
func (h *InviteHandler) AcceptPendingInvite(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	wsID, err := strconv.ParseUint(c.Param("workspace_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid workspace ID")
		return
	}

	if err := h.inviteService.AcceptPendingInvite(userID, wsID); err != nil {
		respondInviteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invite accepted",
	})
}

// RejectPendingInvite rejects a pending invite for the caller
func (h *InviteHandler) RejectPendingInvite(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	wsID, err := strconv.ParseUint(c.Param("workspace_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid workspace ID")
		return
	}

	if err := h.inviteService.RejectPendingInvite(userID, wsID); err != nil {
		respondInviteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invite rejected",
	})
}

func respondInviteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInviteNotFound),
		errors.Is(err, services.ErrPendingInviteNotFound),
		errors.Is(err, services.ErrInvitedUserNotFound),
		errors.Is(err, services.ErrWorkspaceNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInviteExpired):
		apierrors.Gone(c, err.Error())
	case errors.Is(err, services.ErrInviteUseLimitReached):
		apierrors.ConflictWithCode(c, apierrors.ErrCodeUseLimitExceeded, err.Error())
	case errors.Is(err, services.ErrDuplicatePendingInvite):
		apierrors.ConflictWithCode(c, apierrors.ErrCodeDuplicateInvite, err.Error())
	case errors.Is(err, services.ErrAlreadyWorkspaceMember):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInviteHoursOutOfRange),
		errors.Is(err, services.ErrInviteMaxUsesOutOfRange):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeOutOfRange, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
