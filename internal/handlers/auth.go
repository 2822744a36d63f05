package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/workboard/workboard-api/internal/cache"
	"github.com/workboard/workboard-api/internal/constants"
	"github.com/workboard/workboard-api/internal/dto"
	apierrors "github.com/workboard/workboard-api/internal/errors"
	"github.com/workboard/workboard-api/internal/middleware"
	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	wsService   *services.WorkspaceService
	profCache   *cache.ProfileCache
}

// NewAuthHandler creates a new AuthHandler. profCache may be nil when the
// local snapshot is disabled.
func NewAuthHandler(authService *services.AuthService, wsService *services.WorkspaceService, profCache *cache.ProfileCache) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		wsService:   wsService,
		profCache:   profCache,
	}
}

// Signup registers a new user.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Signup(services.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	h.refreshProfileCache(user)

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	if h.profCache != nil {
		_ = h.profCache.Invalidate()
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user. When the authoritative
// store is unreachable, the local snapshot stands in so the client can
// still render a profile.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		if !errors.Is(err, services.ErrUserNotFound) {
			if snapshot := h.loadCachedProfile(userID); snapshot != nil {
				c.JSON(http.StatusOK, dto.UserDTO{
					ID:        snapshot.UserID,
					Email:     snapshot.Email,
					FirstName: snapshot.FirstName,
					LastName:  snapshot.LastName,
					Photo:     snapshot.Photo,
				})
				return
			}
		}
		respondAuthError(c, err)
		return
	}

	h.refreshProfileCache(user)

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateProfile updates the authenticated user's profile fields.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateProfileRequest struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Photo     string `json:"photo"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.UpdateProfile(userID, services.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Photo:     req.Photo,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.refreshProfileCache(user)

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// loadCachedProfile returns the local snapshot when it belongs to userID.
func (h *AuthHandler) loadCachedProfile(userID uint64) *cache.ProfileSnapshot {
	if h.profCache == nil {
		return nil
	}

	snapshot := h.profCache.Load()
	if snapshot == nil || snapshot.UserID != userID {
		return nil
	}

	return snapshot
}

// refreshProfileCache rewrites the local snapshot from the authoritative
// store. Cache failures never surface to the client.
func (h *AuthHandler) refreshProfileCache(user *models.User) {
	if h.profCache == nil {
		return
	}

	snapshot := cache.ProfileSnapshot{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Photo:     user.Photo,
	}

	if memberships, err := h.wsService.ListWorkspacesForUser(user.ID); err == nil {
		for _, m := range memberships {
			snapshot.WorkspaceIDs = append(snapshot.WorkspaceIDs, m.WorkspaceID)
		}
	}

	_ = h.profCache.Save(snapshot)
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrEmailRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
