package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/workboard/workboard-api/internal/constants"
	"github.com/workboard/workboard-api/internal/database"
	apierrors "github.com/workboard/workboard-api/internal/errors"
	"github.com/workboard/workboard-api/internal/models"
)

// RequireWorkspaceAccess checks if the user is a member of the workspace
func RequireWorkspaceAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		wsIDStr := c.Param("id")
		wsID, err := strconv.ParseUint(wsIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid workspace ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var ws models.Workspace
		if err := database.GetDB().First(&ws, wsID).Error; err != nil {
			apierrors.NotFound(c, "Workspace not found")
			c.Abort()
			return
		}

		var member models.WorkspaceMember
		err = database.GetDB().Where("workspace_id = ? AND user_id = ?", wsID, userID).First(&member).Error
		if err != nil {
			// Return 404 instead of 403 to avoid leaking workspace existence
			apierrors.NotFound(c, "Workspace not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyWorkspace, ws)
		c.Set(constants.ContextKeyWorkspaceMember, member)
		c.Next()
	}
}

// RequireWorkspaceManager checks that the user's role may manage members and
// invites (owner or admin).
func RequireWorkspaceManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberInterface, exists := c.Get(constants.ContextKeyWorkspaceMember)
		if !exists {
			apierrors.Forbidden(c, "Workspace access required")
			c.Abort()
			return
		}

		member, ok := memberInterface.(models.WorkspaceMember)
		if !ok {
			apierrors.InternalError(c, "Invalid workspace member data")
			c.Abort()
			return
		}

		if !member.Role.CanManage() {
			apierrors.Forbidden(c, "Only workspace owners and admins can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetWorkspace retrieves the workspace loaded by RequireWorkspaceAccess
func GetWorkspace(c *gin.Context) (models.Workspace, bool) {
	wsInterface, exists := c.Get(constants.ContextKeyWorkspace)
	if !exists {
		return models.Workspace{}, false
	}
	ws, ok := wsInterface.(models.Workspace)
	return ws, ok
}

// GetWorkspaceMember retrieves the membership loaded by RequireWorkspaceAccess
func GetWorkspaceMember(c *gin.Context) (models.WorkspaceMember, bool) {
	memberInterface, exists := c.Get(constants.ContextKeyWorkspaceMember)
	if !exists {
		return models.WorkspaceMember{}, false
	}
	member, ok := memberInterface.(models.WorkspaceMember)
	return member, ok
}
