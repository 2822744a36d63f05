package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/workboard/workboard-api/internal/constants"
	"github.com/workboard/workboard-api/internal/database"
	"github.com/workboard/workboard-api/internal/dto"
	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/repository"
	"github.com/workboard/workboard-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type workspaceTestEnv struct {
	db        *gorm.DB
	handler   *WorkspaceHandler
	wsService *services.WorkspaceService
}

func setupWorkspaceTestEnv(t *testing.T) workspaceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.TokenInvite{},
		&models.PendingInvite{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TaskNote{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	wsRepo := repository.NewWorkspaceRepository(db)
	wsService := services.NewWorkspaceService(wsRepo)
	handler := NewWorkspaceHandler(wsService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return workspaceTestEnv{
		db:        db,
		handler:   handler,
		wsService: wsService,
	}
}

func wsTestContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func createWorkspaceTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	user := &models.User{
		Email:        email,
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createWorkspaceForUser(t *testing.T, svc *services.WorkspaceService, title string, ownerID uint64) *models.Workspace {
	ws, err := svc.CreateWorkspace(services.CreateWorkspaceInput{
		Title:   title,
		OwnerID: ownerID,
	})
	require.NoError(t, err)
	return ws
}

// setWorkspaceContext simulates RequireWorkspaceAccess
func setWorkspaceContext(c *gin.Context, ws models.Workspace, member models.WorkspaceMember) {
	c.Set(constants.ContextKeyWorkspace, ws)
	c.Set(constants.ContextKeyWorkspaceMember, member)
}

func TestWorkspaceHandler_CreateWorkspace(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	user := createWorkspaceTestUser(t, env.db, "owner@example.com")

	payload := map[string]string{"title": "Product Board", "color": "#4287f5"}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := wsTestContext(http.MethodPost, "/api/workspaces", body, user.ID)

	env.handler.CreateWorkspace(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.WorkspaceDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Product Board", response.Title)
	require.Equal(t, user.ID, response.OwnerID)

	// The creator becomes the owner member in the same transaction
	var member models.WorkspaceMember
	require.NoError(t, env.db.Where("workspace_id = ? AND user_id = ?", response.ID, user.ID).First(&member).Error)
	require.Equal(t, models.RoleOwner, member.Role)
}

func TestWorkspaceHandler_CreateWorkspace_EmptyTitle(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	user := createWorkspaceTestUser(t, env.db, "owner@example.com")

	body, err := json.Marshal(map[string]string{"title": "   "})
	require.NoError(t, err)

	c, w := wsTestContext(http.MethodPost, "/api/workspaces", body, user.ID)

	env.handler.CreateWorkspace(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkspaceHandler_ListWorkspaces(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	user := createWorkspaceTestUser(t, env.db, "member@example.com")
	createWorkspaceForUser(t, env.wsService, "Workspace One", user.ID)

	c, w := wsTestContext(http.MethodGet, "/api/workspaces", nil, user.ID)

	env.handler.ListWorkspaces(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string][]dto.WorkspaceWithRoleDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	workspaces := response["workspaces"]
	require.Len(t, workspaces, 1)
	require.Equal(t, "Workspace One", workspaces[0].Title)
	require.Equal(t, models.RoleOwner, workspaces[0].Role)
}

func TestWorkspaceHandler_UpdateWorkspace(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	user := createWorkspaceTestUser(t, env.db, "owner@example.com")
	ws := createWorkspaceForUser(t, env.wsService, "Old Title", user.ID)

	body, err := json.Marshal(map[string]string{"title": "New Title", "color": "#ff0000"})
	require.NoError(t, err)

	c, w := wsTestContext(http.MethodPut, "/api/workspaces/1", body, user.ID)
	setWorkspaceContext(c, *ws, models.WorkspaceMember{WorkspaceID: ws.ID, UserID: user.ID, Role: models.RoleOwner})

	env.handler.UpdateWorkspace(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.WorkspaceDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "New Title", response.Title)
	require.Equal(t, "#ff0000", response.Color)
}

func TestWorkspaceHandler_SetMemberRole_OwnerImmutable(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	owner := createWorkspaceTestUser(t, env.db, "owner@example.com")
	ws := createWorkspaceForUser(t, env.wsService, "Board", owner.ID)

	body, err := json.Marshal(map[string]string{"role": "user"})
	require.NoError(t, err)

	c, w := wsTestContext(http.MethodPut, "/api/workspaces/1/members/1/role", body, owner.ID)
	setWorkspaceContext(c, *ws, models.WorkspaceMember{WorkspaceID: ws.ID, UserID: owner.ID, Role: models.RoleOwner})
	c.Params = gin.Params{{Key: "user_id", Value: "1"}}

	env.handler.SetMemberRole(c)

	require.Equal(t, http.StatusForbidden, w.Code)

	var member models.WorkspaceMember
	require.NoError(t, env.db.Where("workspace_id = ? AND user_id = ?", ws.ID, owner.ID).First(&member).Error)
	require.Equal(t, models.RoleOwner, member.Role)
}

func TestWorkspaceHandler_SetMemberRole_NotMemberNoOp(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	owner := createWorkspaceTestUser(t, env.db, "owner@example.com")
	outsider := createWorkspaceTestUser(t, env.db, "outsider@example.com")
	ws := createWorkspaceForUser(t, env.wsService, "Board", owner.ID)

	body, err := json.Marshal(map[string]string{"role": "admin"})
	require.NoError(t, err)

	c, w := wsTestContext(http.MethodPut, "/api/workspaces/1/members/2/role", body, owner.ID)
	setWorkspaceContext(c, *ws, models.WorkspaceMember{WorkspaceID: ws.ID, UserID: owner.ID, Role: models.RoleOwner})
	c.Params = gin.Params{{Key: "user_id", Value: "2"}}

	env.handler.SetMemberRole(c)

	require.Equal(t, http.StatusOK, w.Code)

	// No membership row appears as a side effect
	var count int64
	require.NoError(t, env.db.Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", ws.ID, outsider.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestWorkspaceHandler_SetMemberRole_PromoteToAdmin(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	owner := createWorkspaceTestUser(t, env.db, "owner@example.com")
	member := createWorkspaceTestUser(t, env.db, "member@example.com")
	ws := createWorkspaceForUser(t, env.wsService, "Board", owner.ID)
	require.NoError(t, env.wsService.AddMember(ws.ID, member.ID, models.RoleUser))

	body, err := json.Marshal(map[string]string{"role": "admin"})
	require.NoError(t, err)

	c, w := wsTestContext(http.MethodPut, "/api/workspaces/1/members/2/role", body, owner.ID)
	setWorkspaceContext(c, *ws, models.WorkspaceMember{WorkspaceID: ws.ID, UserID: owner.ID, Role: models.RoleOwner})
	c.Params = gin.Params{{Key: "user_id", Value: "2"}}

	env.handler.SetMemberRole(c)

	require.Equal(t, http.StatusOK, w.Code)

	var row models.WorkspaceMember
	require.NoError(t, env.db.Where("workspace_id = ? AND user_id = ?", ws.ID, member.ID).First(&row).Error)
	require.Equal(t, models.RoleAdmin, row.Role)
}

func TestWorkspaceHandler_RemoveMember_OwnerRefused(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	owner := createWorkspaceTestUser(t, env.db, "owner@example.com")
	admin := createWorkspaceTestUser(t, env.db, "admin@example.com")
	ws := createWorkspaceForUser(t, env.wsService, "Board", owner.ID)
	require.NoError(t, env.wsService.AddMember(ws.ID, admin.ID, models.RoleAdmin))

	c, w := wsTestContext(http.MethodDelete, "/api/workspaces/1/members/1", nil, admin.ID)
	setWorkspaceContext(c, *ws, models.WorkspaceMember{WorkspaceID: ws.ID, UserID: admin.ID, Role: models.RoleAdmin})
	c.Params = gin.Params{{Key: "user_id", Value: "1"}}

	env.handler.RemoveMember(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestWorkspaceHandler_RemoveMember_AbsentIsNoOp(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	owner := createWorkspaceTestUser(t, env.db, "owner@example.com")
	createWorkspaceTestUser(t, env.db, "never-joined@example.com")
	ws := createWorkspaceForUser(t, env.wsService, "Board", owner.ID)

	c, w := wsTestContext(http.MethodDelete, "/api/workspaces/1/members/2", nil, owner.ID)
	setWorkspaceContext(c, *ws, models.WorkspaceMember{WorkspaceID: ws.ID, UserID: owner.ID, Role: models.RoleOwner})
	c.Params = gin.Params{{Key: "user_id", Value: "2"}}

	env.handler.RemoveMember(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestWorkspaceService_AddMemberIdempotent(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	owner := createWorkspaceTestUser(t, env.db, "owner@example.com")
	member := createWorkspaceTestUser(t, env.db, "member@example.com")
	ws := createWorkspaceForUser(t, env.wsService, "Board", owner.ID)

	require.NoError(t, env.wsService.AddMember(ws.ID, member.ID, models.RoleUser))
	require.NoError(t, env.wsService.AddMember(ws.ID, member.ID, models.RoleUser))

	var count int64
	require.NoError(t, env.db.Model(&models.WorkspaceMember{}).
		Where("workspace_id = ?", ws.ID).Count(&count).Error)
	require.EqualValues(t, 2, count) // owner + member, no duplicate row
}

func TestWorkspaceHandler_DeleteWorkspace_Cascades(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	owner := createWorkspaceTestUser(t, env.db, "owner@example.com")
	invitee := createWorkspaceTestUser(t, env.db, "invitee@example.com")
	ws := createWorkspaceForUser(t, env.wsService, "Doomed", owner.ID)

	task := &models.Task{Title: "Task", Status: models.TaskStatusTodo, WorkspaceID: ws.ID, CreatorID: owner.ID}
	require.NoError(t, env.db.Create(task).Error)
	require.NoError(t, env.db.Create(&models.TaskAssignment{TaskID: task.ID, UserID: owner.ID}).Error)
	require.NoError(t, env.db.Create(&models.TaskNote{TaskID: task.ID, AuthorID: owner.ID, Content: "note"}).Error)
	require.NoError(t, env.db.Create(&models.TokenInvite{WorkspaceID: ws.ID, Token: "tok", ExpiresAt: time.Now().Add(time.Hour), MaxUses: 1, CreatedBy: owner.ID}).Error)
	require.NoError(t, env.db.Create(&models.PendingInvite{UserID: invitee.ID, WorkspaceID: ws.ID, InviterID: owner.ID, ExpiresAt: time.Now().Add(time.Hour)}).Error)

	c, w := wsTestContext(http.MethodDelete, "/api/workspaces/1", nil, owner.ID)
	setWorkspaceContext(c, *ws, models.WorkspaceMember{WorkspaceID: ws.ID, UserID: owner.ID, Role: models.RoleOwner})
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	env.handler.DeleteWorkspace(c)

	require.Equal(t, http.StatusOK, w.Code)

	for _, model := range []interface{}{
		&models.WorkspaceMember{},
		&models.TokenInvite{},
		&models.PendingInvite{},
	} {
		var count int64
		require.NoError(t, env.db.Model(model).Where("workspace_id = ?", ws.ID).Count(&count).Error)
		require.Zero(t, count)
	}

	var noteCount, assignmentCount int64
	require.NoError(t, env.db.Model(&models.TaskNote{}).Where("task_id = ?", task.ID).Count(&noteCount).Error)
	require.NoError(t, env.db.Model(&models.TaskAssignment{}).Where("task_id = ?", task.ID).Count(&assignmentCount).Error)
	require.Zero(t, noteCount)
	require.Zero(t, assignmentCount)

	// Hard deletes: no tombstone rows survive.
	require.ErrorIs(t, env.db.Unscoped().First(&models.Workspace{}, ws.ID).Error, gorm.ErrRecordNotFound)
	require.ErrorIs(t, env.db.Unscoped().First(&models.Task{}, task.ID).Error, gorm.ErrRecordNotFound)
}
