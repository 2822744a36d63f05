package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/workboard/workboard-api/internal/constants"
	"github.com/workboard/workboard-api/internal/database"
	"github.com/workboard/workboard-api/internal/dto"
	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/repository"
	"github.com/workboard/workboard-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
	service *services.TaskService
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TaskNote{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	taskRepo := repository.NewTaskRepository(suite.db)
	wsRepo := repository.NewWorkspaceRepository(suite.db)
	suite.service = services.NewTaskService(taskRepo, wsRepo)
	suite.handler = NewTaskHandler(suite.service)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Email:        email,
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestWorkspace(title string, ownerID uint64) *models.Workspace {
	ws := &models.Workspace{
		Title:   title,
		OwnerID: ownerID,
	}
	suite.db.Create(ws)
	suite.db.Create(&models.WorkspaceMember{
		WorkspaceID: ws.ID,
		UserID:      ownerID,
		Role:        models.RoleOwner,
		JoinedAt:    time.Now(),
	})
	return ws
}

func (suite *TaskHandlerTestSuite) addTestMember(wsID, userID uint64, joined time.Time) {
	suite.db.Create(&models.WorkspaceMember{
		WorkspaceID: wsID,
		UserID:      userID,
		Role:        models.RoleUser,
		JoinedAt:    joined,
	})
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, creatorID, wsID uint64, assigneeIDs []uint64) *models.Task {
	task, err := suite.service.CreateTask(services.CreateTaskInput{
		Title:       title,
		WorkspaceID: wsID,
		CreatorID:   creatorID,
		AssigneeIDs: assigneeIDs,
	})
	suite.Require().NoError(err)
	return task
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

// Helper function to set task context (simulates RequireTaskAccess middleware)
func (suite *TaskHandlerTestSuite) setTaskContext(c *gin.Context, task models.Task) {
	c.Set(constants.ContextKeyTask, task)
}

// TestCreateTask_Success tests creation with an explicit, ordered assignee list
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	user1 := suite.createTestUser("user1@example.com")
	user2 := suite.createTestUser("user2@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user1.ID)
	suite.addTestMember(ws.ID, user2.ID, time.Now())

	requestBody := map[string]interface{}{
		"title":             "New Task",
		"workspace_id":      ws.ID,
		"assigned_user_ids": []uint64{user2.ID, user1.ID},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user1.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Task", response.Title)
	assert.Equal(suite.T(), models.TaskStatusTodo, response.Status)
	assert.Equal(suite.T(), user1.ID, response.CreatorID)
	// Assignee order is the order supplied in the request
	assert.Equal(suite.T(), []uint64{user2.ID, user1.ID}, response.AssignedUserIDs)
}

// TestCreateTask_DefaultsToAllMembers tests assignment when no assignees are given
func (suite *TaskHandlerTestSuite) TestCreateTask_DefaultsToAllMembers() {
	user1 := suite.createTestUser("user1@example.com")
	user2 := suite.createTestUser("user2@example.com")
	user3 := suite.createTestUser("user3@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user1.ID)
	suite.addTestMember(ws.ID, user2.ID, time.Now().Add(time.Second))
	suite.addTestMember(ws.ID, user3.ID, time.Now().Add(2*time.Second))

	requestBody := map[string]interface{}{
		"title":        "Shared Task",
		"workspace_id": ws.ID,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user1.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	// Every current member, in join order
	assert.Equal(suite.T(), []uint64{user1.ID, user2.ID, user3.ID}, response.AssignedUserIDs)
}

// TestCreateTask_NotWorkspaceMember tests creation by a non-member
func (suite *TaskHandlerTestSuite) TestCreateTask_NotWorkspaceMember() {
	user1 := suite.createTestUser("user1@example.com")
	user2 := suite.createTestUser("user2@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user1.ID)

	requestBody := map[string]interface{}{
		"title":        "New Task",
		"workspace_id": ws.ID,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user2.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestCreateTask_AssigneeNotMember tests creation with an outsider assignee
func (suite *TaskHandlerTestSuite) TestCreateTask_AssigneeNotMember() {
	user1 := suite.createTestUser("user1@example.com")
	user2 := suite.createTestUser("user2@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user1.ID)
	// user2 is not a member

	requestBody := map[string]interface{}{
		"title":             "New Task",
		"workspace_id":      ws.ID,
		"assigned_user_ids": []uint64{user2.ID},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user1.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateTask_InvalidStatus tests creation with an unknown status
func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidStatus() {
	user := suite.createTestUser("user@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user.ID)

	requestBody := map[string]interface{}{
		"title":        "New Task",
		"workspace_id": ws.ID,
		"status":       "BLOCKED",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestListTasks_ByWorkspace tests listing scoped to one workspace
func (suite *TaskHandlerTestSuite) TestListTasks_ByWorkspace() {
	user := suite.createTestUser("user@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user.ID)
	other := suite.createTestWorkspace("Other Workspace", user.ID)
	suite.createTestTask("In Scope", user.ID, ws.ID, nil)
	suite.createTestTask("Out of Scope", user.ID, other.ID, nil)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user.ID)
	c.Request.URL.RawQuery = "workspace_id=1"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskListResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Tasks, 1)
	assert.Equal(suite.T(), "In Scope", response.Tasks[0].Title)
	assert.EqualValues(suite.T(), 1, response.TotalCount)
}

// TestListTasks_StatusFilter tests the status query parameter
func (suite *TaskHandlerTestSuite) TestListTasks_StatusFilter() {
	user := suite.createTestUser("user@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user.ID)
	suite.createTestTask("Open", user.ID, ws.ID, nil)
	done := suite.createTestTask("Closed", user.ID, ws.ID, nil)
	_, err := suite.service.SetStatus(done.ID, models.TaskStatusDone)
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user.ID)
	c.Request.URL.RawQuery = "status=DONE"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskListResponse
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Tasks, 1)
	assert.Equal(suite.T(), "Closed", response.Tasks[0].Title)
}

// TestListTasks_AssignedToMe tests the assigned_to_me query parameter
func (suite *TaskHandlerTestSuite) TestListTasks_AssignedToMe() {
	user1 := suite.createTestUser("user1@example.com")
	user2 := suite.createTestUser("user2@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user1.ID)
	suite.addTestMember(ws.ID, user2.ID, time.Now())
	suite.createTestTask("Mine", user1.ID, ws.ID, []uint64{user2.ID})
	suite.createTestTask("Not Mine", user1.ID, ws.ID, []uint64{user1.ID})

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user2.ID)
	c.Request.URL.RawQuery = "assigned_to_me=true"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskListResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Tasks, 1)
	assert.Equal(suite.T(), "Mine", response.Tasks[0].Title)
}

// TestGetTask_Success tests retrieval with relations
func (suite *TaskHandlerTestSuite) TestGetTask_Success() {
	user := suite.createTestUser("user@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user.ID)
	task := suite.createTestTask("Test Task", user.ID, ws.ID, nil)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, user.ID)
	suite.setTaskContext(c, *task)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), task.ID, response.ID)
	assert.Equal(suite.T(), task.Title, response.Title)
	assert.Equal(suite.T(), []uint64{user.ID}, response.AssignedUserIDs)
}

// TestGetTask_NotFoundInContext tests when task is not in context
func (suite *TaskHandlerTestSuite) TestGetTask_NotFoundInContext() {
	user := suite.createTestUser("user@example.com")
	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, user.ID)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)
}

// TestSetStatus_RoundTrips tests that every transition, including reverse
// ones, reads back exactly
func (suite *TaskHandlerTestSuite) TestSetStatus_RoundTrips() {
	user := suite.createTestUser("user@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user.ID)
	task := suite.createTestTask("Test Task", user.ID, ws.ID, nil)

	transitions := []models.TaskStatus{
		models.TaskStatusInProgress,
		models.TaskStatusDone,
		models.TaskStatusInProgress, // moving a card back is allowed
		models.TaskStatusTodo,
		models.TaskStatusDone, // skipping a column is allowed
	}

	for _, status := range transitions {
		requestBody := map[string]interface{}{"status": status}
		body, _ := json.Marshal(requestBody)

		c, w := suite.createAuthContext("POST", "/api/tasks/1/status", body, user.ID)
		suite.setTaskContext(c, *task)

		suite.handler.SetStatus(c)

		assert.Equal(suite.T(), http.StatusOK, w.Code)

		var stored models.Task
		suite.Require().NoError(suite.db.First(&stored, task.ID).Error)
		assert.Equal(suite.T(), status, stored.Status)
	}
}

// TestSetStatus_Invalid tests an unknown status value
func (suite *TaskHandlerTestSuite) TestSetStatus_Invalid() {
	user := suite.createTestUser("user@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user.ID)
	task := suite.createTestTask("Test Task", user.ID, ws.ID, nil)

	requestBody := map[string]interface{}{"status": "ARCHIVED"}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/status", body, user.ID)
	suite.setTaskContext(c, *task)

	suite.handler.SetStatus(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateTask_OverwritesAssignees tests that an update replaces the
// assignee set with the supplied order
func (suite *TaskHandlerTestSuite) TestUpdateTask_OverwritesAssignees() {
	user1 := suite.createTestUser("user1@example.com")
	user2 := suite.createTestUser("user2@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user1.ID)
	suite.addTestMember(ws.ID, user2.ID, time.Now())
	task := suite.createTestTask("Old Title", user1.ID, ws.ID, []uint64{user1.ID})

	requestBody := map[string]interface{}{
		"title":             "Updated Title",
		"assigned_user_ids": []uint64{user2.ID},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user1.ID)
	suite.setTaskContext(c, *task)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Updated Title", response.Title)
	assert.Equal(suite.T(), []uint64{user2.ID}, response.AssignedUserIDs)
}

// TestAppendNote_And_ListNotes tests the append-only note log
func (suite *TaskHandlerTestSuite) TestAppendNote_And_ListNotes() {
	user := suite.createTestUser("user@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user.ID)
	task := suite.createTestTask("Test Task", user.ID, ws.ID, nil)

	for _, content := range []string{"first", "second"} {
		requestBody := map[string]interface{}{"content": content}
		body, _ := json.Marshal(requestBody)

		c, w := suite.createAuthContext("POST", "/api/tasks/1/notes", body, user.ID)
		suite.setTaskContext(c, *task)

		suite.handler.AppendNote(c)

		assert.Equal(suite.T(), http.StatusCreated, w.Code)
	}

	c, w := suite.createAuthContext("GET", "/api/tasks/1/notes", nil, user.ID)
	suite.setTaskContext(c, *task)

	suite.handler.ListNotes(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string][]dto.TaskNoteDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	notes := response["notes"]
	assert.Len(suite.T(), notes, 2)
	assert.Equal(suite.T(), "first", notes[0].Content)
	assert.Equal(suite.T(), "second", notes[1].Content)
}

// TestAppendNote_EmptyContent tests that blank notes are rejected
func (suite *TaskHandlerTestSuite) TestAppendNote_EmptyContent() {
	user := suite.createTestUser("user@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user.ID)
	task := suite.createTestTask("Test Task", user.ID, ws.ID, nil)

	requestBody := map[string]interface{}{"content": "   "}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/notes", body, user.ID)
	suite.setTaskContext(c, *task)

	suite.handler.AppendNote(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestDeleteTask_RemovesNotesAndAssignments tests the hard delete
func (suite *TaskHandlerTestSuite) TestDeleteTask_RemovesNotesAndAssignments() {
	user := suite.createTestUser("user@example.com")
	ws := suite.createTestWorkspace("Test Workspace", user.ID)
	task := suite.createTestTask("Task to Delete", user.ID, ws.ID, nil)

	_, err := suite.service.AppendNote(task.ID, user.ID, "doomed note")
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, user.ID)
	suite.setTaskContext(c, *task)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Task deleted successfully", response["message"])

	// Hard delete: the row is gone, not tombstoned.
	var deletedTask models.Task
	err = suite.db.Unscoped().First(&deletedTask, task.ID).Error
	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)

	var noteCount, assignmentCount int64
	suite.db.Model(&models.TaskNote{}).Where("task_id = ?", task.ID).Count(&noteCount)
	suite.db.Model(&models.TaskAssignment{}).Where("task_id = ?", task.ID).Count(&assignmentCount)
	assert.Zero(suite.T(), noteCount)
	assert.Zero(suite.T(), assignmentCount)
}

// TestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
