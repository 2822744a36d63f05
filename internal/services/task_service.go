package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotWorkspaceMember  = errors.New("user is not a member of the workspace")
	ErrTaskNotFound        = errors.New("task not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrInvalidTaskStatus   = errors.New("status must be TODO, IN_PROGRESS or DONE")
	ErrInvalidTaskAssignee = errors.New("one or more users are not members of the workspace")
	ErrNoteContentRequired = errors.New("note content cannot be empty")
)

// TaskService handles task lifecycle business logic.
type TaskService struct {
	taskRepo repository.TaskRepository
	wsRepo   repository.WorkspaceRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, wsRepo repository.WorkspaceRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		wsRepo:   wsRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Status      models.TaskStatus
	WorkspaceID uint64
	CreatorID   uint64
	AssigneeIDs []uint64
}

// CreateTask creates a new task. When no assignees are supplied, every
// current workspace member is assigned, in join order.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	if err := s.ensureWorkspaceMember(input.WorkspaceID, input.CreatorID); err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !models.ValidTaskStatus(input.Status) {
		return nil, ErrInvalidTaskStatus
	}

	assigneeIDs := uniqueUint64(input.AssigneeIDs)
	if len(assigneeIDs) == 0 {
		members, err := s.wsRepo.ListMembers(input.WorkspaceID)
		if err != nil {
			return nil, fmt.Errorf("failed to list workspace members: %w", err)
		}
		for _, m := range members {
			assigneeIDs = append(assigneeIDs, m.UserID)
		}
	} else {
		if err := s.verifyAssignees(assigneeIDs, input.WorkspaceID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Title:       input.Title,
		Status:      input.Status,
		WorkspaceID: input.WorkspaceID,
		CreatorID:   input.CreatorID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.taskRepo.ReplaceAssignees(task.ID, assigneeIDs); err != nil {
		return nil, fmt.Errorf("failed to assign users to task: %w", err)
	}

	return s.getWithRelations(task.ID)
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID       uint64
	WorkspaceID  *uint64
	AssignedToMe bool
	Status       *models.TaskStatus
	Page         int
	PageSize     int
}

// ListTasks returns tasks accessible to a user based on the provided filters
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	wsIDs, err := s.resolveAccessibleWorkspaceIDs(input.UserID, input.WorkspaceID)
	if err != nil {
		return nil, 0, err
	}

	if len(wsIDs) == 0 {
		return []models.Task{}, 0, nil
	}

	if input.Status != nil && !models.ValidTaskStatus(*input.Status) {
		return nil, 0, ErrInvalidTaskStatus
	}

	filter := repository.TaskFilter{
		WorkspaceIDs: wsIDs,
		Status:       input.Status,
		Page:         input.Page,
		PageSize:     input.PageSize,
	}
	if input.AssignedToMe {
		filter.AssignedUserID = &input.UserID
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with its creator, assignees and notes
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.getWithRelations(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// SetStatus overwrites a task's status unconditionally. Any status is
// reachable from any other; the board allows reverse transitions.
func (s *TaskService) SetStatus(taskID uint64, status models.TaskStatus) (*models.Task, error) {
	if !models.ValidTaskStatus(status) {
		return nil, ErrInvalidTaskStatus
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	task.Status = status
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return task, nil
}

// UpdateTaskInput represents input for editing a task. Title and assignees
// are overwritten together.
type UpdateTaskInput struct {
	Title       string
	AssigneeIDs []uint64
}

// UpdateTask overwrites a task's title and assignee set.
func (s *TaskService) UpdateTask(taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	assigneeIDs := uniqueUint64(input.AssigneeIDs)
	if len(assigneeIDs) > 0 {
		if err := s.verifyAssignees(assigneeIDs, task.WorkspaceID); err != nil {
			return nil, err
		}
	}

	task.Title = input.Title
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if err := s.taskRepo.ReplaceAssignees(task.ID, assigneeIDs); err != nil {
		return nil, fmt.Errorf("failed to update assignees: %w", err)
	}

	return s.getWithRelations(task.ID)
}

// AppendNote appends a note to a task. Notes are append-only.
func (s *TaskService) AppendNote(taskID, authorID uint64, content string) (*models.TaskNote, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrNoteContentRequired
	}

	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	note := &models.TaskNote{
		TaskID:   taskID,
		AuthorID: authorID,
		Content:  content,
	}

	if err := s.taskRepo.AppendNote(note); err != nil {
		return nil, fmt.Errorf("failed to append note: %w", err)
	}

	return note, nil
}

// ListNotes returns a task's notes in creation order
func (s *TaskService) ListNotes(taskID uint64) ([]models.TaskNote, error) {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	notes, err := s.taskRepo.ListNotes(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, nil
}

// DeleteTask hard-deletes a task; its assignments and notes go with it.
func (s *TaskService) DeleteTask(taskID uint64) error {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// resolveAccessibleWorkspaceIDs returns the workspace IDs the user can access
func (s *TaskService) resolveAccessibleWorkspaceIDs(userID uint64, workspaceID *uint64) ([]uint64, error) {
	if workspaceID != nil {
		if err := s.ensureWorkspaceMember(*workspaceID, userID); err != nil {
			return nil, err
		}
		return []uint64{*workspaceID}, nil
	}

	memberships, err := s.wsRepo.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workspace memberships: %w", err)
	}

	wsIDs := make([]uint64, 0, len(memberships))
	for _, m := range memberships {
		wsIDs = append(wsIDs, m.WorkspaceID)
	}

	return wsIDs, nil
}

// ensureWorkspaceMember verifies that a user belongs to a workspace
func (s *TaskService) ensureWorkspaceMember(wsID, userID uint64) error {
	_, err := s.wsRepo.FindMember(wsID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotWorkspaceMember
		}
		return fmt.Errorf("failed to verify workspace membership: %w", err)
	}
	return nil
}

// verifyAssignees checks that every user ID is a member of the workspace
func (s *TaskService) verifyAssignees(userIDs []uint64, workspaceID uint64) error {
	count, err := s.taskRepo.CountMembersByIDs(userIDs, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to verify assignees: %w", err)
	}
	if int(count) != len(userIDs) {
		return ErrInvalidTaskAssignee
	}
	return nil
}

// getWithRelations loads a task with its creator, ordered assignees and notes
func (s *TaskService) getWithRelations(taskID uint64) (*models.Task, error) {
	return s.taskRepo.FindByID(taskID, "Creator", "Assignments", "Assignments.User", "Notes")
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
