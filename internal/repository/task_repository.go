package repository

import (
	"github.com/workboard/workboard-api/internal/database"
	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		if p == "Assignments" {
			// Assignee order is part of the task's state
			query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
				return db.Order("task_assignments.position ASC")
			})
			continue
		}
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	if len(filter.WorkspaceIDs) == 0 {
		return []models.Task{}, 0, nil
	}

	query := r.db.Model(&models.Task{}).Where("tasks.workspace_id IN ?", filter.WorkspaceIDs)

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AssignedUserID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *filter.AssignedUserID)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.
		Preload("Creator").
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("task_assignments.position ASC")
		}).
		Preload("Assignments.User").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete deletes a task together with its assignments and notes
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskNote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// ReplaceAssignees overwrites a task's assignee set, preserving order
func (r *GormTaskRepository) ReplaceAssignees(taskID uint64, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		if len(userIDs) == 0 {
			return nil
		}

		assignments := make([]models.TaskAssignment, len(userIDs))
		for i, userID := range userIDs {
			assignments[i] = models.TaskAssignment{
				TaskID:   taskID,
				UserID:   userID,
				Position: i,
			}
		}

		return tx.Create(&assignments).Error
	})
}

// AppendNote appends a note to a task
func (r *GormTaskRepository) AppendNote(note *models.TaskNote) error {
	return r.db.Create(note).Error
}

// ListNotes lists a task's notes in creation order
func (r *GormTaskRepository) ListNotes(taskID uint64) ([]models.TaskNote, error) {
	var notes []models.TaskNote
	if err := r.db.Preload("Author").
		Where("task_id = ?", taskID).
		Order("id ASC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// CountMembersByIDs counts how many of the given user IDs are workspace members
func (r *GormTaskRepository) CountMembersByIDs(userIDs []uint64, workspaceID uint64) (int64, error) {
	var count int64

	err := r.db.Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id IN ?", workspaceID, userIDs).
		Count(&count).Error

	return count, err
}
