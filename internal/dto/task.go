package dto

import (
	"time"

	"github.com/workboard/workboard-api/internal/models"
)

// TaskNoteDTO represents a note in API responses
type TaskNoteDTO struct {
	ID        uint64    `json:"id"`
	AuthorID  uint64    `json:"author_id"`
	Author    *UserDTO  `json:"author,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID              uint64            `json:"id"`
	Title           string            `json:"title"`
	Status          models.TaskStatus `json:"status"`
	WorkspaceID     uint64            `json:"workspace_id"`
	CreatorID       uint64            `json:"creator_id"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Creator         *UserDTO          `json:"creator,omitempty"`
	AssignedUserIDs []uint64          `json:"assigned_user_ids"`
	Assignees       []UserDTO         `json:"assignees,omitempty"`
	Notes           []TaskNoteDTO     `json:"notes,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
}

// ToTaskNoteDTO converts a TaskNote model to DTO
func ToTaskNoteDTO(note models.TaskNote) TaskNoteDTO {
	dto := TaskNoteDTO{
		ID:        note.ID,
		AuthorID:  note.AuthorID,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
	}

	if note.Author.ID != 0 {
		author := ToUserDTO(note.Author)
		dto.Author = &author
	}

	return dto
}

// ToTaskNoteDTOs converts a slice of notes
func ToTaskNoteDTOs(notes []models.TaskNote) []TaskNoteDTO {
	dtos := make([]TaskNoteDTO, len(notes))
	for i, note := range notes {
		dtos[i] = ToTaskNoteDTO(note)
	}
	return dtos
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:              task.ID,
		Title:           task.Title,
		Status:          task.Status,
		WorkspaceID:     task.WorkspaceID,
		CreatorID:       task.CreatorID,
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
		AssignedUserIDs: make([]uint64, 0, len(task.Assignments)),
	}

	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}

	for _, assignment := range task.Assignments {
		dto.AssignedUserIDs = append(dto.AssignedUserIDs, assignment.UserID)
		if assignment.User.ID != 0 {
			dto.Assignees = append(dto.Assignees, ToUserDTO(assignment.User))
		}
	}

	if len(task.Notes) > 0 {
		dto.Notes = ToTaskNoteDTOs(task.Notes)
	}

	return dto
}
