package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrWorkspaceNotFound       = errors.New("workspace not found")
	ErrInvalidWorkspaceTitle   = errors.New("workspace title cannot be empty")
	ErrInvalidMemberRole       = errors.New("role must be admin or user")
	ErrCannotChangeOwnerRole   = errors.New("the owner's role is fixed at creation")
	ErrCannotRemoveOwner       = errors.New("the owner cannot be removed from the workspace")
	ErrCannotRemoveYourself    = errors.New("cannot remove yourself from the workspace")
	ErrWorkspaceMemberNotFound = errors.New("workspace member not found")
)

// WorkspaceService provides business logic for workspace and membership
// operations.
type WorkspaceService struct {
	wsRepo repository.WorkspaceRepository
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(wsRepo repository.WorkspaceRepository) *WorkspaceService {
	return &WorkspaceService{
		wsRepo: wsRepo,
	}
}

// CreateWorkspaceInput represents parameters to create a new workspace.
type CreateWorkspaceInput struct {
	Title       string
	Description string
	Color       string
	OwnerID     uint64
}

// CreateWorkspace creates a new workspace and assigns the owner.
func (s *WorkspaceService) CreateWorkspace(input CreateWorkspaceInput) (*models.Workspace, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidWorkspaceTitle
	}

	ws := &models.Workspace{
		Title:       input.Title,
		Description: input.Description,
		Color:       input.Color,
		OwnerID:     input.OwnerID,
	}

	member := &models.WorkspaceMember{
		UserID:   input.OwnerID,
		Role:     models.RoleOwner,
		JoinedAt: time.Now(),
	}

	if err := s.wsRepo.CreateWithOwner(ws, member); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return ws, nil
}

// ListWorkspacesForUser returns workspaces the user belongs to.
func (s *WorkspaceService) ListWorkspacesForUser(userID uint64) ([]models.WorkspaceMember, error) {
	memberships, err := s.wsRepo.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return memberships, nil
}

// GetWorkspaceWithMembers returns a workspace and all of its members.
func (s *WorkspaceService) GetWorkspaceWithMembers(wsID uint64) (*models.Workspace, []models.WorkspaceMember, error) {
	ws, err := s.wsRepo.FindByID(wsID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrWorkspaceNotFound
		}
		return nil, nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	members, err := s.wsRepo.ListMembers(wsID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workspace members: %w", err)
	}

	return ws, members, nil
}

// UpdateWorkspaceInput holds the fields an update may touch. Nil fields are
// left unchanged.
type UpdateWorkspaceInput struct {
	Title       *string
	Description *string
	Color       *string
}

// UpdateWorkspace updates a workspace's title, description or color.
func (s *WorkspaceService) UpdateWorkspace(wsID uint64, input UpdateWorkspaceInput) (*models.Workspace, error) {
	ws, err := s.wsRepo.FindByID(wsID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrInvalidWorkspaceTitle
		}
		ws.Title = *input.Title
	}
	if input.Description != nil {
		ws.Description = *input.Description
	}
	if input.Color != nil {
		ws.Color = *input.Color
	}

	if err := s.wsRepo.Update(ws); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}

	return ws, nil
}

// DeleteWorkspace removes a workspace together with its members, invites,
// tasks, assignments and notes.
func (s *WorkspaceService) DeleteWorkspace(wsID uint64) error {
	if _, err := s.wsRepo.FindByID(wsID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceNotFound
		}
		return fmt.Errorf("failed to find workspace: %w", err)
	}

	if err := s.wsRepo.Delete(wsID); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	return nil
}

// AddMember adds a user to a workspace. Adding an existing member is a no-op.
// The owner role cannot be granted this way.
func (s *WorkspaceService) AddMember(wsID, userID uint64, role models.WorkspaceRole) error {
	if role != models.RoleAdmin && role != models.RoleUser {
		return ErrInvalidMemberRole
	}

	member := &models.WorkspaceMember{
		WorkspaceID: wsID,
		UserID:      userID,
		Role:        role,
		JoinedAt:    time.Now(),
	}

	if err := s.wsRepo.AddMember(member); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	return nil
}

// RemoveMember removes a member from the workspace. Removing a user who is
// not a member is a no-op. The owner cannot be removed.
func (s *WorkspaceService) RemoveMember(wsID, actorID, targetID uint64) error {
	if targetID == actorID {
		return ErrCannotRemoveYourself
	}

	ws, err := s.wsRepo.FindByID(wsID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceNotFound
		}
		return fmt.Errorf("failed to find workspace: %w", err)
	}

	if ws.OwnerID == targetID {
		return ErrCannotRemoveOwner
	}

	if err := s.wsRepo.RemoveMember(wsID, targetID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// SetMemberRole changes a member's role between admin and user. Setting the
// role of a user who is not a member is a no-op. The owner's role is not
// mutable through this path.
func (s *WorkspaceService) SetMemberRole(wsID, targetID uint64, role models.WorkspaceRole) error {
	if role != models.RoleAdmin && role != models.RoleUser {
		return ErrInvalidMemberRole
	}

	ws, err := s.wsRepo.FindByID(wsID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceNotFound
		}
		return fmt.Errorf("failed to find workspace: %w", err)
	}

	if ws.OwnerID == targetID {
		return ErrCannotChangeOwnerRole
	}

	if _, err := s.wsRepo.UpdateMemberRole(wsID, targetID, role); err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}

	return nil
}
