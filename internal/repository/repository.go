package repository

import (
	"github.com/workboard/workboard-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email address
	FindByEmail(email string) (*models.User, error)

	// Update updates a user's profile fields
	Update(user *models.User) error
}

// WorkspaceRepository defines the interface for workspace data access
type WorkspaceRepository interface {
	// CreateWithOwner creates a workspace and its owner membership within a
	// single transaction.
	CreateWithOwner(ws *models.Workspace, member *models.WorkspaceMember) error

	// FindByID finds a workspace by ID
	FindByID(id uint64) (*models.Workspace, error)

	// Update updates a workspace
	Update(ws *models.Workspace) error

	// Delete deletes a workspace and all related data: members, invites,
	// tasks, their assignments and notes.
	Delete(id uint64) error

	// AddMember inserts a membership row. Inserting an existing
	// (workspace, user) pair is a no-op.
	AddMember(member *models.WorkspaceMember) error

	// RemoveMember deletes a membership row; deleting an absent row is a no-op.
	RemoveMember(workspaceID, userID uint64) error

	// FindMember finds a specific workspace member
	FindMember(workspaceID, userID uint64) (*models.WorkspaceMember, error)

	// UpdateMemberRole sets the role on an existing membership row and
	// reports whether a row was updated.
	UpdateMemberRole(workspaceID, userID uint64, role models.WorkspaceRole) (bool, error)

	// ListMembers lists all members of a workspace
	ListMembers(workspaceID uint64) ([]models.WorkspaceMember, error)

	// ListMembershipsByUserID lists all workspaces a user is a member of
	ListMembershipsByUserID(userID uint64) ([]models.WorkspaceMember, error)
}

// InviteRepository defines the interface for token and pending invite data access
type InviteRepository interface {
	// CreateTokenInvite persists a new token invite
	CreateTokenInvite(invite *models.TokenInvite) error

	// FindTokenInvite looks up the unique invite record by token
	FindTokenInvite(token string) (*models.TokenInvite, error)

	// RedeemTokenInvite adds the member and increments the invite's use count
	// within a single transaction. The increment is guarded by the use
	// ceiling; ErrInviteExhausted is returned when the ceiling was hit by a
	// concurrent redemption.
	RedeemTokenInvite(inviteID uint64, member *models.WorkspaceMember) error

	// CreatePendingInvite appends a pending invite to a user's profile
	CreatePendingInvite(invite *models.PendingInvite) error

	// FindPendingInvite finds the pending invite for a (user, workspace) pair
	FindPendingInvite(userID, workspaceID uint64) (*models.PendingInvite, error)

	// ListPendingInvites lists a user's pending invites
	ListPendingInvites(userID uint64) ([]models.PendingInvite, error)

	// DeletePendingInvite removes the pending invite for a (user, workspace)
	// pair and reports whether a row was deleted.
	DeletePendingInvite(userID, workspaceID uint64) (bool, error)

	// PruneExpiredPendingInvites removes a user's expired pending invites
	PruneExpiredPendingInvites(userID uint64) error

	// AcceptPendingInvite adds the member and removes the pending invite
	// within a single transaction.
	AcceptPendingInvite(member *models.WorkspaceMember, userID, workspaceID uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task together with its assignments and notes
	Delete(id uint64) error

	// ReplaceAssignees overwrites a task's assignee set, preserving the
	// supplied order.
	ReplaceAssignees(taskID uint64, userIDs []uint64) error

	// AppendNote appends a note to a task
	AppendNote(note *models.TaskNote) error

	// ListNotes lists a task's notes in creation order
	ListNotes(taskID uint64) ([]models.TaskNote, error)

	// CountMembersByIDs counts how many of the given user IDs are members of
	// the workspace.
	CountMembersByIDs(userIDs []uint64, workspaceID uint64) (int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	WorkspaceIDs   []uint64
	Status         *models.TaskStatus
	AssignedUserID *uint64
	Page           int
	PageSize       int
}
