package models

import "time"

type WorkspaceRole string

const (
	RoleOwner WorkspaceRole = "owner"
	RoleAdmin WorkspaceRole = "admin"
	RoleUser  WorkspaceRole = "user"
)

// CanManage reports whether the role may manage members and invites.
func (r WorkspaceRole) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

type WorkspaceMember struct {
	WorkspaceID uint64        `gorm:"primarykey" json:"workspace_id"`
	UserID      uint64        `gorm:"primarykey" json:"user_id"`
	Role        WorkspaceRole `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt    time.Time     `json:"joined_at"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
