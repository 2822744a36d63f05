package models

import "time"

// PendingInvite is an email-addressed invitation awaiting accept or reject by
// a specific user. At most one may exist per (user, workspace) pair; expired
// entries are pruned lazily on read. Workspace title and inviter email are
// denormalized so the recipient can render the invite without extra lookups.
type PendingInvite struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	UserID         uint64    `gorm:"not null;uniqueIndex:idx_pending_user_workspace" json:"user_id"`
	WorkspaceID    uint64    `gorm:"not null;uniqueIndex:idx_pending_user_workspace" json:"workspace_id"`
	WorkspaceTitle string    `gorm:"type:varchar(255)" json:"workspace_title"`
	InviterID      uint64    `gorm:"not null" json:"inviter_id"`
	InviterEmail   string    `gorm:"type:varchar(255)" json:"inviter_email"`
	ExpiresAt      time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
}
