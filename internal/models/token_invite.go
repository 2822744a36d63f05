package models

import "time"

// TokenInvite is a shareable invite link, redeemable a bounded number of
// times within a bounded validity window. Expiry is the only deactivation;
// invites are never deleted.
type TokenInvite struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	WorkspaceID uint64    `gorm:"not null;index" json:"workspace_id"`
	Token       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"token"`
	ExpiresAt   time.Time `gorm:"not null" json:"expires_at"`
	MaxUses     int       `gorm:"not null" json:"max_uses"`
	UsedCount   int       `gorm:"not null;default:0" json:"used_count"`
	CreatedBy   uint64    `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
}

// Expired reports whether the invite's validity window has passed.
func (i *TokenInvite) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Exhausted reports whether the invite's use ceiling has been reached.
func (i *TokenInvite) Exhausted() bool {
	return i.UsedCount >= i.MaxUses
}
