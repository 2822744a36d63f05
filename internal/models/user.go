package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string         `gorm:"type:varchar(100)" json:"first_name"`
	LastName     string         `gorm:"type:varchar(100)" json:"last_name"`
	Photo        string         `gorm:"type:varchar(512)" json:"photo"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Memberships    []WorkspaceMember `gorm:"foreignKey:UserID" json:"-"`
	PendingInvites []PendingInvite   `gorm:"foreignKey:UserID" json:"-"`
	CreatedTasks   []Task            `gorm:"foreignKey:CreatorID" json:"-"`
}
