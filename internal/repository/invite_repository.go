package repository

import (
	"errors"
	"time"

	"github.com/workboard/workboard-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInviteExhausted is returned when a redemption loses the race for an
	// invite's last remaining use.
	ErrInviteExhausted = errors.New("invite repository: use ceiling reached")
)

// GormInviteRepository is a GORM implementation of InviteRepository
type GormInviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &GormInviteRepository{db: db}
}

// CreateTokenInvite persists a new token invite
func (r *GormInviteRepository) CreateTokenInvite(invite *models.TokenInvite) error {
	return r.db.Create(invite).Error
}

// FindTokenInvite looks up the unique invite record by token
func (r *GormInviteRepository) FindTokenInvite(token string) (*models.TokenInvite, error) {
	var invite models.TokenInvite
	if err := r.db.Where("token = ?", token).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// RedeemTokenInvite applies the membership insert and the use-count increment
// as one transaction. The increment is conditional on the ceiling so that two
// concurrent redemptions of a one-use invite cannot both succeed.
func (r *GormInviteRepository) RedeemTokenInvite(inviteID uint64, member *models.WorkspaceMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.TokenInvite{}).
			Where("id = ? AND used_count < max_uses", inviteID).
			Update("used_count", gorm.Expr("used_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInviteExhausted
		}

		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "workspace_id"}, {Name: "user_id"}},
				DoNothing: true,
			}).
			Create(member).Error
	})
}

// CreatePendingInvite appends a pending invite to a user's profile
func (r *GormInviteRepository) CreatePendingInvite(invite *models.PendingInvite) error {
	return r.db.Create(invite).Error
}

// FindPendingInvite finds the pending invite for a (user, workspace) pair
func (r *GormInviteRepository) FindPendingInvite(userID, workspaceID uint64) (*models.PendingInvite, error) {
	var invite models.PendingInvite
	if err := r.db.Where("user_id = ? AND workspace_id = ?", userID, workspaceID).
		First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// ListPendingInvites lists a user's pending invites
func (r *GormInviteRepository) ListPendingInvites(userID uint64) ([]models.PendingInvite, error) {
	var invites []models.PendingInvite
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

// DeletePendingInvite removes the pending invite for a (user, workspace) pair
func (r *GormInviteRepository) DeletePendingInvite(userID, workspaceID uint64) (bool, error) {
	result := r.db.Where("user_id = ? AND workspace_id = ?", userID, workspaceID).
		Delete(&models.PendingInvite{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// PruneExpiredPendingInvites removes a user's expired pending invites
func (r *GormInviteRepository) PruneExpiredPendingInvites(userID uint64) error {
	return r.db.Where("user_id = ? AND expires_at <= ?", userID, time.Now()).
		Delete(&models.PendingInvite{}).Error
}

// AcceptPendingInvite adds the member and removes the pending invite atomically
func (r *GormInviteRepository) AcceptPendingInvite(member *models.WorkspaceMember, userID, workspaceID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "workspace_id"}, {Name: "user_id"}},
				DoNothing: true,
			}).
			Create(member).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ? AND workspace_id = ?", userID, workspaceID).
			Delete(&models.PendingInvite{}).Error
	})
}
