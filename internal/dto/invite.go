package dto

import (
	"time"

	"github.com/workboard/workboard-api/internal/models"
)

// TokenInviteDTO represents an invite link in API responses. The raw token is
// only exposed through the URL path returned at creation.
type TokenInviteDTO struct {
	ID          uint64    `json:"id"`
	WorkspaceID uint64    `json:"workspace_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	MaxUses     int       `json:"max_uses"`
	UsedCount   int       `json:"used_count"`
	CreatedBy   uint64    `json:"created_by"`
}

// CreatedInviteDTO is the issuer's response: invite metadata plus the URL
// path embedding the token.
type CreatedInviteDTO struct {
	TokenInviteDTO
	URL string `json:"url"`
}

// InvitePreviewDTO is what a visitor resolving an invite link sees before
// accepting.
type InvitePreviewDTO struct {
	WorkspaceID    uint64    `json:"workspace_id"`
	WorkspaceTitle string    `json:"workspace_title"`
	ExpiresAt      time.Time `json:"expires_at"`
	RemainingUses  int       `json:"remaining_uses"`
}

// PendingInviteDTO represents an email-addressed invite awaiting a response
type PendingInviteDTO struct {
	WorkspaceID    uint64    `json:"workspace_id"`
	WorkspaceTitle string    `json:"workspace_title"`
	InviterID      uint64    `json:"inviter_id"`
	InviterEmail   string    `json:"inviter_email"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// ToTokenInviteDTO converts a TokenInvite model to DTO
func ToTokenInviteDTO(invite models.TokenInvite) TokenInviteDTO {
	return TokenInviteDTO{
		ID:          invite.ID,
		WorkspaceID: invite.WorkspaceID,
		ExpiresAt:   invite.ExpiresAt,
		MaxUses:     invite.MaxUses,
		UsedCount:   invite.UsedCount,
		CreatedBy:   invite.CreatedBy,
	}
}

// ToCreatedInviteDTO converts a freshly issued invite and its URL path to DTO
func ToCreatedInviteDTO(invite models.TokenInvite, url string) CreatedInviteDTO {
	return CreatedInviteDTO{
		TokenInviteDTO: ToTokenInviteDTO(invite),
		URL:            url,
	}
}

// ToInvitePreviewDTO converts a resolved invite and its workspace to DTO
func ToInvitePreviewDTO(invite models.TokenInvite, ws models.Workspace) InvitePreviewDTO {
	return InvitePreviewDTO{
		WorkspaceID:    ws.ID,
		WorkspaceTitle: ws.Title,
		ExpiresAt:      invite.ExpiresAt,
		RemainingUses:  invite.MaxUses - invite.UsedCount,
	}
}

// ToPendingInviteDTO converts a PendingInvite model to DTO
func ToPendingInviteDTO(invite models.PendingInvite) PendingInviteDTO {
	return PendingInviteDTO{
		WorkspaceID:    invite.WorkspaceID,
		WorkspaceTitle: invite.WorkspaceTitle,
		InviterID:      invite.InviterID,
		InviterEmail:   invite.InviterEmail,
		ExpiresAt:      invite.ExpiresAt,
	}
}

// ToPendingInviteDTOs converts a slice of pending invites
func ToPendingInviteDTOs(invites []models.PendingInvite) []PendingInviteDTO {
	dtos := make([]PendingInviteDTO, len(invites))
	for i, invite := range invites {
		dtos[i] = ToPendingInviteDTO(invite)
	}
	return dtos
}
