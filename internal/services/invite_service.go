package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/workboard/workboard-api/internal/constants"
	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/repository"
	"github.com/workboard/workboard-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInviteNotFound          = errors.New("invite not found")
	ErrInviteExpired           = errors.New("invite has expired")
	ErrInviteUseLimitReached   = errors.New("invite use limit exceeded")
	ErrInviteHoursOutOfRange   = errors.New("validity must be between 1 and 168 hours")
	ErrInviteMaxUsesOutOfRange = errors.New("max uses must be between 1 and 100")
	ErrAlreadyWorkspaceMember  = errors.New("user is already a member of this workspace")
	ErrInvitedUserNotFound     = errors.New("no user registered with this email")
	ErrDuplicatePendingInvite  = errors.New("an invite for this workspace is already pending")
	ErrPendingInviteNotFound   = errors.New("pending invite not found")
)

// InviteService covers both invitation flows: shareable token links and
// email-addressed pending invites.
type InviteService struct {
	inviteRepo repository.InviteRepository
	wsRepo     repository.WorkspaceRepository
	userRepo   repository.UserRepository
}

// NewInviteService creates a new InviteService.
func NewInviteService(inviteRepo repository.InviteRepository, wsRepo repository.WorkspaceRepository, userRepo repository.UserRepository) *InviteService {
	return &InviteService{
		inviteRepo: inviteRepo,
		wsRepo:     wsRepo,
		userRepo:   userRepo,
	}
}

// CreateTokenInviteInput represents parameters to issue an invite link.
type CreateTokenInviteInput struct {
	WorkspaceID   uint64
	ValidityHours int
	MaxUses       int
	CreatedBy     uint64
}

// CreateTokenInvite issues a new invite link for a workspace and returns the
// invite together with the URL path the token is embedded in.
func (s *InviteService) CreateTokenInvite(input CreateTokenInviteInput) (*models.TokenInvite, string, error) {
	if input.ValidityHours < constants.InviteMinValidityHours || input.ValidityHours > constants.InviteMaxValidityHours {
		return nil, "", ErrInviteHoursOutOfRange
	}
	if input.MaxUses < constants.InviteMinUses || input.MaxUses > constants.InviteMaxUses {
		return nil, "", ErrInviteMaxUsesOutOfRange
	}

	invite := &models.TokenInvite{
		WorkspaceID: input.WorkspaceID,
		Token:       utils.GenerateInviteToken(),
		ExpiresAt:   time.Now().Add(time.Duration(input.ValidityHours) * time.Hour),
		MaxUses:     input.MaxUses,
		UsedCount:   0,
		CreatedBy:   input.CreatedBy,
	}

	if err := s.inviteRepo.CreateTokenInvite(invite); err != nil {
		return nil, "", fmt.Errorf("failed to create invite: %w", err)
	}

	return invite, constants.InviteURLPrefix + invite.Token, nil
}

// ResolveTokenInvite looks up an invite by token and evaluates the three
// acceptance gates in order: existence, expiry, use ceiling. It never
// mutates state.
func (s *InviteService) ResolveTokenInvite(token string) (*models.TokenInvite, error) {
	invite, err := s.inviteRepo.FindTokenInvite(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}

	if invite.Expired(time.Now()) {
		return nil, ErrInviteExpired
	}
	if invite.Exhausted() {
		return nil, ErrInviteUseLimitReached
	}

	return invite, nil
}

// ResolveTokenInviteWithWorkspace resolves an invite and loads the workspace
// it targets, for previewing the invite before acceptance.
func (s *InviteService) ResolveTokenInviteWithWorkspace(token string) (*models.TokenInvite, *models.Workspace, error) {
	invite, err := s.ResolveTokenInvite(token)
	if err != nil {
		return nil, nil, err
	}

	ws, err := s.wsRepo.FindByID(invite.WorkspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrWorkspaceNotFound
		}
		return nil, nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	return invite, ws, nil
}

// AcceptTokenInvite redeems an invite for a user: the membership insert and
// the use-count increment happen in one transaction.
func (s *InviteService) AcceptTokenInvite(token string, userID uint64) (*models.Workspace, error) {
	invite, err := s.ResolveTokenInvite(token)
	if err != nil {
		return nil, err
	}

	ws, err := s.wsRepo.FindByID(invite.WorkspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	if _, err := s.wsRepo.FindMember(ws.ID, userID); err == nil {
		return nil, ErrAlreadyWorkspaceMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.WorkspaceMember{
		WorkspaceID: ws.ID,
		UserID:      userID,
		Role:        models.RoleUser,
		JoinedAt:    time.Now(),
	}

	if err := s.inviteRepo.RedeemTokenInvite(invite.ID, member); err != nil {
		if errors.Is(err, repository.ErrInviteExhausted) {
			return nil, ErrInviteUseLimitReached
		}
		return nil, fmt.Errorf("failed to redeem invite: %w", err)
	}

	return ws, nil
}

// SendPendingInviteInput represents parameters for an email-addressed invite.
type SendPendingInviteInput struct {
	WorkspaceID uint64
	TargetEmail string
	InviterID   uint64
}

// SendPendingInvite appends a pending invite to the target user's profile.
// The target's expired invites are pruned first; a second invite to the same
// workspace while one is outstanding is rejected.
func (s *InviteService) SendPendingInvite(input SendPendingInviteInput) (*models.PendingInvite, error) {
	ws, err := s.wsRepo.FindByID(input.WorkspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(input.TargetEmail))
	target, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitedUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	inviter, err := s.userRepo.FindByID(input.InviterID)
	if err != nil {
		return nil, fmt.Errorf("failed to find inviter: %w", err)
	}

	if err := s.inviteRepo.PruneExpiredPendingInvites(target.ID); err != nil {
		return nil, fmt.Errorf("failed to prune expired invites: %w", err)
	}

	if _, err := s.inviteRepo.FindPendingInvite(target.ID, ws.ID); err == nil {
		return nil, ErrDuplicatePendingInvite
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check pending invites: %w", err)
	}

	invite := &models.PendingInvite{
		UserID:         target.ID,
		WorkspaceID:    ws.ID,
		WorkspaceTitle: ws.Title,
		InviterID:      inviter.ID,
		InviterEmail:   inviter.Email,
		ExpiresAt:      time.Now().Add(constants.PendingInviteTTL),
	}

	if err := s.inviteRepo.CreatePendingInvite(invite); err != nil {
		return nil, fmt.Errorf("failed to create pending invite: %w", err)
	}

	return invite, nil
}

// ListPendingInvites returns a user's outstanding invites, pruning expired
// entries first.
func (s *InviteService) ListPendingInvites(userID uint64) ([]models.PendingInvite, error) {
	if err := s.inviteRepo.PruneExpiredPendingInvites(userID); err != nil {
		return nil, fmt.Errorf("failed to prune expired invites: %w", err)
	}

	invites, err := s.inviteRepo.ListPendingInvites(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invites: %w", err)
	}

	return invites, nil
}

// AcceptPendingInvite joins the user to the workspace and consumes the
// pending invite in one transaction.
func (s *InviteService) AcceptPendingInvite(userID, workspaceID uint64) error {
	invite, err := s.inviteRepo.FindPendingInvite(userID, workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPendingInviteNotFound
		}
		return fmt.Errorf("failed to find pending invite: %w", err)
	}

	if !time.Now().Before(invite.ExpiresAt) {
		if _, err := s.inviteRepo.DeletePendingInvite(userID, workspaceID); err != nil {
			return fmt.Errorf("failed to drop expired invite: %w", err)
		}
		return ErrInviteExpired
	}

	member := &models.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        models.RoleUser,
		JoinedAt:    time.Now(),
	}

	if err := s.inviteRepo.AcceptPendingInvite(member, userID, workspaceID); err != nil {
		return fmt.Errorf("failed to accept pending invite: %w", err)
	}

	return nil
}

// RejectPendingInvite removes the pending invite without joining.
func (s *InviteService) RejectPendingInvite(userID, workspaceID uint64) error {
	removed, err := s.inviteRepo.DeletePendingInvite(userID, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to reject pending invite: %w", err)
	}
	if !removed {
		return ErrPendingInviteNotFound
	}

	return nil
}
