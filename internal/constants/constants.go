package constants

import "time"

// Context keys
const (
	ContextKeyUserID          = "user_id"
	ContextKeyWorkspace       = "workspace"
	ContextKeyWorkspaceMember = "workspace_member"
	ContextKeyTask            = "task"
)

// Authentication
const (
	MinPasswordLength = 8
	SessionCookieName = "workboard_session"
)

// Invite bounds
const (
	InviteMinValidityHours = 1
	InviteMaxValidityHours = 168
	InviteMinUses          = 1
	InviteMaxUses          = 100

	// PendingInviteTTL is the fixed validity of an email-addressed invite.
	PendingInviteTTL = 24 * time.Hour
)

// InviteURLPrefix is the client-side path an invite token is embedded in.
const InviteURLPrefix = "/invite/"

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
