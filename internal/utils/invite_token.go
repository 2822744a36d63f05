package utils

import "github.com/google/uuid"

// GenerateInviteToken returns a random invite token. Uniqueness is not
// enforced beyond the token-space size; the column's unique index catches
// the astronomically unlikely collision.
func GenerateInviteToken() string {
	return uuid.NewString()
}
