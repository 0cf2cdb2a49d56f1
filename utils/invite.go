package utils

import (
	"strings"

	"github.com/google/uuid"
)

// InviteCodeLength is the length of generated team invite codes.
const InviteCodeLength = 8

// NewInviteCode generates a human-shareable 8-character team invite code.
// Uniqueness is enforced by the database; callers regenerate on collision.
func NewInviteCode() string {
	return strings.ToUpper(uuid.NewString()[:InviteCodeLength])
}
