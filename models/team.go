package models

import "gorm.io/gorm"

// Team member roles. The TeamMember row is the sole source of truth for
// authorization decisions below the platform level.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
	RoleGuest  = "GUEST"
)

// ValidRole reports whether role is one of the known team roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleMember, RoleGuest:
		return true
	}
	return false
}

// Team represents a collaboration space owning projects and members
type Team struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	// Human-shareable code used to join the team
	InviteCode string `gorm:"uniqueIndex;not null" json:"invite_code"`
	OwnerID    uint   `gorm:"not null;index" json:"owner_id"`

	// Relations
	Owner   User         `json:"owner,omitempty"`
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// TeamMember represents team members and their roles
type TeamMember struct {
	gorm.Model
	TeamID uint `gorm:"not null;uniqueIndex:idx_team_user" json:"team_id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_team_user" json:"user_id"`

	Role string `gorm:"default:'MEMBER'" json:"role"` // ADMIN, MEMBER, GUEST

	// Relations
	Team Team `json:"-"`
	User User `json:"user,omitempty"`
}
