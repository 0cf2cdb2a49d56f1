package models

import (
	"gorm.io/gorm"
)

// User represents a user account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Profile information
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Username  string  `gorm:"index" json:"username"`
	JobTitle  string  `json:"job_title"`
	AvatarURL *string `json:"avatar_url,omitempty"`

	// Platform-wide role, not used for team-level decisions
	Role string `gorm:"default:'MEMBER'" json:"role"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`
}
