package models

import "gorm.io/gorm"

// Project statuses
const (
	ProjectActive   = "ACTIVE"
	ProjectArchived = "ARCHIVED"
)

// Project belongs to exactly one team
type Project struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	TeamID      uint   `gorm:"not null;index" json:"team_id"`
	Status      string `gorm:"default:'ACTIVE'" json:"status"` // ACTIVE, ARCHIVED

	// Relations
	Team Team `json:"team,omitempty"`
}
