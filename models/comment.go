package models

import "gorm.io/gorm"

// Comment is an append-only child of a task, owned by its author.
// A rejection comment carries the justification for a RECHECK transition.
type Comment struct {
	gorm.Model
	TaskID  uint   `gorm:"not null;index" json:"task_id"`
	UserID  uint   `gorm:"not null" json:"user_id"`
	Content string `gorm:"type:text;not null" json:"content"`

	IsRejection     bool `gorm:"default:false" json:"is_rejection"`
	IsSystemMessage bool `gorm:"default:false" json:"is_system_message"`

	// Relations
	User User `json:"user,omitempty"`
}

// Attachment stores file metadata for a task. The upload itself is handled
// outside the core; only the record lives here.
type Attachment struct {
	gorm.Model
	TaskID       uint   `gorm:"not null;index" json:"task_id"`
	UploadedByID uint   `gorm:"not null" json:"uploaded_by_id"`
	FileName     string `gorm:"not null" json:"file_name"`
	FilePath     string `gorm:"not null" json:"file_path"`
	MimeType     string `json:"mime_type"`
	FileSize     int64  `json:"file_size"`

	// Relations
	UploadedBy User `json:"uploaded_by,omitempty"`
}
