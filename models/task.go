package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses
const (
	TaskTodo        = "TODO"
	TaskInProgress  = "IN_PROGRESS"
	TaskUnderReview = "UNDER_REVIEW"
	TaskRecheck     = "RECHECK"
	TaskDone        = "DONE"
)

// Task priorities
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Task belongs to exactly one project and has exactly one creator
type Task struct {
	gorm.Model
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	ProjectID   uint   `gorm:"not null;index" json:"project_id"`
	CreatorID   uint   `gorm:"not null" json:"creator_id"`

	Status   string `gorm:"default:'TODO'" json:"status"`     // TODO, IN_PROGRESS, UNDER_REVIEW, RECHECK, DONE
	Priority string `gorm:"default:'MEDIUM'" json:"priority"` // LOW, MEDIUM, HIGH

	StartDate *time.Time `json:"start_date,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	// Relations
	Project   Project   `json:"project,omitempty"`
	Creator   User      `json:"creator,omitempty"`
	Assignees []User    `gorm:"many2many:task_assignees" json:"assignees,omitempty"`
	Subtasks  []Subtask `gorm:"foreignKey:TaskID" json:"subtasks,omitempty"`
}

// Subtask is a simple checklist item owned by a task
type Subtask struct {
	gorm.Model
	Title       string `gorm:"not null" json:"title"`
	IsCompleted bool   `gorm:"default:false" json:"is_completed"`
	TaskID      uint   `gorm:"not null;index" json:"task_id"`
}
