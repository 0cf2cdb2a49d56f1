package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bomaolad/team-sync-be/models"
)

// Resolver implements authz.Resolver against the database. Tasks resolve to
// their owning team through their project (two-hop lookup).
type Resolver struct {
	DB *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{DB: db}
}

func (r *Resolver) TeamIDOfProject(projectID uint) (uint, error) {
	var project models.Project
	err := r.DB.Select("id", "team_id").First(&project, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("project %d: %w", projectID, models.ErrNotFound)
		}
		return 0, storageErr(err)
	}
	return project.TeamID, nil
}

func (r *Resolver) TeamIDOfTask(taskID uint) (uint, error) {
	var task models.Task
	err := r.DB.Select("id", "project_id").First(&task, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("task %d: %w", taskID, models.ErrNotFound)
		}
		return 0, storageErr(err)
	}
	return r.TeamIDOfProject(task.ProjectID)
}

func (r *Resolver) RoleOf(teamID, userID uint) (string, bool, error) {
	var member models.TeamMember
	err := r.DB.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, storageErr(err)
	}
	return member.Role, true, nil
}
