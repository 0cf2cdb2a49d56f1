package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/bomaolad/team-sync-be/authz"
	"github.com/bomaolad/team-sync-be/models"
)

type CreateProjectInput struct {
	TeamID      uint
	Name        string
	Description string
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *string
}

type ProjectQuery struct {
	TeamID uint
	Status string
	Search string
}

// ProjectService orchestrates project mutations.
type ProjectService struct {
	DB     *gorm.DB
	Engine *authz.Engine
	Logger *log.Logger
}

func NewProjectService(db *gorm.DB, engine *authz.Engine, logger *log.Logger) *ProjectService {
	return &ProjectService{
		DB:     db,
		Engine: engine,
		Logger: logger,
	}
}

// Create adds a project to a team. Requires edit rights on the team.
func (ps *ProjectService) Create(userID uint, in CreateProjectInput) (*models.Project, error) {
	if err := authorize(ps.Engine, userID, authz.TeamResource(in.TeamID), authz.ActionEdit); err != nil {
		return nil, err
	}

	project := models.Project{
		Name:        in.Name,
		Description: in.Description,
		TeamID:      in.TeamID,
		Status:      models.ProjectActive,
	}
	if err := ps.DB.Create(&project).Error; err != nil {
		return nil, storageErr(err)
	}
	return &project, nil
}

// List returns projects inside the caller's teams, newest first. A user who
// is a member of zero teams sees nothing.
func (ps *ProjectService) List(userID uint, q ProjectQuery) ([]models.Project, error) {
	memberTeams := ps.DB.Model(&models.TeamMember{}).Select("team_id").
		Where("user_id = ? AND deleted_at IS NULL", userID)

	query := ps.DB.Preload("Team").Where("team_id IN (?)", memberTeams)
	if q.TeamID != 0 {
		query = query.Where("team_id = ?", q.TeamID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q.Search)+"%")
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, storageErr(err)
	}
	return projects, nil
}

// Get returns a project. Requires membership in its team.
func (ps *ProjectService) Get(projectID, userID uint) (*models.Project, error) {
	if err := authorize(ps.Engine, userID, authz.ProjectResource(projectID), authz.ActionView); err != nil {
		return nil, err
	}

	var project models.Project
	err := ps.DB.Preload("Team").First(&project, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %d: %w", projectID, models.ErrNotFound)
		}
		return nil, storageErr(err)
	}
	return &project, nil
}

// Update edits a project. Requires edit rights on its team.
func (ps *ProjectService) Update(projectID, userID uint, in UpdateProjectInput) (*models.Project, error) {
	if err := authorize(ps.Engine, userID, authz.ProjectResource(projectID), authz.ActionEdit); err != nil {
		return nil, err
	}

	var project models.Project
	if err := ps.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %d: %w", projectID, models.ErrNotFound)
		}
		return nil, storageErr(err)
	}

	if in.Name != nil {
		project.Name = *in.Name
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.Status != nil {
		project.Status = *in.Status
	}
	if err := ps.DB.Save(&project).Error; err != nil {
		return nil, storageErr(err)
	}
	return &project, nil
}

// Delete removes a project and everything under it. Team admins only.
func (ps *ProjectService) Delete(projectID, userID uint) error {
	if err := authorize(ps.Engine, userID, authz.ProjectResource(projectID), authz.ActionDelete); err != nil {
		return err
	}

	err := ps.DB.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", projectID)

		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM task_assignees WHERE task_id IN (?)", taskIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
	if err != nil {
		return storageErr(err)
	}
	return nil
}
