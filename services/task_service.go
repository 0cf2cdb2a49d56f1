package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bomaolad/team-sync-be/authz"
	"github.com/bomaolad/team-sync-be/models"
	"github.com/bomaolad/team-sync-be/realtime"
	"github.com/bomaolad/team-sync-be/workflow"
)

type CreateTaskInput struct {
	ProjectID   uint
	Title       string
	Description string
	Priority    string
	StartDate   *time.Time
	DueDate     *time.Time
	AssigneeIDs []uint
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	StartDate   *time.Time
	DueDate     *time.Time
	AssigneeIDs *[]uint
}

type UpdateSubtaskInput struct {
	Title       *string
	IsCompleted *bool
}

type TaskQuery struct {
	ProjectID  uint
	AssigneeID uint
	Status     string
	Priority   string
}

// ProjectProgress summarizes task completion inside a project.
type ProjectProgress struct {
	Total       int64 `json:"total"`
	Completed   int64 `json:"completed"`
	InProgress  int64 `json:"in_progress"`
	UnderReview int64 `json:"under_review"`
	Todo        int64 `json:"todo"`
	Percentage  int   `json:"percentage"`
}

// TaskService orchestrates task mutations, including the status workflow and
// its rejection-comment obligation.
type TaskService struct {
	DB     *gorm.DB
	Engine *authz.Engine
	Hub    *realtime.Hub
	Logger *log.Logger
}

func NewTaskService(db *gorm.DB, engine *authz.Engine, hub *realtime.Hub, logger *log.Logger) *TaskService {
	return &TaskService{
		DB:     db,
		Engine: engine,
		Hub:    hub,
		Logger: logger,
	}
}

// Create adds a task to a project and publishes taskCreated to the project
// scope. Requires edit rights on the project's team.
func (s *TaskService) Create(userID uint, in CreateTaskInput) (*models.Task, error) {
	if err := authorize(s.Engine, userID, authz.ProjectResource(in.ProjectID), authz.ActionEdit); err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	task := models.Task{
		Title:       in.Title,
		Description: in.Description,
		ProjectID:   in.ProjectID,
		CreatorID:   userID,
		Status:      models.TaskTodo,
		Priority:    priority,
		StartDate:   in.StartDate,
		DueDate:     in.DueDate,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		return replaceAssignees(tx, &task, in.AssigneeIDs)
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, storageErr(err)
	}

	s.DB.Preload("Assignees").Preload("Creator").First(&task, task.ID)
	s.Hub.Publish(realtime.ProjectScope(task.ProjectID), realtime.EventTaskCreated, task)
	return &task, nil
}

// List returns tasks inside the caller's teams, newest first, with optional
// project, assignee, status and priority filters.
func (s *TaskService) List(userID uint, q TaskQuery) ([]models.Task, error) {
	memberTeams := s.DB.Model(&models.TeamMember{}).Select("team_id").
		Where("user_id = ? AND deleted_at IS NULL", userID)

	query := s.DB.Model(&models.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id AND projects.deleted_at IS NULL").
		Where("projects.team_id IN (?)", memberTeams).
		Preload("Assignees").Preload("Creator")

	if q.ProjectID != 0 {
		query = query.Where("tasks.project_id = ?", q.ProjectID)
	}
	if q.AssigneeID != 0 {
		query = query.Joins("JOIN task_assignees ON task_assignees.task_id = tasks.id").
			Where("task_assignees.user_id = ?", q.AssigneeID)
	}
	if q.Status != "" {
		query = query.Where("tasks.status = ?", q.Status)
	}
	if q.Priority != "" {
		query = query.Where("tasks.priority = ?", q.Priority)
	}

	var tasks []models.Task
	if err := query.Order("tasks.created_at DESC").Find(&tasks).Error; err != nil {
		return nil, storageErr(err)
	}
	return tasks, nil
}

// ListForAssignee returns the tasks assigned to the user, soonest due first.
func (s *TaskService) ListForAssignee(userID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := s.DB.Model(&models.Task{}).
		Joins("JOIN task_assignees ON task_assignees.task_id = tasks.id").
		Where("task_assignees.user_id = ?", userID).
		Preload("Assignees").Preload("Creator").Preload("Project").
		Order("tasks.due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return tasks, nil
}

// Get returns a task with its relations. Requires membership.
func (s *TaskService) Get(taskID, userID uint) (*models.Task, error) {
	if err := authorize(s.Engine, userID, authz.TaskResource(taskID), authz.ActionView); err != nil {
		return nil, err
	}
	return s.load(taskID)
}

// Update edits task fields and, when provided, replaces the assignee set.
// Publishes taskUpdated.
func (s *TaskService) Update(taskID, userID uint, in UpdateTaskInput) (*models.Task, error) {
	if err := authorize(s.Engine, userID, authz.TaskResource(taskID), authz.ActionEdit); err != nil {
		return nil, err
	}

	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.StartDate != nil {
		task.StartDate = in.StartDate
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Assignees").Save(task).Error; err != nil {
			return err
		}
		if in.AssigneeIDs != nil {
			return replaceAssignees(tx, task, *in.AssigneeIDs)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, storageErr(err)
	}

	task, err = s.load(taskID)
	if err != nil {
		return nil, err
	}
	s.Hub.Publish(realtime.ProjectScope(task.ProjectID), realtime.EventTaskUpdated, task)
	return task, nil
}

// UpdateStatus runs the proposed transition through the workflow, persists
// the accepted status and, for RECHECK, creates the rejection comment in the
// same transaction. statusChanged is published first, then commentAdded, so
// subscribers observe them in that order.
func (s *TaskService) UpdateStatus(taskID, userID uint, status, rejectionReason string) (*models.Task, bool, error) {
	if err := authorize(s.Engine, userID, authz.TaskResource(taskID), authz.ActionEdit); err != nil {
		return nil, false, err
	}

	task, err := s.load(taskID)
	if err != nil {
		return nil, false, err
	}

	result, err := workflow.ProposeTransition(task.Status, status, rejectionReason)
	if err != nil {
		return nil, false, err
	}

	var comment models.Comment
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(task).Update("status", status).Error; err != nil {
			return err
		}
		if result.RequiresComment {
			comment = models.Comment{
				TaskID:      task.ID,
				UserID:      userID,
				Content:     result.Reason,
				IsRejection: true,
			}
			return tx.Create(&comment).Error
		}
		return nil
	})
	if err != nil {
		return nil, false, storageErr(err)
	}
	task.Status = status

	logrus.WithFields(logrus.Fields{
		"task_id": task.ID,
		"status":  status,
		"user_id": userID,
	}).Info("task status changed")

	scope := realtime.ProjectScope(task.ProjectID)
	s.Hub.Publish(scope, realtime.EventStatusChanged, realtime.StatusChangedPayload{
		TaskID:    task.ID,
		Status:    status,
		ChangedBy: userID,
	})
	if result.RequiresComment {
		s.Hub.Publish(scope, realtime.EventCommentAdded, realtime.CommentAddedPayload{
			TaskID:  task.ID,
			Comment: comment,
		})
	}
	return task, result.RequiresComment, nil
}

// Delete removes a task and its children. Team admins only. Publishes
// taskDeleted.
func (s *TaskService) Delete(taskID, userID uint) error {
	if err := authorize(s.Engine, userID, authz.TaskResource(taskID), authz.ActionDelete); err != nil {
		return err
	}

	task, err := s.load(taskID)
	if err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM task_assignees WHERE task_id = ?", taskID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, taskID).Error
	})
	if err != nil {
		return storageErr(err)
	}

	s.Hub.Publish(realtime.ProjectScope(task.ProjectID), realtime.EventTaskDeleted,
		realtime.TaskDeletedPayload{TaskID: taskID})
	return nil
}

// Subtasks lists a task's subtasks in creation order. Requires membership.
func (s *TaskService) Subtasks(taskID, userID uint) ([]models.Subtask, error) {
	if err := authorize(s.Engine, userID, authz.TaskResource(taskID), authz.ActionView); err != nil {
		return nil, err
	}

	var subtasks []models.Subtask
	err := s.DB.Where("task_id = ?", taskID).Order("created_at ASC").Find(&subtasks).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return subtasks, nil
}

// CreateSubtask adds a checklist item to a task. Requires edit rights.
func (s *TaskService) CreateSubtask(taskID, userID uint, title string) (*models.Subtask, error) {
	if err := authorize(s.Engine, userID, authz.TaskResource(taskID), authz.ActionEdit); err != nil {
		return nil, err
	}

	subtask := models.Subtask{
		Title:  title,
		TaskID: taskID,
	}
	if err := s.DB.Create(&subtask).Error; err != nil {
		return nil, storageErr(err)
	}
	return &subtask, nil
}

// UpdateSubtask edits a subtask's title or completion flag. Requires edit
// rights on the owning task.
func (s *TaskService) UpdateSubtask(subtaskID, userID uint, in UpdateSubtaskInput) (*models.Subtask, error) {
	subtask, err := s.loadSubtask(subtaskID)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.Engine, userID, authz.TaskResource(subtask.TaskID), authz.ActionEdit); err != nil {
		return nil, err
	}

	if in.Title != nil {
		subtask.Title = *in.Title
	}
	if in.IsCompleted != nil {
		subtask.IsCompleted = *in.IsCompleted
	}
	if err := s.DB.Save(subtask).Error; err != nil {
		return nil, storageErr(err)
	}
	return subtask, nil
}

// DeleteSubtask removes a subtask. Requires edit rights on the owning task.
func (s *TaskService) DeleteSubtask(subtaskID, userID uint) error {
	subtask, err := s.loadSubtask(subtaskID)
	if err != nil {
		return err
	}
	if err := authorize(s.Engine, userID, authz.TaskResource(subtask.TaskID), authz.ActionEdit); err != nil {
		return err
	}
	if err := s.DB.Delete(subtask).Error; err != nil {
		return storageErr(err)
	}
	return nil
}

// Progress summarizes a project's tasks per status. Requires membership.
func (s *TaskService) Progress(projectID, userID uint) (*ProjectProgress, error) {
	if err := authorize(s.Engine, userID, authz.ProjectResource(projectID), authz.ActionView); err != nil {
		return nil, err
	}

	progress := &ProjectProgress{}
	counts := []struct {
		status string
		dest   *int64
	}{
		{"", &progress.Total},
		{models.TaskDone, &progress.Completed},
		{models.TaskInProgress, &progress.InProgress},
		{models.TaskUnderReview, &progress.UnderReview},
		{models.TaskTodo, &progress.Todo},
	}
	for _, c := range counts {
		query := s.DB.Model(&models.Task{}).Where("project_id = ?", projectID)
		if c.status != "" {
			query = query.Where("status = ?", c.status)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, storageErr(err)
		}
	}
	if progress.Total > 0 {
		progress.Percentage = int(math.Round(float64(progress.Completed) / float64(progress.Total) * 100))
	}
	return progress, nil
}

func (s *TaskService) load(taskID uint) (*models.Task, error) {
	var task models.Task
	err := s.DB.Preload("Assignees").Preload("Creator").First(&task, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task %d: %w", taskID, models.ErrNotFound)
		}
		return nil, storageErr(err)
	}
	return &task, nil
}

func (s *TaskService) loadSubtask(subtaskID uint) (*models.Subtask, error) {
	var subtask models.Subtask
	err := s.DB.First(&subtask, subtaskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subtask %d: %w", subtaskID, models.ErrNotFound)
		}
		return nil, storageErr(err)
	}
	return &subtask, nil
}

// replaceAssignees swaps the task's assignee set for the given user ids,
// verifying every id resolves to an existing user.
func replaceAssignees(tx *gorm.DB, task *models.Task, ids []uint) error {
	if ids == nil {
		return nil
	}
	var users []models.User
	if len(ids) > 0 {
		if err := tx.Find(&users, ids).Error; err != nil {
			return err
		}
		if len(users) != len(ids) {
			return fmt.Errorf("assignee does not exist: %w", models.ErrNotFound)
		}
	}
	return tx.Model(task).Association("Assignees").Replace(users)
}
