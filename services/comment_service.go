package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/bomaolad/team-sync-be/authz"
	"github.com/bomaolad/team-sync-be/models"
	"github.com/bomaolad/team-sync-be/realtime"
)

// CommentService orchestrates task comments. Comments are append-only and
// deletable only by their author.
type CommentService struct {
	DB     *gorm.DB
	Engine *authz.Engine
	Hub    *realtime.Hub
	Logger *log.Logger
}

func NewCommentService(db *gorm.DB, engine *authz.Engine, hub *realtime.Hub, logger *log.Logger) *CommentService {
	return &CommentService{
		DB:     db,
		Engine: engine,
		Hub:    hub,
		Logger: logger,
	}
}

// ListByTask returns a task's comments in chronological order. Requires
// membership.
func (cs *CommentService) ListByTask(taskID, userID uint) ([]models.Comment, error) {
	if err := authorize(cs.Engine, userID, authz.TaskResource(taskID), authz.ActionView); err != nil {
		return nil, err
	}

	var comments []models.Comment
	err := cs.DB.Preload("User").Where("task_id = ?", taskID).
		Order("created_at ASC").Find(&comments).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return comments, nil
}

// Create appends a comment and publishes commentAdded to the project scope.
func (cs *CommentService) Create(taskID, userID uint, content string) (*models.Comment, error) {
	if err := authorize(cs.Engine, userID, authz.TaskResource(taskID), authz.ActionEdit); err != nil {
		return nil, err
	}

	var task models.Task
	if err := cs.DB.Select("id", "project_id").First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task %d: %w", taskID, models.ErrNotFound)
		}
		return nil, storageErr(err)
	}

	comment := models.Comment{
		TaskID:  taskID,
		UserID:  userID,
		Content: content,
	}
	if err := cs.DB.Create(&comment).Error; err != nil {
		return nil, storageErr(err)
	}
	cs.DB.Preload("User").First(&comment, comment.ID)

	cs.Hub.Publish(realtime.ProjectScope(task.ProjectID), realtime.EventCommentAdded,
		realtime.CommentAddedPayload{TaskID: taskID, Comment: comment})
	return &comment, nil
}

// Delete removes a comment. Only its author may delete it.
func (cs *CommentService) Delete(commentID, userID uint) error {
	var comment models.Comment
	err := cs.DB.First(&comment, commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("comment %d: %w", commentID, models.ErrNotFound)
		}
		return storageErr(err)
	}
	if comment.UserID != userID {
		return fmt.Errorf("cannot delete another user's comment: %w", models.ErrForbidden)
	}
	if err := cs.DB.Delete(&comment).Error; err != nil {
		return storageErr(err)
	}
	return nil
}
