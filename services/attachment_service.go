package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/bomaolad/team-sync-be/authz"
	"github.com/bomaolad/team-sync-be/models"
)

type CreateAttachmentInput struct {
	FileName string
	FilePath string
	MimeType string
	FileSize int64
}

// AttachmentService manages file metadata records on tasks. The actual
// upload pipeline lives outside the core.
type AttachmentService struct {
	DB     *gorm.DB
	Engine *authz.Engine
	Logger *log.Logger
}

func NewAttachmentService(db *gorm.DB, engine *authz.Engine, logger *log.Logger) *AttachmentService {
	return &AttachmentService{
		DB:     db,
		Engine: engine,
		Logger: logger,
	}
}

// ListByTask returns a task's attachments, newest first. Requires membership.
func (as *AttachmentService) ListByTask(taskID, userID uint) ([]models.Attachment, error) {
	if err := authorize(as.Engine, userID, authz.TaskResource(taskID), authz.ActionView); err != nil {
		return nil, err
	}

	var attachments []models.Attachment
	err := as.DB.Preload("UploadedBy").Where("task_id = ?", taskID).
		Order("created_at DESC").Find(&attachments).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return attachments, nil
}

// Create records an attachment owned by the uploader.
func (as *AttachmentService) Create(taskID, userID uint, in CreateAttachmentInput) (*models.Attachment, error) {
	if err := authorize(as.Engine, userID, authz.TaskResource(taskID), authz.ActionEdit); err != nil {
		return nil, err
	}

	attachment := models.Attachment{
		TaskID:       taskID,
		UploadedByID: userID,
		FileName:     in.FileName,
		FilePath:     in.FilePath,
		MimeType:     in.MimeType,
		FileSize:     in.FileSize,
	}
	if err := as.DB.Create(&attachment).Error; err != nil {
		return nil, storageErr(err)
	}
	return &attachment, nil
}

// Delete removes an attachment. Only its uploader may delete it.
func (as *AttachmentService) Delete(attachmentID, userID uint) error {
	var attachment models.Attachment
	err := as.DB.First(&attachment, attachmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("attachment %d: %w", attachmentID, models.ErrNotFound)
		}
		return storageErr(err)
	}
	if attachment.UploadedByID != userID {
		return fmt.Errorf("cannot delete another user's attachment: %w", models.ErrForbidden)
	}
	if err := as.DB.Delete(&attachment).Error; err != nil {
		return storageErr(err)
	}
	return nil
}
