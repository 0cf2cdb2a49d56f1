package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/bomaolad/team-sync-be/services"
	"github.com/bomaolad/team-sync-be/utils"
)

type AttachmentController struct {
	Attachments *services.AttachmentService
	Logger      *log.Logger
}

func NewAttachmentController(attachments *services.AttachmentService, logger *log.Logger) *AttachmentController {
	return &AttachmentController{Attachments: attachments, Logger: logger}
}

type CreateAttachmentRequest struct {
	FileName string `json:"file_name" validate:"required,max=255"`
	FilePath string `json:"file_path" validate:"required,max=1000"`
	MimeType string `json:"mime_type" validate:"omitempty,max=255"`
	FileSize int64  `json:"file_size" validate:"omitempty,min=0"`
}

func (ac *AttachmentController) GetAttachments(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	attachments, err := ac.Attachments.ListByTask(utils.ParseUint(c.Params("taskId")), userID)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(attachments))
}

func (ac *AttachmentController) CreateAttachment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input CreateAttachmentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	attachment, err := ac.Attachments.Create(utils.ParseUint(c.Params("taskId")), userID, services.CreateAttachmentInput{
		FileName: input.FileName,
		FilePath: input.FilePath,
		MimeType: input.MimeType,
		FileSize: input.FileSize,
	})
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(attachment))
}

func (ac *AttachmentController) DeleteAttachment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := ac.Attachments.Delete(utils.ParseUint(c.Params("id")), userID); err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Attachment deleted"})
}
