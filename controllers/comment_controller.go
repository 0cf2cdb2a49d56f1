package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/bomaolad/team-sync-be/services"
	"github.com/bomaolad/team-sync-be/utils"
)

type CommentController struct {
	Comments *services.CommentService
	Logger   *log.Logger
}

func NewCommentController(comments *services.CommentService, logger *log.Logger) *CommentController {
	return &CommentController{Comments: comments, Logger: logger}
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

func (cc *CommentController) GetComments(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	comments, err := cc.Comments.ListByTask(utils.ParseUint(c.Params("taskId")), userID)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(comments))
}

func (cc *CommentController) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input CreateCommentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	comment, err := cc.Comments.Create(utils.ParseUint(c.Params("taskId")), userID, input.Content)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(comment))
}

func (cc *CommentController) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := cc.Comments.Delete(utils.ParseUint(c.Params("id")), userID); err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
