package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bomaolad/team-sync-be/services"
	"github.com/bomaolad/team-sync-be/utils"
)

type TaskController struct {
	Tasks  *services.TaskService
	Logger *log.Logger
}

func NewTaskController(tasks *services.TaskService, logger *log.Logger) *TaskController {
	return &TaskController{Tasks: tasks, Logger: logger}
}

type CreateTaskRequest struct {
	ProjectID   uint       `json:"project_id" validate:"required"`
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	StartDate   *time.Time `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeIDs []uint     `json:"assignee_ids"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	StartDate   *time.Time `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeIDs *[]uint    `json:"assignee_ids"`
}

type UpdateTaskStatusRequest struct {
	Status          string `json:"status" validate:"required,oneof=TODO IN_PROGRESS UNDER_REVIEW RECHECK DONE"`
	RejectionReason string `json:"rejection_reason" validate:"omitempty,max=2000"`
}

type CreateSubtaskRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type UpdateSubtaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	IsCompleted *bool   `json:"is_completed"`
}

func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input CreateTaskRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	task, err := tc.Tasks.Create(userID, services.CreateTaskInput{
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		StartDate:   input.StartDate,
		DueDate:     input.DueDate,
		AssigneeIDs: input.AssigneeIDs,
	})
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(task))
}

func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	tasks, err := tc.Tasks.List(userID, services.TaskQuery{
		ProjectID:  utils.ParseUint(c.Query("project_id")),
		AssigneeID: utils.ParseUint(c.Query("assignee_id")),
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
	})
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(tasks))
}

func (tc *TaskController) GetMyTasks(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	tasks, err := tc.Tasks.ListForAssignee(userID)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(tasks))
}

func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	task, err := tc.Tasks.Get(utils.ParseUint(c.Params("id")), userID)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(task))
}

func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input UpdateTaskRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	task, err := tc.Tasks.Update(utils.ParseUint(c.Params("id")), userID, services.UpdateTaskInput{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		StartDate:   input.StartDate,
		DueDate:     input.DueDate,
		AssigneeIDs: input.AssigneeIDs,
	})
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(task))
}

func (tc *TaskController) UpdateTaskStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input UpdateTaskStatusRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	task, requiresComment, err := tc.Tasks.UpdateStatus(
		utils.ParseUint(c.Params("id")),
		userID,
		input.Status,
		input.RejectionReason,
	)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success":          true,
		"data":             task,
		"requires_comment": requiresComment,
	})
}

func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := tc.Tasks.Delete(utils.ParseUint(c.Params("id")), userID); err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted"})
}

func (tc *TaskController) GetSubtasks(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	subtasks, err := tc.Tasks.Subtasks(utils.ParseUint(c.Params("id")), userID)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(subtasks))
}

func (tc *TaskController) CreateSubtask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input CreateSubtaskRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	subtask, err := tc.Tasks.CreateSubtask(utils.ParseUint(c.Params("id")), userID, input.Title)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(subtask))
}

func (tc *TaskController) UpdateSubtask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input UpdateSubtaskRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	subtask, err := tc.Tasks.UpdateSubtask(utils.ParseUint(c.Params("subtaskId")), userID, services.UpdateSubtaskInput{
		Title:       input.Title,
		IsCompleted: input.IsCompleted,
	})
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(subtask))
}

func (tc *TaskController) DeleteSubtask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := tc.Tasks.DeleteSubtask(utils.ParseUint(c.Params("subtaskId")), userID); err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Subtask deleted"})
}
