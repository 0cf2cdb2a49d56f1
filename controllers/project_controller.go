package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/bomaolad/team-sync-be/services"
	"github.com/bomaolad/team-sync-be/utils"
)

type ProjectController struct {
	Projects *services.ProjectService
	Tasks    *services.TaskService
	Logger   *log.Logger
}

func NewProjectController(projects *services.ProjectService, tasks *services.TaskService, logger *log.Logger) *ProjectController {
	return &ProjectController{Projects: projects, Tasks: tasks, Logger: logger}
}

type CreateProjectRequest struct {
	TeamID      uint   `json:"team_id" validate:"required"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Status      *string `json:"status" validate:"omitempty,oneof=ACTIVE ARCHIVED"`
}

func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input CreateProjectRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	project, err := pc.Projects.Create(userID, services.CreateProjectInput{
		TeamID:      input.TeamID,
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(project))
}

func (pc *ProjectController) GetProjects(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	projects, err := pc.Projects.List(userID, services.ProjectQuery{
		TeamID: utils.ParseUint(c.Query("team_id")),
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(projects))
}

func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	project, err := pc.Projects.Get(utils.ParseUint(c.Params("id")), userID)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(project))
}

func (pc *ProjectController) UpdateProject(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input UpdateProjectRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	project, err := pc.Projects.Update(utils.ParseUint(c.Params("id")), userID, services.UpdateProjectInput{
		Name:        input.Name,
		Description: input.Description,
		Status:      input.Status,
	})
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(project))
}

func (pc *ProjectController) DeleteProject(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := pc.Projects.Delete(utils.ParseUint(c.Params("id")), userID); err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Project deleted"})
}

func (pc *ProjectController) GetProjectProgress(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	progress, err := pc.Tasks.Progress(utils.ParseUint(c.Params("id")), userID)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(progress))
}
