package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/bomaolad/team-sync-be/services"
	"github.com/bomaolad/team-sync-be/utils"
)

type TeamController struct {
	Teams  *services.TeamService
	Logger *log.Logger
}

func NewTeamController(teams *services.TeamService, logger *log.Logger) *TeamController {
	return &TeamController{Teams: teams, Logger: logger}
}

type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

type UpdateTeamRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type JoinTeamRequest struct {
	InviteCode string `json:"invite_code" validate:"required,len=8"`
}

type InviteMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=ADMIN MEMBER GUEST"`
}

type SetMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ADMIN MEMBER GUEST"`
}

func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input CreateTeamRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	team, err := tc.Teams.Create(userID, services.CreateTeamInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	teams, err := tc.Teams.ListForUser(userID)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(teams))
}

func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	team, err := tc.Teams.Get(utils.ParseUint(c.Params("id")), userID)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) UpdateTeam(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input UpdateTeamRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	team, err := tc.Teams.Update(utils.ParseUint(c.Params("id")), userID, services.UpdateTeamInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := tc.Teams.Delete(utils.ParseUint(c.Params("id")), userID); err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Team deleted"})
}

func (tc *TeamController) JoinTeam(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input JoinTeamRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	member, err := tc.Teams.JoinByInviteCode(userID, input.InviteCode)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(member))
}

func (tc *TeamController) GetMembers(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	members, err := tc.Teams.GetMembers(utils.ParseUint(c.Params("id")), userID)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(members))
}

func (tc *TeamController) InviteMember(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input InviteMemberRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	member, err := tc.Teams.InviteMember(utils.ParseUint(c.Params("id")), userID, input.Email, input.Role)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(member))
}

func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	err := tc.Teams.RemoveMember(
		utils.ParseUint(c.Params("id")),
		userID,
		utils.ParseUint(c.Params("memberId")),
	)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Member removed"})
}

func (tc *TeamController) UpdateMemberRole(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input SetMemberRoleRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	member, err := tc.Teams.SetMemberRole(
		utils.ParseUint(c.Params("id")),
		userID,
		utils.ParseUint(c.Params("memberId")),
		input.Role,
	)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(member))
}

func (tc *TeamController) RegenerateInviteCode(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	team, err := tc.Teams.RegenerateInviteCode(utils.ParseUint(c.Params("id")), userID)
	if err != nil {
		return utils.FailureResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(team))
}
