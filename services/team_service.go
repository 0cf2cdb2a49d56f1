package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/bomaolad/team-sync-be/authz"
	"github.com/bomaolad/team-sync-be/models"
	"github.com/bomaolad/team-sync-be/utils"
)

const inviteCodeAttempts = 3

type CreateTeamInput struct {
	Name        string
	Description string
}

type UpdateTeamInput struct {
	Name        *string
	Description *string
}

// TeamService orchestrates team mutations. Team update and delete stay
// owner-only; every other check goes through the authorization engine.
type TeamService struct {
	DB      *gorm.DB
	Members *MembershipService
	Engine  *authz.Engine
	Logger  *log.Logger
}

func NewTeamService(db *gorm.DB, members *MembershipService, engine *authz.Engine, logger *log.Logger) *TeamService {
	return &TeamService{
		DB:      db,
		Members: members,
		Engine:  engine,
		Logger:  logger,
	}
}

// Create creates a team and seeds its owner as an ADMIN member in the same
// transaction, so the at-least-one-admin invariant holds from the start.
func (ts *TeamService) Create(userID uint, in CreateTeamInput) (*models.Team, error) {
	var team models.Team

	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		team = models.Team{
			Name:        in.Name,
			Description: in.Description,
			InviteCode:  utils.NewInviteCode(),
			OwnerID:     userID,
		}
		err := ts.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&team).Error; err != nil {
				return err
			}
			return tx.Create(&models.TeamMember{
				TeamID: team.ID,
				UserID: userID,
				Role:   models.RoleAdmin,
			}).Error
		})
		if err == nil {
			return &team, nil
		}
		if !isDuplicate(err) {
			return nil, storageErr(err)
		}
		// Invite code collision, try a fresh one
	}
	return nil, fmt.Errorf("could not allocate a unique invite code: %w", models.ErrConflict)
}

// ListForUser returns every team the user is a member of.
func (ts *TeamService) ListForUser(userID uint) ([]models.Team, error) {
	var teams []models.Team
	err := ts.DB.Preload("Owner").
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ? AND team_members.deleted_at IS NULL", userID).
		Find(&teams).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return teams, nil
}

// Get returns a team with owner and members. Requires membership.
func (ts *TeamService) Get(teamID, userID uint) (*models.Team, error) {
	if err := authorize(ts.Engine, userID, authz.TeamResource(teamID), authz.ActionView); err != nil {
		return nil, err
	}

	var team models.Team
	err := ts.DB.Preload("Owner").Preload("Members.User").First(&team, teamID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("team %d: %w", teamID, models.ErrNotFound)
		}
		return nil, storageErr(err)
	}
	return &team, nil
}

// Update changes the team's name or description. Owner only.
func (ts *TeamService) Update(teamID, userID uint, in UpdateTeamInput) (*models.Team, error) {
	team, err := ts.requireOwner(teamID, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		team.Name = *in.Name
	}
	if in.Description != nil {
		team.Description = *in.Description
	}
	if err := ts.DB.Save(team).Error; err != nil {
		return nil, storageErr(err)
	}
	return team, nil
}

// Delete removes the team and everything it transitively owns: members,
// projects, tasks, subtasks, comments and attachments. Owner only.
func (ts *TeamService) Delete(teamID, userID uint) error {
	if _, err := ts.requireOwner(teamID, userID); err != nil {
		return err
	}

	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		projectIDs := tx.Model(&models.Project{}).Select("id").Where("team_id = ?", teamID)
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id IN (?)", projectIDs)

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
		if err := tx.Where("project_id IN (?)", projectIDs).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.Project{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, teamID).Error
	})
	if err != nil {
		return storageErr(err)
	}
	ts.Logger.Printf("Team %d deleted by owner %d", teamID, userID)
	return nil
}

// JoinByInviteCode adds the caller to the team behind the code as a MEMBER.
func (ts *TeamService) JoinByInviteCode(userID uint, code string) (*models.TeamMember, error) {
	var team models.Team
	err := ts.DB.Where("invite_code = ?", code).First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid invite code: %w", models.ErrNotFound)
		}
		return nil, storageErr(err)
	}
	return ts.Members.Add(team.ID, userID, models.RoleMember)
}

// InviteMember adds a user by email with a caller-specified role. Admin only.
func (ts *TeamService) InviteMember(teamID, inviterID uint, email, role string) (*models.TeamMember, error) {
	if err := authorize(ts.Engine, inviterID, authz.TeamResource(teamID), authz.ActionInvite); err != nil {
		return nil, err
	}

	var user models.User
	err := ts.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
		}
		return nil, storageErr(err)
	}
	return ts.Members.Add(teamID, user.ID, role)
}

// RemoveMember removes a membership record. Admin only; the registry rejects
// removing the last admin.
func (ts *TeamService) RemoveMember(teamID, actorID, memberID uint) error {
	if err := authorize(ts.Engine, actorID, authz.TeamResource(teamID), authz.ActionManageRoles); err != nil {
		return err
	}
	return ts.Members.Remove(teamID, memberID)
}

// SetMemberRole changes a member's role. Admin only.
func (ts *TeamService) SetMemberRole(teamID, actorID, memberID uint, role string) (*models.TeamMember, error) {
	if err := authorize(ts.Engine, actorID, authz.TeamResource(teamID), authz.ActionManageRoles); err != nil {
		return nil, err
	}
	return ts.Members.SetRole(teamID, memberID, role)
}

// GetMembers lists the team's members. Requires membership.
func (ts *TeamService) GetMembers(teamID, userID uint) ([]models.TeamMember, error) {
	if err := authorize(ts.Engine, userID, authz.TeamResource(teamID), authz.ActionView); err != nil {
		return nil, err
	}
	return ts.Members.MembersOf(teamID)
}

// RegenerateInviteCode replaces the team's invite code. Admin only.
func (ts *TeamService) RegenerateInviteCode(teamID, actorID uint) (*models.Team, error) {
	if err := authorize(ts.Engine, actorID, authz.TeamResource(teamID), authz.ActionInvite); err != nil {
		return nil, err
	}

	var team models.Team
	if err := ts.DB.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("team %d: %w", teamID, models.ErrNotFound)
		}
		return nil, storageErr(err)
	}

	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		err := ts.DB.Model(&team).Update("invite_code", utils.NewInviteCode()).Error
		if err == nil {
			return &team, nil
		}
		if !isDuplicate(err) {
			return nil, storageErr(err)
		}
	}
	return nil, fmt.Errorf("could not allocate a unique invite code: %w", models.ErrConflict)
}

func (ts *TeamService) requireOwner(teamID, userID uint) (*models.Team, error) {
	var team models.Team
	err := ts.DB.First(&team, teamID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("team %d: %w", teamID, models.ErrNotFound)
		}
		return nil, storageErr(err)
	}
	if team.OwnerID != userID {
		return nil, fmt.Errorf("only the team owner may do this: %w", models.ErrForbidden)
	}
	return &team, nil
}
