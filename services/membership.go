package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bomaolad/team-sync-be/models"
	"github.com/bomaolad/team-sync-be/realtime"
)

// MembershipService is the registry of (team, user, role) triples. Its
// mutating calls are event sources for the fan-out hub.
type MembershipService struct {
	DB     *gorm.DB
	Hub    *realtime.Hub
	Logger *log.Logger
}

func NewMembershipService(db *gorm.DB, hub *realtime.Hub, logger *log.Logger) *MembershipService {
	return &MembershipService{
		DB:     db,
		Hub:    hub,
		Logger: logger,
	}
}

// MembersOf returns all members of a team with their users preloaded.
func (ms *MembershipService) MembersOf(teamID uint) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := ms.DB.Preload("User").Where("team_id = ?", teamID).Find(&members).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return members, nil
}

// RoleOf returns the role of a user in a team, or ok=false when the pair
// does not exist.
func (ms *MembershipService) RoleOf(teamID, userID uint) (string, bool, error) {
	var member models.TeamMember
	err := ms.DB.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, storageErr(err)
	}
	return member.Role, true, nil
}

// Add creates a membership and publishes memberAdded to the team scope.
// Adding an existing (team, user) pair fails with a conflict.
func (ms *MembershipService) Add(teamID, userID uint, role string) (*models.TeamMember, error) {
	if role == "" {
		role = models.RoleMember
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q: %w", role, models.ErrConflict)
	}

	var existing models.TeamMember
	err := ms.DB.Where("team_id = ? AND user_id = ?", teamID, userID).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("already a member of this team: %w", models.ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageErr(err)
	}

	member := models.TeamMember{
		TeamID: teamID,
		UserID: userID,
		Role:   role,
	}
	if err := ms.DB.Create(&member).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("already a member of this team: %w", models.ErrConflict)
		}
		return nil, storageErr(err)
	}
	ms.DB.Preload("User").First(&member, member.ID)

	logrus.WithFields(logrus.Fields{
		"team_id": teamID,
		"user_id": userID,
		"role":    role,
	}).Info("team member added")

	ms.Hub.Publish(realtime.TeamScope(teamID), realtime.EventMemberAdded, member)
	return &member, nil
}

// Remove deletes a membership and publishes memberRemoved. Removing the last
// ADMIN of a team is rejected so every team keeps at least one admin.
func (ms *MembershipService) Remove(teamID, memberID uint) error {
	var member models.TeamMember
	err := ms.DB.Where("id = ? AND team_id = ?", memberID, teamID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("member %d: %w", memberID, models.ErrNotFound)
		}
		return storageErr(err)
	}

	err = ms.DB.Transaction(func(tx *gorm.DB) error {
		if member.Role == models.RoleAdmin {
			if err := ms.ensureNotLastAdmin(tx, teamID); err != nil {
				return err
			}
		}
		// Hard delete so the (team, user) pair can be re-added later
		return tx.Unscoped().Delete(&member).Error
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return err
		}
		return storageErr(err)
	}

	logrus.WithFields(logrus.Fields{
		"team_id":   teamID,
		"member_id": memberID,
	}).Info("team member removed")

	ms.Hub.Publish(realtime.TeamScope(teamID), realtime.EventMemberRemoved,
		realtime.MemberRemovedPayload{MemberID: memberID})
	return nil
}

// SetRole changes a member's role. Downgrading the last ADMIN is rejected.
func (ms *MembershipService) SetRole(teamID, memberID uint, role string) (*models.TeamMember, error) {
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q: %w", role, models.ErrConflict)
	}

	var member models.TeamMember
	err := ms.DB.Where("id = ? AND team_id = ?", memberID, teamID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("member %d: %w", memberID, models.ErrNotFound)
		}
		return nil, storageErr(err)
	}

	err = ms.DB.Transaction(func(tx *gorm.DB) error {
		if member.Role == models.RoleAdmin && role != models.RoleAdmin {
			if err := ms.ensureNotLastAdmin(tx, teamID); err != nil {
				return err
			}
		}
		return tx.Model(&member).Update("role", role).Error
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, err
		}
		return nil, storageErr(err)
	}

	ms.DB.Preload("User").First(&member, member.ID)
	return &member, nil
}

// ensureNotLastAdmin rejects a mutation that would leave the team without
// any ADMIN member.
func (ms *MembershipService) ensureNotLastAdmin(tx *gorm.DB, teamID uint) error {
	var admins int64
	if err := tx.Model(&models.TeamMember{}).
		Where("team_id = ? AND role = ?", teamID, models.RoleAdmin).
		Count(&admins).Error; err != nil {
		return err
	}
	if admins <= 1 {
		return fmt.Errorf("a team must keep at least one admin: %w", models.ErrConflict)
	}
	return nil
}
