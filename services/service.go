// Package services holds the mutation orchestrators. Each service composes
// the same pipeline: authorize via the engine, validate domain rules, persist,
// then publish to the fan-out hub. An earlier failure short-circuits every
// later step, so nothing is published without confirmed persistence.
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/bomaolad/team-sync-be/authz"
	"github.com/bomaolad/team-sync-be/models"
)

// storageErr classifies an unexpected persistence fault. The core does not
// retry these; the caller decides retry policy.
func storageErr(err error) error {
	return fmt.Errorf("storage: %v: %w", err, models.ErrUnavailable)
}

// isDuplicate checks if error is a unique-constraint violation.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// authorize runs an engine check and folds a denial into the error taxonomy.
func authorize(engine *authz.Engine, userID uint, res authz.Resource, action authz.Action) error {
	decision, err := engine.Authorize(userID, res, action)
	if err != nil {
		return err
	}
	return decision.Err()
}
