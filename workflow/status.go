// Package workflow validates proposed task status transitions before the
// orchestrator persists them. It is a pure decision function: no I/O, no
// persistence.
package workflow

import (
	"fmt"
	"strings"

	"github.com/bomaolad/team-sync-be/models"
)

// Result describes an accepted transition. When RequiresComment is set the
// orchestrator must create a rejection comment carrying Reason, attributed to
// the actor, before considering the operation complete.
type Result struct {
	RequiresComment bool
	Reason          string
}

// transitions lists the allowed next statuses per current status. Today every
// status may move to every other; constraining a transition later is a change
// to this table only.
var transitions = map[string][]string{
	models.TaskTodo:        {models.TaskInProgress, models.TaskUnderReview, models.TaskRecheck, models.TaskDone},
	models.TaskInProgress:  {models.TaskTodo, models.TaskUnderReview, models.TaskRecheck, models.TaskDone},
	models.TaskUnderReview: {models.TaskTodo, models.TaskInProgress, models.TaskRecheck, models.TaskDone},
	models.TaskRecheck:     {models.TaskTodo, models.TaskInProgress, models.TaskUnderReview, models.TaskDone},
	models.TaskDone:        {models.TaskTodo, models.TaskInProgress, models.TaskUnderReview, models.TaskRecheck},
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

func canTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ProposeTransition validates a proposed status change. A transition into
// RECHECK requires a non-empty rejection reason; the returned Result then
// signals the rejection-comment obligation to the orchestrator.
func ProposeTransition(current, next, rejectionReason string) (Result, error) {
	if !ValidStatus(next) {
		return Result{}, fmt.Errorf("unknown status %q: %w", next, models.ErrInvalidTransition)
	}
	if !ValidStatus(current) {
		return Result{}, fmt.Errorf("unknown status %q: %w", current, models.ErrInvalidTransition)
	}
	if !canTransition(current, next) {
		return Result{}, fmt.Errorf("cannot move from %s to %s: %w", current, next, models.ErrInvalidTransition)
	}

	if next == models.TaskRecheck {
		reason := strings.TrimSpace(rejectionReason)
		if reason == "" {
			return Result{}, fmt.Errorf("rejection reason is required for RECHECK: %w", models.ErrInvalidTransition)
		}
		return Result{RequiresComment: true, Reason: reason}, nil
	}
	return Result{}, nil
}
