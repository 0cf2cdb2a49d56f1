package workflow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bomaolad/team-sync-be/models"
)

var allStatuses = []string{
	models.TaskTodo,
	models.TaskInProgress,
	models.TaskUnderReview,
	models.TaskRecheck,
	models.TaskDone,
}

func TestValidStatus(t *testing.T) {
	for _, s := range allStatuses {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("DELETED"))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("todo"))
}

func TestProposeTransitionAccepted(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			if to == models.TaskRecheck {
				continue
			}
			t.Run(fmt.Sprintf("%s_to_%s", from, to), func(t *testing.T) {
				res, err := ProposeTransition(from, to, "")
				require.NoError(t, err)
				assert.False(t, res.RequiresComment)
				assert.Empty(t, res.Reason)
			})
		}
	}
}

func TestProposeTransitionRecheck(t *testing.T) {
	t.Run("requires a reason", func(t *testing.T) {
		_, err := ProposeTransition(models.TaskUnderReview, models.TaskRecheck, "")
		assert.True(t, errors.Is(err, models.ErrInvalidTransition))
	})

	t.Run("blank reason is rejected", func(t *testing.T) {
		_, err := ProposeTransition(models.TaskUnderReview, models.TaskRecheck, "   \t ")
		assert.True(t, errors.Is(err, models.ErrInvalidTransition))
	})

	t.Run("reason triggers comment obligation", func(t *testing.T) {
		res, err := ProposeTransition(models.TaskUnderReview, models.TaskRecheck, "missing acceptance criteria")
		require.NoError(t, err)
		assert.True(t, res.RequiresComment)
		assert.Equal(t, "missing acceptance criteria", res.Reason)
	})

	t.Run("reason is trimmed", func(t *testing.T) {
		res, err := ProposeTransition(models.TaskDone, models.TaskRecheck, "  needs rework  ")
		require.NoError(t, err)
		assert.Equal(t, "needs rework", res.Reason)
	})

	t.Run("re-entering recheck keeps the obligation", func(t *testing.T) {
		res, err := ProposeTransition(models.TaskRecheck, models.TaskRecheck, "still broken")
		require.NoError(t, err)
		assert.True(t, res.RequiresComment)
		assert.Equal(t, "still broken", res.Reason)
	})
}

func TestProposeTransitionUnknownStatus(t *testing.T) {
	_, err := ProposeTransition(models.TaskTodo, "ARCHIVED", "")
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))

	_, err = ProposeTransition("ARCHIVED", models.TaskTodo, "")
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))
}
