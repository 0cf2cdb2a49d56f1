package authz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bomaolad/team-sync-be/models"
)

// fakeResolver resolves against in-memory maps.
type fakeResolver struct {
	projectTeams map[uint]uint
	taskTeams    map[uint]uint
	roles        map[uint]map[uint]string // teamID -> userID -> role
	err          error
}

func (f *fakeResolver) TeamIDOfProject(projectID uint) (uint, error) {
	if f.err != nil {
		return 0, f.err
	}
	teamID, ok := f.projectTeams[projectID]
	if !ok {
		return 0, fmt.Errorf("project not found: %w", models.ErrNotFound)
	}
	return teamID, nil
}

func (f *fakeResolver) TeamIDOfTask(taskID uint) (uint, error) {
	if f.err != nil {
		return 0, f.err
	}
	teamID, ok := f.taskTeams[taskID]
	if !ok {
		return 0, fmt.Errorf("task not found: %w", models.ErrNotFound)
	}
	return teamID, nil
}

func (f *fakeResolver) RoleOf(teamID, userID uint) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	role, ok := f.roles[teamID][userID]
	return role, ok, nil
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		projectTeams: map[uint]uint{10: 1},
		taskTeams:    map[uint]uint{100: 1},
		roles: map[uint]map[uint]string{
			1: {
				1: models.RoleAdmin,
				2: models.RoleMember,
				3: models.RoleGuest,
			},
		},
	}
}

func TestAllows(t *testing.T) {
	cases := []struct {
		role    string
		action  Action
		allowed bool
	}{
		{models.RoleGuest, ActionView, true},
		{models.RoleGuest, ActionEdit, false},
		{models.RoleGuest, ActionDelete, false},
		{models.RoleGuest, ActionInvite, false},
		{models.RoleGuest, ActionManageRoles, false},
		{models.RoleMember, ActionView, true},
		{models.RoleMember, ActionEdit, true},
		{models.RoleMember, ActionDelete, false},
		{models.RoleMember, ActionInvite, false},
		{models.RoleMember, ActionManageRoles, false},
		{models.RoleAdmin, ActionView, true},
		{models.RoleAdmin, ActionEdit, true},
		{models.RoleAdmin, ActionDelete, true},
		{models.RoleAdmin, ActionInvite, true},
		{models.RoleAdmin, ActionManageRoles, true},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_%s", tc.role, tc.action), func(t *testing.T) {
			assert.Equal(t, tc.allowed, Allows(tc.role, tc.action))
		})
	}
}

func TestAllowsMonotonicity(t *testing.T) {
	// A higher role is never allowed less than a lower one
	ordered := []string{models.RoleGuest, models.RoleMember, models.RoleAdmin}
	actions := []Action{ActionView, ActionEdit, ActionDelete, ActionInvite, ActionManageRoles}

	for i := 1; i < len(ordered); i++ {
		for _, action := range actions {
			if Allows(ordered[i-1], action) {
				assert.True(t, Allows(ordered[i], action),
					"%s allows %s but %s does not", ordered[i-1], action, ordered[i])
			}
		}
	}
}

func TestAllowsUnknownRole(t *testing.T) {
	assert.False(t, Allows("SUPERADMIN", ActionView))
	assert.False(t, Allows("", ActionEdit))
}

func TestAuthorizeTeamResource(t *testing.T) {
	engine := NewEngine(newFakeResolver())

	t.Run("admin may manage roles", func(t *testing.T) {
		d, err := engine.Authorize(1, TeamResource(1), ActionManageRoles)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, models.RoleAdmin, d.Role)
		assert.NoError(t, d.Err())
	})

	t.Run("member denied delete", func(t *testing.T) {
		d, err := engine.Authorize(2, TeamResource(1), ActionDelete)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, InsufficientRole, d.Reason)
		assert.True(t, errors.Is(d.Err(), models.ErrForbidden))
	})

	t.Run("guest denied edit", func(t *testing.T) {
		d, err := engine.Authorize(3, TeamResource(1), ActionEdit)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.True(t, errors.Is(d.Err(), models.ErrForbidden))
	})

	t.Run("non-member reads as not found", func(t *testing.T) {
		d, err := engine.Authorize(99, TeamResource(1), ActionView)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, NotAMember, d.Reason)
		assert.True(t, errors.Is(d.Err(), models.ErrNotFound))
	})
}

func TestAuthorizeResolvesThroughHierarchy(t *testing.T) {
	engine := NewEngine(newFakeResolver())

	t.Run("project resolves to owning team", func(t *testing.T) {
		d, err := engine.Authorize(2, ProjectResource(10), ActionEdit)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("task resolves through project to team", func(t *testing.T) {
		d, err := engine.Authorize(3, TaskResource(100), ActionView)
		require.NoError(t, err)
		assert.True(t, d.Allowed)

		d, err = engine.Authorize(3, TaskResource(100), ActionEdit)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := engine.Authorize(1, ProjectResource(999), ActionView)
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := engine.Authorize(1, TaskResource(999), ActionView)
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})
}

func TestAuthorizeResolverFailure(t *testing.T) {
	resolver := newFakeResolver()
	resolver.err = errors.New("connection refused")
	engine := NewEngine(resolver)

	_, err := engine.Authorize(1, TeamResource(1), ActionView)
	assert.Error(t, err)
}
