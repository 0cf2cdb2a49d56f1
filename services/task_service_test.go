package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bomaolad/team-sync-be/models"
	"github.com/bomaolad/team-sync-be/realtime"
)

// flushHub waits until every previously published event has been dispatched.
// The single run loop is FIFO, so receiving a sentinel implies the queue
// before it is drained.
func flushHub(t *testing.T, env *testEnv) {
	t.Helper()
	probe := realtime.NewClient(0)
	env.Hub.Register(probe)
	scope := realtime.TeamScope(^uint(0))
	env.Hub.Subscribe(probe.ID, scope)
	env.Hub.Publish(scope, "sentinel", nil)
	select {
	case <-probe.Send:
	case <-time.After(time.Second):
		t.Fatal("hub did not drain")
	}
	env.Hub.Unregister(probe)
}

// subscribe connects a hub client to a scope for event assertions. Events
// published before the call are not delivered to it.
func subscribe(t *testing.T, env *testEnv, scope realtime.Scope) *realtime.Client {
	t.Helper()
	flushHub(t, env)
	client := realtime.NewClient(0)
	env.Hub.Register(client)
	env.Hub.Subscribe(client.ID, scope)
	t.Cleanup(func() { env.Hub.Unregister(client) })
	return client
}

func nextEvent(t *testing.T, client *realtime.Client) realtime.Event {
	t.Helper()
	select {
	case msg := <-client.Send:
		var ev realtime.Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return realtime.Event{}
	}
}

func TestTaskCreate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, uniqueEmail("owner"))
	guest := env.createUser(t, uniqueEmail("guest"))
	stranger := env.createUser(t, uniqueEmail("stranger"))
	team := env.createTeamWith(t, owner, map[*models.User]string{guest: models.RoleGuest})
	project := env.createProject(t, owner.ID, team.ID, "p")

	t.Run("defaults and event", func(t *testing.T) {
		client := subscribe(t, env, realtime.ProjectScope(project.ID))

		task, err := env.Tasks.Create(owner.ID, CreateTaskInput{
			ProjectID:   project.ID,
			Title:       "Ship it",
			AssigneeIDs: []uint{owner.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, models.TaskTodo, task.Status)
		assert.Equal(t, models.PriorityMedium, task.Priority)
		assert.Equal(t, owner.ID, task.CreatorID)
		require.Len(t, task.Assignees, 1)

		ev := nextEvent(t, client)
		assert.Equal(t, realtime.EventTaskCreated, ev.Name)
	})

	t.Run("guest may not create", func(t *testing.T) {
		_, err := env.Tasks.Create(guest.ID, CreateTaskInput{ProjectID: project.ID, Title: "x"})
		assert.True(t, errors.Is(err, models.ErrForbidden))
	})

	t.Run("non-member sees not found", func(t *testing.T) {
		_, err := env.Tasks.Create(stranger.ID, CreateTaskInput{ProjectID: project.ID, Title: "x"})
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})

	t.Run("unknown assignee is rejected", func(t *testing.T) {
		_, err := env.Tasks.Create(owner.ID, CreateTaskInput{
			ProjectID:   project.ID,
			Title:       "x",
			AssigneeIDs: []uint{9999},
		})
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})
}

func TestTaskUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, uniqueEmail("owner"))
	team := env.createTeamWith(t, owner, nil)
	project := env.createProject(t, owner.ID, team.ID, "p")

	t.Run("plain transition publishes statusChanged", func(t *testing.T) {
		task := env.createTask(t, owner.ID, project.ID, "t")
		client := subscribe(t, env, realtime.ProjectScope(project.ID))

		updated, requiresComment, err := env.Tasks.UpdateStatus(task.ID, owner.ID, models.TaskInProgress, "")
		require.NoError(t, err)
		assert.False(t, requiresComment)
		assert.Equal(t, models.TaskInProgress, updated.Status)

		ev := nextEvent(t, client)
		assert.Equal(t, realtime.EventStatusChanged, ev.Name)

		payload, err := json.Marshal(ev.Data)
		require.NoError(t, err)
		var sc realtime.StatusChangedPayload
		require.NoError(t, json.Unmarshal(payload, &sc))
		assert.Equal(t, task.ID, sc.TaskID)
		assert.Equal(t, models.TaskInProgress, sc.Status)
		assert.Equal(t, owner.ID, sc.ChangedBy)
	})

	t.Run("recheck without reason is rejected", func(t *testing.T) {
		task := env.createTask(t, owner.ID, project.ID, "t")
		_, _, err := env.Tasks.UpdateStatus(task.ID, owner.ID, models.TaskRecheck, "")
		assert.True(t, errors.Is(err, models.ErrInvalidTransition))

		got, err := env.Tasks.Get(task.ID, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TaskTodo, got.Status)
	})

	t.Run("recheck creates rejection comment and orders events", func(t *testing.T) {
		task := env.createTask(t, owner.ID, project.ID, "t")
		client := subscribe(t, env, realtime.ProjectScope(project.ID))

		updated, requiresComment, err := env.Tasks.UpdateStatus(task.ID, owner.ID, models.TaskRecheck, "tests are red")
		require.NoError(t, err)
		assert.True(t, requiresComment)
		assert.Equal(t, models.TaskRecheck, updated.Status)

		var comment models.Comment
		require.NoError(t, env.DB.Where("task_id = ?", task.ID).First(&comment).Error)
		assert.True(t, comment.IsRejection)
		assert.Equal(t, "tests are red", comment.Content)
		assert.Equal(t, owner.ID, comment.UserID)

		first := nextEvent(t, client)
		second := nextEvent(t, client)
		assert.Equal(t, realtime.EventStatusChanged, first.Name)
		assert.Equal(t, realtime.EventCommentAdded, second.Name)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		task := env.createTask(t, owner.ID, project.ID, "t")
		_, _, err := env.Tasks.UpdateStatus(task.ID, owner.ID, "PARKED", "")
		assert.True(t, errors.Is(err, models.ErrInvalidTransition))
	})
}

func TestTaskDelete(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, uniqueEmail("owner"))
	member := env.createUser(t, uniqueEmail("member"))
	team := env.createTeamWith(t, owner, map[*models.User]string{member: models.RoleMember})
	project := env.createProject(t, owner.ID, team.ID, "p")
	task := env.createTask(t, owner.ID, project.ID, "t")
	_, err := env.Tasks.CreateSubtask(task.ID, owner.ID, "s")
	require.NoError(t, err)

	t.Run("member may not delete", func(t *testing.T) {
		err := env.Tasks.Delete(task.ID, member.ID)
		assert.True(t, errors.Is(err, models.ErrForbidden))
	})

	t.Run("admin deletes with children", func(t *testing.T) {
		client := subscribe(t, env, realtime.ProjectScope(project.ID))
		require.NoError(t, env.Tasks.Delete(task.ID, owner.ID))

		ev := nextEvent(t, client)
		assert.Equal(t, realtime.EventTaskDeleted, ev.Name)

		var count int64
		env.DB.Model(&models.Subtask{}).Where("task_id = ?", task.ID).Count(&count)
		assert.Zero(t, count)

		_, err := env.Tasks.Get(task.ID, owner.ID)
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})
}

func TestTaskListFilters(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, uniqueEmail("owner"))
	outsider := env.createUser(t, uniqueEmail("outsider"))
	team := env.createTeamWith(t, owner, nil)
	project := env.createProject(t, owner.ID, team.ID, "p")

	env.createTask(t, owner.ID, project.ID, "a")
	high, err := env.Tasks.Create(owner.ID, CreateTaskInput{
		ProjectID:   project.ID,
		Title:       "b",
		Priority:    models.PriorityHigh,
		AssigneeIDs: []uint{owner.ID},
	})
	require.NoError(t, err)

	t.Run("membership bounds the listing", func(t *testing.T) {
		tasks, err := env.Tasks.List(owner.ID, TaskQuery{})
		require.NoError(t, err)
		assert.Len(t, tasks, 2)

		tasks, err = env.Tasks.List(outsider.ID, TaskQuery{})
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("priority filter", func(t *testing.T) {
		tasks, err := env.Tasks.List(owner.ID, TaskQuery{Priority: models.PriorityHigh})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, high.ID, tasks[0].ID)
	})

	t.Run("assignee filter and my-tasks", func(t *testing.T) {
		tasks, err := env.Tasks.List(owner.ID, TaskQuery{AssigneeID: owner.ID})
		require.NoError(t, err)
		require.Len(t, tasks, 1)

		mine, err := env.Tasks.ListForAssignee(owner.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, high.ID, mine[0].ID)
	})
}

func TestSubtasks(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, uniqueEmail("owner"))
	guest := env.createUser(t, uniqueEmail("guest"))
	team := env.createTeamWith(t, owner, map[*models.User]string{guest: models.RoleGuest})
	project := env.createProject(t, owner.ID, team.ID, "p")
	task := env.createTask(t, owner.ID, project.ID, "t")

	subtask, err := env.Tasks.CreateSubtask(task.ID, owner.ID, "write docs")
	require.NoError(t, err)
	assert.False(t, subtask.IsCompleted)

	t.Run("guest may list but not edit", func(t *testing.T) {
		subtasks, err := env.Tasks.Subtasks(task.ID, guest.ID)
		require.NoError(t, err)
		assert.Len(t, subtasks, 1)

		done := true
		_, err = env.Tasks.UpdateSubtask(subtask.ID, guest.ID, UpdateSubtaskInput{IsCompleted: &done})
		assert.True(t, errors.Is(err, models.ErrForbidden))
	})

	t.Run("member completes subtask", func(t *testing.T) {
		done := true
		updated, err := env.Tasks.UpdateSubtask(subtask.ID, owner.ID, UpdateSubtaskInput{IsCompleted: &done})
		require.NoError(t, err)
		assert.True(t, updated.IsCompleted)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, env.Tasks.DeleteSubtask(subtask.ID, owner.ID))
		subtasks, err := env.Tasks.Subtasks(task.ID, owner.ID)
		require.NoError(t, err)
		assert.Empty(t, subtasks)
	})
}

func TestProjectProgress(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, uniqueEmail("owner"))
	team := env.createTeamWith(t, owner, nil)
	project := env.createProject(t, owner.ID, team.ID, "p")

	env.createTask(t, owner.ID, project.ID, "todo")
	doing := env.createTask(t, owner.ID, project.ID, "doing")
	done := env.createTask(t, owner.ID, project.ID, "done")
	shipped := env.createTask(t, owner.ID, project.ID, "shipped")

	_, _, err := env.Tasks.UpdateStatus(doing.ID, owner.ID, models.TaskInProgress, "")
	require.NoError(t, err)
	_, _, err = env.Tasks.UpdateStatus(done.ID, owner.ID, models.TaskDone, "")
	require.NoError(t, err)
	_, _, err = env.Tasks.UpdateStatus(shipped.ID, owner.ID, models.TaskDone, "")
	require.NoError(t, err)

	progress, err := env.Tasks.Progress(project.ID, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, progress.Total)
	assert.EqualValues(t, 2, progress.Completed)
	assert.EqualValues(t, 1, progress.InProgress)
	assert.EqualValues(t, 1, progress.Todo)
	assert.Equal(t, 50, progress.Percentage)
}
