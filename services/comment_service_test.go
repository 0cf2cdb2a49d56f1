package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bomaolad/team-sync-be/models"
	"github.com/bomaolad/team-sync-be/realtime"
)

func TestCommentCreate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, uniqueEmail("owner"))
	guest := env.createUser(t, uniqueEmail("guest"))
	team := env.createTeamWith(t, owner, map[*models.User]string{guest: models.RoleGuest})
	project := env.createProject(t, owner.ID, team.ID, "p")
	task := env.createTask(t, owner.ID, project.ID, "t")

	t.Run("member comments and event fires", func(t *testing.T) {
		client := subscribe(t, env, realtime.ProjectScope(project.ID))

		comment, err := env.Comments.Create(task.ID, owner.ID, "looks good")
		require.NoError(t, err)
		assert.False(t, comment.IsRejection)
		assert.Equal(t, owner.ID, comment.User.ID)

		ev := nextEvent(t, client)
		assert.Equal(t, realtime.EventCommentAdded, ev.Name)
	})

	t.Run("guest may read but not comment", func(t *testing.T) {
		comments, err := env.Comments.ListByTask(task.ID, guest.ID)
		require.NoError(t, err)
		assert.Len(t, comments, 1)

		_, err = env.Comments.Create(task.ID, guest.ID, "hi")
		assert.True(t, errors.Is(err, models.ErrForbidden))
	})

	t.Run("unknown task is not found", func(t *testing.T) {
		_, err := env.Comments.Create(9999, owner.ID, "hi")
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})
}

func TestCommentDelete(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, uniqueEmail("owner"))
	author := env.createUser(t, uniqueEmail("author"))
	team := env.createTeamWith(t, owner, map[*models.User]string{author: models.RoleMember})
	project := env.createProject(t, owner.ID, team.ID, "p")
	task := env.createTask(t, owner.ID, project.ID, "t")

	comment, err := env.Comments.Create(task.ID, author.ID, "mine")
	require.NoError(t, err)

	t.Run("only the author may delete", func(t *testing.T) {
		err := env.Comments.Delete(comment.ID, owner.ID)
		assert.True(t, errors.Is(err, models.ErrForbidden))

		require.NoError(t, env.Comments.Delete(comment.ID, author.ID))

		comments, err := env.Comments.ListByTask(task.ID, author.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})
}

func TestAttachments(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, uniqueEmail("owner"))
	member := env.createUser(t, uniqueEmail("member"))
	guest := env.createUser(t, uniqueEmail("guest"))
	team := env.createTeamWith(t, owner, map[*models.User]string{
		member: models.RoleMember,
		guest:  models.RoleGuest,
	})
	project := env.createProject(t, owner.ID, team.ID, "p")
	task := env.createTask(t, owner.ID, project.ID, "t")

	attachment, err := env.Attachments.Create(task.ID, member.ID, CreateAttachmentInput{
		FileName: "design.pdf",
		FilePath: "uploads/design.pdf",
		MimeType: "application/pdf",
		FileSize: 2048,
	})
	require.NoError(t, err)
	assert.Equal(t, member.ID, attachment.UploadedByID)

	t.Run("guest may list but not upload", func(t *testing.T) {
		attachments, err := env.Attachments.ListByTask(task.ID, guest.ID)
		require.NoError(t, err)
		assert.Len(t, attachments, 1)

		_, err = env.Attachments.Create(task.ID, guest.ID, CreateAttachmentInput{FileName: "x"})
		assert.True(t, errors.Is(err, models.ErrForbidden))
	})

	t.Run("only the uploader may delete", func(t *testing.T) {
		err := env.Attachments.Delete(attachment.ID, owner.ID)
		assert.True(t, errors.Is(err, models.ErrForbidden))

		require.NoError(t, env.Attachments.Delete(attachment.ID, member.ID))
	})
}
