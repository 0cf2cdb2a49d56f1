package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bomaolad/team-sync-be/authz"
	"github.com/bomaolad/team-sync-be/config"
	"github.com/bomaolad/team-sync-be/models"
	"github.com/bomaolad/team-sync-be/realtime"
)

// testEnv wires the full service stack against an in-memory database.
type testEnv struct {
	DB      *gorm.DB
	Hub     *realtime.Hub
	Engine  *authz.Engine
	Members *MembershipService
	Teams   *TeamService
	Projects *ProjectService
	Tasks   *TaskService
	Comments *CommentService
	Attachments *AttachmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// Named in-memory database so every connection in the pool sees the
	// same data, isolated per test.
	dbSeq++
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", dbSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))

	quiet := log.New(io.Discard, "", 0)
	hub := realtime.NewHub(quiet)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	engine := authz.NewEngine(NewResolver(db))
	members := NewMembershipService(db, hub, quiet)

	return &testEnv{
		DB:          db,
		Hub:         hub,
		Engine:      engine,
		Members:     members,
		Teams:       NewTeamService(db, members, engine, quiet),
		Projects:    NewProjectService(db, engine, quiet),
		Tasks:       NewTaskService(db, engine, hub, quiet),
		Comments:    NewCommentService(db, engine, hub, quiet),
		Attachments: NewAttachmentService(db, engine, quiet),
	}
}

func (e *testEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		Username:     email,
		IsActive:     true,
	}
	require.NoError(t, e.DB.Create(&user).Error)
	return &user
}

// createTeamWith seeds a team owned by owner plus extra members with roles.
func (e *testEnv) createTeamWith(t *testing.T, owner *models.User, members map[*models.User]string) *models.Team {
	t.Helper()
	team, err := e.Teams.Create(owner.ID, CreateTeamInput{Name: "team-" + t.Name()})
	require.NoError(t, err)
	for user, role := range members {
		_, err := e.Members.Add(team.ID, user.ID, role)
		require.NoError(t, err)
	}
	return team
}

func (e *testEnv) createProject(t *testing.T, userID, teamID uint, name string) *models.Project {
	t.Helper()
	project, err := e.Projects.Create(userID, CreateProjectInput{TeamID: teamID, Name: name})
	require.NoError(t, err)
	return project
}

func (e *testEnv) createTask(t *testing.T, userID, projectID uint, title string) *models.Task {
	t.Helper()
	task, err := e.Tasks.Create(userID, CreateTaskInput{ProjectID: projectID, Title: title})
	require.NoError(t, err)
	return task
}

var (
	dbSeq    int
	emailSeq int
)

func uniqueEmail(prefix string) string {
	emailSeq++
	return fmt.Sprintf("%s%d@example.com", prefix, emailSeq)
}
