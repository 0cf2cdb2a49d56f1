package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"github.com/bomaolad/team-sync-be/authz"
	controller "github.com/bomaolad/team-sync-be/controllers"
	"github.com/bomaolad/team-sync-be/middleware"
	"github.com/bomaolad/team-sync-be/realtime"
	"github.com/bomaolad/team-sync-be/services"
)

func SetupAuthRoutes(app *fiber.App) {
	// Auth routes group with logging and rate limiting
	auth := app.Group("/auth", middleware.AuthRateLimiter(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentUser)
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, hub *realtime.Hub) {
	// Authorization engine resolving roles through the team hierarchy
	engine := authz.NewEngine(services.NewResolver(db))

	// Initialize services with their respective loggers
	memberService := services.NewMembershipService(db, hub, log.New(os.Stdout, "MEMBER: ", log.LstdFlags))
	teamService := services.NewTeamService(db, memberService, engine, log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	projectService := services.NewProjectService(db, engine, log.New(os.Stdout, "PROJECT: ", log.LstdFlags))
	taskService := services.NewTaskService(db, engine, hub, log.New(os.Stdout, "TASK: ", log.LstdFlags))
	commentService := services.NewCommentService(db, engine, hub, log.New(os.Stdout, "COMMENT: ", log.LstdFlags))
	attachmentService := services.NewAttachmentService(db, engine, log.New(os.Stdout, "ATTACHMENT: ", log.LstdFlags))

	teamController := controller.NewTeamController(teamService, log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	projectController := controller.NewProjectController(projectService, taskService, log.New(os.Stdout, "PROJECT: ", log.LstdFlags))
	taskController := controller.NewTaskController(taskService, log.New(os.Stdout, "TASK: ", log.LstdFlags))
	commentController := controller.NewCommentController(commentService, log.New(os.Stdout, "COMMENT: ", log.LstdFlags))
	attachmentController := controller.NewAttachmentController(attachmentService, log.New(os.Stdout, "ATTACHMENT: ", log.LstdFlags))
	eventsController := controller.NewEventsController(hub, log.New(os.Stdout, "EVENTS: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// User routes
	user := api.Group("/users")
	user.Get("/", controller.GetUsers)
	user.Get("/:id", controller.GetUser)
	api.Put("/profile", controller.UpdateProfile)

	// Team routes
	team := api.Group("/teams")
	team.Post("/", teamController.CreateTeam)
	team.Get("/", teamController.GetTeams)
	team.Post("/join", teamController.JoinTeam)
	team.Get("/:id", teamController.GetTeam)
	team.Put("/:id", teamController.UpdateTeam)
	team.Delete("/:id", teamController.DeleteTeam)
	team.Get("/:id/members", teamController.GetMembers)
	team.Post("/:id/members", teamController.InviteMember)
	team.Delete("/:id/members/:memberId", teamController.RemoveMember)
	team.Put("/:id/members/:memberId/role", teamController.UpdateMemberRole)
	team.Post("/:id/invite-code", teamController.RegenerateInviteCode)

	// Project routes
	project := api.Group("/projects")
	project.Post("/", projectController.CreateProject)
	project.Get("/", projectController.GetProjects)
	project.Get("/:id", projectController.GetProject)
	project.Put("/:id", projectController.UpdateProject)
	project.Delete("/:id", projectController.DeleteProject)
	project.Get("/:id/progress", projectController.GetProjectProgress)

	// Task routes
	task := api.Group("/tasks")
	task.Post("/", taskController.CreateTask)
	task.Get("/", taskController.GetTasks)
	task.Get("/my-tasks", taskController.GetMyTasks)
	task.Get("/:id", taskController.GetTask)
	task.Put("/:id", taskController.UpdateTask)
	task.Put("/:id/status", taskController.UpdateTaskStatus)
	task.Delete("/:id", taskController.DeleteTask)
	task.Get("/:id/subtasks", taskController.GetSubtasks)
	task.Post("/:id/subtasks", taskController.CreateSubtask)
	api.Put("/subtasks/:subtaskId", taskController.UpdateSubtask)
	api.Delete("/subtasks/:subtaskId", taskController.DeleteSubtask)

	// Comment routes
	task.Get("/:taskId/comments", commentController.GetComments)
	task.Post("/:taskId/comments", commentController.CreateComment)
	api.Delete("/comments/:id", commentController.DeleteComment)

	// Attachment routes
	task.Get("/:taskId/attachments", attachmentController.GetAttachments)
	task.Post("/:taskId/attachments", attachmentController.CreateAttachment)
	api.Delete("/attachments/:id", attachmentController.DeleteAttachment)

	// WebSocket route for scoped event pushes
	app.Get("/api/v1/events", middleware.Protected(), websocket.New(func(c *websocket.Conn) {
		eventsController.HandleEventsWS(c)
	}))

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB, hub *realtime.Hub) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app)

	// Setup API routes
	SetupAPIRoutes(app, db, hub)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
