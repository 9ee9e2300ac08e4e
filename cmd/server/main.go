package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/timesheet-app/timesheet-api/internal/config"
	"github.com/timesheet-app/timesheet-api/internal/database"
	"github.com/timesheet-app/timesheet-api/internal/handlers"
	"github.com/timesheet-app/timesheet-api/internal/middleware"
	"github.com/timesheet-app/timesheet-api/internal/repository"
	"github.com/timesheet-app/timesheet-api/internal/services"
	"github.com/timesheet-app/timesheet-api/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	db := database.GetDB()
	if err := database.AddIndexes(db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Repositories
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	timesheetRepo := repository.NewTimesheetRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	projectService := services.NewProjectService(projectRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, timesheetRepo)
	timesheetService := services.NewTimesheetService(timesheetRepo, projectRepo, taskRepo, userRepo)
	dashboardService := services.NewDashboardService(dashboardRepo)

	// Attachment storage
	store := storage.NewLocalStore(cfg.UploadRoot)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService, store)
	timesheetHandler := handlers.NewTimesheetHandler(timesheetService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Timesheet API is running",
		})
	})

	requireAuth := middleware.RequireAuth(cfg.JWTSecret)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		// User directory routes (protected)
		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", middleware.RequireAdmin(), authHandler.Register)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", middleware.RequireAdmin(), userHandler.UpdateUser)
			users.DELETE("/:id", middleware.RequireAdmin(), userHandler.DeleteUser)
			users.GET("/:id/timesheets/export", timesheetHandler.ExportUserEntries)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/export", projectHandler.ExportProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.GET("/:id/tasks", taskHandler.ListProjectTasks)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/attachment", taskHandler.UploadAttachment)
			tasks.GET("/:id/attachment", taskHandler.DownloadAttachment)
		}

		// Timesheet routes (protected)
		timesheets := api.Group("/timesheets")
		timesheets.Use(requireAuth)
		{
			timesheets.GET("", timesheetHandler.ListEntries)
			timesheets.POST("", timesheetHandler.CreateEntry)
			timesheets.GET("/filter", timesheetHandler.FilterEntries)
			timesheets.GET("/export", timesheetHandler.ExportEntries)
			timesheets.GET("/:id", timesheetHandler.GetEntry)
			timesheets.PUT("/:id", timesheetHandler.UpdateEntry)
			timesheets.DELETE("/:id", timesheetHandler.DeleteEntry)
		}

		// Dashboard routes (protected)
		dashboard := api.Group("/dashboard")
		dashboard.Use(requireAuth)
		{
			dashboard.GET("/project-hours", dashboardHandler.HoursPerProject)
			dashboard.GET("/task-trends", dashboardHandler.TaskTrends)
			dashboard.GET("/weekly-summary", dashboardHandler.WeeklySummary)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
