package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/workboard/workboard-api/internal/cache"
	"github.com/workboard/workboard-api/internal/config"
	"github.com/workboard/workboard-api/internal/constants"
	"github.com/workboard/workboard-api/internal/database"
	"github.com/workboard/workboard-api/internal/handlers"
	"github.com/workboard/workboard-api/internal/middleware"
	"github.com/workboard/workboard-api/internal/repository"
	"github.com/workboard/workboard-api/internal/services"
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
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	wsRepo := repository.NewWorkspaceRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo)
	wsService := services.NewWorkspaceService(wsRepo)
	inviteService := services.NewInviteService(inviteRepo, wsRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, wsRepo)

	// Profile snapshot cache is optional; disabled when no path is configured
	var profCache *cache.ProfileCache
	if cfg.ProfileCachePath != "" {
		profCache = cache.NewProfileCache(cfg.ProfileCachePath)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, wsService, profCache)
	wsHandler := handlers.NewWorkspaceHandler(wsService)
	inviteHandler := handlers.NewInviteHandler(inviteService)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Workboard API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.PUT("/me", middleware.RequireAuth(), authHandler.UpdateProfile)
		}

		// Workspace routes (protected)
		workspaces := api.Group("/workspaces")
		workspaces.Use(middleware.RequireAuth())
		{
			workspaces.POST("", wsHandler.CreateWorkspace)
			workspaces.GET("", wsHandler.ListWorkspaces)
			workspaces.GET("/:id", middleware.RequireWorkspaceAccess(), wsHandler.GetWorkspace)
			workspaces.PUT("/:id", middleware.RequireWorkspaceAccess(), middleware.RequireWorkspaceManager(), wsHandler.UpdateWorkspace)
			workspaces.DELETE("/:id", middleware.RequireWorkspaceAccess(), middleware.RequireWorkspaceManager(), wsHandler.DeleteWorkspace)
			workspaces.PUT("/:id/members/:user_id/role", middleware.RequireWorkspaceAccess(), middleware.RequireWorkspaceManager(), wsHandler.SetMemberRole)
			workspaces.DELETE("/:id/members/:user_id", middleware.RequireWorkspaceAccess(), middleware.RequireWorkspaceManager(), wsHandler.RemoveMember)
			workspaces.POST("/:id/invites", middleware.RequireWorkspaceAccess(), middleware.RequireWorkspaceManager(), inviteHandler.CreateInvite)
			workspaces.POST("/:id/invites/email", middleware.RequireWorkspaceAccess(), middleware.RequireWorkspaceManager(), inviteHandler.SendEmailInvite)
		}

		// Invite routes (protected)
		invites := api.Group("/invites")
		invites.Use(middleware.RequireAuth())
		{
			invites.GET("/pending", inviteHandler.ListPendingInvites)
			invites.POST("/pending/:workspace_id/accept", inviteHandler.AcceptPendingInvite)
			invites.POST("/pending/:workspace_id/reject", inviteHandler.RejectPendingInvite)
			invites.GET("/:token", inviteHandler.ResolveInvite)
			invites.POST("/:token/accept", inviteHandler.AcceptInvite)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTaskAccess(), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskAccess(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskAccess(), taskHandler.DeleteTask)
			tasks.POST("/:id/status", middleware.RequireTaskAccess(), taskHandler.SetStatus)
			tasks.GET("/:id/notes", middleware.RequireTaskAccess(), taskHandler.ListNotes)
			tasks.POST("/:id/notes", middleware.RequireTaskAccess(), taskHandler.AppendNote)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
