package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codebaseshow/codebaseshow/internal/auth"
	"github.com/codebaseshow/codebaseshow/internal/handlers"
	"github.com/codebaseshow/codebaseshow/internal/middleware"
	"github.com/codebaseshow/codebaseshow/internal/repositories"
	"github.com/codebaseshow/codebaseshow/internal/services"
	"github.com/codebaseshow/codebaseshow/pkg/config"
	"github.com/codebaseshow/codebaseshow/pkg/database"
	"github.com/codebaseshow/codebaseshow/pkg/logger"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Init()
	gin.SetMode(config.AppConfig.Server.Mode)

	// Initialize database
	if err := database.Init(); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(database.DB)
	projectRepo := repositories.NewProjectRepository(database.DB)
	implementationRepo := repositories.NewImplementationRepository(database.DB)

	// Services
	tokenService, err := auth.NewTokenService(config.AppConfig.JWT.Secret)
	if err != nil {
		logger.Fatalf("Failed to initialize token service: %v", err)
	}

	githubService := services.NewGitHubService()
	emailService := services.NewEmailService(services.NewSMTPMailer())
	userService := services.NewUserService(userRepo, githubService, tokenService)
	implementationService := services.NewImplementationService(
		implementationRepo,
		projectRepo,
		userRepo,
		githubService,
		emailService,
		tokenService,
		config.AppConfig.Frontend.URL,
	)
	projectService := services.NewProjectService(projectRepo, implementationRepo, config.AppConfig.Public.Path)
	schedulerService := services.NewSchedulerService(implementationService, projectService)

	// Router
	router := gin.Default()
	router.Use(middleware.SessionMiddleware(userService))
	setupRoutes(router, userService, githubService, projectService, implementationService, schedulerService)

	// Background schedules
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	schedulerService.StartScheduler(schedulerCtx)

	// Server
	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}

	logger.Info("Server stopped")
}

func setupRoutes(
	router *gin.Engine,
	userService *services.UserService,
	githubService *services.GitHubService,
	projectService *services.ProjectService,
	implementationService *services.ImplementationService,
	schedulerService *services.SchedulerService,
) {
	authHandler := handlers.NewAuthHandler(userService, githubService)
	userHandler := handlers.NewUserHandler(implementationService)
	projectHandler := handlers.NewProjectHandler(projectService, implementationService)
	implementationHandler := handlers.NewImplementationHandler(implementationService, projectService)
	taskHandler := handlers.NewTaskHandler(schedulerService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth routes
	router.GET("/auth/github", authHandler.GitHubLogin)
	router.POST("/auth/github/callback", authHandler.GitHubCallback)

	// Current user
	user := router.Group("/user")
	user.Use(middleware.AuthRequired())
	{
		user.GET("", userHandler.Me)
		user.GET("/implementations", userHandler.Implementations)
	}

	// Public project routes
	router.GET("/projects", projectHandler.List)
	router.GET("/projects/public-data", projectHandler.PublicData)
	router.GET("/projects/:slug", projectHandler.Get)
	router.GET("/projects/:slug/implementations", projectHandler.Implementations)

	// Project administration
	router.POST("/projects", middleware.AdminRequired(), projectHandler.Create)

	// Submissions
	projects := router.Group("/projects/:slug")
	projects.Use(middleware.AuthRequired())
	{
		projects.POST("/implementations", implementationHandler.Submit)
		projects.POST("/implementations/add", middleware.AdminRequired(), implementationHandler.Add)
	}

	// Implementations
	router.GET("/implementations/libraries", implementationHandler.UsedLibraries)
	router.GET("/implementations/:id", implementationHandler.Get)
	router.POST("/implementations/approve-unmaintained-report", implementationHandler.ApproveUnmaintainedReport)

	implementations := router.Group("/implementations")
	implementations.Use(middleware.AuthRequired())
	{
		implementations.PUT("/:id", implementationHandler.Update)
		implementations.DELETE("/:id", implementationHandler.Delete)
		implementations.POST("/:id/report-as-unmaintained", implementationHandler.ReportAsUnmaintained)
		implementations.POST("/:id/mark-as-unmaintained", implementationHandler.MarkAsUnmaintained)
		implementations.POST("/:id/claim-ownership", implementationHandler.ClaimOwnership)
	}

	// Admin review workflow
	review := router.Group("/implementations")
	review.Use(middleware.AdminRequired())
	{
		review.GET("/submissions", implementationHandler.Submissions)
		review.POST("/:id/review", implementationHandler.Review)
		review.POST("/:id/approve", implementationHandler.Approve)
		review.POST("/:id/reject", implementationHandler.Reject)
		review.POST("/:id/cancel-review", implementationHandler.CancelReview)
		review.POST("/:id/refresh-pending-issues", implementationHandler.RefreshPendingIssues)
	}

	// Manual task triggers
	tasks := router.Group("/tasks")
	tasks.Use(middleware.AdminRequired())
	{
		tasks.POST("/hourly", taskHandler.RunHourly)
		tasks.POST("/daily", taskHandler.RunDaily)
	}
}
