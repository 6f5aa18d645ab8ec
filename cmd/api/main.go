package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loopdesk/loopdesk-api/docs"
	"github.com/loopdesk/loopdesk-api/internal/auth"
	"github.com/loopdesk/loopdesk-api/internal/billing"
	"github.com/loopdesk/loopdesk-api/internal/config"
	"github.com/loopdesk/loopdesk-api/internal/database"
	"github.com/loopdesk/loopdesk-api/internal/http/handler"
	"github.com/loopdesk/loopdesk-api/internal/http/middleware"
	"github.com/loopdesk/loopdesk-api/internal/http/router"
	"github.com/loopdesk/loopdesk-api/internal/jobs"
	"github.com/loopdesk/loopdesk-api/internal/logger"
	"github.com/loopdesk/loopdesk-api/internal/repository"
	"github.com/loopdesk/loopdesk-api/internal/service"
	"github.com/loopdesk/loopdesk-api/internal/storage"
	"go.uber.org/zap"
)

// @title Loopdesk API
// @version 1.0
// @description Operations backend for freelancers and small agencies: projects, tasks, customers, time tracking, incomes and subscriptions

// @contact.name API Support
// @contact.email support@loopdesk.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "staging.api.loopdesk.io"
	case "production":
		docs.SwaggerInfo.Host = "api.loopdesk.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to run auto migrations: %w", err)
		}
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	timeEntryRepo := repository.NewTimeEntryRepository(db)
	incomeRepo := repository.NewIncomeRepository(db)
	timerRepo := repository.NewTimerRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	// Initialize services
	notificationService := service.NewNotificationService(notificationRepo, log)
	activityService := service.NewActivityService(activityRepo, log)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, webhookEventRepo, notificationService, cfg.Auth.TrialDays, log)
	tokenManager := auth.NewTokenManager(&cfg.Auth, cfg.App.Name)
	userService := service.NewUserService(userRepo, subscriptionService, tokenManager, log)
	projectService := service.NewProjectService(projectRepo, taskRepo, activityService, log)
	taskService := service.NewTaskService(taskRepo, projectRepo, projectService, activityService, notificationService, fileStorage, log)
	customerService := service.NewCustomerService(customerRepo, activityService, log)
	timeEntryService := service.NewTimeEntryService(timeEntryRepo, customerRepo, activityService, log)
	incomeService := service.NewIncomeService(incomeRepo, activityService, log)
	timerService := service.NewTimerService(timerRepo, customerRepo, timeEntryService, activityService, log)
	dashboardService := service.NewDashboardService(userRepo, projectRepo, taskRepo, customerRepo, timeEntryRepo, incomeRepo, timerRepo, notificationRepo, activityRepo, log)
	adminService := service.NewAdminService(userRepo, projectRepo, subscriptionRepo, log)

	// Webhook signature verification
	verifier := billing.NewVerifier(cfg.Billing.WebhookID, cfg.Billing.CertAllowedHost, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, tokenManager, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, log)
	projectHandler := handler.NewProjectHandler(projectService, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	customerHandler := handler.NewCustomerHandler(customerService, log)
	timeEntryHandler := handler.NewTimeEntryHandler(timeEntryService, log)
	incomeHandler := handler.NewIncomeHandler(incomeService, log)
	timerHandler := handler.NewTimerHandler(timerService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	activityHandler := handler.NewActivityHandler(activityService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, log)
	webhookHandler := handler.NewWebhookHandler(verifier, subscriptionService, log)
	adminHandler := handler.NewAdminHandler(adminService, userService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		projectHandler,
		taskHandler,
		customerHandler,
		timeEntryHandler,
		incomeHandler,
		timerHandler,
		notificationHandler,
		activityHandler,
		dashboardHandler,
		subscriptionHandler,
		webhookHandler,
		adminHandler,
	)

	// Background jobs
	scheduler := jobs.NewScheduler(log)
	if err := jobs.RegisterTrialSweepJob(scheduler, subscriptionService, log, cfg.Jobs.TrialSweepCron, 5*time.Minute); err != nil {
		log.Error("Failed to register trial sweep job", zap.Error(err))
	} else {
		scheduler.Start()
		log.Info("Scheduler started with trial sweep job",
			zap.String("cron_expr", cfg.Jobs.TrialSweepCron),
		)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		log.Info("Scheduler stopped")

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
