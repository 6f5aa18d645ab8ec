package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/loopdesk/loopdesk-api/internal/auth"
	"github.com/loopdesk/loopdesk-api/internal/config"
	"github.com/loopdesk/loopdesk-api/internal/database"
	"github.com/loopdesk/loopdesk-api/internal/http/handler"
	"github.com/loopdesk/loopdesk-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/loopdesk/loopdesk-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	authHandler         *handler.AuthHandler
	projectHandler      *handler.ProjectHandler
	taskHandler         *handler.TaskHandler
	customerHandler     *handler.CustomerHandler
	timeEntryHandler    *handler.TimeEntryHandler
	incomeHandler       *handler.IncomeHandler
	timerHandler        *handler.TimerHandler
	notificationHandler *handler.NotificationHandler
	activityHandler     *handler.ActivityHandler
	dashboardHandler    *handler.DashboardHandler
	subscriptionHandler *handler.SubscriptionHandler
	webhookHandler      *handler.WebhookHandler
	adminHandler        *handler.AdminHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	projectHandler *handler.ProjectHandler,
	taskHandler *handler.TaskHandler,
	customerHandler *handler.CustomerHandler,
	timeEntryHandler *handler.TimeEntryHandler,
	incomeHandler *handler.IncomeHandler,
	timerHandler *handler.TimerHandler,
	notificationHandler *handler.NotificationHandler,
	activityHandler *handler.ActivityHandler,
	dashboardHandler *handler.DashboardHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	webhookHandler *handler.WebhookHandler,
	adminHandler *handler.AdminHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		authHandler:         authHandler,
		projectHandler:      projectHandler,
		taskHandler:         taskHandler,
		customerHandler:     customerHandler,
		timeEntryHandler:    timeEntryHandler,
		incomeHandler:       incomeHandler,
		timerHandler:        timerHandler,
		notificationHandler: notificationHandler,
		activityHandler:     activityHandler,
		dashboardHandler:    dashboardHandler,
		subscriptionHandler: subscriptionHandler,
		webhookHandler:      webhookHandler,
		adminHandler:        adminHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": map[bool]string{true: "healthy", false: "unhealthy"}[allHealthy],
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", rt.authHandler.Signup)
		r.Post("/auth/login", rt.authHandler.Login)

		// The webhook authenticates by signature, not session
		r.Post("/payments/webhook", rt.webhookHandler.Receive)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Auth
			r.Post("/auth/signout", rt.authHandler.Signout)
			r.Get("/auth/me", rt.authHandler.Me)
			r.Put("/auth/me", rt.authHandler.UpdateProfile)

			// Projects
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", rt.projectHandler.List)
				r.Post("/", rt.projectHandler.Create)
				r.Get("/{id}", rt.projectHandler.GetByID)
				r.Put("/{id}", rt.projectHandler.Update)
				r.Delete("/{id}", rt.projectHandler.Delete)
			})

			// Tasks
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", rt.taskHandler.ListByProject)
				r.Post("/", rt.taskHandler.Create)
				r.Get("/{id}", rt.taskHandler.GetByID)
				r.Put("/{id}", rt.taskHandler.Update)
				r.Delete("/{id}", rt.taskHandler.Delete)
				r.Post("/{id}/comments", rt.taskHandler.AddComment)
				r.Post("/{id}/attachments", rt.taskHandler.UploadAttachment)
			})

			// Attachments are addressed by their own id
			r.Get("/attachments/{id}", rt.taskHandler.DownloadAttachment)
			r.Delete("/attachments/{id}", rt.taskHandler.DeleteAttachment)

			// Customers
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", rt.customerHandler.List)
				r.Post("/", rt.customerHandler.Create)
				r.Get("/{id}", rt.customerHandler.GetByID)
				r.Put("/{id}", rt.customerHandler.Update)
				r.Delete("/{id}", rt.customerHandler.Delete)
			})

			// Time entries
			r.Route("/time-entries", func(r chi.Router) {
				r.Get("/", rt.timeEntryHandler.List)
				r.Post("/", rt.timeEntryHandler.Create)
				r.Get("/{id}", rt.timeEntryHandler.GetByID)
				r.Put("/{id}", rt.timeEntryHandler.Update)
				r.Delete("/{id}", rt.timeEntryHandler.Delete)
			})

			// Incomes
			r.Route("/incomes", func(r chi.Router) {
				r.Get("/", rt.incomeHandler.List)
				r.Post("/", rt.incomeHandler.Create)
				r.Get("/{id}", rt.incomeHandler.GetByID)
				r.Put("/{id}", rt.incomeHandler.Update)
				r.Delete("/{id}", rt.incomeHandler.Delete)
			})

			// Timer
			r.Route("/timer", func(r chi.Router) {
				r.Get("/", rt.timerHandler.GetActive)
				r.Post("/start", rt.timerHandler.Start)
				r.Post("/stop", rt.timerHandler.Stop)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/unread-count", rt.notificationHandler.UnreadCount)
				r.Post("/read-all", rt.notificationHandler.MarkAllRead)
				r.Post("/{id}/read", rt.notificationHandler.MarkRead)
			})

			// Activity feed and client event ingestion
			r.Get("/activities", rt.activityHandler.List)
			r.Post("/events", rt.activityHandler.Append)

			// Dashboard
			r.Get("/dashboard", rt.dashboardHandler.Snapshot)

			// Subscriptions
			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/", rt.subscriptionHandler.Get)
				r.Put("/plan", rt.subscriptionHandler.ChangePlan)
				r.Delete("/", rt.subscriptionHandler.Cancel)
			})

			// Admin (owner role or system API key)
			r.Route("/admin", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireOwner)
				r.Get("/stats", rt.adminHandler.Stats)
				r.Get("/users", rt.adminHandler.ListUsers)
			})
		})
	})

	return r
}
