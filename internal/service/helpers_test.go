package service_test

import (
	"testing"

	"github.com/loopdesk/loopdesk-api/internal/auth"
	"github.com/loopdesk/loopdesk-api/internal/config"
	"github.com/loopdesk/loopdesk-api/internal/repository"
	"github.com/loopdesk/loopdesk-api/internal/service"
	"github.com/loopdesk/loopdesk-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testEnv wires the full service graph against an in-memory database.
type testEnv struct {
	db            *gorm.DB
	users         *service.UserService
	projects      *service.ProjectService
	tasks         *service.TaskService
	customers     *service.CustomerService
	timeEntries   *service.TimeEntryService
	incomes       *service.IncomeService
	timers        *service.TimerService
	activities    *service.ActivityService
	notifications *service.NotificationService
	subscriptions *service.SubscriptionService
	dashboard     *service.DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

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

	notificationService := service.NewNotificationService(notificationRepo, log)
	activityService := service.NewActivityService(activityRepo, log)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, webhookEventRepo, notificationService, 14, log)
	tokenManager := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret: "test-secret-that-is-long-enough",
		TokenTTL:  3600,
		TrialDays: 14,
	}, "loopdesk-test")
	userService := service.NewUserService(userRepo, subscriptionService, tokenManager, log)
	projectService := service.NewProjectService(projectRepo, taskRepo, activityService, log)
	taskService := service.NewTaskService(taskRepo, projectRepo, projectService, activityService, notificationService, nil, log)
	customerService := service.NewCustomerService(customerRepo, activityService, log)
	timeEntryService := service.NewTimeEntryService(timeEntryRepo, customerRepo, activityService, log)
	incomeService := service.NewIncomeService(incomeRepo, activityService, log)
	timerService := service.NewTimerService(timerRepo, customerRepo, timeEntryService, activityService, log)
	dashboardService := service.NewDashboardService(userRepo, projectRepo, taskRepo, customerRepo, timeEntryRepo, incomeRepo, timerRepo, notificationRepo, activityRepo, log)

	return &testEnv{
		db:            db,
		users:         userService,
		projects:      projectService,
		tasks:         taskService,
		customers:     customerService,
		timeEntries:   timeEntryService,
		incomes:       incomeService,
		timers:        timerService,
		activities:    activityService,
		notifications: notificationService,
		subscriptions: subscriptionService,
		dashboard:     dashboardService,
	}
}
