package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/mapper"
	"github.com/loopdesk/loopdesk-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Billing model weights used in customer scoring. Retainers are the most
// predictable revenue, one-off project fees the least.
var billingModelWeights = map[domain.BillingModel]float64{
	domain.BillingModelRetainer: 1.2,
	domain.BillingModelHourly:   1.0,
	domain.BillingModelProject:  0.9,
}

const referralBonusFactor = 1.1

type DashboardService struct {
	userRepo         *repository.UserRepository
	projectRepo      *repository.ProjectRepository
	taskRepo         *repository.TaskRepository
	customerRepo     *repository.CustomerRepository
	timeEntryRepo    *repository.TimeEntryRepository
	incomeRepo       *repository.IncomeRepository
	timerRepo        *repository.TimerRepository
	notificationRepo *repository.NotificationRepository
	activityRepo     *repository.ActivityRepository
	logger           *zap.Logger
}

func NewDashboardService(
	userRepo *repository.UserRepository,
	projectRepo *repository.ProjectRepository,
	taskRepo *repository.TaskRepository,
	customerRepo *repository.CustomerRepository,
	timeEntryRepo *repository.TimeEntryRepository,
	incomeRepo *repository.IncomeRepository,
	timerRepo *repository.TimerRepository,
	notificationRepo *repository.NotificationRepository,
	activityRepo *repository.ActivityRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		userRepo:         userRepo,
		projectRepo:      projectRepo,
		taskRepo:         taskRepo,
		customerRepo:     customerRepo,
		timeEntryRepo:    timeEntryRepo,
		incomeRepo:       incomeRepo,
		timerRepo:        timerRepo,
		notificationRepo: notificationRepo,
		activityRepo:     activityRepo,
		logger:           logger,
	}
}

// Snapshot assembles every collection the user owns plus derived analytics
// into one response, so clients bootstrap with a single round trip
func (s *DashboardService) Snapshot(ctx context.Context, userID uuid.UUID) (*domain.DashboardSnapshot, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	projects, err := s.projectRepo.ListAllForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projectIDs := make([]uuid.UUID, len(projects))
	for i, project := range projects {
		projectIDs[i] = project.ID
	}

	tasks, err := s.taskRepo.ListByProjects(ctx, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	customers, err := s.customerRepo.ListAllForOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	timeEntries, err := s.timeEntryRepo.ListAllForOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}

	incomes, err := s.incomeRepo.ListAllForOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomes: %w", err)
	}

	notifications, err := s.notificationRepo.ListForUser(ctx, userID, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	activities, err := s.activityRepo.ListForUser(ctx, userID, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	analytics, err := s.Analytics(ctx, userID, projects, tasks, customers)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.DashboardSnapshot{
		Projects:      make([]domain.ProjectDTO, len(projects)),
		Tasks:         make([]domain.TaskDTO, len(tasks)),
		Customers:     make([]domain.CustomerDTO, len(customers)),
		TimeEntries:   make([]domain.TimeEntryDTO, len(timeEntries)),
		Incomes:       make([]domain.IncomeDTO, len(incomes)),
		Notifications: make([]domain.NotificationDTO, len(notifications)),
		Activities:    make([]domain.ActivityDTO, len(activities)),
		Analytics:     *analytics,
	}

	userDTO := mapper.ToUserDTO(user)
	snapshot.User = &userDTO

	for i := range projects {
		snapshot.Projects[i] = mapper.ToProjectDTO(&projects[i])
	}
	for i := range tasks {
		snapshot.Tasks[i] = mapper.ToTaskDTO(&tasks[i])
	}
	for i := range customers {
		snapshot.Customers[i] = mapper.ToCustomerDTO(&customers[i])
	}
	for i := range timeEntries {
		snapshot.TimeEntries[i] = mapper.ToTimeEntryDTO(&timeEntries[i])
	}
	for i := range incomes {
		snapshot.Incomes[i] = mapper.ToIncomeDTO(&incomes[i])
	}
	for i := range notifications {
		snapshot.Notifications[i] = mapper.ToNotificationDTO(&notifications[i])
	}
	for i := range activities {
		snapshot.Activities[i] = mapper.ToActivityDTO(&activities[i])
	}

	if timer, err := s.timerRepo.GetForUser(ctx, userID); err == nil {
		timerDTO := mapper.ToActiveTimerDTO(timer)
		snapshot.ActiveTimer = &timerDTO
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get active timer: %w", err)
	}

	return snapshot, nil
}

// Analytics computes the derived dashboard metrics. The caller passes in
// already loaded projects, tasks and customers to avoid duplicate queries.
func (s *DashboardService) Analytics(
	ctx context.Context,
	userID uuid.UUID,
	projects []domain.Project,
	tasks []domain.Task,
	customers []domain.Customer,
) (*domain.DashboardAnalytics, error) {
	timeTotals, err := s.timeEntryRepo.TotalsByCustomer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate time totals: %w", err)
	}

	revenues, err := s.incomeRepo.RevenueByCustomer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	secondsByCustomer := make(map[uuid.UUID]int64, len(timeTotals))
	var totalSeconds int64
	for _, t := range timeTotals {
		secondsByCustomer[t.CustomerID] = t.TotalSeconds
		totalSeconds += t.TotalSeconds
	}

	revenueByCustomer := make(map[uuid.UUID]float64, len(revenues))
	var totalRevenue float64
	for _, r := range revenues {
		revenueByCustomer[r.CustomerID] = r.Revenue
		totalRevenue += r.Revenue
	}

	totalHours := float64(totalSeconds) / 3600

	activeProjects := 0
	for _, project := range projects {
		if project.Status == domain.ProjectStatusInProgress {
			activeProjects++
		}
	}

	openTasks := 0
	for _, task := range tasks {
		if task.Status != domain.TaskStatusCompleted {
			openTasks++
		}
	}

	analytics := &domain.DashboardAnalytics{
		TotalHours:     round2(totalHours),
		TotalIncome:    round2(totalRevenue),
		ActiveProjects: activeProjects,
		OpenTasks:      openTasks,
		CustomerScores: scoreCustomers(customers, secondsByCustomer, revenueByCustomer),
	}
	if totalHours > 0 {
		analytics.IncomePerHour = round2(totalRevenue / totalHours)
	}

	return analytics, nil
}

// scoreCustomers ranks customers by expected monthly value.
//
// The base is the expected monthly revenue under the customer's billing
// model (hourly rate times estimated hours, the retainer amount, or the
// project fee spread over twelve months), weighted by model
// predictability. When tracked work exists, the base is scaled by the
// realized rate relative to the agreed hourly rate, so customers who pay
// above their nominal rate score higher. Customers who referred others
// get a flat bonus.
func scoreCustomers(
	customers []domain.Customer,
	secondsByCustomer map[uuid.UUID]int64,
	revenueByCustomer map[uuid.UUID]float64,
) []domain.CustomerScore {
	referralCounts := make(map[uuid.UUID]int)
	for _, customer := range customers {
		if customer.ReferredByID != nil {
			referralCounts[*customer.ReferredByID]++
		}
	}

	scores := make([]domain.CustomerScore, 0, len(customers))
	for _, customer := range customers {
		trackedHours := float64(secondsByCustomer[customer.ID]) / 3600
		revenue := revenueByCustomer[customer.ID]

		incomePerHour := 0.0
		if trackedHours > 0 {
			incomePerHour = revenue / trackedHours
		}

		expected := expectedMonthlyRevenue(&customer)
		weight, ok := billingModelWeights[customer.BillingModel]
		if !ok {
			weight = 1.0
		}

		score := expected * weight
		if incomePerHour > 0 && customer.HourlyRate > 0 {
			score *= incomePerHour / customer.HourlyRate
		}
		if referralCounts[customer.ID] > 0 {
			score *= referralBonusFactor
		}

		scores = append(scores, domain.CustomerScore{
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			TrackedHours:  round2(trackedHours),
			Revenue:       round2(revenue),
			IncomePerHour: round2(incomePerHour),
			Score:         round2(score),
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].CustomerName < scores[j].CustomerName
	})

	return scores
}

func expectedMonthlyRevenue(customer *domain.Customer) float64 {
	switch customer.BillingModel {
	case domain.BillingModelRetainer:
		return customer.MonthlyRetainer
	case domain.BillingModelProject:
		return customer.ProjectFee / 12
	default:
		return customer.HourlyRate * customer.EstimatedHoursMonth
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
