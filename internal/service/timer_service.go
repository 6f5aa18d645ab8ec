package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/mapper"
	"github.com/loopdesk/loopdesk-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TimerService struct {
	timerRepo    *repository.TimerRepository
	customerRepo *repository.CustomerRepository
	timeEntries  *TimeEntryService
	activity     *ActivityService
	logger       *zap.Logger
}

func NewTimerService(
	timerRepo *repository.TimerRepository,
	customerRepo *repository.CustomerRepository,
	timeEntries *TimeEntryService,
	activity *ActivityService,
	logger *zap.Logger,
) *TimerService {
	return &TimerService{
		timerRepo:    timerRepo,
		customerRepo: customerRepo,
		timeEntries:  timeEntries,
		activity:     activity,
		logger:       logger,
	}
}

// GetActive returns the user's running timer, or nil when none is running
func (s *TimerService) GetActive(ctx context.Context, userID uuid.UUID) (*domain.ActiveTimerDTO, error) {
	timer, err := s.timerRepo.GetForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active timer: %w", err)
	}

	dto := mapper.ToActiveTimerDTO(timer)
	return &dto, nil
}

// Start begins the single timer slot for the user. Only one timer may run at
// a time.
func (s *TimerService) Start(ctx context.Context, userID uuid.UUID, req *domain.StartTimerRequest) (*domain.ActiveTimerDTO, error) {
	if _, err := s.timerRepo.GetForUser(ctx, userID); err == nil {
		return nil, ErrTimerAlreadyRunning
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check active timer: %w", err)
	}

	timer := &domain.ActiveTimer{
		UserID:     userID,
		CustomerID: req.CustomerID,
		ProjectID:  req.ProjectID,
		TaskID:     req.TaskID,
		StartTime:  time.Now().UTC(),
		IsRunning:  true,
	}

	if err := s.timerRepo.Create(ctx, timer); err != nil {
		return nil, fmt.Errorf("failed to start timer: %w", err)
	}

	s.activity.Record(ctx, userID, domain.ActivityTypeTimer, "Timer started", &timer.ProjectID, timer.TaskID)

	dto := mapper.ToActiveTimerDTO(timer)
	return &dto, nil
}

// Stop ends the running timer and converts it into a time entry with derived
// duration and income
func (s *TimerService) Stop(ctx context.Context, userID uuid.UUID) (*domain.TimeEntryDTO, error) {
	timer, err := s.timerRepo.GetForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveTimer
		}
		return nil, fmt.Errorf("failed to get active timer: %w", err)
	}

	rate := 0.0
	if customer, err := s.customerRepo.GetByID(ctx, timer.CustomerID); err == nil {
		rate = customer.HourlyRate
	}

	entry, err := s.timeEntries.Create(ctx, userID, &domain.CreateTimeEntryRequest{
		CustomerID: timer.CustomerID,
		ProjectID:  timer.ProjectID,
		TaskID:     timer.TaskID,
		StartTime:  timer.StartTime,
		EndTime:    time.Now().UTC(),
		HourlyRate: rate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create time entry from timer: %w", err)
	}

	if err := s.timerRepo.DeleteForUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to clear timer slot: %w", err)
	}

	return entry, nil
}
