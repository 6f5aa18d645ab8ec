package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/mapper"
	"github.com/loopdesk/loopdesk-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TimeEntryService struct {
	timeEntryRepo *repository.TimeEntryRepository
	customerRepo  *repository.CustomerRepository
	activity      *ActivityService
	logger        *zap.Logger
}

func NewTimeEntryService(
	timeEntryRepo *repository.TimeEntryRepository,
	customerRepo *repository.CustomerRepository,
	activity *ActivityService,
	logger *zap.Logger,
) *TimeEntryService {
	return &TimeEntryService{
		timeEntryRepo: timeEntryRepo,
		customerRepo:  customerRepo,
		activity:      activity,
		logger:        logger,
	}
}

func (s *TimeEntryService) Create(ctx context.Context, ownerID uuid.UUID, req *domain.CreateTimeEntryRequest) (*domain.TimeEntryDTO, error) {
	rate := req.HourlyRate
	if rate == 0 {
		// Fall back to the customer's agreed rate when none was given
		customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
		if err == nil {
			rate = customer.HourlyRate
		}
	}

	entry := &domain.TimeEntry{
		CustomerID:  req.CustomerID,
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		HourlyRate:  rate,
		OwnerID:     ownerID,
	}
	entry.Recalculate()

	if err := s.timeEntryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}

	s.activity.Record(ctx, ownerID, domain.ActivityTypeTimer,
		fmt.Sprintf("Tracked %.2f hours", float64(entry.DurationSeconds)/3600), &entry.ProjectID, entry.TaskID)

	dto := mapper.ToTimeEntryDTO(entry)
	return &dto, nil
}

func (s *TimeEntryService) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.TimeEntryDTO, error) {
	entry, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToTimeEntryDTO(entry)
	return &dto, nil
}

func (s *TimeEntryService) Update(ctx context.Context, ownerID, id uuid.UUID, req *domain.CreateTimeEntryRequest) (*domain.TimeEntryDTO, error) {
	entry, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	entry.CustomerID = req.CustomerID
	entry.ProjectID = req.ProjectID
	entry.TaskID = req.TaskID
	entry.Description = req.Description
	entry.StartTime = req.StartTime
	entry.EndTime = req.EndTime
	if req.HourlyRate > 0 {
		entry.HourlyRate = req.HourlyRate
	}
	entry.Recalculate()

	if err := s.timeEntryRepo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update time entry: %w", err)
	}

	dto := mapper.ToTimeEntryDTO(entry)
	return &dto, nil
}

func (s *TimeEntryService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.timeEntryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}

	return nil
}

func (s *TimeEntryService) List(ctx context.Context, ownerID uuid.UUID, page, pageSize int) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	entries, total, err := s.timeEntryRepo.List(ctx, ownerID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}

	dtos := make([]domain.TimeEntryDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = mapper.ToTimeEntryDTO(&entry)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *TimeEntryService) getOwned(ctx context.Context, ownerID, id uuid.UUID) (*domain.TimeEntry, error) {
	entry, err := s.timeEntryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}
	if entry.OwnerID != ownerID {
		return nil, ErrPermissionDenied
	}
	return entry, nil
}
