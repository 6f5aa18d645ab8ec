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

type IncomeService struct {
	incomeRepo *repository.IncomeRepository
	activity   *ActivityService
	logger     *zap.Logger
}

func NewIncomeService(
	incomeRepo *repository.IncomeRepository,
	activity *ActivityService,
	logger *zap.Logger,
) *IncomeService {
	return &IncomeService{
		incomeRepo: incomeRepo,
		activity:   activity,
		logger:     logger,
	}
}

func (s *IncomeService) Create(ctx context.Context, ownerID uuid.UUID, req *domain.CreateIncomeRequest) (*domain.IncomeDTO, error) {
	income := &domain.Income{
		CustomerID:      req.CustomerID,
		Date:            req.Date,
		InvoiceNumber:   req.InvoiceNumber,
		VatRate:         req.VatRate,
		AmountBeforeVat: req.AmountBeforeVat,
		OwnerID:         ownerID,
	}
	income.Recalculate()

	if err := s.incomeRepo.Create(ctx, income); err != nil {
		return nil, fmt.Errorf("failed to create income: %w", err)
	}

	s.activity.Record(ctx, ownerID, domain.ActivityTypeCreate,
		fmt.Sprintf("Income of %.2f was recorded", income.FinalAmount), nil, nil)

	dto := mapper.ToIncomeDTO(income)
	return &dto, nil
}

func (s *IncomeService) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.IncomeDTO, error) {
	income, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToIncomeDTO(income)
	return &dto, nil
}

func (s *IncomeService) Update(ctx context.Context, ownerID, id uuid.UUID, req *domain.CreateIncomeRequest) (*domain.IncomeDTO, error) {
	income, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	income.CustomerID = req.CustomerID
	income.Date = req.Date
	income.InvoiceNumber = req.InvoiceNumber
	income.VatRate = req.VatRate
	income.AmountBeforeVat = req.AmountBeforeVat
	income.Recalculate()

	if err := s.incomeRepo.Update(ctx, income); err != nil {
		return nil, fmt.Errorf("failed to update income: %w", err)
	}

	dto := mapper.ToIncomeDTO(income)
	return &dto, nil
}

func (s *IncomeService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.incomeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete income: %w", err)
	}

	return nil
}

func (s *IncomeService) List(ctx context.Context, ownerID uuid.UUID, page, pageSize int) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	incomes, total, err := s.incomeRepo.List(ctx, ownerID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomes: %w", err)
	}

	dtos := make([]domain.IncomeDTO, len(incomes))
	for i, income := range incomes {
		dtos[i] = mapper.ToIncomeDTO(&income)
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

func (s *IncomeService) getOwned(ctx context.Context, ownerID, id uuid.UUID) (*domain.Income, error) {
	income, err := s.incomeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get income: %w", err)
	}
	if income.OwnerID != ownerID {
		return nil, ErrPermissionDenied
	}
	return income, nil
}
