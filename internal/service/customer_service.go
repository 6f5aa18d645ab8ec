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

type CustomerService struct {
	customerRepo *repository.CustomerRepository
	activity     *ActivityService
	logger       *zap.Logger
}

func NewCustomerService(
	customerRepo *repository.CustomerRepository,
	activity *ActivityService,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		activity:     activity,
		logger:       logger,
	}
}

func (s *CustomerService) Create(ctx context.Context, ownerID uuid.UUID, req *domain.CreateCustomerRequest) (*domain.CustomerDTO, error) {
	status := domain.CustomerStatus(req.Status)
	if req.Status == "" {
		status = domain.CustomerStatusActive
	}
	billingModel := domain.BillingModel(req.BillingModel)
	if req.BillingModel == "" {
		billingModel = domain.BillingModelHourly
	}
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}
	joinDate := req.JoinDate
	if joinDate.IsZero() {
		joinDate = time.Now().UTC()
	}

	customer := &domain.Customer{
		Name:                req.Name,
		Status:              status,
		Email:               req.Email,
		Phone:               req.Phone,
		Country:             req.Country,
		TaxID:               req.TaxID,
		JoinDate:            joinDate,
		BillingModel:        billingModel,
		Currency:            currency,
		HourlyRate:          req.HourlyRate,
		MonthlyRetainer:     req.MonthlyRetainer,
		ProjectFee:          req.ProjectFee,
		EstimatedHoursMonth: req.EstimatedHoursMonth,
		Notes:               req.Notes,
		ReferredByID:        req.ReferredByID,
		Tags:                req.Tags,
		OwnerID:             ownerID,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.activity.Record(ctx, ownerID, domain.ActivityTypeCreate,
		fmt.Sprintf("Customer '%s' was created", customer.Name), nil, nil)

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.CustomerDTO, error) {
	customer, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) Update(ctx context.Context, ownerID, id uuid.UUID, req *domain.UpdateCustomerRequest) (*domain.CustomerDTO, error) {
	customer, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	customer.Name = req.Name
	customer.Status = domain.CustomerStatus(req.Status)
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Country = req.Country
	customer.TaxID = req.TaxID
	if !req.JoinDate.IsZero() {
		customer.JoinDate = req.JoinDate
	}
	customer.BillingModel = domain.BillingModel(req.BillingModel)
	if req.Currency != "" {
		customer.Currency = req.Currency
	}
	customer.HourlyRate = req.HourlyRate
	customer.MonthlyRetainer = req.MonthlyRetainer
	customer.ProjectFee = req.ProjectFee
	customer.EstimatedHoursMonth = req.EstimatedHoursMonth
	customer.Notes = req.Notes
	customer.ReferredByID = req.ReferredByID
	customer.Tags = req.Tags

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.activity.Record(ctx, ownerID, domain.ActivityTypeUpdate,
		fmt.Sprintf("Customer '%s' was updated", customer.Name), nil, nil)

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	customer, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.activity.Record(ctx, ownerID, domain.ActivityTypeDelete,
		fmt.Sprintf("Customer '%s' was deleted", customer.Name), nil, nil)

	return nil
}

func (s *CustomerService) List(ctx context.Context, ownerID uuid.UUID, page, pageSize int, search string) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	customers, total, err := s.customerRepo.List(ctx, ownerID, page, pageSize, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	dtos := make([]domain.CustomerDTO, len(customers))
	for i, customer := range customers {
		dtos[i] = mapper.ToCustomerDTO(&customer)
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

func (s *CustomerService) getOwned(ctx context.Context, ownerID, id uuid.UUID) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer.OwnerID != ownerID {
		return nil, ErrPermissionDenied
	}
	return customer, nil
}
