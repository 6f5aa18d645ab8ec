package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"gorm.io/gorm"
)

type IncomeRepository struct {
	db *gorm.DB
}

func NewIncomeRepository(db *gorm.DB) *IncomeRepository {
	return &IncomeRepository{db: db}
}

func (r *IncomeRepository) Create(ctx context.Context, income *domain.Income) error {
	return r.db.WithContext(ctx).Create(income).Error
}

func (r *IncomeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Income, error) {
	var income domain.Income
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&income).Error
	if err != nil {
		return nil, err
	}
	return &income, nil
}

func (r *IncomeRepository) Update(ctx context.Context, income *domain.Income) error {
	return r.db.WithContext(ctx).Save(income).Error
}

func (r *IncomeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Income{}, "id = ?", id).Error
}

func (r *IncomeRepository) List(ctx context.Context, ownerID uuid.UUID, page, pageSize int) ([]domain.Income, int64, error) {
	var incomes []domain.Income
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Income{}).Where("owner_id = ?", ownerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("date DESC").Find(&incomes).Error

	return incomes, total, err
}

// ListAllForOwner returns every income record of the owner without paging,
// used by the consolidated dashboard fetch
func (r *IncomeRepository) ListAllForOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Income, error) {
	var incomes []domain.Income
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("date DESC").
		Find(&incomes).Error
	return incomes, err
}

// CustomerRevenue aggregates invoiced revenue per customer
type CustomerRevenue struct {
	CustomerID uuid.UUID
	Revenue    float64
}

// RevenueByCustomer sums pre-VAT revenue grouped by customer for one owner
func (r *IncomeRepository) RevenueByCustomer(ctx context.Context, ownerID uuid.UUID) ([]CustomerRevenue, error) {
	var revenues []CustomerRevenue
	err := r.db.WithContext(ctx).Model(&domain.Income{}).
		Select("customer_id, SUM(amount_before_vat) AS revenue").
		Where("owner_id = ?", ownerID).
		Group("customer_id").
		Scan(&revenues).Error
	return revenues, err
}
