package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"gorm.io/gorm"
)

type TimeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

func (r *TimeEntryRepository) Create(ctx context.Context, entry *domain.TimeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *TimeEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TimeEntry, error) {
	var entry domain.TimeEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *TimeEntryRepository) Update(ctx context.Context, entry *domain.TimeEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *TimeEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.TimeEntry{}, "id = ?", id).Error
}

func (r *TimeEntryRepository) List(ctx context.Context, ownerID uuid.UUID, page, pageSize int) ([]domain.TimeEntry, int64, error) {
	var entries []domain.TimeEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.TimeEntry{}).Where("owner_id = ?", ownerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("start_time DESC").Find(&entries).Error

	return entries, total, err
}

// ListAllForOwner returns every entry of the owner without paging,
// used by the consolidated dashboard fetch
func (r *TimeEntryRepository) ListAllForOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.TimeEntry, error) {
	var entries []domain.TimeEntry
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("start_time DESC").
		Find(&entries).Error
	return entries, err
}

// CustomerTimeTotal aggregates tracked seconds and earned income per customer
type CustomerTimeTotal struct {
	CustomerID   uuid.UUID
	TotalSeconds int64
	TotalIncome  float64
}

// TotalsByCustomer sums duration and income grouped by customer for one owner
func (r *TimeEntryRepository) TotalsByCustomer(ctx context.Context, ownerID uuid.UUID) ([]CustomerTimeTotal, error) {
	var totals []CustomerTimeTotal
	err := r.db.WithContext(ctx).Model(&domain.TimeEntry{}).
		Select("customer_id, SUM(duration_seconds) AS total_seconds, SUM(income) AS total_income").
		Where("owner_id = ?", ownerID).
		Group("customer_id").
		Scan(&totals).Error
	return totals, err
}
