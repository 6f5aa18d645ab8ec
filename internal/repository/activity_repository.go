package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *ActivityRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Activity, error) {
	var activities []domain.Activity
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&activities).Error
	return activities, err
}

// FindDuplicate looks for an existing activity with the same description and
// actor recorded within one second of the given timestamp
func (r *ActivityRepository) FindDuplicate(ctx context.Context, userID uuid.UUID, description string, actorID uuid.UUID, occurredAt time.Time) (*domain.Activity, error) {
	var activity domain.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND description = ? AND actor_id = ?", userID, description, actorID).
		Where("occurred_at BETWEEN ? AND ?", occurredAt.Add(-time.Second), occurredAt.Add(time.Second)).
		First(&activity).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &activity, nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Activity{}, "id = ?", id).Error
}
