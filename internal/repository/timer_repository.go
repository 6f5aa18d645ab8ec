package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"gorm.io/gorm"
)

type TimerRepository struct {
	db *gorm.DB
}

func NewTimerRepository(db *gorm.DB) *TimerRepository {
	return &TimerRepository{db: db}
}

// GetForUser returns the user's running timer, or gorm.ErrRecordNotFound
func (r *TimerRepository) GetForUser(ctx context.Context, userID uuid.UUID) (*domain.ActiveTimer, error) {
	var timer domain.ActiveTimer
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&timer).Error
	if err != nil {
		return nil, err
	}
	return &timer, nil
}

func (r *TimerRepository) Create(ctx context.Context, timer *domain.ActiveTimer) error {
	return r.db.WithContext(ctx).Create(timer).Error
}

// DeleteForUser removes the user's timer slot
func (r *TimerRepository) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ActiveTimer{}, "user_id = ?", userID).Error
}
