package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/auth"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/mapper"
	"github.com/loopdesk/loopdesk-api/internal/repository"
	"go.uber.org/zap"
)

type ActivityService struct {
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

func NewActivityService(activityRepo *repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// Append records an activity event for the user. An event with the same
// description and actor within one second of an existing one is treated as a
// double dispatch and returns the existing record unchanged.
func (s *ActivityService) Append(ctx context.Context, userID uuid.UUID, req *domain.CreateActivityRequest) (*domain.ActivityDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil && !req.OccurredAt.IsZero() {
		occurredAt = req.OccurredAt.UTC()
	}

	existing, err := s.activityRepo.FindDuplicate(ctx, userID, req.Description, userCtx.UserID, occurredAt)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate activity: %w", err)
	}
	if existing != nil {
		s.logger.Debug("duplicate activity suppressed",
			zap.String("user_id", userID.String()),
			zap.String("description", req.Description),
		)
		dto := mapper.ToActivityDTO(existing)
		return &dto, nil
	}

	activity := &domain.Activity{
		UserID:      userID,
		Type:        domain.ActivityType(req.Type),
		Description: req.Description,
		ActorID:     userCtx.UserID,
		ActorName:   userCtx.DisplayName,
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		OccurredAt:  occurredAt,
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	dto := mapper.ToActivityDTO(activity)
	return &dto, nil
}

// Record is the internal entry point other services use for side-effect
// activity entries. Failures are logged, never propagated.
func (s *ActivityService) Record(ctx context.Context, userID uuid.UUID, activityType domain.ActivityType, description string, projectID, taskID *uuid.UUID) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return
	}

	occurredAt := time.Now().UTC()

	existing, err := s.activityRepo.FindDuplicate(ctx, userID, description, userCtx.UserID, occurredAt)
	if err != nil || existing != nil {
		return
	}

	activity := &domain.Activity{
		UserID:      userID,
		Type:        activityType,
		Description: description,
		ActorID:     userCtx.UserID,
		ActorName:   userCtx.DisplayName,
		ProjectID:   projectID,
		TaskID:      taskID,
		OccurredAt:  occurredAt,
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity",
			zap.String("description", description),
			zap.Error(err),
		)
	}
}

func (s *ActivityService) List(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ActivityDTO, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	activities, err := s.activityRepo.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	dtos := make([]domain.ActivityDTO, len(activities))
	for i, activity := range activities {
		dtos[i] = mapper.ToActivityDTO(&activity)
	}

	return dtos, nil
}
