package service

import (
	"context"
	"fmt"

	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/repository"
	"go.uber.org/zap"
)

type AdminService struct {
	userRepo         *repository.UserRepository
	projectRepo      *repository.ProjectRepository
	subscriptionRepo *repository.SubscriptionRepository
	logger           *zap.Logger
}

func NewAdminService(
	userRepo *repository.UserRepository,
	projectRepo *repository.ProjectRepository,
	subscriptionRepo *repository.SubscriptionRepository,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		userRepo:         userRepo,
		projectRepo:      projectRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

// Stats returns platform-wide counters
func (s *AdminService) Stats(ctx context.Context) (*domain.AdminStats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	projects, err := s.projectRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	active, err := s.subscriptionRepo.CountByStatus(ctx, domain.SubscriptionStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count active subscriptions: %w", err)
	}

	trialing, err := s.subscriptionRepo.CountByStatus(ctx, domain.SubscriptionStatusTrialing)
	if err != nil {
		return nil, fmt.Errorf("failed to count trialing subscriptions: %w", err)
	}

	return &domain.AdminStats{
		TotalUsers:         users,
		ActiveSubscription: active,
		TrialingUsers:      trialing,
		TotalProjects:      projects,
	}, nil
}
