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

// Webhook event types emitted by the payment processor
const (
	EventSubscriptionActivated = "BILLING.SUBSCRIPTION.ACTIVATED"
	EventSubscriptionCancelled = "BILLING.SUBSCRIPTION.CANCELLED"
	EventSubscriptionSuspended = "BILLING.SUBSCRIPTION.SUSPENDED"
	EventPaymentFailed         = "BILLING.SUBSCRIPTION.PAYMENT.FAILED"
	EventPaymentCompleted      = "PAYMENT.SALE.COMPLETED"
)

type SubscriptionService struct {
	subscriptionRepo *repository.SubscriptionRepository
	webhookRepo      *repository.WebhookEventRepository
	notification     *NotificationService
	trialDays        int
	logger           *zap.Logger
}

func NewSubscriptionService(
	subscriptionRepo *repository.SubscriptionRepository,
	webhookRepo *repository.WebhookEventRepository,
	notification *NotificationService,
	trialDays int,
	logger *zap.Logger,
) *SubscriptionService {
	if trialDays <= 0 {
		trialDays = 14
	}
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		webhookRepo:      webhookRepo,
		notification:     notification,
		trialDays:        trialDays,
		logger:           logger,
	}
}

// StartTrial creates the trial subscription for a new user
func (s *SubscriptionService) StartTrial(ctx context.Context, userID uuid.UUID) error {
	trialEnd := time.Now().UTC().AddDate(0, 0, s.trialDays)

	subscription := &domain.Subscription{
		UserID:      userID,
		Plan:        domain.PlanTrial,
		Status:      domain.SubscriptionStatusTrialing,
		TrialEndsAt: &trialEnd,
	}

	if err := s.subscriptionRepo.Create(ctx, subscription); err != nil {
		return fmt.Errorf("failed to create trial subscription: %w", err)
	}

	return nil
}

func (s *SubscriptionService) GetForUser(ctx context.Context, userID uuid.UUID) (*domain.SubscriptionDTO, error) {
	subscription, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	dto := mapper.ToSubscriptionDTO(subscription)
	return &dto, nil
}

// ChangePlan switches the user to a paid plan. The subscription stays in its
// current status until the processor confirms activation via webhook.
func (s *SubscriptionService) ChangePlan(ctx context.Context, userID uuid.UUID, plan domain.SubscriptionPlan) (*domain.SubscriptionDTO, error) {
	if !plan.IsValid() || plan == domain.PlanTrial {
		return nil, ErrInvalidInput
	}

	subscription, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	subscription.Plan = plan

	if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	dto := mapper.ToSubscriptionDTO(subscription)
	return &dto, nil
}

// Cancel marks the subscription canceled immediately
func (s *SubscriptionService) Cancel(ctx context.Context, userID uuid.UUID) (*domain.SubscriptionDTO, error) {
	subscription, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	now := time.Now().UTC()
	subscription.Status = domain.SubscriptionStatusCanceled
	subscription.CanceledAt = &now

	if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	dto := mapper.ToSubscriptionDTO(subscription)
	return &dto, nil
}

// ApplyWebhookEvent applies a verified processor event to the matching
// subscription. Events are idempotent: an event id seen before is a no-op.
func (s *SubscriptionService) ApplyWebhookEvent(ctx context.Context, eventID, eventType, processorSubID, payload string) error {
	seen, err := s.webhookRepo.Exists(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to check webhook event: %w", err)
	}
	if seen {
		s.logger.Info("webhook event already processed",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
		)
		return nil
	}

	subscription, err := s.subscriptionRepo.GetByProcessorSubID(ctx, processorSubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubscriptionNotFound
		}
		return fmt.Errorf("failed to get subscription: %w", err)
	}

	now := time.Now().UTC()

	switch eventType {
	case EventSubscriptionActivated, EventPaymentCompleted:
		periodEnd := now.AddDate(0, 1, 0)
		subscription.Status = domain.SubscriptionStatusActive
		subscription.CurrentPeriodEnd = &periodEnd
		s.notification.Notify(ctx, subscription.UserID, domain.NotificationTypePaymentReceived,
			"Your subscription payment was received")

	case EventPaymentFailed, EventSubscriptionSuspended:
		subscription.Status = domain.SubscriptionStatusPastDue

	case EventSubscriptionCancelled:
		subscription.Status = domain.SubscriptionStatusCanceled
		subscription.CanceledAt = &now

	default:
		s.logger.Info("ignoring unhandled webhook event type",
			zap.String("event_type", eventType),
		)
	}

	if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	event := &domain.WebhookEvent{
		EventID:   eventID,
		EventType: eventType,
		Payload:   payload,
	}
	if err := s.webhookRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to record webhook event: %w", err)
	}

	return nil
}

// LinkProcessorSubscription stores the processor's subscription id so later
// webhook events can be matched
func (s *SubscriptionService) LinkProcessorSubscription(ctx context.Context, userID uuid.UUID, processorSubID string) error {
	subscription, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubscriptionNotFound
		}
		return fmt.Errorf("failed to get subscription: %w", err)
	}

	subscription.ProcessorSubID = processorSubID
	if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
		return fmt.Errorf("failed to link processor subscription: %w", err)
	}

	return nil
}

// SweepExpiredTrials marks trials past their end date past_due and notifies
// the affected users. Returns the number of subscriptions swept.
func (s *SubscriptionService) SweepExpiredTrials(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	expired, err := s.subscriptionRepo.ListExpiredTrials(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired trials: %w", err)
	}

	swept := 0
	for i := range expired {
		subscription := &expired[i]
		subscription.Status = domain.SubscriptionStatusPastDue

		if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
			s.logger.Error("failed to expire trial",
				zap.String("subscription_id", subscription.ID.String()),
				zap.Error(err),
			)
			continue
		}

		s.notification.Notify(ctx, subscription.UserID, domain.NotificationTypeTrialExpired,
			"Your trial has ended. Choose a plan to keep your workspace.")
		swept++
	}

	if swept > 0 {
		s.logger.Info("expired trials swept", zap.Int("count", swept))
	}

	return swept, nil
}
