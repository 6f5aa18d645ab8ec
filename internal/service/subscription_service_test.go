package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/service"
	"github.com/loopdesk/loopdesk-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTrial(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := context.Background()

	require.NoError(t, env.subscriptions.StartTrial(ctx, user.ID))

	sub, err := env.subscriptions.GetForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanTrial, sub.Plan)
	assert.Equal(t, domain.SubscriptionStatusTrialing, sub.Status)
	assert.NotEmpty(t, sub.TrialEndsAt)
}

func TestChangePlanKeepsStatusUntilWebhook(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := context.Background()

	require.NoError(t, env.subscriptions.StartTrial(ctx, user.ID))

	sub, err := env.subscriptions.ChangePlan(ctx, user.ID, domain.PlanStudio)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStudio, sub.Plan)
	// Activation is confirmed by the payment processor, not the plan change.
	assert.Equal(t, domain.SubscriptionStatusTrialing, sub.Status)

	_, err = env.subscriptions.ChangePlan(ctx, user.ID, domain.PlanTrial)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestWebhookActivationAndIdempotency(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := context.Background()

	require.NoError(t, env.subscriptions.StartTrial(ctx, user.ID))
	require.NoError(t, env.subscriptions.LinkProcessorSubscription(ctx, user.ID, "I-PROC123"))

	err := env.subscriptions.ApplyWebhookEvent(ctx, "WH-1", service.EventSubscriptionActivated, "I-PROC123", `{"id":"WH-1"}`)
	require.NoError(t, err)

	sub, err := env.subscriptions.GetForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusActive, sub.Status)
	assert.NotEmpty(t, sub.CurrentPeriodEnd)

	// Cancel, then redeliver the first event. The event id was already
	// processed, so the redelivery must not resurrect the subscription.
	_, err = env.subscriptions.Cancel(ctx, user.ID)
	require.NoError(t, err)

	err = env.subscriptions.ApplyWebhookEvent(ctx, "WH-1", service.EventSubscriptionActivated, "I-PROC123", `{"id":"WH-1"}`)
	require.NoError(t, err)

	sub, err = env.subscriptions.GetForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusCanceled, sub.Status)
}

func TestWebhookPaymentFailureMarksPastDue(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := context.Background()

	require.NoError(t, env.subscriptions.StartTrial(ctx, user.ID))
	require.NoError(t, env.subscriptions.LinkProcessorSubscription(ctx, user.ID, "I-PROC456"))

	err := env.subscriptions.ApplyWebhookEvent(ctx, "WH-2", service.EventPaymentFailed, "I-PROC456", `{}`)
	require.NoError(t, err)

	sub, err := env.subscriptions.GetForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusPastDue, sub.Status)
}

func TestWebhookUnknownSubscription(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.subscriptions.ApplyWebhookEvent(ctx, "WH-3", service.EventSubscriptionActivated, "I-UNKNOWN", `{}`)
	assert.ErrorIs(t, err, service.ErrSubscriptionNotFound)
}

func TestSweepExpiredTrials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	expiredUser := testutil.CreateTestUser(t, env.db, "expired@example.com")
	runningUser := testutil.CreateTestUser(t, env.db, "running@example.com")

	past := time.Now().UTC().Add(-48 * time.Hour)
	future := time.Now().UTC().Add(48 * time.Hour)
	require.NoError(t, env.db.Create(&domain.Subscription{
		UserID:      expiredUser.ID,
		Plan:        domain.PlanTrial,
		Status:      domain.SubscriptionStatusTrialing,
		TrialEndsAt: &past,
	}).Error)
	require.NoError(t, env.db.Create(&domain.Subscription{
		UserID:      runningUser.ID,
		Plan:        domain.PlanTrial,
		Status:      domain.SubscriptionStatusTrialing,
		TrialEndsAt: &future,
	}).Error)

	swept, err := env.subscriptions.SweepExpiredTrials(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	expired, err := env.subscriptions.GetForUser(ctx, expiredUser.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusPastDue, expired.Status)

	running, err := env.subscriptions.GetForUser(ctx, runningUser.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusTrialing, running.Status)

	// The expired user got a notification about it.
	count, err := env.notifications.UnreadCount(ctx, expiredUser.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
