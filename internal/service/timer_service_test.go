package service_test

import (
	"testing"

	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/service"
	"github.com/loopdesk/loopdesk-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerSingleSlot(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := testutil.AuthContext(user)
	customer := testutil.CreateTestCustomer(t, env.db, user.ID, "Acme")
	project := testutil.CreateTestProject(t, env.db, user.ID, "Website")

	timer, err := env.timers.Start(ctx, user.ID, &domain.StartTimerRequest{
		CustomerID: customer.ID,
		ProjectID:  project.ID,
	})
	require.NoError(t, err)
	assert.True(t, timer.IsRunning)

	// The slot is exclusive until the running timer stops.
	_, err = env.timers.Start(ctx, user.ID, &domain.StartTimerRequest{
		CustomerID: customer.ID,
		ProjectID:  project.ID,
	})
	assert.ErrorIs(t, err, service.ErrTimerAlreadyRunning)

	active, err := env.timers.GetActive(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, timer.ID, active.ID)
}

func TestTimerStopCreatesTimeEntry(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := testutil.AuthContext(user)
	customer := testutil.CreateTestCustomer(t, env.db, user.ID, "Acme")
	project := testutil.CreateTestProject(t, env.db, user.ID, "Website")

	_, err := env.timers.Start(ctx, user.ID, &domain.StartTimerRequest{
		CustomerID: customer.ID,
		ProjectID:  project.ID,
	})
	require.NoError(t, err)

	entry, err := env.timers.Stop(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, entry.CustomerID)
	assert.Equal(t, project.ID, entry.ProjectID)
	// The customer's agreed rate is snapshotted onto the entry.
	assert.Equal(t, customer.HourlyRate, entry.HourlyRate)

	// The slot is free again.
	active, err := env.timers.GetActive(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = env.timers.Stop(ctx, user.ID)
	assert.ErrorIs(t, err, service.ErrNoActiveTimer)
}
