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

func TestActivityAppendDeduplicates(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := testutil.AuthContext(user)

	occurred := time.Now().UTC().Truncate(time.Second)
	req := &domain.CreateActivityRequest{
		Type:        "create",
		Description: "Created project Website",
		OccurredAt:  &occurred,
	}

	first, err := env.activities.Append(ctx, user.ID, req)
	require.NoError(t, err)

	// Same description and actor inside the one second window collapses
	// onto the existing record.
	nearby := occurred.Add(500 * time.Millisecond)
	second, err := env.activities.Append(ctx, user.ID, &domain.CreateActivityRequest{
		Type:        "create",
		Description: "Created project Website",
		OccurredAt:  &nearby,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := env.activities.List(ctx, user.ID, 50)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestActivityAppendDistinctEventsBothLand(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := testutil.AuthContext(user)

	occurred := time.Now().UTC().Truncate(time.Second)
	_, err := env.activities.Append(ctx, user.ID, &domain.CreateActivityRequest{
		Type:        "create",
		Description: "Created project Website",
		OccurredAt:  &occurred,
	})
	require.NoError(t, err)

	later := occurred.Add(5 * time.Second)
	_, err = env.activities.Append(ctx, user.ID, &domain.CreateActivityRequest{
		Type:        "update",
		Description: "Created project Website",
		OccurredAt:  &later,
	})
	require.NoError(t, err)

	other := occurred
	_, err = env.activities.Append(ctx, user.ID, &domain.CreateActivityRequest{
		Type:        "create",
		Description: "Created customer Acme",
		OccurredAt:  &other,
	})
	require.NoError(t, err)

	list, err := env.activities.List(ctx, user.ID, 50)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestActivityAppendRequiresIdentity(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")

	_, err := env.activities.Append(context.Background(), user.ID, &domain.CreateActivityRequest{
		Type:        "create",
		Description: "No identity",
	})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}
