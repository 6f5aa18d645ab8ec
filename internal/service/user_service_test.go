package service_test

import (
	"context"
	"testing"

	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupIssuesTokenAndStartsTrial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.users.Signup(ctx, &domain.SignupRequest{
		Email:       "new@example.com",
		DisplayName: "New User",
		Password:    "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.Equal(t, domain.RoleOwner, resp.User.Role)

	sub, err := env.subscriptions.GetForUser(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusTrialing, sub.Status)
}

func TestSignupRejectsTakenEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Signup(ctx, &domain.SignupRequest{
		Email:       "dup@example.com",
		DisplayName: "First",
		Password:    "correct-horse-battery",
	})
	require.NoError(t, err)

	_, err = env.users.Signup(ctx, &domain.SignupRequest{
		Email:       "dup@example.com",
		DisplayName: "Second",
		Password:    "correct-horse-battery",
	})
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Signup(ctx, &domain.SignupRequest{
		Email:       "login@example.com",
		DisplayName: "Login User",
		Password:    "correct-horse-battery",
	})
	require.NoError(t, err)

	resp, err := env.users.Login(ctx, &domain.LoginRequest{
		Email:    "login@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = env.users.Login(ctx, &domain.LoginRequest{
		Email:    "login@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = env.users.Login(ctx, &domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}
