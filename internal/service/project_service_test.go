package service_test

import (
	"testing"
	"time"

	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectProgressFollowsTaskCompletion(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := testutil.AuthContext(user)

	project, err := env.projects.Create(ctx, user.ID, &domain.CreateProjectRequest{
		Title:     "Website redesign",
		StartDate: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, project.Progress)

	// Three open tasks plus one completed puts progress at 25.
	var completed *domain.TaskDTO
	for i := 0; i < 3; i++ {
		_, err := env.tasks.Create(ctx, user.ID, &domain.CreateTaskRequest{
			Title:     "Open task",
			ProjectID: project.ID,
		})
		require.NoError(t, err)
	}
	completed, err = env.tasks.Create(ctx, user.ID, &domain.CreateTaskRequest{
		Title:     "Done task",
		ProjectID: project.ID,
		Status:    string(domain.TaskStatusCompleted),
	})
	require.NoError(t, err)

	got, err := env.projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Progress)

	// Completing a second task moves it to 50.
	tasks, err := env.tasks.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	var open *domain.TaskDTO
	for i := range tasks {
		if tasks[i].ID != completed.ID {
			open = &tasks[i]
			break
		}
	}
	require.NotNil(t, open)

	_, err = env.tasks.Update(ctx, user.ID, open.ID, &domain.UpdateTaskRequest{
		Title:    open.Title,
		Status:   string(domain.TaskStatusCompleted),
		Priority: string(domain.PriorityMedium),
	})
	require.NoError(t, err)

	got, err = env.projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Progress)
}

func TestProjectProgressDropsWithTaskDeletion(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := testutil.AuthContext(user)

	project, err := env.projects.Create(ctx, user.ID, &domain.CreateProjectRequest{
		Title:     "Cleanup",
		StartDate: time.Now().UTC(),
	})
	require.NoError(t, err)

	done, err := env.tasks.Create(ctx, user.ID, &domain.CreateTaskRequest{
		Title:     "Done",
		ProjectID: project.ID,
		Status:    string(domain.TaskStatusCompleted),
	})
	require.NoError(t, err)
	_, err = env.tasks.Create(ctx, user.ID, &domain.CreateTaskRequest{
		Title:     "Open",
		ProjectID: project.ID,
	})
	require.NoError(t, err)

	got, err := env.projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Progress)

	require.NoError(t, env.tasks.Delete(ctx, user.ID, done.ID))

	got, err = env.projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Progress)
}

func TestProjectUpdateNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := testutil.AuthContext(user)

	_, err := env.projects.GetByID(ctx, user.ID)
	assert.Error(t, err)
}
