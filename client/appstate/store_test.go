package appstate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/client/cache"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRemote records reconciliation calls and can be told to fail.
type fakeRemote struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeRemote) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeRemote) callNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) Signout(context.Context) error { return f.record("signout") }

func (f *fakeRemote) CreateProject(context.Context, domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	return nil, f.record("project.create")
}

func (f *fakeRemote) UpdateProject(context.Context, uuid.UUID, domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	return nil, f.record("project.update")
}

func (f *fakeRemote) DeleteProject(context.Context, uuid.UUID) error {
	return f.record("project.delete")
}

func (f *fakeRemote) CreateTask(context.Context, domain.CreateTaskRequest) (*domain.TaskDTO, error) {
	return nil, f.record("task.create")
}

func (f *fakeRemote) UpdateTask(context.Context, uuid.UUID, domain.UpdateTaskRequest) (*domain.TaskDTO, error) {
	return nil, f.record("task.update")
}

func (f *fakeRemote) DeleteTask(context.Context, uuid.UUID) error {
	return f.record("task.delete")
}

func (f *fakeRemote) CreateCustomer(context.Context, domain.CreateCustomerRequest) (*domain.CustomerDTO, error) {
	return nil, f.record("customer.create")
}

func (f *fakeRemote) UpdateCustomer(context.Context, uuid.UUID, domain.UpdateCustomerRequest) (*domain.CustomerDTO, error) {
	return nil, f.record("customer.update")
}

func (f *fakeRemote) DeleteCustomer(context.Context, uuid.UUID) error {
	return f.record("customer.delete")
}

func (f *fakeRemote) CreateTimeEntry(context.Context, domain.CreateTimeEntryRequest) (*domain.TimeEntryDTO, error) {
	return nil, f.record("time_entry.create")
}

func (f *fakeRemote) UpdateTimeEntry(context.Context, uuid.UUID, domain.CreateTimeEntryRequest) (*domain.TimeEntryDTO, error) {
	return nil, f.record("time_entry.update")
}

func (f *fakeRemote) DeleteTimeEntry(context.Context, uuid.UUID) error {
	return f.record("time_entry.delete")
}

func (f *fakeRemote) CreateIncome(context.Context, domain.CreateIncomeRequest) (*domain.IncomeDTO, error) {
	return nil, f.record("income.create")
}

func (f *fakeRemote) UpdateIncome(context.Context, uuid.UUID, domain.CreateIncomeRequest) (*domain.IncomeDTO, error) {
	return nil, f.record("income.update")
}

func (f *fakeRemote) DeleteIncome(context.Context, uuid.UUID) error {
	return f.record("income.delete")
}

func (f *fakeRemote) AppendActivity(context.Context, domain.CreateActivityRequest) (*domain.ActivityDTO, error) {
	return nil, f.record("activity.append")
}

func newTestStore(t *testing.T) (*Store, *fakeRemote, *cache.Cache) {
	t.Helper()
	c, err := cache.New(t.TempDir(), "state", zap.NewNop())
	require.NoError(t, err)
	remote := &fakeRemote{}
	store := NewStore(c, remote, zap.NewNop())
	t.Cleanup(store.Close)
	return store, remote, c
}

func drain(t *testing.T, store *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, store.Queue().Wait(ctx))
}

func newProject(title string) domain.ProjectDTO {
	return domain.ProjectDTO{
		ID:        uuid.New(),
		Title:     title,
		StartDate: "2025-06-01T00:00:00Z",
		Status:    domain.ProjectStatusInProgress,
		Priority:  domain.PriorityMedium,
	}
}

func newTask(projectID uuid.UUID, status domain.TaskStatus) domain.TaskDTO {
	return domain.TaskDTO{
		ID:        uuid.New(),
		Title:     "Task",
		ProjectID: projectID,
		Status:    status,
		Priority:  domain.PriorityMedium,
	}
}

func TestDispatchRecomputesProjectProgress(t *testing.T) {
	store, _, _ := newTestStore(t)

	project := newProject("Website")
	store.Dispatch(SetProjects{Projects: []domain.ProjectDTO{project}})

	// Three open tasks plus one completed puts progress at 25.
	for i := 0; i < 3; i++ {
		store.Dispatch(AddTask{Task: newTask(project.ID, domain.TaskStatusTodo)})
	}
	store.Dispatch(AddTask{Task: newTask(project.ID, domain.TaskStatusCompleted)})

	state := store.Snapshot()
	require.Len(t, state.Projects, 1)
	assert.Equal(t, 25, state.Projects[0].Progress)

	// Completing a second task moves it to 50.
	open := state.Tasks[0]
	open.Status = domain.TaskStatusCompleted
	store.Dispatch(UpdateTask{Task: open})

	state = store.Snapshot()
	assert.Equal(t, 50, state.Projects[0].Progress)
}

func TestProgressChangeEnqueuesBackgroundUpdate(t *testing.T) {
	store, remote, _ := newTestStore(t)

	project := newProject("Website")
	store.Dispatch(SetProjects{Projects: []domain.ProjectDTO{project}})
	store.Dispatch(AddTask{Task: newTask(project.ID, domain.TaskStatusCompleted)})
	drain(t, store)

	calls := remote.callNames()
	assert.Contains(t, calls, "task.create")
	// Progress moved from 0 to 100, so the project was synced too.
	assert.Contains(t, calls, "project.update")
}

func TestCacheWriteHappensBeforeDispatchReturns(t *testing.T) {
	store, _, c := newTestStore(t)

	project := newProject("Website")
	store.Dispatch(SetProjects{Projects: []domain.ProjectDTO{project}})

	cached, ok := cache.Get[[]domain.ProjectDTO](c, "projects")
	require.True(t, ok)
	require.Len(t, cached, 1)
	assert.Equal(t, project.ID, cached[0].ID)
}

func TestRemoteFailureDoesNotRollBackState(t *testing.T) {
	store, remote, _ := newTestStore(t)
	remote.err = assert.AnError

	project := newProject("Website")
	store.Dispatch(AddProject{Project: project})
	drain(t, store)

	// The optimistic update survives the failed sync.
	state := store.Snapshot()
	require.Len(t, state.Projects, 1)

	ops := store.Queue().Operations()
	require.NotEmpty(t, ops)
	assert.Equal(t, OperationFailed, ops[0].Status)
	assert.ErrorIs(t, ops[0].Err, assert.AnError)
}

func TestQueueStatusObservable(t *testing.T) {
	store, _, _ := newTestStore(t)

	store.Dispatch(AddCustomer{Customer: domain.CustomerDTO{ID: uuid.New(), Name: "Acme"}})
	drain(t, store)

	ops := store.Queue().Operations()
	require.Len(t, ops, 1)
	assert.Equal(t, "customer.create", ops[0].Name)
	assert.Equal(t, OperationSucceeded, ops[0].Status)

	op, ok := store.Queue().Status(ops[0].ID)
	require.True(t, ok)
	assert.Equal(t, OperationSucceeded, op.Status)
}

func TestActivityAppendDeduplicates(t *testing.T) {
	store, remote, _ := newTestStore(t)
	actor := uuid.New()

	first := domain.ActivityDTO{
		ID:          uuid.New(),
		Type:        domain.ActivityTypeCreate,
		Description: "Created project Website",
		ActorID:     actor,
		OccurredAt:  "2025-06-02T10:00:00Z",
	}
	duplicate := domain.ActivityDTO{
		ID:          uuid.New(),
		Type:        domain.ActivityTypeCreate,
		Description: "Created project Website",
		ActorID:     actor,
		OccurredAt:  "2025-06-02T10:00:00Z",
	}

	store.Dispatch(AppendActivity{Activity: first})
	store.Dispatch(AppendActivity{Activity: duplicate})
	drain(t, store)

	state := store.Snapshot()
	assert.Len(t, state.Activities, 1)
	assert.Equal(t, first.ID, state.Activities[0].ID)

	// The duplicate never reached the backend either.
	count := 0
	for _, name := range remote.callNames() {
		if name == "activity.append" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSignOutClearsCacheAndResets(t *testing.T) {
	store, remote, c := newTestStore(t)

	store.Dispatch(SetSession{User: &domain.UserDTO{ID: uuid.New(), Email: "a@b.c"}})
	store.Dispatch(SetProjects{Projects: []domain.ProjectDTO{newProject("Website")}})

	store.Dispatch(SignOut{})
	drain(t, store)

	state := store.Snapshot()
	assert.Nil(t, state.User)
	assert.False(t, state.SignedIn)
	assert.Empty(t, state.Projects)

	_, ok := cache.Get[[]domain.ProjectDTO](c, "projects")
	assert.False(t, ok)

	assert.Contains(t, remote.callNames(), "signout")
}

func TestTimerTick(t *testing.T) {
	store, _, _ := newTestStore(t)

	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	store.Dispatch(SetActiveTimer{Timer: &domain.ActiveTimerDTO{
		ID:        uuid.New(),
		StartTime: start.Format(time.RFC3339),
		IsRunning: true,
	}})

	store.Dispatch(TimerTick{Now: start.Add(90 * time.Second)})
	assert.Equal(t, int64(90), store.Snapshot().ElapsedSeconds)

	// Tick without a running timer is a no-op.
	store.Dispatch(SetActiveTimer{Timer: nil})
	store.Dispatch(TimerTick{Now: start.Add(5 * time.Minute)})
	assert.Equal(t, int64(0), store.Snapshot().ElapsedSeconds)
}

func TestDeleteProjectDropsItsTasks(t *testing.T) {
	store, _, _ := newTestStore(t)

	keep := newProject("Keep")
	drop := newProject("Drop")
	store.Dispatch(SetProjects{Projects: []domain.ProjectDTO{keep, drop}})
	store.Dispatch(AddTask{Task: newTask(keep.ID, domain.TaskStatusTodo)})
	store.Dispatch(AddTask{Task: newTask(drop.ID, domain.TaskStatusTodo)})

	store.Dispatch(DeleteProject{ID: drop.ID})

	state := store.Snapshot()
	require.Len(t, state.Projects, 1)
	assert.Equal(t, keep.ID, state.Projects[0].ID)
	require.Len(t, state.Tasks, 1)
	assert.Equal(t, keep.ID, state.Tasks[0].ProjectID)
}

func TestHydrateRestoresFromCache(t *testing.T) {
	c, err := cache.New(t.TempDir(), "state", zap.NewNop())
	require.NoError(t, err)
	remote := &fakeRemote{}

	first := NewStore(c, remote, zap.NewNop())
	project := newProject("Website")
	first.Dispatch(SetProjects{Projects: []domain.ProjectDTO{project}})
	first.Dispatch(SetSession{User: &domain.UserDTO{ID: uuid.New(), Email: "a@b.c"}})
	first.Close()

	second := NewStore(c, remote, zap.NewNop())
	defer second.Close()
	second.Hydrate()

	state := second.Snapshot()
	require.NotNil(t, state.User)
	assert.True(t, state.SignedIn)
	require.Len(t, state.Projects, 1)
	assert.Equal(t, project.ID, state.Projects[0].ID)
}
