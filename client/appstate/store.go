package appstate

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/client/cache"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"go.uber.org/zap"
)

// Cache keys for the persisted state slices.
const (
	keyUser          = "user"
	keyPrefs         = "prefs"
	keyProjects      = "projects"
	keyTasks         = "tasks"
	keyCustomers     = "customers"
	keyTimeEntries   = "time_entries"
	keyIncomes       = "incomes"
	keyActivities    = "activities"
	keyNotifications = "notifications"
	keyActiveTimer   = "active_timer"
)

type preferences struct {
	Locale string `json:"locale"`
	Theme  string `json:"theme"`
}

// Remote is the subset of the API client the store reconciles through.
type Remote interface {
	Signout(ctx context.Context) error
	CreateProject(ctx context.Context, req domain.CreateProjectRequest) (*domain.ProjectDTO, error)
	UpdateProject(ctx context.Context, id uuid.UUID, req domain.UpdateProjectRequest) (*domain.ProjectDTO, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error
	CreateTask(ctx context.Context, req domain.CreateTaskRequest) (*domain.TaskDTO, error)
	UpdateTask(ctx context.Context, id uuid.UUID, req domain.UpdateTaskRequest) (*domain.TaskDTO, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	CreateCustomer(ctx context.Context, req domain.CreateCustomerRequest) (*domain.CustomerDTO, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, req domain.UpdateCustomerRequest) (*domain.CustomerDTO, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	CreateTimeEntry(ctx context.Context, req domain.CreateTimeEntryRequest) (*domain.TimeEntryDTO, error)
	UpdateTimeEntry(ctx context.Context, id uuid.UUID, req domain.CreateTimeEntryRequest) (*domain.TimeEntryDTO, error)
	DeleteTimeEntry(ctx context.Context, id uuid.UUID) error
	CreateIncome(ctx context.Context, req domain.CreateIncomeRequest) (*domain.IncomeDTO, error)
	UpdateIncome(ctx context.Context, id uuid.UUID, req domain.CreateIncomeRequest) (*domain.IncomeDTO, error)
	DeleteIncome(ctx context.Context, id uuid.UUID) error
	AppendActivity(ctx context.Context, req domain.CreateActivityRequest) (*domain.ActivityDTO, error)
}

// Store owns the canonical state. Actions are dispatched one at a time
// under the mutex; the cache write for the affected slices completes
// before Dispatch returns, while remote reconciliation runs on the queue
// afterwards.
type Store struct {
	mu     sync.Mutex
	state  State
	cache  *cache.Cache
	remote Remote
	queue  *ReconcileQueue
	logger *zap.Logger
	now    func() time.Time

	tickerStop chan struct{}
	tickerDone chan struct{}
}

func NewStore(c *cache.Cache, remote Remote, logger *zap.Logger) *Store {
	return &Store{
		state:  emptyState(),
		cache:  c,
		remote: remote,
		queue:  NewReconcileQueue(logger, 30*time.Second),
		logger: logger,
		now:    time.Now,
	}
}

// Snapshot returns a copy of the current state.
func (st *Store) Snapshot() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.clone()
}

// Queue exposes the reconciliation queue for status observation.
func (st *Store) Queue() *ReconcileQueue {
	return st.queue
}

// Restore replaces the whole state without enqueueing reconciliation.
// Used by the bootstrap orchestrator after a fetch or cache load.
func (st *Store) Restore(state State) {
	st.mu.Lock()
	defer st.mu.Unlock()
	state.Projects = recomputeProgress(state.Projects, state.Tasks)
	st.state = state.clone()
	st.persistAll()
}

// Hydrate rebuilds state from the durable cache. Missing or corrupt keys
// leave the corresponding slice at its default.
func (st *Store) Hydrate() {
	st.mu.Lock()
	defer st.mu.Unlock()

	state := emptyState()
	if user, ok := cache.Get[*domain.UserDTO](st.cache, keyUser); ok && user != nil {
		state.User = user
		state.SignedIn = true
	}
	if prefs, ok := cache.Get[preferences](st.cache, keyPrefs); ok {
		if prefs.Locale != "" {
			state.Locale = prefs.Locale
		}
		if prefs.Theme != "" {
			state.Theme = prefs.Theme
		}
	}
	if projects, ok := cache.Get[[]domain.ProjectDTO](st.cache, keyProjects); ok {
		state.Projects = projects
	}
	if tasks, ok := cache.Get[[]domain.TaskDTO](st.cache, keyTasks); ok {
		state.Tasks = tasks
	}
	if customers, ok := cache.Get[[]domain.CustomerDTO](st.cache, keyCustomers); ok {
		state.Customers = customers
	}
	if entries, ok := cache.Get[[]domain.TimeEntryDTO](st.cache, keyTimeEntries); ok {
		state.TimeEntries = entries
	}
	if incomes, ok := cache.Get[[]domain.IncomeDTO](st.cache, keyIncomes); ok {
		state.Incomes = incomes
	}
	if activities, ok := cache.Get[[]domain.ActivityDTO](st.cache, keyActivities); ok {
		state.Activities = activities
	}
	if notifications, ok := cache.Get[[]domain.NotificationDTO](st.cache, keyNotifications); ok {
		state.Notifications = notifications
	}
	if timer, ok := cache.Get[*domain.ActiveTimerDTO](st.cache, keyActiveTimer); ok {
		state.ActiveTimer = timer
	}
	state.Projects = recomputeProgress(state.Projects, state.Tasks)
	st.state = state
}

// Dispatch applies one action. The state transition and cache write are
// synchronous; any remote reconciliation is enqueued and observable via
// Queue.
func (st *Store) Dispatch(action Action) {
	st.mu.Lock()
	defer st.mu.Unlock()

	prev := st.state
	next := reduce(prev, action)
	st.state = next

	if _, ok := action.(SignOut); ok {
		st.cache.Clear()
		st.queue.Enqueue("auth.signout", func(ctx context.Context) error {
			return st.remote.Signout(ctx)
		})
		return
	}

	st.persist(action)
	st.reconcile(action)
	st.reconcileProgress(prev.Projects, next.Projects)
}

// persist mirrors the slices an action touched into the durable cache.
func (st *Store) persist(action Action) {
	switch action.(type) {
	case SetSession, ClearSession:
		st.cache.Set(keyUser, st.state.User)
	case SetLocale, SetTheme:
		st.cache.Set(keyPrefs, preferences{Locale: st.state.Locale, Theme: st.state.Theme})
	case SetProjects, AddProject, UpdateProject:
		st.cache.Set(keyProjects, st.state.Projects)
	case DeleteProject:
		st.cache.Set(keyProjects, st.state.Projects)
		st.cache.Set(keyTasks, st.state.Tasks)
	case SetTasks, AddTask, UpdateTask, DeleteTask:
		st.cache.Set(keyTasks, st.state.Tasks)
		// Progress is derived from tasks, so the project slice moved too.
		st.cache.Set(keyProjects, st.state.Projects)
	case SetCustomers, AddCustomer, UpdateCustomer, DeleteCustomer:
		st.cache.Set(keyCustomers, st.state.Customers)
	case SetTimeEntries, AddTimeEntry, UpdateTimeEntry, DeleteTimeEntry:
		st.cache.Set(keyTimeEntries, st.state.TimeEntries)
	case SetIncomes, AddIncome, UpdateIncome, DeleteIncome:
		st.cache.Set(keyIncomes, st.state.Incomes)
	case SetActivities, AppendActivity:
		st.cache.Set(keyActivities, st.state.Activities)
	case SetNotifications:
		st.cache.Set(keyNotifications, st.state.Notifications)
	case SetActiveTimer:
		st.cache.Set(keyActiveTimer, st.state.ActiveTimer)
	case TimerTick:
		// Derived value only, nothing durable changed.
	}
}

func (st *Store) persistAll() {
	st.cache.Set(keyUser, st.state.User)
	st.cache.Set(keyPrefs, preferences{Locale: st.state.Locale, Theme: st.state.Theme})
	st.cache.Set(keyProjects, st.state.Projects)
	st.cache.Set(keyTasks, st.state.Tasks)
	st.cache.Set(keyCustomers, st.state.Customers)
	st.cache.Set(keyTimeEntries, st.state.TimeEntries)
	st.cache.Set(keyIncomes, st.state.Incomes)
	st.cache.Set(keyActivities, st.state.Activities)
	st.cache.Set(keyNotifications, st.state.Notifications)
	st.cache.Set(keyActiveTimer, st.state.ActiveTimer)
}

// reconcile enqueues the remote call matching a local mutation. Set*
// actions load server data and need no write back.
func (st *Store) reconcile(action Action) {
	switch a := action.(type) {
	case AddProject:
		req := createProjectRequest(a.Project)
		st.queue.Enqueue("project.create", func(ctx context.Context) error {
			_, err := st.remote.CreateProject(ctx, req)
			return err
		})
	case UpdateProject:
		id, req := a.Project.ID, updateProjectRequest(a.Project)
		st.queue.Enqueue("project.update", func(ctx context.Context) error {
			_, err := st.remote.UpdateProject(ctx, id, req)
			return err
		})
	case DeleteProject:
		id := a.ID
		st.queue.Enqueue("project.delete", func(ctx context.Context) error {
			return st.remote.DeleteProject(ctx, id)
		})
	case AddTask:
		req := createTaskRequest(a.Task)
		st.queue.Enqueue("task.create", func(ctx context.Context) error {
			_, err := st.remote.CreateTask(ctx, req)
			return err
		})
	case UpdateTask:
		id, req := a.Task.ID, updateTaskRequest(a.Task)
		st.queue.Enqueue("task.update", func(ctx context.Context) error {
			_, err := st.remote.UpdateTask(ctx, id, req)
			return err
		})
	case DeleteTask:
		id := a.ID
		st.queue.Enqueue("task.delete", func(ctx context.Context) error {
			return st.remote.DeleteTask(ctx, id)
		})
	case AddCustomer:
		req := createCustomerRequest(a.Customer)
		st.queue.Enqueue("customer.create", func(ctx context.Context) error {
			_, err := st.remote.CreateCustomer(ctx, req)
			return err
		})
	case UpdateCustomer:
		id, req := a.Customer.ID, updateCustomerRequest(a.Customer)
		st.queue.Enqueue("customer.update", func(ctx context.Context) error {
			_, err := st.remote.UpdateCustomer(ctx, id, req)
			return err
		})
	case DeleteCustomer:
		id := a.ID
		st.queue.Enqueue("customer.delete", func(ctx context.Context) error {
			return st.remote.DeleteCustomer(ctx, id)
		})
	case AddTimeEntry:
		req := timeEntryRequest(a.Entry)
		st.queue.Enqueue("time_entry.create", func(ctx context.Context) error {
			_, err := st.remote.CreateTimeEntry(ctx, req)
			return err
		})
	case UpdateTimeEntry:
		id, req := a.Entry.ID, timeEntryRequest(a.Entry)
		st.queue.Enqueue("time_entry.update", func(ctx context.Context) error {
			_, err := st.remote.UpdateTimeEntry(ctx, id, req)
			return err
		})
	case DeleteTimeEntry:
		id := a.ID
		st.queue.Enqueue("time_entry.delete", func(ctx context.Context) error {
			return st.remote.DeleteTimeEntry(ctx, id)
		})
	case AddIncome:
		req := incomeRequest(a.Income)
		st.queue.Enqueue("income.create", func(ctx context.Context) error {
			_, err := st.remote.CreateIncome(ctx, req)
			return err
		})
	case UpdateIncome:
		id, req := a.Income.ID, incomeRequest(a.Income)
		st.queue.Enqueue("income.update", func(ctx context.Context) error {
			_, err := st.remote.UpdateIncome(ctx, id, req)
			return err
		})
	case DeleteIncome:
		id := a.ID
		st.queue.Enqueue("income.delete", func(ctx context.Context) error {
			return st.remote.DeleteIncome(ctx, id)
		})
	case AppendActivity:
		// The reducer drops duplicates; only enqueue when it landed.
		if len(st.state.Activities) == 0 || st.state.Activities[0].ID != a.Activity.ID {
			return
		}
		req := activityRequest(a.Activity)
		st.queue.Enqueue("activity.append", func(ctx context.Context) error {
			_, err := st.remote.AppendActivity(ctx, req)
			return err
		})
	}
}

// reconcileProgress enqueues a background update for every project whose
// derived progress moved.
func (st *Store) reconcileProgress(prev, next []domain.ProjectDTO) {
	before := make(map[uuid.UUID]int, len(prev))
	for _, p := range prev {
		before[p.ID] = p.Progress
	}
	for _, p := range next {
		old, existed := before[p.ID]
		if !existed || old == p.Progress {
			continue
		}
		id, req := p.ID, updateProjectRequest(p)
		st.queue.Enqueue("project.progress", func(ctx context.Context) error {
			_, err := st.remote.UpdateProject(ctx, id, req)
			return err
		})
	}
}

// StartTicker begins dispatching TimerTick at the given interval. The
// ticker is the only background goroutine besides the queue worker.
func (st *Store) StartTicker(interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	st.tickerStop = make(chan struct{})
	st.tickerDone = make(chan struct{})
	go func() {
		defer close(st.tickerDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-st.tickerStop:
				return
			case <-ticker.C:
				st.Dispatch(TimerTick{Now: st.now()})
			}
		}
	}()
}

// Close stops the ticker and queue worker.
func (st *Store) Close() {
	if st.tickerStop != nil {
		close(st.tickerStop)
		<-st.tickerDone
	}
	st.queue.Close()
}
