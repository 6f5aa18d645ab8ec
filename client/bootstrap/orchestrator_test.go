package bootstrap

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/client/appstate"
	"github.com/loopdesk/loopdesk-api/client/cache"
	"github.com/loopdesk/loopdesk-api/client/remote"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAPI scripts the remote surface. A non-nil block channel makes
// Bootstrap wait until the channel closes, which lets tests observe
// coalescing of concurrent fetches.
type fakeAPI struct {
	mu              sync.Mutex
	tokens          []string
	meUser          *domain.UserDTO
	meErr           error
	meCalls         int
	snapshot        *domain.DashboardSnapshot
	bootstrapErr    error
	bootstrapCalls  int
	individual      *domain.DashboardSnapshot
	individualCalls int
	block           chan struct{}
}

func (f *fakeAPI) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
}

func (f *fakeAPI) Me(context.Context) (*domain.UserDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	return f.meUser, f.meErr
}

func (f *fakeAPI) Bootstrap(context.Context) (*domain.DashboardSnapshot, error) {
	f.mu.Lock()
	f.bootstrapCalls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot, f.bootstrapErr
}

func (f *fakeAPI) FetchAllIndividually(context.Context) *domain.DashboardSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.individualCalls++
	return f.individual
}

func (f *fakeAPI) lastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tokens) == 0 {
		return ""
	}
	return f.tokens[len(f.tokens)-1]
}

type sessionFunc func(ctx context.Context) (*Session, error)

func (f sessionFunc) Current(ctx context.Context) (*Session, error) { return f(ctx) }

func noSession(context.Context) (*Session, error) { return nil, nil }

func newTestStore(t *testing.T, dir string) *appstate.Store {
	t.Helper()
	c, err := cache.New(dir, "state", zap.NewNop())
	require.NoError(t, err)
	// Reconciliation targets an unreachable endpoint; failures are
	// logged and never surface.
	store := appstate.NewStore(c, remote.NewClient("http://127.0.0.1:0", zap.NewNop()), zap.NewNop())
	t.Cleanup(store.Close)
	return store
}

func testUser() *domain.UserDTO {
	return &domain.UserDTO{ID: uuid.New(), Email: "owner@example.com", Role: domain.RoleOwner}
}

func testSnapshot(user *domain.UserDTO) *domain.DashboardSnapshot {
	return &domain.DashboardSnapshot{
		User: user,
		Projects: []domain.ProjectDTO{{
			ID:        uuid.New(),
			Title:     "Website",
			StartDate: "2025-06-01T00:00:00Z",
			Status:    domain.ProjectStatusInProgress,
		}},
	}
}

func TestRunSignedInAdoptsRemoteData(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	user := testUser()
	api := &fakeAPI{meUser: user, snapshot: testSnapshot(user)}
	sessions := sessionFunc(func(context.Context) (*Session, error) {
		return &Session{UserID: user.ID.String(), Token: "tok-1"}, nil
	})

	var phases []Phase
	o := New(store, api, sessions, zap.NewNop(), WithPhaseCallback(func(p Phase) {
		phases = append(phases, p)
	}))
	o.Run(context.Background())

	assert.Equal(t, PhaseReady, o.Phase())
	assert.Equal(t, []Phase{PhaseCheckingSession, PhaseFetchingProfile, PhaseFetchingData, PhaseReady}, phases)
	assert.Equal(t, "tok-1", api.lastToken())

	state := store.Snapshot()
	assert.True(t, state.SignedIn)
	require.NotNil(t, state.User)
	assert.Equal(t, user.ID, state.User.ID)
	require.Len(t, state.Projects, 1)
	assert.Equal(t, "Website", state.Projects[0].Title)
}

func TestRunFallsBackToIndividualFetches(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	user := testUser()
	api := &fakeAPI{
		meUser:       user,
		bootstrapErr: assert.AnError,
		individual:   testSnapshot(user),
	}
	sessions := sessionFunc(func(context.Context) (*Session, error) {
		return &Session{UserID: user.ID.String(), Token: "tok-1"}, nil
	})

	o := New(store, api, sessions, zap.NewNop())
	o.Run(context.Background())

	assert.Equal(t, PhaseReady, o.Phase())
	assert.Equal(t, 1, api.individualCalls)
	require.Len(t, store.Snapshot().Projects, 1)
}

func TestRunUnauthenticatedEmptyCacheUsesDefaults(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	api := &fakeAPI{bootstrapErr: assert.AnError}

	o := New(store, api, sessionFunc(noSession), zap.NewNop())
	o.Run(context.Background())

	assert.Equal(t, PhaseReady, o.Phase())
	assert.Equal(t, "", api.lastToken())

	state := store.Snapshot()
	require.NotNil(t, state.User)
	assert.Equal(t, "guest@loopdesk.io", state.User.Email)
	assert.False(t, state.SignedIn)
	require.Len(t, state.Projects, 1)
	// One of the two sample tasks is completed.
	assert.Equal(t, 50, state.Projects[0].Progress)
}

func TestRunUnauthenticatedWarmCacheWins(t *testing.T) {
	dir := t.TempDir()

	// A previous session leaves data behind in the durable cache.
	seed := newTestStore(t, dir)
	seed.Dispatch(appstate.SetSession{User: testUser()})
	seed.Dispatch(appstate.SetProjects{Projects: []domain.ProjectDTO{{
		ID:    uuid.New(),
		Title: "Cached project",
	}}})

	store := newTestStore(t, dir)
	api := &fakeAPI{bootstrapErr: assert.AnError}

	o := New(store, api, sessionFunc(noSession), zap.NewNop())
	o.Run(context.Background())

	assert.Equal(t, PhaseReady, o.Phase())
	state := store.Snapshot()
	require.Len(t, state.Projects, 1)
	assert.Equal(t, "Cached project", state.Projects[0].Title)
}

func TestRunProfileFailureReportsOnceAndFallsBack(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	api := &fakeAPI{meErr: assert.AnError}
	sessions := sessionFunc(func(context.Context) (*Session, error) {
		return &Session{UserID: "u-1", Token: "tok-1"}, nil
	})

	var reported []error
	var phases []Phase
	o := New(store, api, sessions, zap.NewNop(),
		WithErrorCallback(func(err error) { reported = append(reported, err) }),
		WithPhaseCallback(func(p Phase) { phases = append(phases, p) }),
	)
	o.Run(context.Background())

	assert.Equal(t, PhaseReady, o.Phase())
	assert.Contains(t, phases, PhaseError)
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], assert.AnError)

	// Nothing cached, so the default dataset carries the session.
	assert.NotNil(t, store.Snapshot().User)
}

func TestRunSessionLookupFailureTreatedAsSignedOut(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	api := &fakeAPI{bootstrapErr: assert.AnError}
	sessions := sessionFunc(func(context.Context) (*Session, error) {
		return nil, assert.AnError
	})

	o := New(store, api, sessions, zap.NewNop())
	o.Run(context.Background())

	assert.Equal(t, PhaseReady, o.Phase())
	assert.False(t, store.Snapshot().SignedIn)
	assert.Equal(t, 0, api.meCalls)
}

func TestConcurrentFetchesCoalesce(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	user := testUser()
	api := &fakeAPI{
		meUser:   user,
		snapshot: testSnapshot(user),
		block:    make(chan struct{}),
	}
	o := New(store, api, sessionFunc(noSession), zap.NewNop())

	session := Session{UserID: user.ID.String(), Token: "tok-1"}
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.SignedIn(context.Background(), session)
		}()
	}

	// Let both goroutines reach the consolidated fetch, then release it.
	time.Sleep(50 * time.Millisecond)
	close(api.block)
	wg.Wait()

	assert.Equal(t, 1, api.bootstrapCalls)
	assert.Equal(t, 2, api.meCalls)
	assert.Equal(t, PhaseReady, o.Phase())
	require.Len(t, store.Snapshot().Projects, 1)
}

func TestSignedOutClearsEverything(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	user := testUser()
	api := &fakeAPI{meUser: user, snapshot: testSnapshot(user)}
	o := New(store, api, sessionFunc(noSession), zap.NewNop())

	o.SignedIn(context.Background(), Session{UserID: user.ID.String(), Token: "tok-1"})
	require.True(t, store.Snapshot().SignedIn)

	o.SignedOut()

	assert.Equal(t, PhaseUnauthenticated, o.Phase())
	assert.Equal(t, "", api.lastToken())
	state := store.Snapshot()
	assert.Nil(t, state.User)
	assert.Empty(t, state.Projects)
}

func TestTokenRefreshedOnlySwapsToken(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	api := &fakeAPI{}
	o := New(store, api, sessionFunc(noSession), zap.NewNop())

	o.TokenRefreshed("tok-2")

	assert.Equal(t, "tok-2", api.lastToken())
	assert.Equal(t, 0, api.bootstrapCalls)
	assert.Equal(t, 0, api.meCalls)
	assert.Equal(t, PhaseIdle, o.Phase())
}
