// Package bootstrap drives application startup and session changes
// through an explicit state machine. Data is sourced from the backend
// when reachable, falling back to the durable cache and finally to the
// built-in default dataset; no failure propagates past this package.
package bootstrap

import (
	"context"
	"sync"
	"time"

	"github.com/loopdesk/loopdesk-api/client/appstate"
	"github.com/loopdesk/loopdesk-api/client/defaults"
	"github.com/loopdesk/loopdesk-api/client/normalize"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Phase is one state of the bootstrap machine.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseCheckingSession Phase = "checking_session"
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseFetchingProfile Phase = "fetching_profile"
	PhaseFetchingData    Phase = "fetching_data"
	PhaseError           Phase = "error"
	PhaseReady           Phase = "ready"
)

// Session is an authenticated session as reported by the provider.
type Session struct {
	UserID string
	Token  string
}

// SessionProvider exposes the currently stored session, if any.
type SessionProvider interface {
	Current(ctx context.Context) (*Session, error)
}

// API is the remote surface the orchestrator needs.
type API interface {
	SetToken(token string)
	Me(ctx context.Context) (*domain.UserDTO, error)
	Bootstrap(ctx context.Context) (*domain.DashboardSnapshot, error)
	FetchAllIndividually(ctx context.Context) *domain.DashboardSnapshot
}

// Orchestrator runs the bootstrap machine and reacts to session events.
// Concurrent fetches for the same user id are coalesced; a fetch for a
// different user id drops the coalescing key and starts fresh.
type Orchestrator struct {
	store    *appstate.Store
	api      API
	sessions SessionProvider
	logger   *zap.Logger
	now      func() time.Time

	group singleflight.Group

	mu         sync.Mutex
	phase      Phase
	fetchKey   string
	onPhase    func(Phase)
	onError    func(error)
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithPhaseCallback observes every phase transition.
func WithPhaseCallback(fn func(Phase)) Option {
	return func(o *Orchestrator) { o.onPhase = fn }
}

// WithErrorCallback receives the single top-level error surfaced to the
// user when bootstrap had to fall back.
func WithErrorCallback(fn func(error)) Option {
	return func(o *Orchestrator) { o.onError = fn }
}

func New(store *appstate.Store, api API, sessions SessionProvider, logger *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		api:      api,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
		phase:    PhaseIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Phase returns the current machine phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	cb := o.onPhase
	o.mu.Unlock()
	if cb != nil {
		cb(p)
	}
}

// Run executes one full bootstrap pass. It always ends in PhaseReady;
// failures degrade to cached or default data and are reported once
// through the error callback.
func (o *Orchestrator) Run(ctx context.Context) {
	o.setPhase(PhaseCheckingSession)

	session, err := o.sessions.Current(ctx)
	if err != nil {
		o.logger.Warn("Session lookup failed, treating as signed out", zap.Error(err))
		session = nil
	}

	if session == nil {
		o.setPhase(PhaseUnauthenticated)
		o.api.SetToken("")
		o.loadUnauthenticated(ctx)
		o.setPhase(PhaseReady)
		return
	}

	o.api.SetToken(session.Token)
	o.setPhase(PhaseFetchingProfile)

	user, err := o.api.Me(ctx)
	if err != nil {
		o.logger.Warn("Profile fetch failed, falling back to local data", zap.Error(err))
		o.reportError(err)
		o.setPhase(PhaseError)
		o.loadFallback()
		o.setPhase(PhaseReady)
		return
	}

	o.setPhase(PhaseFetchingData)
	snapshot := o.fetchForUser(ctx, session.UserID)
	if snapshot == nil {
		o.setPhase(PhaseError)
		o.loadFallback()
		o.setPhase(PhaseReady)
		return
	}
	if snapshot.User == nil {
		snapshot.User = user
	}
	o.adopt(snapshot, true)
	o.setPhase(PhaseReady)
}

// SignedIn re-runs the machine from the profile step for a fresh session.
func (o *Orchestrator) SignedIn(ctx context.Context, session Session) {
	o.api.SetToken(session.Token)
	o.setPhase(PhaseFetchingProfile)

	user, err := o.api.Me(ctx)
	if err != nil {
		o.logger.Warn("Profile fetch failed after sign-in", zap.Error(err))
		o.reportError(err)
		o.setPhase(PhaseError)
		o.loadFallback()
		o.setPhase(PhaseReady)
		return
	}

	o.setPhase(PhaseFetchingData)
	snapshot := o.fetchForUser(ctx, session.UserID)
	if snapshot == nil {
		o.setPhase(PhaseError)
		o.loadFallback()
		o.setPhase(PhaseReady)
		return
	}
	if snapshot.User == nil {
		snapshot.User = user
	}
	o.adopt(snapshot, true)
	o.setPhase(PhaseReady)
}

// SignedOut clears state and cache unconditionally.
func (o *Orchestrator) SignedOut() {
	o.mu.Lock()
	if o.fetchKey != "" {
		o.group.Forget(o.fetchKey)
		o.fetchKey = ""
	}
	o.mu.Unlock()

	o.api.SetToken("")
	o.store.Dispatch(appstate.SignOut{})
	o.setPhase(PhaseUnauthenticated)
}

// TokenRefreshed swaps the bearer token without refetching anything.
func (o *Orchestrator) TokenRefreshed(token string) {
	o.api.SetToken(token)
}

// fetchForUser coalesces concurrent consolidated fetches per user id.
// Returns nil only when both the consolidated call and the sequential
// fallback produced nothing usable.
func (o *Orchestrator) fetchForUser(ctx context.Context, userID string) *domain.DashboardSnapshot {
	o.mu.Lock()
	if o.fetchKey != "" && o.fetchKey != userID {
		// A different user invalidates the in-flight coalescing key.
		o.group.Forget(o.fetchKey)
	}
	o.fetchKey = userID
	o.mu.Unlock()

	result, err, _ := o.group.Do(userID, func() (interface{}, error) {
		snapshot, err := o.api.Bootstrap(ctx)
		if err != nil {
			o.logger.Warn("Consolidated fetch failed, fetching collections individually", zap.Error(err))
			snapshot = o.api.FetchAllIndividually(ctx)
		}
		return snapshot, nil
	})
	if err != nil {
		return nil
	}
	snapshot, _ := result.(*domain.DashboardSnapshot)
	if snapshot == nil || isEmpty(snapshot) {
		return nil
	}
	return snapshot
}

// loadUnauthenticated tries an unauthenticated bulk fetch, then the
// cache, then the default dataset.
func (o *Orchestrator) loadUnauthenticated(ctx context.Context) {
	snapshot, err := o.api.Bootstrap(ctx)
	if err == nil && !isEmpty(snapshot) {
		o.adopt(snapshot, false)
		return
	}
	if err != nil {
		o.logger.Warn("Unauthenticated fetch failed, using local data", zap.Error(err))
	}
	o.loadFallback()
}

// loadFallback hydrates from the durable cache and, when the cache has
// no stored user, installs the built-in default dataset.
func (o *Orchestrator) loadFallback() {
	o.store.Hydrate()
	if o.store.Snapshot().User != nil {
		return
	}
	o.adopt(defaults.Snapshot(o.now()), false)
}

func (o *Orchestrator) adopt(snapshot *domain.DashboardSnapshot, signedIn bool) {
	snapshot = normalize.Snapshot(snapshot, o.now())
	state := stateFromSnapshot(snapshot)
	state.SignedIn = signedIn && state.User != nil
	o.store.Restore(state)
}

func (o *Orchestrator) reportError(err error) {
	o.mu.Lock()
	cb := o.onError
	o.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

func isEmpty(s *domain.DashboardSnapshot) bool {
	if s == nil {
		return true
	}
	return s.User == nil &&
		len(s.Projects) == 0 &&
		len(s.Tasks) == 0 &&
		len(s.Customers) == 0 &&
		len(s.TimeEntries) == 0 &&
		len(s.Incomes) == 0
}

func stateFromSnapshot(s *domain.DashboardSnapshot) appstate.State {
	return appstate.State{
		User:          s.User,
		Locale:        "en",
		Theme:         "light",
		Projects:      s.Projects,
		Tasks:         s.Tasks,
		Customers:     s.Customers,
		TimeEntries:   s.TimeEntries,
		Incomes:       s.Incomes,
		Activities:    s.Activities,
		Notifications: s.Notifications,
		ActiveTimer:   s.ActiveTimer,
	}
}
