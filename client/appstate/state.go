// Package appstate holds the canonical in-memory snapshot of the client.
// Mutations flow through a single Store as actions reduced by a pure
// transition function; the durable cache mirrors the state and a
// reconciliation queue pushes optimistic changes to the backend.
package appstate

import (
	"github.com/loopdesk/loopdesk-api/internal/domain"
)

// State is the full client snapshot. The Store owns the canonical copy;
// callers only ever see value copies.
type State struct {
	User          *domain.UserDTO
	SignedIn      bool
	Locale        string
	Theme         string
	Projects      []domain.ProjectDTO
	Tasks         []domain.TaskDTO
	Customers     []domain.CustomerDTO
	TimeEntries   []domain.TimeEntryDTO
	Incomes       []domain.IncomeDTO
	Activities    []domain.ActivityDTO
	Notifications []domain.NotificationDTO
	ActiveTimer   *domain.ActiveTimerDTO

	// ElapsedSeconds is derived from the active timer by tick actions.
	ElapsedSeconds int64
}

func emptyState() State {
	return State{
		Locale:        "en",
		Theme:         "light",
		Projects:      []domain.ProjectDTO{},
		Tasks:         []domain.TaskDTO{},
		Customers:     []domain.CustomerDTO{},
		TimeEntries:   []domain.TimeEntryDTO{},
		Incomes:       []domain.IncomeDTO{},
		Activities:    []domain.ActivityDTO{},
		Notifications: []domain.NotificationDTO{},
	}
}

// clone copies the state deeply enough that callers cannot alias the
// Store's slices.
func (s State) clone() State {
	out := s
	out.Projects = append([]domain.ProjectDTO(nil), s.Projects...)
	out.Tasks = append([]domain.TaskDTO(nil), s.Tasks...)
	out.Customers = append([]domain.CustomerDTO(nil), s.Customers...)
	out.TimeEntries = append([]domain.TimeEntryDTO(nil), s.TimeEntries...)
	out.Incomes = append([]domain.IncomeDTO(nil), s.Incomes...)
	out.Activities = append([]domain.ActivityDTO(nil), s.Activities...)
	out.Notifications = append([]domain.NotificationDTO(nil), s.Notifications...)
	if s.User != nil {
		user := *s.User
		out.User = &user
	}
	if s.ActiveTimer != nil {
		timer := *s.ActiveTimer
		out.ActiveTimer = &timer
	}
	return out
}
