package appstate

import (
	"time"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
)

// Action is the closed set of state mutations. Each mutation is one
// struct; the reducer switches over them exhaustively. The unexported
// marker method keeps the set closed to this package.
type Action interface {
	isAction()
}

// Session

type SetSession struct {
	User *domain.UserDTO
}

type ClearSession struct{}

// SignOut clears the session, resets every collection and wipes the
// durable cache. The remote sign-out call is enqueued best-effort.
type SignOut struct{}

// Preferences

type SetLocale struct{ Locale string }

type SetTheme struct{ Theme string }

// Projects

type SetProjects struct{ Projects []domain.ProjectDTO }

type AddProject struct{ Project domain.ProjectDTO }

type UpdateProject struct{ Project domain.ProjectDTO }

type DeleteProject struct{ ID uuid.UUID }

// Tasks

type SetTasks struct{ Tasks []domain.TaskDTO }

type AddTask struct{ Task domain.TaskDTO }

type UpdateTask struct{ Task domain.TaskDTO }

type DeleteTask struct{ ID uuid.UUID }

// Customers

type SetCustomers struct{ Customers []domain.CustomerDTO }

type AddCustomer struct{ Customer domain.CustomerDTO }

type UpdateCustomer struct{ Customer domain.CustomerDTO }

type DeleteCustomer struct{ ID uuid.UUID }

// Time entries

type SetTimeEntries struct{ Entries []domain.TimeEntryDTO }

type AddTimeEntry struct{ Entry domain.TimeEntryDTO }

type UpdateTimeEntry struct{ Entry domain.TimeEntryDTO }

type DeleteTimeEntry struct{ ID uuid.UUID }

// Incomes

type SetIncomes struct{ Incomes []domain.IncomeDTO }

type AddIncome struct{ Income domain.IncomeDTO }

type UpdateIncome struct{ Income domain.IncomeDTO }

type DeleteIncome struct{ ID uuid.UUID }

// Activity feed

type SetActivities struct{ Activities []domain.ActivityDTO }

// AppendActivity inserts one feed entry. Duplicates (same description and
// actor within one second) are dropped by the reducer.
type AppendActivity struct{ Activity domain.ActivityDTO }

// Notifications

type SetNotifications struct{ Notifications []domain.NotificationDTO }

// Timer

// SetActiveTimer installs or clears the single running-timer slot.
type SetActiveTimer struct{ Timer *domain.ActiveTimerDTO }

// TimerTick recomputes the elapsed seconds of the running timer.
type TimerTick struct{ Now time.Time }

func (SetSession) isAction()       {}
func (ClearSession) isAction()     {}
func (SignOut) isAction()          {}
func (SetLocale) isAction()        {}
func (SetTheme) isAction()         {}
func (SetProjects) isAction()      {}
func (AddProject) isAction()       {}
func (UpdateProject) isAction()    {}
func (DeleteProject) isAction()    {}
func (SetTasks) isAction()         {}
func (AddTask) isAction()          {}
func (UpdateTask) isAction()       {}
func (DeleteTask) isAction()       {}
func (SetCustomers) isAction()     {}
func (AddCustomer) isAction()      {}
func (UpdateCustomer) isAction()   {}
func (DeleteCustomer) isAction()   {}
func (SetTimeEntries) isAction()   {}
func (AddTimeEntry) isAction()     {}
func (UpdateTimeEntry) isAction()  {}
func (DeleteTimeEntry) isAction()  {}
func (SetIncomes) isAction()       {}
func (AddIncome) isAction()        {}
func (UpdateIncome) isAction()     {}
func (DeleteIncome) isAction()     {}
func (SetActivities) isAction()    {}
func (AppendActivity) isAction()   {}
func (SetNotifications) isAction() {}
func (SetActiveTimer) isAction()   {}
func (TimerTick) isAction()        {}
