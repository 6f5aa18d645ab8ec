package appstate

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
)

// reduce is the pure transition function. It never performs I/O; the
// Store handles cache persistence and remote reconciliation around it.
func reduce(s State, action Action) State {
	switch a := action.(type) {
	case SetSession:
		next := s.clone()
		next.User = a.User
		next.SignedIn = a.User != nil
		return next

	case ClearSession:
		next := s.clone()
		next.User = nil
		next.SignedIn = false
		return next

	case SignOut:
		return emptyState()

	case SetLocale:
		next := s.clone()
		next.Locale = a.Locale
		return next

	case SetTheme:
		next := s.clone()
		next.Theme = a.Theme
		return next

	case SetProjects:
		next := s.clone()
		next.Projects = append([]domain.ProjectDTO(nil), a.Projects...)
		next.Projects = recomputeProgress(next.Projects, next.Tasks)
		return next

	case AddProject:
		next := s.clone()
		next.Projects = append(next.Projects, a.Project)
		next.Projects = recomputeProgress(next.Projects, next.Tasks)
		return next

	case UpdateProject:
		next := s.clone()
		for i := range next.Projects {
			if next.Projects[i].ID == a.Project.ID {
				next.Projects[i] = a.Project
				break
			}
		}
		next.Projects = recomputeProgress(next.Projects, next.Tasks)
		return next

	case DeleteProject:
		next := s.clone()
		next.Projects = deleteProjectByID(next.Projects, a.ID)
		// Orphaned tasks go with their project.
		kept := make([]domain.TaskDTO, 0, len(next.Tasks))
		for _, t := range next.Tasks {
			if t.ProjectID != a.ID {
				kept = append(kept, t)
			}
		}
		next.Tasks = kept
		return next

	case SetTasks:
		next := s.clone()
		next.Tasks = append([]domain.TaskDTO(nil), a.Tasks...)
		next.Projects = recomputeProgress(next.Projects, next.Tasks)
		return next

	case AddTask:
		next := s.clone()
		next.Tasks = append(next.Tasks, a.Task)
		next.Projects = recomputeProgress(next.Projects, next.Tasks)
		return next

	case UpdateTask:
		next := s.clone()
		for i := range next.Tasks {
			if next.Tasks[i].ID == a.Task.ID {
				next.Tasks[i] = a.Task
				break
			}
		}
		next.Projects = recomputeProgress(next.Projects, next.Tasks)
		return next

	case DeleteTask:
		next := s.clone()
		kept := make([]domain.TaskDTO, 0, len(next.Tasks))
		for _, t := range next.Tasks {
			if t.ID != a.ID {
				kept = append(kept, t)
			}
		}
		next.Tasks = kept
		next.Projects = recomputeProgress(next.Projects, next.Tasks)
		return next

	case SetCustomers:
		next := s.clone()
		next.Customers = append([]domain.CustomerDTO(nil), a.Customers...)
		return next

	case AddCustomer:
		next := s.clone()
		next.Customers = append(next.Customers, a.Customer)
		return next

	case UpdateCustomer:
		next := s.clone()
		for i := range next.Customers {
			if next.Customers[i].ID == a.Customer.ID {
				next.Customers[i] = a.Customer
				break
			}
		}
		return next

	case DeleteCustomer:
		next := s.clone()
		kept := make([]domain.CustomerDTO, 0, len(next.Customers))
		for _, c := range next.Customers {
			if c.ID != a.ID {
				kept = append(kept, c)
			}
		}
		next.Customers = kept
		return next

	case SetTimeEntries:
		next := s.clone()
		next.TimeEntries = append([]domain.TimeEntryDTO(nil), a.Entries...)
		return next

	case AddTimeEntry:
		next := s.clone()
		next.TimeEntries = append(next.TimeEntries, a.Entry)
		return next

	case UpdateTimeEntry:
		next := s.clone()
		for i := range next.TimeEntries {
			if next.TimeEntries[i].ID == a.Entry.ID {
				next.TimeEntries[i] = a.Entry
				break
			}
		}
		return next

	case DeleteTimeEntry:
		next := s.clone()
		kept := make([]domain.TimeEntryDTO, 0, len(next.TimeEntries))
		for _, e := range next.TimeEntries {
			if e.ID != a.ID {
				kept = append(kept, e)
			}
		}
		next.TimeEntries = kept
		return next

	case SetIncomes:
		next := s.clone()
		next.Incomes = append([]domain.IncomeDTO(nil), a.Incomes...)
		return next

	case AddIncome:
		next := s.clone()
		next.Incomes = append(next.Incomes, a.Income)
		return next

	case UpdateIncome:
		next := s.clone()
		for i := range next.Incomes {
			if next.Incomes[i].ID == a.Income.ID {
				next.Incomes[i] = a.Income
				break
			}
		}
		return next

	case DeleteIncome:
		next := s.clone()
		kept := make([]domain.IncomeDTO, 0, len(next.Incomes))
		for _, inc := range next.Incomes {
			if inc.ID != a.ID {
				kept = append(kept, inc)
			}
		}
		next.Incomes = kept
		return next

	case SetActivities:
		next := s.clone()
		next.Activities = append([]domain.ActivityDTO(nil), a.Activities...)
		return next

	case AppendActivity:
		if isDuplicateActivity(s.Activities, a.Activity) {
			// Double-dispatch under an optimistic-update race.
			return s
		}
		next := s.clone()
		next.Activities = append([]domain.ActivityDTO{a.Activity}, next.Activities...)
		return next

	case SetNotifications:
		next := s.clone()
		next.Notifications = append([]domain.NotificationDTO(nil), a.Notifications...)
		return next

	case SetActiveTimer:
		next := s.clone()
		next.ActiveTimer = a.Timer
		next.ElapsedSeconds = 0
		return next

	case TimerTick:
		if s.ActiveTimer == nil {
			return s
		}
		next := s.clone()
		if start, err := time.Parse(time.RFC3339, next.ActiveTimer.StartTime); err == nil {
			elapsed := int64(a.Now.Sub(start).Seconds())
			if elapsed < 0 {
				elapsed = 0
			}
			next.ElapsedSeconds = elapsed
		}
		return next

	default:
		// The action set is closed; an unknown action is a no-op.
		return s
	}
}

// recomputeProgress derives each project's progress from its tasks. A
// project without tasks stays at zero.
func recomputeProgress(projects []domain.ProjectDTO, tasks []domain.TaskDTO) []domain.ProjectDTO {
	counts := make(map[uuid.UUID][2]int, len(projects))
	for _, t := range tasks {
		c := counts[t.ProjectID]
		c[0]++
		if t.Status == domain.TaskStatusCompleted {
			c[1]++
		}
		counts[t.ProjectID] = c
	}
	out := make([]domain.ProjectDTO, len(projects))
	for i, p := range projects {
		c := counts[p.ID]
		if c[0] == 0 {
			p.Progress = 0
		} else {
			p.Progress = int(math.Round(100 * float64(c[1]) / float64(c[0])))
		}
		out[i] = p
	}
	return out
}

func deleteProjectByID(projects []domain.ProjectDTO, id uuid.UUID) []domain.ProjectDTO {
	kept := make([]domain.ProjectDTO, 0, len(projects))
	for _, p := range projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return kept
}

// isDuplicateActivity reports whether an equivalent entry already exists:
// same description and actor with timestamps within one second.
func isDuplicateActivity(existing []domain.ActivityDTO, candidate domain.ActivityDTO) bool {
	candidateAt, err := time.Parse(time.RFC3339, candidate.OccurredAt)
	if err != nil {
		return false
	}
	for _, a := range existing {
		if a.Description != candidate.Description || a.ActorID != candidate.ActorID {
			continue
		}
		at, err := time.Parse(time.RFC3339, a.OccurredAt)
		if err != nil {
			continue
		}
		delta := candidateAt.Sub(at)
		if delta < 0 {
			delta = -delta
		}
		if delta <= time.Second {
			return true
		}
	}
	return false
}
