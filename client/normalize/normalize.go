// Package normalize sanitizes raw entity lists before they enter the
// state store. All functions are pure and idempotent: normalizing
// already-normalized data returns an equal structure.
package normalize

import (
	"time"

	"github.com/loopdesk/loopdesk-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// Date coerces a date string to a valid value. An unparsable non-empty
// value is replaced with now; empty stays empty because it marks an
// absent optional date, not a broken one.
func Date(s string, now time.Time) string {
	if s == "" {
		return ""
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return s
	}
	return now.UTC().Format(timeFormat)
}

// RequiredDate is Date for fields that must always carry a value.
func RequiredDate(s string, now time.Time) string {
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return s
	}
	return now.UTC().Format(timeFormat)
}

func stringList(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func Projects(list []domain.ProjectDTO, now time.Time) []domain.ProjectDTO {
	out := make([]domain.ProjectDTO, len(list))
	for i, p := range list {
		p.StartDate = RequiredDate(p.StartDate, now)
		p.EndDate = Date(p.EndDate, now)
		p.CreatedAt = RequiredDate(p.CreatedAt, now)
		p.UpdatedAt = RequiredDate(p.UpdatedAt, now)
		p.MemberIDs = stringList(p.MemberIDs)
		out[i] = p
	}
	return out
}

func Tasks(list []domain.TaskDTO, now time.Time) []domain.TaskDTO {
	out := make([]domain.TaskDTO, len(list))
	for i, t := range list {
		t.DueDate = Date(t.DueDate, now)
		t.CreatedAt = RequiredDate(t.CreatedAt, now)
		t.UpdatedAt = RequiredDate(t.UpdatedAt, now)
		t.AssigneeIDs = stringList(t.AssigneeIDs)
		t.Tags = stringList(t.Tags)
		if t.Comments == nil {
			t.Comments = []domain.TaskCommentDTO{}
		}
		if t.Attachments == nil {
			t.Attachments = []domain.TaskAttachmentDTO{}
		}
		out[i] = t
	}
	return out
}

func Customers(list []domain.CustomerDTO, now time.Time) []domain.CustomerDTO {
	out := make([]domain.CustomerDTO, len(list))
	for i, c := range list {
		c.JoinDate = RequiredDate(c.JoinDate, now)
		c.CreatedAt = RequiredDate(c.CreatedAt, now)
		c.UpdatedAt = RequiredDate(c.UpdatedAt, now)
		c.Tags = stringList(c.Tags)
		out[i] = c
	}
	return out
}

func TimeEntries(list []domain.TimeEntryDTO, now time.Time) []domain.TimeEntryDTO {
	out := make([]domain.TimeEntryDTO, len(list))
	for i, e := range list {
		e.StartTime = RequiredDate(e.StartTime, now)
		e.EndTime = RequiredDate(e.EndTime, now)
		e.CreatedAt = RequiredDate(e.CreatedAt, now)
		out[i] = e
	}
	return out
}

func Incomes(list []domain.IncomeDTO, now time.Time) []domain.IncomeDTO {
	out := make([]domain.IncomeDTO, len(list))
	for i, inc := range list {
		inc.Date = RequiredDate(inc.Date, now)
		inc.CreatedAt = RequiredDate(inc.CreatedAt, now)
		out[i] = inc
	}
	return out
}

func Activities(list []domain.ActivityDTO, now time.Time) []domain.ActivityDTO {
	out := make([]domain.ActivityDTO, len(list))
	for i, a := range list {
		a.OccurredAt = RequiredDate(a.OccurredAt, now)
		out[i] = a
	}
	return out
}

func Notifications(list []domain.NotificationDTO, now time.Time) []domain.NotificationDTO {
	out := make([]domain.NotificationDTO, len(list))
	for i, n := range list {
		n.CreatedAt = RequiredDate(n.CreatedAt, now)
		out[i] = n
	}
	return out
}

// Snapshot normalizes every collection of a consolidated fetch in place
// of the raw lists, leaving analytics untouched.
func Snapshot(snap *domain.DashboardSnapshot, now time.Time) *domain.DashboardSnapshot {
	if snap == nil {
		return nil
	}
	out := *snap
	out.Projects = Projects(snap.Projects, now)
	out.Tasks = Tasks(snap.Tasks, now)
	out.Customers = Customers(snap.Customers, now)
	out.TimeEntries = TimeEntries(snap.TimeEntries, now)
	out.Incomes = Incomes(snap.Incomes, now)
	out.Activities = Activities(snap.Activities, now)
	out.Notifications = Notifications(snap.Notifications, now)
	if out.ActiveTimer != nil {
		timer := *out.ActiveTimer
		timer.StartTime = RequiredDate(timer.StartTime, now)
		out.ActiveTimer = &timer
	}
	return &out
}
