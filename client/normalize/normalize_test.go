package normalize

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func TestDateCoercion(t *testing.T) {
	assert.Equal(t, "2025-01-15T09:30:00Z", Date("2025-01-15T09:30:00Z", now))
	assert.Equal(t, "", Date("", now))
	assert.Equal(t, "2025-06-02T10:00:00Z", Date("not a date", now))

	assert.Equal(t, "2025-01-15T09:30:00Z", RequiredDate("2025-01-15T09:30:00Z", now))
	assert.Equal(t, "2025-06-02T10:00:00Z", RequiredDate("", now))
	assert.Equal(t, "2025-06-02T10:00:00Z", RequiredDate("garbage", now))
}

func TestTasksDefaultsListsAndDates(t *testing.T) {
	raw := []domain.TaskDTO{{
		ID:        uuid.New(),
		Title:     "Task",
		DueDate:   "broken",
		CreatedAt: "2025-01-01T00:00:00Z",
	}}

	out := Tasks(raw, now)

	assert.Equal(t, "2025-06-02T10:00:00Z", out[0].DueDate)
	assert.Equal(t, "2025-06-02T10:00:00Z", out[0].UpdatedAt)
	assert.NotNil(t, out[0].AssigneeIDs)
	assert.NotNil(t, out[0].Tags)
	assert.NotNil(t, out[0].Comments)
	assert.NotNil(t, out[0].Attachments)
	assert.Empty(t, out[0].Tags)

	// The input slice is untouched.
	assert.Equal(t, "broken", raw[0].DueDate)
	assert.Nil(t, raw[0].Tags)
}

func TestNormalizationIsIdempotent(t *testing.T) {
	raw := &domain.DashboardSnapshot{
		Projects: []domain.ProjectDTO{{
			ID:        uuid.New(),
			Title:     "Website",
			StartDate: "bad value",
			EndDate:   "",
		}},
		Tasks: []domain.TaskDTO{{
			ID:      uuid.New(),
			Title:   "Task",
			DueDate: "also bad",
		}},
		Customers: []domain.CustomerDTO{{
			ID:       uuid.New(),
			Name:     "Acme",
			JoinDate: "nope",
		}},
		TimeEntries: []domain.TimeEntryDTO{{
			ID:        uuid.New(),
			StartTime: "2025-01-01T09:00:00Z",
			EndTime:   "",
		}},
		Incomes: []domain.IncomeDTO{{
			ID:   uuid.New(),
			Date: "",
		}},
		Activities: []domain.ActivityDTO{{
			ID:         uuid.New(),
			OccurredAt: "",
		}},
	}

	once := Snapshot(raw, now)
	twice := Snapshot(once, now.Add(time.Hour))

	// A second pass over normalized data must not change anything, even
	// with a different clock.
	assert.Equal(t, once, twice)
}

func TestSnapshotNormalizesTimer(t *testing.T) {
	snap := &domain.DashboardSnapshot{
		ActiveTimer: &domain.ActiveTimerDTO{
			ID:        uuid.New(),
			StartTime: "broken",
			IsRunning: true,
		},
	}

	out := Snapshot(snap, now)

	assert.Equal(t, "2025-06-02T10:00:00Z", out.ActiveTimer.StartTime)
	// The input timer is copied, not mutated.
	assert.Equal(t, "broken", snap.ActiveTimer.StartTime)
}

func TestSnapshotNilPassthrough(t *testing.T) {
	assert.Nil(t, Snapshot(nil, now))
}
