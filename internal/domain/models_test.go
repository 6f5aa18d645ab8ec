package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name     string
		statuses []TaskStatus
		want     int
	}{
		{"no tasks", nil, 0},
		{"none completed", []TaskStatus{TaskStatusTodo, TaskStatusInProgress}, 0},
		{"one of four completed", []TaskStatus{TaskStatusCompleted, TaskStatusTodo, TaskStatusTodo, TaskStatusInProgress}, 25},
		{"two of four completed", []TaskStatus{TaskStatusCompleted, TaskStatusCompleted, TaskStatusTodo, TaskStatusInProgress}, 50},
		{"one of three rounds", []TaskStatus{TaskStatusCompleted, TaskStatusTodo, TaskStatusTodo}, 33},
		{"two of three rounds", []TaskStatus{TaskStatusCompleted, TaskStatusCompleted, TaskStatusTodo}, 67},
		{"all completed", []TaskStatus{TaskStatusCompleted, TaskStatusCompleted}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := make([]Task, len(tt.statuses))
			for i, s := range tt.statuses {
				tasks[i] = Task{Status: s}
			}
			assert.Equal(t, tt.want, ComputeProgress(tasks))
		})
	}
}

func TestIncomeRecalculate(t *testing.T) {
	income := &Income{AmountBeforeVat: 100, VatRate: 0.18}
	income.Recalculate()

	assert.InDelta(t, 18.0, income.VatAmount, 1e-9)
	assert.InDelta(t, 118.0, income.FinalAmount, 1e-9)
}

func TestIncomeRecalculateZeroRate(t *testing.T) {
	income := &Income{AmountBeforeVat: 250, VatRate: 0}
	income.Recalculate()

	assert.Equal(t, 0.0, income.VatAmount)
	assert.Equal(t, 250.0, income.FinalAmount)
}

func TestTimeEntryRecalculate(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 12, 30, 0, 0, time.UTC)

	entry := &TimeEntry{StartTime: start, EndTime: end, HourlyRate: 300}
	entry.Recalculate()

	assert.Equal(t, int64(12600), entry.DurationSeconds)
	assert.InDelta(t, 1050.0, entry.Income, 1e-9)
}

func TestTimeEntryRecalculateNegativeDurationClamps(t *testing.T) {
	start := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	entry := &TimeEntry{StartTime: start, EndTime: end, HourlyRate: 100}
	entry.Recalculate()

	assert.Equal(t, int64(0), entry.DurationSeconds)
	assert.Equal(t, 0.0, entry.Income)
}

func TestActivityIsDuplicateOf(t *testing.T) {
	actor := uuid.New()
	at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	base := &Activity{Description: "Created project Website", ActorID: actor, OccurredAt: at}

	sameWithinSecond := &Activity{Description: "Created project Website", ActorID: actor, OccurredAt: at.Add(800 * time.Millisecond)}
	assert.True(t, base.IsDuplicateOf(sameWithinSecond))
	assert.True(t, sameWithinSecond.IsDuplicateOf(base))

	tooLate := &Activity{Description: "Created project Website", ActorID: actor, OccurredAt: at.Add(2 * time.Second)}
	assert.False(t, base.IsDuplicateOf(tooLate))

	otherActor := &Activity{Description: "Created project Website", ActorID: uuid.New(), OccurredAt: at}
	assert.False(t, base.IsDuplicateOf(otherActor))

	otherText := &Activity{Description: "Deleted project Website", ActorID: actor, OccurredAt: at}
	assert.False(t, base.IsDuplicateOf(otherText))
}

func TestSubscriptionIsTrialExpired(t *testing.T) {
	now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := &Subscription{Status: SubscriptionStatusTrialing, TrialEndsAt: &past}
	assert.True(t, expired.IsTrialExpired(now))

	running := &Subscription{Status: SubscriptionStatusTrialing, TrialEndsAt: &future}
	assert.False(t, running.IsTrialExpired(now))

	active := &Subscription{Status: SubscriptionStatusActive, TrialEndsAt: &past}
	assert.False(t, active.IsTrialExpired(now))

	noWindow := &Subscription{Status: SubscriptionStatusTrialing}
	assert.False(t, noWindow.IsTrialExpired(now))
}
