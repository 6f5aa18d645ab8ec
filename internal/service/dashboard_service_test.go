package service_test

import (
	"testing"
	"time"

	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsAggregates(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := testutil.AuthContext(user)

	customer := testutil.CreateTestCustomer(t, env.db, user.ID, "Acme")
	project := testutil.CreateTestProject(t, env.db, user.ID, "Website")
	task := testutil.CreateTestTask(t, env.db, project.ID, user.ID, "Open task", domain.TaskStatusTodo)

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	_, err := env.timeEntries.Create(ctx, user.ID, &domain.CreateTimeEntryRequest{
		CustomerID: customer.ID,
		ProjectID:  project.ID,
		StartTime:  start,
		EndTime:    start.Add(3*time.Hour + 30*time.Minute),
		HourlyRate: 300,
	})
	require.NoError(t, err)

	_, err = env.incomes.Create(ctx, user.ID, &domain.CreateIncomeRequest{
		CustomerID:      customer.ID,
		Date:            time.Now().UTC(),
		VatRate:         0.18,
		AmountBeforeVat: 1050,
	})
	require.NoError(t, err)

	analytics, err := env.dashboard.Analytics(ctx, user.ID,
		[]domain.Project{*project},
		[]domain.Task{*task},
		[]domain.Customer{*customer},
	)
	require.NoError(t, err)

	assert.InDelta(t, 3.5, analytics.TotalHours, 1e-9)
	assert.InDelta(t, 1050.0, analytics.TotalIncome, 1e-9)
	assert.InDelta(t, 300.0, analytics.IncomePerHour, 1e-9)
	assert.Equal(t, 1, analytics.ActiveProjects)
	assert.Equal(t, 1, analytics.OpenTasks)

	require.Len(t, analytics.CustomerScores, 1)
	score := analytics.CustomerScores[0]
	assert.Equal(t, customer.ID, score.CustomerID)
	assert.InDelta(t, 3.5, score.TrackedHours, 1e-9)
	assert.InDelta(t, 1050.0, score.Revenue, 1e-9)
	assert.InDelta(t, 300.0, score.IncomePerHour, 1e-9)
	assert.Greater(t, score.Score, 0.0)
}

func TestCustomerScoreOrdering(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := testutil.AuthContext(user)

	// A retainer customer with a solid monthly amount outranks a small
	// hourly customer with no tracked work.
	retainer := domain.Customer{
		Name:            "Retainer Co",
		Status:          domain.CustomerStatusActive,
		JoinDate:        time.Now().UTC(),
		BillingModel:    domain.BillingModelRetainer,
		Currency:        "EUR",
		MonthlyRetainer: 5000,
		OwnerID:         user.ID,
	}
	require.NoError(t, env.db.Create(&retainer).Error)

	hourly := domain.Customer{
		Name:                "Hourly Co",
		Status:              domain.CustomerStatusActive,
		JoinDate:            time.Now().UTC(),
		BillingModel:        domain.BillingModelHourly,
		Currency:            "EUR",
		HourlyRate:          50,
		EstimatedHoursMonth: 10,
		OwnerID:             user.ID,
	}
	require.NoError(t, env.db.Create(&hourly).Error)

	analytics, err := env.dashboard.Analytics(ctx, user.ID, nil, nil,
		[]domain.Customer{retainer, hourly})
	require.NoError(t, err)

	require.Len(t, analytics.CustomerScores, 2)
	assert.Equal(t, retainer.ID, analytics.CustomerScores[0].CustomerID)
	assert.Equal(t, hourly.ID, analytics.CustomerScores[1].CustomerID)
	assert.Greater(t, analytics.CustomerScores[0].Score, analytics.CustomerScores[1].Score)
}

func TestReferralBonusLiftsScore(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := testutil.AuthContext(user)

	referrer := domain.Customer{
		Name:                "Referrer",
		Status:              domain.CustomerStatusActive,
		JoinDate:            time.Now().UTC(),
		BillingModel:        domain.BillingModelHourly,
		Currency:            "EUR",
		HourlyRate:          100,
		EstimatedHoursMonth: 20,
		OwnerID:             user.ID,
	}
	require.NoError(t, env.db.Create(&referrer).Error)

	peer := domain.Customer{
		Name:                "Peer",
		Status:              domain.CustomerStatusActive,
		JoinDate:            time.Now().UTC(),
		BillingModel:        domain.BillingModelHourly,
		Currency:            "EUR",
		HourlyRate:          100,
		EstimatedHoursMonth: 20,
		OwnerID:             user.ID,
	}
	require.NoError(t, env.db.Create(&peer).Error)

	referred := domain.Customer{
		Name:         "Referred",
		Status:       domain.CustomerStatusActive,
		JoinDate:     time.Now().UTC(),
		BillingModel: domain.BillingModelHourly,
		Currency:     "EUR",
		ReferredByID: &referrer.ID,
		OwnerID:      user.ID,
	}
	require.NoError(t, env.db.Create(&referred).Error)

	analytics, err := env.dashboard.Analytics(ctx, user.ID, nil, nil,
		[]domain.Customer{referrer, peer, referred})
	require.NoError(t, err)

	byName := make(map[string]float64, 3)
	for _, s := range analytics.CustomerScores {
		byName[s.CustomerName] = s.Score
	}
	assert.Greater(t, byName["Referrer"], byName["Peer"])
}
