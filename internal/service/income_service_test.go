package service_test

import (
	"testing"
	"time"

	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/service"
	"github.com/loopdesk/loopdesk-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomeCreateDerivesVat(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := testutil.AuthContext(user)
	customer := testutil.CreateTestCustomer(t, env.db, user.ID, "Acme")

	income, err := env.incomes.Create(ctx, user.ID, &domain.CreateIncomeRequest{
		CustomerID:      customer.ID,
		Date:            time.Now().UTC(),
		InvoiceNumber:   "INV-001",
		VatRate:         0.18,
		AmountBeforeVat: 100,
	})
	require.NoError(t, err)

	assert.InDelta(t, 18.0, income.VatAmount, 1e-9)
	assert.InDelta(t, 118.0, income.FinalAmount, 1e-9)
}

func TestIncomeUpdateRecalculates(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "owner@example.com")
	ctx := testutil.AuthContext(user)
	customer := testutil.CreateTestCustomer(t, env.db, user.ID, "Acme")

	income, err := env.incomes.Create(ctx, user.ID, &domain.CreateIncomeRequest{
		CustomerID:      customer.ID,
		Date:            time.Now().UTC(),
		VatRate:         0.18,
		AmountBeforeVat: 100,
	})
	require.NoError(t, err)

	updated, err := env.incomes.Update(ctx, user.ID, income.ID, &domain.CreateIncomeRequest{
		CustomerID:      customer.ID,
		Date:            time.Now().UTC(),
		VatRate:         0.25,
		AmountBeforeVat: 200,
	})
	require.NoError(t, err)

	assert.InDelta(t, 50.0, updated.VatAmount, 1e-9)
	assert.InDelta(t, 250.0, updated.FinalAmount, 1e-9)
}

func TestIncomeOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateTestUser(t, env.db, "owner@example.com")
	intruder := testutil.CreateTestUser(t, env.db, "intruder@example.com")
	ctx := testutil.AuthContext(owner)
	customer := testutil.CreateTestCustomer(t, env.db, owner.ID, "Acme")

	income, err := env.incomes.Create(ctx, owner.ID, &domain.CreateIncomeRequest{
		CustomerID:      customer.ID,
		Date:            time.Now().UTC(),
		VatRate:         0.18,
		AmountBeforeVat: 100,
	})
	require.NoError(t, err)

	_, err = env.incomes.GetByID(testutil.AuthContext(intruder), intruder.ID, income.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}
