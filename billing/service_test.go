package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bill-tracker/billing"
	"github.com/warp/bill-tracker/billing/store"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestService(now time.Time) (*billing.Service, *fakeClock) {
	clock := &fakeClock{now: now}
	mem := store.NewMemoryWithClock(clock.Now)
	return billing.NewService(mem, billing.WithClock(clock.Now)), clock
}

func TestService_CreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(date(2024, time.March, 10))
	ctx := context.Background()

	in := validInput()
	in.DueDay = 40

	_, err := svc.Create(ctx, in)

	assert.ErrorIs(t, err, billing.ErrInvalidBill)
	bills, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bills, "rejected input is not stored")
}

func TestService_CreateAndGet(t *testing.T) {
	now := at(2024, time.March, 10, 9, 30)
	svc, _ := newTestService(now)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Electricity", got.Title)
	assert.Equal(t, 10, got.DueDay)
	assert.True(t, got.CreatedAt.Equal(now))
	assert.Nil(t, got.LastPaidCycle)
	assert.Nil(t, got.LastPaidAt)
}

func TestService_GetMissing(t *testing.T) {
	svc, _ := newTestService(date(2024, time.March, 10))

	_, err := svc.Get(context.Background(), 99)

	assert.True(t, billing.IsNotFound(err))
	var nf *billing.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, billing.BillID(99), nf.ID)
}

func TestService_UpdateMergesOnlyGivenFields(t *testing.T) {
	svc, _ := newTestService(date(2024, time.March, 10))
	ctx := context.Background()
	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	amount := decimal.RequireFromString("200.00")
	updated, err := svc.Update(ctx, created.ID, billing.BillPatch{Amount: &amount})
	require.NoError(t, err)

	assert.True(t, amount.Equal(updated.Amount))
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.DueDay, updated.DueDay)
	assert.Equal(t, created.RemindDays, updated.RemindDays)
}

func TestService_UpdateRejectsInvalidPatch(t *testing.T) {
	svc, _ := newTestService(date(2024, time.March, 10))
	ctx := context.Background()
	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, billing.BillPatch{IssueDay: intPtr(0)})

	assert.ErrorIs(t, err, billing.ErrInvalidBill)
}

func TestService_UpdateMissing(t *testing.T) {
	svc, _ := newTestService(date(2024, time.March, 10))

	_, err := svc.Update(context.Background(), 7, billing.BillPatch{DueDay: intPtr(5)})

	assert.True(t, billing.IsNotFound(err))
}

func TestService_Delete(t *testing.T) {
	svc, _ := newTestService(date(2024, time.March, 10))
	ctx := context.Background()
	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.NoError(t, svc.Delete(ctx, created.ID), "second delete is a no-op")

	_, err = svc.Get(ctx, created.ID)
	assert.True(t, billing.IsNotFound(err))
}

// =============================================================================
// PAYMENT RECONCILIATION
// =============================================================================

func TestMarkPaid_ThenClassifiedAsPaid(t *testing.T) {
	// GIVEN: an overdue bill in March 2024
	svc, _ := newTestService(date(2024, time.March, 20))
	ctx := context.Background()
	in := validInput()
	in.DueDay = 5
	created, err := svc.Create(ctx, in)
	require.NoError(t, err)

	view, err := svc.Dashboard(ctx, date(2024, time.March, 20), 3)
	require.NoError(t, err)
	require.Len(t, view.Overdue, 1)

	// WHEN: payment is confirmed for 2024-03
	require.NoError(t, svc.MarkPaid(ctx, created.ID, "2024-03"))

	// THEN: any March reference date shows it as paid
	for _, day := range []int{1, 5, 20, 31} {
		view, err = svc.Dashboard(ctx, at(2024, time.March, day, 22, 0), 3)
		require.NoError(t, err)
		assert.Len(t, view.Paid, 1, "day %d", day)
		assert.Empty(t, view.Overdue, "day %d", day)
		assert.Empty(t, view.Soon, "day %d", day)
	}

	// AND: April treats it as unpaid again
	view, err = svc.Dashboard(ctx, date(2024, time.April, 5), 3)
	require.NoError(t, err)
	assert.Empty(t, view.Paid)
	assert.Len(t, view.Soon, 1)
}

func TestMarkPaid_IdempotentRefreshesTimestamp(t *testing.T) {
	svc, clock := newTestService(at(2024, time.March, 10, 8, 0))
	ctx := context.Background()
	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaid(ctx, created.ID, "2024-03"))
	first, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)

	clock.now = at(2024, time.March, 11, 8, 0)
	require.NoError(t, svc.MarkPaid(ctx, created.ID, "2024-03"))
	second, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, billing.Cycle("2024-03"), *second.LastPaidCycle)
	assert.True(t, second.LastPaidAt.After(*first.LastPaidAt))
	assert.Equal(t, first.Title, second.Title)
}

func TestMarkPaid_TrustsCallerCycle(t *testing.T) {
	// A future cycle is accepted without cross-checking.
	svc, _ := newTestService(date(2024, time.March, 10))
	ctx := context.Background()
	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaid(ctx, created.ID, "2024-06"))

	view, err := svc.Dashboard(ctx, date(2024, time.March, 10), 3)
	require.NoError(t, err)
	assert.Empty(t, view.Paid, "March is still unpaid")

	view, err = svc.Dashboard(ctx, date(2024, time.June, 1), 3)
	require.NoError(t, err)
	assert.Len(t, view.Paid, 1)
}

func TestMarkPaidCurrent_UsesClockCycle(t *testing.T) {
	svc, _ := newTestService(at(2024, time.December, 31, 23, 0))
	ctx := context.Background()
	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	cycle, err := svc.MarkPaidCurrent(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, billing.Cycle("2024-12"), cycle)
}

func TestMarkPaid_Missing(t *testing.T) {
	svc, _ := newTestService(date(2024, time.March, 10))

	err := svc.MarkPaid(context.Background(), 42, "2024-03")

	assert.True(t, billing.IsNotFound(err))
}
