package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
)

type floatFixture struct {
	floats   *fakeFloatRepo
	expenses *fakeExpenseRepo
	drivers  *fakeDriverRepo
	tours    *fakeTourRepo
	svc      FloatService
}

func newFloatFixture(t *testing.T) *floatFixture {
	t.Helper()
	f := &floatFixture{
		floats:   newFakeFloatRepo(),
		expenses: newFakeExpenseRepo(),
		drivers:  newFakeDriverRepo(),
		tours:    newFakeTourRepo(),
	}
	f.drivers.add(&entity.Driver{ID: "d1", Name: "Sipho Dlamini"})
	f.svc = NewFloatService(f.floats, f.expenses, f.drivers, f.tours, fakeTxManager{}, testLogger())
	return f
}

func (f *floatFixture) issue(t *testing.T, amount int64) *entity.Float {
	t.Helper()
	fl, err := f.svc.Issue(context.Background(), IssueFloatInput{
		DriverID:    "d1",
		AmountCents: amount,
		Message:     "tour advance",
	})
	require.NoError(t, err)
	return fl
}

func (f *floatFixture) submit(t *testing.T, floatID string, amount int64) *entity.Expense {
	t.Helper()
	e, err := f.svc.SubmitExpense(context.Background(), SubmitExpenseInput{
		FloatID:     floatID,
		AmountCents: amount,
		Category:    "fuel",
		Description: "diesel top-up",
	})
	require.NoError(t, err)
	return e
}

func TestIssueFloatValidation(t *testing.T) {
	f := newFloatFixture(t)

	_, err := f.svc.Issue(context.Background(), IssueFloatInput{DriverID: "d1", AmountCents: 0})
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = f.svc.Issue(context.Background(), IssueFloatInput{DriverID: "d1", AmountCents: -500})
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = f.svc.Issue(context.Background(), IssueFloatInput{AmountCents: 500})
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = f.svc.Issue(context.Background(), IssueFloatInput{DriverID: "missing", AmountCents: 500})
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestIssueFloatInitialBalance(t *testing.T) {
	f := newFloatFixture(t)
	fl := f.issue(t, 50000)

	assert.Equal(t, int64(50000), fl.OriginalCents)
	assert.Equal(t, int64(50000), fl.RemainingCents)
	assert.True(t, fl.Active)
	assert.Equal(t, entity.FloatOpen, fl.Status)
	assert.Equal(t, "Sipho Dlamini", fl.DriverName)
}

func TestIssueFloatOnePerTour(t *testing.T) {
	f := newFloatFixture(t)
	require.NoError(t, f.tours.Create(context.Background(), &entity.Tour{
		ID: "t1", Name: "Garden Route", Status: entity.TourConfirmed,
		StartDate: time.Now(), EndDate: time.Now().AddDate(0, 0, 5),
	}))

	_, err := f.svc.Issue(context.Background(), IssueFloatInput{
		DriverID: "d1", TourID: "t1", AmountCents: 20000,
	})
	require.NoError(t, err)

	_, err = f.svc.Issue(context.Background(), IssueFloatInput{
		DriverID: "d1", TourID: "t1", AmountCents: 5000,
	})
	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestApprovalLedger(t *testing.T) {
	f := newFloatFixture(t)
	fl := f.issue(t, 50000)

	e1 := f.submit(t, fl.ID, 10000)
	e2 := f.submit(t, fl.ID, 15000)
	e3 := f.submit(t, fl.ID, 30000)

	_, err := f.svc.ApproveExpense(context.Background(), e1.ID)
	require.NoError(t, err)
	_, err = f.svc.ApproveExpense(context.Background(), e2.ID)
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), fl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), got.RemainingCents)

	// The third expense exceeds what is left; the balance must stay
	// exactly where it was.
	_, err = f.svc.ApproveExpense(context.Background(), e3.ID)
	assert.ErrorIs(t, err, entity.ErrInsufficientBalance)
	assert.ErrorIs(t, err, entity.ErrConflict)

	got, err = f.svc.Get(context.Background(), fl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), got.RemainingCents)
	assert.Equal(t, int64(50000), got.OriginalCents)
}

func TestRejectNeverTouchesBalance(t *testing.T) {
	f := newFloatFixture(t)
	fl := f.issue(t, 20000)
	e := f.submit(t, fl.ID, 8000)

	rejected, err := f.svc.RejectExpense(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ExpenseRejected, rejected.Status)
	require.NotNil(t, rejected.DecidedAt)

	got, err := f.svc.Get(context.Background(), fl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), got.RemainingCents)
}

func TestDecidedExpenseIsImmutable(t *testing.T) {
	f := newFloatFixture(t)
	fl := f.issue(t, 20000)

	e := f.submit(t, fl.ID, 5000)
	_, err := f.svc.ApproveExpense(context.Background(), e.ID)
	require.NoError(t, err)

	_, err = f.svc.ApproveExpense(context.Background(), e.ID)
	assert.ErrorIs(t, err, entity.ErrConflict)
	_, err = f.svc.RejectExpense(context.Background(), e.ID)
	assert.ErrorIs(t, err, entity.ErrConflict)

	got, err := f.svc.Get(context.Background(), fl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), got.RemainingCents, "double approval must not decrement twice")
}

func TestCloseFreezesBalance(t *testing.T) {
	f := newFloatFixture(t)
	fl := f.issue(t, 30000)
	e := f.submit(t, fl.ID, 10000)
	_, err := f.svc.ApproveExpense(context.Background(), e.ID)
	require.NoError(t, err)

	closed, err := f.svc.Close(context.Background(), fl.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.FloatClosed, closed.Status)
	assert.False(t, closed.Active)
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, int64(20000), closed.RemainingCents)

	// No further expense linkage or approval against a closed float.
	_, err = f.svc.SubmitExpense(context.Background(), SubmitExpenseInput{
		FloatID: fl.ID, AmountCents: 1000, Category: "tolls",
	})
	assert.ErrorIs(t, err, entity.ErrConflict)

	_, err = f.svc.Close(context.Background(), fl.ID)
	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestCloseRefusedWithPendingExpenses(t *testing.T) {
	f := newFloatFixture(t)
	fl := f.issue(t, 30000)
	f.submit(t, fl.ID, 10000)

	_, err := f.svc.Close(context.Background(), fl.ID)
	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestApproveAgainstClosedFloat(t *testing.T) {
	f := newFloatFixture(t)
	fl := f.issue(t, 30000)
	e := f.submit(t, fl.ID, 10000)

	// Force the float closed in the store so the approval path sees a
	// closed float with a still-pending expense.
	stored, err := f.floats.GetByID(context.Background(), fl.ID)
	require.NoError(t, err)
	stored.Status = entity.FloatClosed
	stored.Active = false
	require.NoError(t, f.floats.Update(context.Background(), stored))

	_, err = f.svc.ApproveExpense(context.Background(), e.ID)
	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestDeleteExpense(t *testing.T) {
	f := newFloatFixture(t)
	fl := f.issue(t, 30000)

	pending := f.submit(t, fl.ID, 4000)
	approved := f.submit(t, fl.ID, 6000)
	_, err := f.svc.ApproveExpense(context.Background(), approved.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteExpense(context.Background(), pending.ID))

	// Deleting an approved expense is allowed; its cents stay deducted.
	require.NoError(t, f.svc.DeleteExpense(context.Background(), approved.ID))
	got, err := f.svc.Get(context.Background(), fl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(24000), got.RemainingCents)

	left, err := f.svc.ListExpenses(context.Background(), fl.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	err = f.svc.DeleteExpense(context.Background(), approved.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestListAllExpensesSpansFloats(t *testing.T) {
	f := newFloatFixture(t)
	fl1 := f.issue(t, 20000)
	fl2 := f.issue(t, 30000)

	f.submit(t, fl1.ID, 4000)
	f.submit(t, fl2.ID, 5000)
	f.submit(t, fl2.ID, 6000)

	all, err := f.svc.ListAllExpenses(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := f.svc.ListExpenses(context.Background(), fl2.ID)
	require.NoError(t, err)
	assert.Len(t, scoped, 2)
}
