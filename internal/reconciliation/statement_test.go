package reconciliation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
)

type stubFloatRepo struct {
	floats map[string]*entity.Float
}

func (r *stubFloatRepo) Create(context.Context, *entity.Float) error { return nil }
func (r *stubFloatRepo) Update(context.Context, *entity.Float) error { return nil }
func (r *stubFloatRepo) List(context.Context) ([]*entity.Float, error) {
	return nil, nil
}
func (r *stubFloatRepo) GetOpenByTour(context.Context, string) (*entity.Float, error) {
	return nil, nil
}
func (r *stubFloatRepo) ListOpenByDriver(context.Context, string) ([]*entity.Float, error) {
	return nil, nil
}
func (r *stubFloatRepo) GetByID(_ context.Context, id string) (*entity.Float, error) {
	f, ok := r.floats[id]
	if !ok {
		return nil, fmt.Errorf("%w: float %s", entity.ErrNotFound, id)
	}
	return f, nil
}

type stubExpenseRepo struct {
	byFloat map[string][]*entity.Expense
}

func (r *stubExpenseRepo) Create(context.Context, *entity.Expense) error { return nil }
func (r *stubExpenseRepo) Update(context.Context, *entity.Expense) error { return nil }
func (r *stubExpenseRepo) Delete(context.Context, string) error          { return nil }
func (r *stubExpenseRepo) List(context.Context) ([]*entity.Expense, error) {
	return nil, nil
}
func (r *stubExpenseRepo) GetByID(_ context.Context, id string) (*entity.Expense, error) {
	return nil, fmt.Errorf("%w: expense %s", entity.ErrNotFound, id)
}
func (r *stubExpenseRepo) ListByFloat(_ context.Context, floatID string) ([]*entity.Expense, error) {
	return r.byFloat[floatID], nil
}

func fixtureRepos() (*stubFloatRepo, *stubExpenseRepo) {
	decided := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	floats := &stubFloatRepo{floats: map[string]*entity.Float{
		"fl1": {
			ID: "fl1", DriverID: "d1", DriverName: "Sipho Dlamini",
			OriginalCents: 50000, RemainingCents: 25000,
			Active: true, Status: entity.FloatOpen,
			IssuedAt: time.Date(2026, 8, 15, 8, 0, 0, 0, time.UTC),
		},
	}}
	expenses := &stubExpenseRepo{byFloat: map[string][]*entity.Expense{
		"fl1": {
			{ID: "e1", FloatID: "fl1", Category: "fuel", Description: "diesel",
				AmountCents: 10000, Status: entity.ExpenseApproved, DecidedAt: &decided},
			{ID: "e2", FloatID: "fl1", Category: "meals", Description: "driver meals",
				AmountCents: 15000, Status: entity.ExpenseApproved, DecidedAt: &decided},
			{ID: "e3", FloatID: "fl1", Category: "tolls", Description: "N1 toll",
				AmountCents: 3000, Status: entity.ExpensePending},
			{ID: "e4", FloatID: "fl1", Category: "fuel", Description: "disputed",
				AmountCents: 9999, Status: entity.ExpenseRejected, DecidedAt: &decided},
		},
	}}
	return floats, expenses
}

func TestAggregateStatement(t *testing.T) {
	floats, expenses := fixtureRepos()
	agg := NewAggregator(floats, expenses, zap.NewNop())

	stmt, err := agg.Aggregate(context.Background(), "fl1")
	require.NoError(t, err)

	assert.Len(t, stmt.Lines, 4)
	assert.Equal(t, int64(25000), stmt.ApprovedCents)
	assert.Equal(t, int64(3000), stmt.PendingCents, "pending claims are listed but never deducted")
	assert.Equal(t, int64(25000), stmt.Float.RemainingCents)
}

func TestAggregateDetectsCorruptLedger(t *testing.T) {
	floats, expenses := fixtureRepos()
	floats.floats["fl1"].RemainingCents = 30000

	agg := NewAggregator(floats, expenses, zap.NewNop())
	_, err := agg.Aggregate(context.Background(), "fl1")
	assert.Error(t, err)
}

func TestAggregateToleratesDeletedApprovedExpense(t *testing.T) {
	floats, expenses := fixtureRepos()

	// Drop one approved row as an owner delete would; its 15,000 cents
	// stay deducted from the float, so listed approvals fall short of
	// original - remaining. That is not corruption.
	kept := expenses.byFloat["fl1"][:0]
	for _, e := range expenses.byFloat["fl1"] {
		if e.ID != "e2" {
			kept = append(kept, e)
		}
	}
	expenses.byFloat["fl1"] = kept

	agg := NewAggregator(floats, expenses, zap.NewNop())
	stmt, err := agg.Aggregate(context.Background(), "fl1")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), stmt.ApprovedCents)
	assert.Equal(t, int64(25000), stmt.Float.RemainingCents)
}

func TestAggregateUnknownFloat(t *testing.T) {
	floats, expenses := fixtureRepos()
	agg := NewAggregator(floats, expenses, zap.NewNop())

	_, err := agg.Aggregate(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestExportStatementWorkbook(t *testing.T) {
	floats, expenses := fixtureRepos()
	agg := NewAggregator(floats, expenses, zap.NewNop())
	exporter := NewStatementExporter(ExporterConfig{
		OutputDir:   t.TempDir(),
		CompanyName: "Boundless Tours",
	}, agg, zap.NewNop())

	path, err := exporter.Export(context.Background(), "fl1")
	require.NoError(t, err)

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	company, err := wb.GetCellValue(statementSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Boundless Tours", company)

	driver, err := wb.GetCellValue(statementSheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "Sipho Dlamini", driver)

	// First expense line sits directly under the header row.
	amount, err := wb.GetCellValue(statementSheet, "D11")
	require.NoError(t, err)
	assert.Equal(t, "100.00", amount)
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{100, "1.00"},
		{25000, "250.00"},
		{123456789, "1234567.89"},
		{-1500, "-15.00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatCents(tc.cents))
	}
}
