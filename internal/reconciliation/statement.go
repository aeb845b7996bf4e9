// Package reconciliation builds the float statement an operator hands
// to the bookkeeper: the issued amount, every decided expense, and the
// frozen remaining balance, exported as an Excel workbook.
package reconciliation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/application/port"
	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
)

// StatementLine is one decided expense on the statement. Pending
// expenses are listed but never counted against the balance.
type StatementLine struct {
	ExpenseID   string
	Category    string
	Description string
	AmountCents int64
	Status      entity.ExpenseStatus
	DecidedAt   *time.Time
}

// Statement is the aggregated reconciliation view of one float.
type Statement struct {
	Float         *entity.Float
	Lines         []StatementLine
	ApprovedCents int64
	PendingCents  int64
}

// Aggregator collects the float and its expenses into a statement.
type Aggregator struct {
	floats   port.FloatRepository
	expenses port.ExpenseRepository
	logger   *zap.Logger
}

// NewAggregator creates a new Aggregator.
func NewAggregator(floats port.FloatRepository, expenses port.ExpenseRepository, logger *zap.Logger) *Aggregator {
	return &Aggregator{floats: floats, expenses: expenses, logger: logger}
}

// Aggregate builds the statement for one float. Listed approvals can
// never exceed what was actually deducted (original - remaining); a
// violation means the ledger is corrupt and is surfaced as an error,
// not papered over. The two sides need not be equal: deleting an
// approved expense removes its row but its cents stay deducted.
func (a *Aggregator) Aggregate(ctx context.Context, floatID string) (*Statement, error) {
	f, err := a.floats.GetByID(ctx, floatID)
	if err != nil {
		return nil, err
	}

	expenses, err := a.expenses.ListByFloat(ctx, floatID)
	if err != nil {
		return nil, err
	}

	stmt := &Statement{Float: f, Lines: make([]StatementLine, 0, len(expenses))}
	for _, e := range expenses {
		stmt.Lines = append(stmt.Lines, StatementLine{
			ExpenseID:   e.ID,
			Category:    e.Category,
			Description: e.Description,
			AmountCents: e.AmountCents,
			Status:      e.Status,
			DecidedAt:   e.DecidedAt,
		})
		switch e.Status {
		case entity.ExpenseApproved:
			stmt.ApprovedCents += e.AmountCents
		case entity.ExpensePending:
			stmt.PendingCents += e.AmountCents
		}
	}

	if stmt.ApprovedCents > f.OriginalCents-f.RemainingCents {
		a.logger.Error("Float balance does not reconcile",
			zap.String("float_id", f.ID),
			zap.Int64("original_cents", f.OriginalCents),
			zap.Int64("approved_cents", stmt.ApprovedCents),
			zap.Int64("remaining_cents", f.RemainingCents))
		return nil, fmt.Errorf("float %s does not reconcile: approved %d exceeds deducted %d",
			f.ID, stmt.ApprovedCents, f.OriginalCents-f.RemainingCents)
	}

	return stmt, nil
}
