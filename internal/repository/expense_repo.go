package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
	"github.com/YEYOLABS/boundless-fleet/pkg/database"
)

// ExpenseRepository handles expense database operations.
type ExpenseRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository.
func NewExpenseRepository(db *database.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{db: db, logger: logger}
}

const expenseColumns = `
	id, amount_cents, category, description, status,
	float_id, tour_id, driver_name, receipt_url,
	created_at, decided_at`

// Create inserts a new expense record.
func (r *ExpenseRepository) Create(ctx context.Context, e *entity.Expense) error {
	query := `
		INSERT INTO expenses (` + expenseColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := exec(ctx, r.db).ExecContext(ctx, query,
		e.ID, e.AmountCents, e.Category, e.Description, e.Status,
		e.FloatID, e.TourID, e.DriverName, e.ReceiptURL,
		e.CreatedAt, e.DecidedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetByID fetches one expense.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

	e, err := scanExpense(exec(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: expense %s", entity.ErrNotFound, id)
		}
		r.logger.Error("Failed to get expense", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// List returns all expenses, newest first.
func (r *ExpenseRepository) List(ctx context.Context) ([]*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses ORDER BY created_at DESC, id`

	rows, err := exec(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

// ListByFloat returns all expenses claimed against the float.
func (r *ExpenseRepository) ListByFloat(ctx context.Context, floatID string) ([]*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE float_id = ? ORDER BY created_at, id`

	rows, err := exec(ctx, r.db).QueryContext(ctx, query, floatID)
	if err != nil {
		r.logger.Error("Failed to list expenses by float", zap.String("float_id", floatID), zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses by float: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

// Update persists the expense's decision fields.
func (r *ExpenseRepository) Update(ctx context.Context, e *entity.Expense) error {
	query := `
		UPDATE expenses SET
			amount_cents = ?, category = ?, description = ?, status = ?,
			receipt_url = ?, decided_at = ?
		WHERE id = ?
	`

	result, err := exec(ctx, r.db).ExecContext(ctx, query,
		e.AmountCents, e.Category, e.Description, e.Status,
		e.ReceiptURL, e.DecidedAt, e.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update expense", zap.String("id", e.ID), zap.Error(err))
		return fmt.Errorf("failed to update expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: expense %s", entity.ErrNotFound, e.ID)
	}
	return nil
}

// Delete removes an expense record.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	result, err := exec(ctx, r.db).ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete expense", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: expense %s", entity.ErrNotFound, id)
	}
	return nil
}

func scanExpense(row rowScanner) (*entity.Expense, error) {
	var e entity.Expense
	var decidedAt sql.NullTime
	err := row.Scan(
		&e.ID, &e.AmountCents, &e.Category, &e.Description, &e.Status,
		&e.FloatID, &e.TourID, &e.DriverName, &e.ReceiptURL,
		&e.CreatedAt, &decidedAt,
	)
	if err != nil {
		return nil, err
	}
	if decidedAt.Valid {
		e.DecidedAt = &decidedAt.Time
	}
	return &e, nil
}

func collectExpenses(rows *sql.Rows) ([]*entity.Expense, error) {
	var out []*entity.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return out, nil
}
