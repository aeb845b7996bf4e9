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

// FloatRepository handles float database operations.
type FloatRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewFloatRepository creates a new float repository.
func NewFloatRepository(db *database.DB, logger *zap.Logger) *FloatRepository {
	return &FloatRepository{db: db, logger: logger}
}

const floatColumns = `
	id, driver_id, driver_name, tour_id,
	original_cents, remaining_cents, active, status,
	message, issued_at, closed_at`

// Create inserts a new float record.
func (r *FloatRepository) Create(ctx context.Context, f *entity.Float) error {
	query := `
		INSERT INTO floats (` + floatColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := exec(ctx, r.db).ExecContext(ctx, query,
		f.ID, f.DriverID, f.DriverName, f.TourID,
		f.OriginalCents, f.RemainingCents, f.Active, f.Status,
		f.Message, f.IssuedAt, f.ClosedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create float", zap.Error(err))
		return fmt.Errorf("failed to create float: %w", err)
	}
	return nil
}

// GetByID fetches one float.
func (r *FloatRepository) GetByID(ctx context.Context, id string) (*entity.Float, error) {
	query := `SELECT ` + floatColumns + ` FROM floats WHERE id = ?`

	f, err := scanFloat(exec(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: float %s", entity.ErrNotFound, id)
		}
		r.logger.Error("Failed to get float", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get float: %w", err)
	}
	return f, nil
}

// List returns all floats, newest first.
func (r *FloatRepository) List(ctx context.Context) ([]*entity.Float, error) {
	query := `SELECT ` + floatColumns + ` FROM floats ORDER BY issued_at DESC, id`

	rows, err := exec(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list floats", zap.Error(err))
		return nil, fmt.Errorf("failed to list floats: %w", err)
	}
	defer rows.Close()
	return collectFloats(rows)
}

// Update persists the float's balance and status fields.
func (r *FloatRepository) Update(ctx context.Context, f *entity.Float) error {
	query := `
		UPDATE floats SET
			remaining_cents = ?, active = ?, status = ?, message = ?, closed_at = ?
		WHERE id = ?
	`

	result, err := exec(ctx, r.db).ExecContext(ctx, query,
		f.RemainingCents, f.Active, f.Status, f.Message, f.ClosedAt, f.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update float", zap.String("id", f.ID), zap.Error(err))
		return fmt.Errorf("failed to update float: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: float %s", entity.ErrNotFound, f.ID)
	}
	return nil
}

// GetOpenByTour returns the open float for a tour, or nil when the tour
// has none.
func (r *FloatRepository) GetOpenByTour(ctx context.Context, tourID string) (*entity.Float, error) {
	query := `SELECT ` + floatColumns + ` FROM floats WHERE tour_id = ? AND status = ? LIMIT 1`

	f, err := scanFloat(exec(ctx, r.db).QueryRowContext(ctx, query, tourID, entity.FloatOpen))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get open float by tour", zap.String("tour_id", tourID), zap.Error(err))
		return nil, fmt.Errorf("failed to get open float by tour: %w", err)
	}
	return f, nil
}

// ListOpenByDriver returns open floats issued to the driver.
func (r *FloatRepository) ListOpenByDriver(ctx context.Context, driverID string) ([]*entity.Float, error) {
	query := `SELECT ` + floatColumns + `
		FROM floats
		WHERE driver_id = ? AND status = ?
		ORDER BY issued_at DESC, id`

	rows, err := exec(ctx, r.db).QueryContext(ctx, query, driverID, entity.FloatOpen)
	if err != nil {
		r.logger.Error("Failed to list open floats by driver", zap.String("driver_id", driverID), zap.Error(err))
		return nil, fmt.Errorf("failed to list open floats by driver: %w", err)
	}
	defer rows.Close()
	return collectFloats(rows)
}

func scanFloat(row rowScanner) (*entity.Float, error) {
	var f entity.Float
	var closedAt sql.NullTime
	err := row.Scan(
		&f.ID, &f.DriverID, &f.DriverName, &f.TourID,
		&f.OriginalCents, &f.RemainingCents, &f.Active, &f.Status,
		&f.Message, &f.IssuedAt, &closedAt,
	)
	if err != nil {
		return nil, err
	}
	if closedAt.Valid {
		f.ClosedAt = &closedAt.Time
	}
	return &f, nil
}

func collectFloats(rows *sql.Rows) ([]*entity.Float, error) {
	var out []*entity.Float
	for rows.Next() {
		f, err := scanFloat(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan float: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate floats: %w", err)
	}
	return out, nil
}
