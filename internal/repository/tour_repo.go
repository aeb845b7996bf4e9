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

// TourRepository handles tour database operations.
type TourRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewTourRepository creates a new tour repository.
func NewTourRepository(db *database.DB, logger *zap.Logger) *TourRepository {
	return &TourRepository{db: db, logger: logger}
}

const tourColumns = `
	id, reference, name, supplier,
	driver_id, driver_name, vehicle_id, vehicle_name,
	start_date, end_date, status,
	estimated_km, trailer_required, pax,
	itinerary, instructions, notes,
	created_by, created_at, updated_at`

// Create inserts a new tour record.
func (r *TourRepository) Create(ctx context.Context, t *entity.Tour) error {
	query := `
		INSERT INTO tours (` + tourColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := exec(ctx, r.db).ExecContext(ctx, query,
		t.ID, t.Reference, t.Name, t.Supplier,
		t.DriverID, t.DriverName, t.VehicleID, t.VehicleName,
		t.StartDate, t.EndDate, t.Status,
		t.EstimatedKm, t.TrailerRequired, t.Pax,
		t.Itinerary, t.Instructions, t.Notes,
		t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create tour", zap.Error(err))
		return fmt.Errorf("failed to create tour: %w", err)
	}
	return nil
}

// GetByID fetches one tour.
func (r *TourRepository) GetByID(ctx context.Context, id string) (*entity.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE id = ?`

	t, err := scanTour(exec(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: tour %s", entity.ErrNotFound, id)
		}
		r.logger.Error("Failed to get tour", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}
	return t, nil
}

// List returns tours, optionally filtered by status, ordered by start
// date with id as the tiebreaker.
func (r *TourRepository) List(ctx context.Context, status entity.TourStatus) ([]*entity.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY start_date, id`

	rows, err := exec(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list tours", zap.Error(err))
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	defer rows.Close()
	return collectTours(rows)
}

// Update persists all mutable tour fields.
func (r *TourRepository) Update(ctx context.Context, t *entity.Tour) error {
	query := `
		UPDATE tours SET
			reference = ?, name = ?, supplier = ?,
			driver_id = ?, driver_name = ?, vehicle_id = ?, vehicle_name = ?,
			start_date = ?, end_date = ?, status = ?,
			estimated_km = ?, trailer_required = ?, pax = ?,
			itinerary = ?, instructions = ?, notes = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := exec(ctx, r.db).ExecContext(ctx, query,
		t.Reference, t.Name, t.Supplier,
		t.DriverID, t.DriverName, t.VehicleID, t.VehicleName,
		t.StartDate, t.EndDate, t.Status,
		t.EstimatedKm, t.TrailerRequired, t.Pax,
		t.Itinerary, t.Instructions, t.Notes,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update tour", zap.String("id", t.ID), zap.Error(err))
		return fmt.Errorf("failed to update tour: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: tour %s", entity.ErrNotFound, t.ID)
	}
	return nil
}

// Delete removes a tour record.
func (r *TourRepository) Delete(ctx context.Context, id string) error {
	result, err := exec(ctx, r.db).ExecContext(ctx, `DELETE FROM tours WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete tour", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete tour: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: tour %s", entity.ErrNotFound, id)
	}
	return nil
}

// ListByVehicle returns every non-cancelled tour referencing the
// vehicle.
func (r *TourRepository) ListByVehicle(ctx context.Context, vehicleID string) ([]*entity.Tour, error) {
	query := `SELECT ` + tourColumns + `
		FROM tours
		WHERE vehicle_id = ? AND status != ?
		ORDER BY start_date, id`

	rows, err := exec(ctx, r.db).QueryContext(ctx, query, vehicleID, entity.TourCancelled)
	if err != nil {
		r.logger.Error("Failed to list tours by vehicle", zap.String("vehicle_id", vehicleID), zap.Error(err))
		return nil, fmt.Errorf("failed to list tours by vehicle: %w", err)
	}
	defer rows.Close()
	return collectTours(rows)
}

func scanTour(row rowScanner) (*entity.Tour, error) {
	var t entity.Tour
	err := row.Scan(
		&t.ID, &t.Reference, &t.Name, &t.Supplier,
		&t.DriverID, &t.DriverName, &t.VehicleID, &t.VehicleName,
		&t.StartDate, &t.EndDate, &t.Status,
		&t.EstimatedKm, &t.TrailerRequired, &t.Pax,
		&t.Itinerary, &t.Instructions, &t.Notes,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTours(rows *sql.Rows) ([]*entity.Tour, error) {
	var out []*entity.Tour
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tour: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tours: %w", err)
	}
	return out, nil
}
