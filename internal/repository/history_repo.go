package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
	"github.com/YEYOLABS/boundless-fleet/pkg/database"
)

// AssignmentHistoryRepository persists the assignment audit trail.
// Rows are append-only.
type AssignmentHistoryRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewAssignmentHistoryRepository creates a new assignment history
// repository.
func NewAssignmentHistoryRepository(db *database.DB, logger *zap.Logger) *AssignmentHistoryRepository {
	return &AssignmentHistoryRepository{db: db, logger: logger}
}

// Create appends an audit row.
func (r *AssignmentHistoryRepository) Create(ctx context.Context, rec *entity.AssignmentRecord) error {
	query := `
		INSERT INTO assignment_history (
			vehicle_id, driver_id, driver_name,
			assigned_by_id, assigned_by_name, assigned_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := exec(ctx, r.db).ExecContext(ctx, query,
		rec.VehicleID, rec.DriverID, rec.DriverName,
		rec.AssignedByID, rec.AssignedByName, rec.AssignedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create assignment record", zap.Error(err))
		return fmt.Errorf("failed to create assignment record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	rec.ID = id
	return nil
}

// ListByVehicle returns the vehicle's audit trail, oldest first.
func (r *AssignmentHistoryRepository) ListByVehicle(ctx context.Context, vehicleID string) ([]*entity.AssignmentRecord, error) {
	query := `
		SELECT id, vehicle_id, driver_id, driver_name,
		       assigned_by_id, assigned_by_name, assigned_at
		FROM assignment_history
		WHERE vehicle_id = ?
		ORDER BY assigned_at, id
	`

	rows, err := exec(ctx, r.db).QueryContext(ctx, query, vehicleID)
	if err != nil {
		r.logger.Error("Failed to list assignment history", zap.String("vehicle_id", vehicleID), zap.Error(err))
		return nil, fmt.Errorf("failed to list assignment history: %w", err)
	}
	defer rows.Close()

	var out []*entity.AssignmentRecord
	for rows.Next() {
		var rec entity.AssignmentRecord
		if err := rows.Scan(
			&rec.ID, &rec.VehicleID, &rec.DriverID, &rec.DriverName,
			&rec.AssignedByID, &rec.AssignedByName, &rec.AssignedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assignment record: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignment history: %w", err)
	}
	return out, nil
}
