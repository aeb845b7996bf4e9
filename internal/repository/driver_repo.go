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

// DriverRepository handles driver database operations. Drivers are
// provisioned by an external onboarding process; this side only reads
// them.
type DriverRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewDriverRepository creates a new driver repository.
func NewDriverRepository(db *database.DB, logger *zap.Logger) *DriverRepository {
	return &DriverRepository{db: db, logger: logger}
}

const driverColumns = `
	id, name, organisation_id, passport_number, pdp_number,
	passport_expiry, phone_number, created_at`

// GetByID fetches one driver.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*entity.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = ?`

	var d entity.Driver
	err := exec(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.Name, &d.OrganisationID, &d.PassportNumber, &d.PdpNumber,
		&d.PassportExpiry, &d.PhoneNumber, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: driver %s", entity.ErrNotFound, id)
		}
		r.logger.Error("Failed to get driver", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	return &d, nil
}

// List returns drivers, optionally scoped to an organisation.
func (r *DriverRepository) List(ctx context.Context, organisationID string) ([]*entity.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers`
	var args []any
	if organisationID != "" {
		query += ` WHERE organisation_id = ?`
		args = append(args, organisationID)
	}
	query += ` ORDER BY name, id`

	rows, err := exec(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list drivers", zap.Error(err))
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	var out []*entity.Driver
	for rows.Next() {
		var d entity.Driver
		if err := rows.Scan(
			&d.ID, &d.Name, &d.OrganisationID, &d.PassportNumber, &d.PdpNumber,
			&d.PassportExpiry, &d.PhoneNumber, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan driver: %w", err)
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drivers: %w", err)
	}
	return out, nil
}
