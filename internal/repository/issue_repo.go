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

// IssueRepository handles issue database operations.
type IssueRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewIssueRepository creates a new issue repository.
func NewIssueRepository(db *database.DB, logger *zap.Logger) *IssueRepository {
	return &IssueRepository{db: db, logger: logger}
}

const issueColumns = `
	id, vehicle_id, vehicle_name, description, severity, status,
	image_url, reported_at, updated_at`

// Create inserts a new issue record.
func (r *IssueRepository) Create(ctx context.Context, i *entity.Issue) error {
	query := `
		INSERT INTO issues (` + issueColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := exec(ctx, r.db).ExecContext(ctx, query,
		i.ID, i.VehicleID, i.VehicleName, i.Description, i.Severity, i.Status,
		i.ImageURL, i.ReportedAt, i.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create issue", zap.Error(err))
		return fmt.Errorf("failed to create issue: %w", err)
	}
	return nil
}

// GetByID fetches one issue.
func (r *IssueRepository) GetByID(ctx context.Context, id string) (*entity.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = ?`

	i, err := scanIssue(exec(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: issue %s", entity.ErrNotFound, id)
		}
		r.logger.Error("Failed to get issue", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	return i, nil
}

// List returns all issues, newest first.
func (r *IssueRepository) List(ctx context.Context) ([]*entity.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues ORDER BY reported_at DESC, id`

	rows, err := exec(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list issues", zap.Error(err))
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()
	return collectIssues(rows)
}

// ListOpenByVehicle returns unresolved issues against the vehicle.
func (r *IssueRepository) ListOpenByVehicle(ctx context.Context, vehicleID string) ([]*entity.Issue, error) {
	query := `SELECT ` + issueColumns + `
		FROM issues
		WHERE vehicle_id = ? AND status != ?
		ORDER BY reported_at, id`

	rows, err := exec(ctx, r.db).QueryContext(ctx, query, vehicleID, entity.IssueDone)
	if err != nil {
		r.logger.Error("Failed to list open issues", zap.String("vehicle_id", vehicleID), zap.Error(err))
		return nil, fmt.Errorf("failed to list open issues: %w", err)
	}
	defer rows.Close()
	return collectIssues(rows)
}

// Update persists the issue's workflow fields.
func (r *IssueRepository) Update(ctx context.Context, i *entity.Issue) error {
	query := `
		UPDATE issues SET
			description = ?, severity = ?, status = ?, image_url = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := exec(ctx, r.db).ExecContext(ctx, query,
		i.Description, i.Severity, i.Status, i.ImageURL, i.UpdatedAt, i.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update issue", zap.String("id", i.ID), zap.Error(err))
		return fmt.Errorf("failed to update issue: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: issue %s", entity.ErrNotFound, i.ID)
	}
	return nil
}

func scanIssue(row rowScanner) (*entity.Issue, error) {
	var i entity.Issue
	err := row.Scan(
		&i.ID, &i.VehicleID, &i.VehicleName, &i.Description, &i.Severity, &i.Status,
		&i.ImageURL, &i.ReportedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func collectIssues(rows *sql.Rows) ([]*entity.Issue, error) {
	var out []*entity.Issue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate issues: %w", err)
	}
	return out, nil
}
