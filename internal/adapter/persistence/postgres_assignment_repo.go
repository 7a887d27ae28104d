package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/koshhq/kosh/internal/domain"
)

const assignmentColumns = "id, asset_id, holder_id, assigned_by, assigned_at, expected_return_at, returned_at, status, remarks"

// PostgresAssignmentRepository implements AssignmentRepository using PostgreSQL
type PostgresAssignmentRepository struct {
	q querier
}

// Create saves a new assignment
func (r *PostgresAssignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	query := `
		INSERT INTO assignments (` + assignmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.q.ExecContext(ctx, query,
		assignment.ID,
		assignment.AssetID,
		assignment.HolderID,
		assignment.AssignedByID,
		assignment.AssignedAt,
		assignment.ExpectedReturnAt,
		assignment.ReturnedAt,
		string(assignment.Status),
		assignment.Remarks,
	)
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

// FindByID retrieves an assignment by its ID
func (r *PostgresAssignmentRepository) FindByID(ctx context.Context, id string) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`
	assignment, err := scanAssignment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFound("assignment not found")
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return assignment, nil
}

// FindOpenByAsset retrieves the open assignment for an asset
func (r *PostgresAssignmentRepository) FindOpenByAsset(ctx context.Context, assetID string) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE asset_id = $1 AND status = $2`
	assignment, err := scanAssignment(r.q.QueryRowContext(ctx, query, assetID, string(domain.AssignmentStatusAssigned)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFound("no open assignment found for asset")
		}
		return nil, fmt.Errorf("failed to find open assignment: %w", err)
	}
	return assignment, nil
}

// Update persists the one-time closure of an assignment
func (r *PostgresAssignmentRepository) Update(ctx context.Context, assignment *domain.Assignment) error {
	query := `
		UPDATE assignments
		SET returned_at = $2, status = $3, remarks = $4
		WHERE id = $1
	`
	result, err := r.q.ExecContext(ctx, query,
		assignment.ID,
		assignment.ReturnedAt,
		string(assignment.Status),
		assignment.Remarks,
	)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	return requireOneRow(result, domain.NewNotFound("assignment not found"))
}

// List retrieves assignments based on filter criteria, newest first
func (r *PostgresAssignmentRepository) List(ctx context.Context, filter domain.AssignmentFilter) ([]*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments`
	var conditions []string
	var args []interface{}

	if !filter.IncludeDeleted {
		args = append(args, string(domain.AssignmentStatusDeleted))
		conditions = append(conditions, fmt.Sprintf("status <> $%d", len(args)))
	}
	if filter.AssetID != nil {
		args = append(args, *filter.AssetID)
		conditions = append(conditions, fmt.Sprintf("asset_id = $%d", len(args)))
	}
	if filter.HolderID != nil {
		args = append(args, *filter.HolderID)
		conditions = append(conditions, fmt.Sprintf("holder_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY assigned_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*domain.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

func scanAssignment(row rowScanner) (*domain.Assignment, error) {
	var assignment domain.Assignment
	var status string
	var returnedAt sql.NullTime

	err := row.Scan(
		&assignment.ID,
		&assignment.AssetID,
		&assignment.HolderID,
		&assignment.AssignedByID,
		&assignment.AssignedAt,
		&assignment.ExpectedReturnAt,
		&returnedAt,
		&status,
		&assignment.Remarks,
	)
	if err != nil {
		return nil, err
	}

	assignment.Status = domain.AssignmentStatus(status)
	if returnedAt.Valid {
		assignment.ReturnedAt = &returnedAt.Time
	}
	return &assignment, nil
}
