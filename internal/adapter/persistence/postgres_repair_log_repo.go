package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/koshhq/kosh/internal/domain"
)

const repairLogColumns = "id, asset_id, status, remarks, reported_by, handled_by, prior_status, created_at"

// PostgresRepairLogRepository implements RepairLogRepository using PostgreSQL
type PostgresRepairLogRepository struct {
	q querier
}

// Create appends a history record
func (r *PostgresRepairLogRepository) Create(ctx context.Context, record *domain.RepairRecord) error {
	query := `
		INSERT INTO repair_logs (` + repairLogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var prior *string
	if record.PriorStatus != "" {
		s := string(record.PriorStatus)
		prior = &s
	}
	_, err := r.q.ExecContext(ctx, query,
		record.ID,
		record.AssetID,
		string(record.Status),
		record.Remarks,
		record.ReportedByID,
		record.HandledByID,
		prior,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create repair record: %w", err)
	}
	return nil
}

// FindLatestOpen retrieves the newest record for the asset when it is still
// an Under Repair entry.
func (r *PostgresRepairLogRepository) FindLatestOpen(ctx context.Context, assetID string) (*domain.RepairRecord, error) {
	query := `
		SELECT ` + repairLogColumns + ` FROM repair_logs
		WHERE asset_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	record, err := scanRepairRecord(r.q.QueryRowContext(ctx, query, assetID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFound("no open repair record for asset")
		}
		return nil, fmt.Errorf("failed to find repair record: %w", err)
	}
	if record.Status != domain.RepairStatusUnderRepair {
		return nil, domain.NewNotFound("no open repair record for asset")
	}
	return record, nil
}

// List retrieves history records, newest first, optionally per asset
func (r *PostgresRepairLogRepository) List(ctx context.Context, assetID *string) ([]*domain.RepairRecord, error) {
	query := `SELECT ` + repairLogColumns + ` FROM repair_logs`
	var args []interface{}
	if assetID != nil {
		query += ` WHERE asset_id = $1`
		args = append(args, *assetID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list repair records: %w", err)
	}
	defer rows.Close()

	var records []*domain.RepairRecord
	for rows.Next() {
		record, err := scanRepairRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repair record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRepairRecord(row rowScanner) (*domain.RepairRecord, error) {
	var record domain.RepairRecord
	var status string
	var prior sql.NullString

	err := row.Scan(
		&record.ID,
		&record.AssetID,
		&status,
		&record.Remarks,
		&record.ReportedByID,
		&record.HandledByID,
		&prior,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Status = domain.RepairStatus(status)
	if prior.Valid {
		record.PriorStatus = domain.AssetStatus(prior.String)
	}
	return &record, nil
}
