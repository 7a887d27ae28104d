package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/koshhq/kosh/internal/domain"
)

const auditColumns = "id, action, actor_id, target_kind, target_id, details, created_at"

// PostgresAuditRepository implements AuditRepository using PostgreSQL
type PostgresAuditRepository struct {
	q querier
}

// Create appends an audit entry
func (r *PostgresAuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_logs (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}
	_, err = r.q.ExecContext(ctx, query,
		entry.ID,
		entry.Action,
		entry.ActorID,
		string(entry.Target.Kind),
		entry.Target.ID,
		details,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

// List retrieves audit entries newest first
func (r *PostgresAuditRepository) List(ctx context.Context, limit, offset int) ([]*domain.AuditEntry, error) {
	query := `
		SELECT ` + auditColumns + ` FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		var kind string
		var details []byte

		err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.ActorID,
			&kind,
			&entry.Target.ID,
			&details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Target.Kind = domain.TargetKind(kind)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal audit details: %w", err)
			}
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
