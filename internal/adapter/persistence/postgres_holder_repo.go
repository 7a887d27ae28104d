package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/koshhq/kosh/internal/domain"
)

const holderColumns = "id, name, email, password_hash, verified, created_at"

// PostgresHolderRepository implements HolderRepository using PostgreSQL.
// The holder index lives in the holder_assets table.
type PostgresHolderRepository struct {
	q    querier
	inTx bool
}

// Create saves a holder record
func (r *PostgresHolderRepository) Create(ctx context.Context, holder *domain.Holder) error {
	query := `
		INSERT INTO holders (` + holderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		holder.ID,
		holder.Name,
		holder.Email,
		holder.PasswordHash,
		holder.Verified,
		holder.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.NewConflict("holder with email " + holder.Email + " already exists")
		}
		return fmt.Errorf("failed to create holder: %w", err)
	}
	return nil
}

// FindByID retrieves a holder by its ID
func (r *PostgresHolderRepository) FindByID(ctx context.Context, id string) (*domain.Holder, error) {
	query := forUpdate(`SELECT `+holderColumns+` FROM holders WHERE id = $1`, r.inTx)
	return r.scanWithIndex(ctx, query, id, "holder not found")
}

// FindByEmail retrieves a holder by email. Inside a transaction the row is
// locked so the category-exclusivity check holds until commit.
func (r *PostgresHolderRepository) FindByEmail(ctx context.Context, email string) (*domain.Holder, error) {
	query := forUpdate(`SELECT `+holderColumns+` FROM holders WHERE email = $1`, r.inTx)
	return r.scanWithIndex(ctx, query, email, "holder not found with email "+email)
}

// FindByName retrieves holders whose name contains the fragment, case-insensitive
func (r *PostgresHolderRepository) FindByName(ctx context.Context, name string) ([]*domain.Holder, error) {
	query := `SELECT ` + holderColumns + ` FROM holders WHERE name ILIKE $1 ORDER BY email`
	rows, err := r.q.QueryContext(ctx, query, "%"+name+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to find holders by name: %w", err)
	}
	defer rows.Close()

	var holders []*domain.Holder
	for rows.Next() {
		holder, err := scanHolder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holder: %w", err)
		}
		holders = append(holders, holder)
	}
	return holders, rows.Err()
}

// AppendIndexEntry appends one entry to the holder's assignment index
func (r *PostgresHolderRepository) AppendIndexEntry(ctx context.Context, holderID string, entry domain.IndexEntry) error {
	query := `
		INSERT INTO holder_assets (holder_id, assignment_id, returned, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := r.q.ExecContext(ctx, query, holderID, entry.AssignmentID, entry.Returned)
	if err != nil {
		return fmt.Errorf("failed to append holder index entry: %w", err)
	}
	return nil
}

// MarkIndexReturned flips the index entry for an assignment to returned
func (r *PostgresHolderRepository) MarkIndexReturned(ctx context.Context, holderID, assignmentID string) error {
	query := `UPDATE holder_assets SET returned = TRUE WHERE holder_id = $1 AND assignment_id = $2`
	result, err := r.q.ExecContext(ctx, query, holderID, assignmentID)
	if err != nil {
		return fmt.Errorf("failed to mark holder index entry returned: %w", err)
	}
	return requireOneRow(result, domain.NewNotFound("assignment not found in holder's index"))
}

// OpenIndexEntries retrieves the holder's index entries that are not returned
func (r *PostgresHolderRepository) OpenIndexEntries(ctx context.Context, holderID string) ([]domain.IndexEntry, error) {
	query := `
		SELECT assignment_id, returned FROM holder_assets
		WHERE holder_id = $1 AND returned = FALSE
		ORDER BY created_at
	`
	rows, err := r.q.QueryContext(ctx, query, holderID)
	if err != nil {
		return nil, fmt.Errorf("failed to read holder index: %w", err)
	}
	defer rows.Close()

	var entries []domain.IndexEntry
	for rows.Next() {
		var entry domain.IndexEntry
		if err := rows.Scan(&entry.AssignmentID, &entry.Returned); err != nil {
			return nil, fmt.Errorf("failed to scan holder index entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *PostgresHolderRepository) scanWithIndex(ctx context.Context, query, arg, notFound string) (*domain.Holder, error) {
	holder, err := scanHolder(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFound(notFound)
		}
		return nil, fmt.Errorf("failed to find holder: %w", err)
	}

	indexQuery := `SELECT assignment_id, returned FROM holder_assets WHERE holder_id = $1 ORDER BY created_at`
	rows, err := r.q.QueryContext(ctx, indexQuery, holder.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read holder index: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.IndexEntry
		if err := rows.Scan(&entry.AssignmentID, &entry.Returned); err != nil {
			return nil, fmt.Errorf("failed to scan holder index entry: %w", err)
		}
		holder.Index = append(holder.Index, entry)
	}
	return holder, rows.Err()
}

func scanHolder(row rowScanner) (*domain.Holder, error) {
	var holder domain.Holder
	err := row.Scan(
		&holder.ID,
		&holder.Name,
		&holder.Email,
		&holder.PasswordHash,
		&holder.Verified,
		&holder.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &holder, nil
}
