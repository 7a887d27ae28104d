package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/koshhq/kosh/internal/ports"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the same repository
// code runs inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store implements ports.Store on PostgreSQL
type Store struct {
	db *sql.DB
}

// NewStore creates a new PostgreSQL-backed store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Repos returns repositories bound to the connection pool
func (s *Store) Repos() ports.Repositories {
	return newRepositories(s.db, false)
}

// WithinTx runs fn inside one database transaction. Reads on asset and
// holder rows take row locks so precondition checks hold until commit.
func (s *Store) WithinTx(ctx context.Context, fn func(r ports.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(newRepositories(tx, true)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func newRepositories(q querier, inTx bool) ports.Repositories {
	return ports.Repositories{
		Assets:      &PostgresAssetRepository{q: q, inTx: inTx},
		Assignments: &PostgresAssignmentRepository{q: q},
		Holders:     &PostgresHolderRepository{q: q, inTx: inTx},
		RepairLogs:  &PostgresRepairLogRepository{q: q},
		Audits:      &PostgresAuditRepository{q: q},
	}
}

// forUpdate appends a row lock clause to lookups running inside a
// transaction.
func forUpdate(query string, inTx bool) string {
	if inTx {
		return query + " FOR UPDATE"
	}
	return query
}
