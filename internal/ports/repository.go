package ports

import (
	"context"

	"github.com/koshhq/kosh/internal/domain"
)

// AssetRepository defines the interface for asset persistence
type AssetRepository interface {
	// Create saves a new asset. A duplicate serial number is a conflict.
	Create(ctx context.Context, asset *domain.Asset) error

	// FindByID retrieves an asset by its internal ID
	FindByID(ctx context.Context, id string) (*domain.Asset, error)

	// FindBySerial retrieves an asset by its serial number
	FindBySerial(ctx context.Context, serialNumber string) (*domain.Asset, error)

	// FindByName retrieves assets whose name contains the given fragment
	FindByName(ctx context.Context, name string) ([]*domain.Asset, error)

	// FindAvailableByCategory retrieves one available asset in the category
	FindAvailableByCategory(ctx context.Context, category string) (*domain.Asset, error)

	// Update persists attribute changes. Status is not written through
	// this path; use CompareAndSetStatus.
	Update(ctx context.Context, asset *domain.Asset) error

	// CompareAndSetStatus atomically moves an asset from one status to
	// another. A row not currently in the from status is a conflict.
	CompareAndSetStatus(ctx context.Context, id string, from, to domain.AssetStatus) error

	// SetHolder sets or clears the current-holder reference
	SetHolder(ctx context.Context, id string, holderID *string) error

	// Delete hard-removes an asset record
	Delete(ctx context.Context, id string) error

	// List retrieves assets based on filter criteria
	List(ctx context.Context, filter domain.AssetFilter) ([]*domain.Asset, error)

	// CountByStatus returns asset counts per status bucket
	CountByStatus(ctx context.Context) (*domain.AssetStats, error)
}

// AssignmentRepository defines the interface for assignment persistence.
// Assignments are never physically removed; closure is a status change.
type AssignmentRepository interface {
	// Create saves a new assignment
	Create(ctx context.Context, assignment *domain.Assignment) error

	// FindByID retrieves an assignment by its ID
	FindByID(ctx context.Context, id string) (*domain.Assignment, error)

	// FindOpenByAsset retrieves the open assignment for an asset, if any
	FindOpenByAsset(ctx context.Context, assetID string) (*domain.Assignment, error)

	// Update persists the one-time closure of an assignment
	Update(ctx context.Context, assignment *domain.Assignment) error

	// List retrieves assignments based on filter criteria
	List(ctx context.Context, filter domain.AssignmentFilter) ([]*domain.Assignment, error)
}

// HolderRepository defines the interface for holder identity lookups and
// the per-holder assignment index this engine writes
type HolderRepository interface {
	// Create saves a holder record
	Create(ctx context.Context, holder *domain.Holder) error

	// FindByID retrieves a holder by its ID
	FindByID(ctx context.Context, id string) (*domain.Holder, error)

	// FindByEmail retrieves a holder by email
	FindByEmail(ctx context.Context, email string) (*domain.Holder, error)

	// FindByName retrieves holders whose name contains the given fragment
	FindByName(ctx context.Context, name string) ([]*domain.Holder, error)

	// AppendIndexEntry appends one entry to the holder's assignment index
	AppendIndexEntry(ctx context.Context, holderID string, entry domain.IndexEntry) error

	// MarkIndexReturned flips the index entry for an assignment to returned
	MarkIndexReturned(ctx context.Context, holderID, assignmentID string) error

	// OpenIndexEntries retrieves the holder's index entries that are not returned
	OpenIndexEntries(ctx context.Context, holderID string) ([]domain.IndexEntry, error)
}

// RepairLogRepository defines the interface for the append-only repair history
type RepairLogRepository interface {
	// Create appends a history record
	Create(ctx context.Context, record *domain.RepairRecord) error

	// FindLatestOpen retrieves the newest Under Repair record for an asset
	FindLatestOpen(ctx context.Context, assetID string) (*domain.RepairRecord, error)

	// List retrieves history records, newest first, optionally per asset
	List(ctx context.Context, assetID *string) ([]*domain.RepairRecord, error)
}

// AuditRepository defines the interface for audit log persistence
type AuditRepository interface {
	// Create appends a new audit entry
	Create(ctx context.Context, entry *domain.AuditEntry) error

	// List retrieves audit entries newest first, paginated
	List(ctx context.Context, limit, offset int) ([]*domain.AuditEntry, error)
}

// Repositories bundles every repository reachable from one store or one
// transaction.
type Repositories struct {
	Assets      AssetRepository
	Assignments AssignmentRepository
	Holders     HolderRepository
	RepairLogs  RepairLogRepository
	Audits      AuditRepository
}

// Store is the transactional boundary supplied by the storage layer. Every
// operation touching more than one record runs inside WithinTx so all writes
// commit or none do.
type Store interface {
	// Repos returns repositories bound to the store without a transaction
	Repos() Repositories

	// WithinTx runs fn against transaction-bound repositories and commits
	// when fn returns nil, rolling back otherwise
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
}
