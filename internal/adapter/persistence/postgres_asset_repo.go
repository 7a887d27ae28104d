package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/koshhq/kosh/internal/domain"
)

const assetColumns = "id, serial_number, name, category, description, purchase_date, warranty_expiry, cost, status, holder_id, created_at, updated_at"

// PostgresAssetRepository implements AssetRepository using PostgreSQL
type PostgresAssetRepository struct {
	q    querier
	inTx bool
}

// Create saves a new asset
func (r *PostgresAssetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	query := `
		INSERT INTO assets (` + assetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.q.ExecContext(ctx, query,
		asset.ID,
		asset.SerialNumber,
		asset.Name,
		asset.Category,
		asset.Description,
		asset.PurchaseDate,
		asset.WarrantyExpiry,
		asset.Cost,
		string(asset.Status),
		asset.HolderID,
		asset.CreatedAt,
		asset.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.NewConflict("asset with serial number " + asset.SerialNumber + " already exists")
		}
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// FindByID retrieves an asset by its internal ID
func (r *PostgresAssetRepository) FindByID(ctx context.Context, id string) (*domain.Asset, error) {
	query := forUpdate(`SELECT `+assetColumns+` FROM assets WHERE id = $1`, r.inTx)
	return r.scanOne(ctx, query, id, "asset not found")
}

// FindBySerial retrieves an asset by serial number. Inside a transaction
// the row is locked until commit.
func (r *PostgresAssetRepository) FindBySerial(ctx context.Context, serialNumber string) (*domain.Asset, error) {
	query := forUpdate(`SELECT `+assetColumns+` FROM assets WHERE serial_number = $1`, r.inTx)
	return r.scanOne(ctx, query, serialNumber, "asset not found with serial number "+serialNumber)
}

// FindByName retrieves assets whose name contains the fragment, case-insensitive
func (r *PostgresAssetRepository) FindByName(ctx context.Context, name string) ([]*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE name ILIKE $1 ORDER BY serial_number`
	rows, err := r.q.QueryContext(ctx, query, "%"+name+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to find assets by name: %w", err)
	}
	defer rows.Close()
	return scanAssets(rows)
}

// FindAvailableByCategory retrieves one available asset in the category
func (r *PostgresAssetRepository) FindAvailableByCategory(ctx context.Context, category string) (*domain.Asset, error) {
	query := `
		SELECT ` + assetColumns + ` FROM assets
		WHERE category = $1 AND status = $2
		ORDER BY serial_number
		LIMIT 1
	`
	row := r.q.QueryRowContext(ctx, query, category, string(domain.AssetStatusAvailable))
	asset, err := scanAsset(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFound("no available asset in category " + category)
		}
		return nil, fmt.Errorf("failed to find available asset: %w", err)
	}
	return asset, nil
}

// Update persists attribute changes. Status and holder are written only
// through CompareAndSetStatus and SetHolder.
func (r *PostgresAssetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	query := `
		UPDATE assets
		SET name = $2, category = $3, description = $4, purchase_date = $5,
		    warranty_expiry = $6, cost = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := r.q.ExecContext(ctx, query,
		asset.ID,
		asset.Name,
		asset.Category,
		asset.Description,
		asset.PurchaseDate,
		asset.WarrantyExpiry,
		asset.Cost,
		asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	return requireOneRow(result, domain.NewNotFound("asset not found"))
}

// CompareAndSetStatus atomically moves the asset between statuses. Zero rows
// means the asset raced away from the expected status.
func (r *PostgresAssetRepository) CompareAndSetStatus(ctx context.Context, id string, from, to domain.AssetStatus) error {
	query := `UPDATE assets SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`
	result, err := r.q.ExecContext(ctx, query, id, string(from), string(to))
	if err != nil {
		return fmt.Errorf("failed to update asset status: %w", err)
	}
	return requireOneRow(result, domain.NewConflict("asset is no longer "+string(from)))
}

// SetHolder sets or clears the current-holder reference
func (r *PostgresAssetRepository) SetHolder(ctx context.Context, id string, holderID *string) error {
	query := `UPDATE assets SET holder_id = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.q.ExecContext(ctx, query, id, holderID)
	if err != nil {
		return fmt.Errorf("failed to set asset holder: %w", err)
	}
	return requireOneRow(result, domain.NewNotFound("asset not found"))
}

// Delete hard-removes the asset record
func (r *PostgresAssetRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return requireOneRow(result, domain.NewNotFound("asset not found"))
}

// List retrieves assets based on filter criteria
func (r *PostgresAssetRepository) List(ctx context.Context, filter domain.AssetFilter) ([]*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets`
	var conditions []string
	var args []interface{}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY serial_number"
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
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()
	return scanAssets(rows)
}

// CountByStatus returns asset counts per status bucket
func (r *PostgresAssetRepository) CountByStatus(ctx context.Context) (*domain.AssetStats, error) {
	query := `SELECT status, COUNT(*) FROM assets GROUP BY status`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count assets: %w", err)
	}
	defer rows.Close()

	stats := &domain.AssetStats{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan asset counts: %w", err)
		}
		stats.Total += count
		switch domain.AssetStatus(status) {
		case domain.AssetStatusAvailable:
			stats.Available = count
		case domain.AssetStatusAssigned:
			stats.Assigned = count
		case domain.AssetStatusUnderMaintenance:
			stats.Maintenance = count
		case domain.AssetStatusRetired:
			stats.Retired = count
		}
	}
	return stats, rows.Err()
}

func (r *PostgresAssetRepository) scanOne(ctx context.Context, query, arg, notFound string) (*domain.Asset, error) {
	asset, err := scanAsset(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFound(notFound)
		}
		return nil, fmt.Errorf("failed to find asset: %w", err)
	}
	return asset, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAsset(row rowScanner) (*domain.Asset, error) {
	var asset domain.Asset
	var status string
	var holderID sql.NullString

	err := row.Scan(
		&asset.ID,
		&asset.SerialNumber,
		&asset.Name,
		&asset.Category,
		&asset.Description,
		&asset.PurchaseDate,
		&asset.WarrantyExpiry,
		&asset.Cost,
		&status,
		&holderID,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	asset.Status = domain.AssetStatus(status)
	if holderID.Valid {
		asset.HolderID = &holderID.String
	}
	return &asset, nil
}

func scanAssets(rows *sql.Rows) ([]*domain.Asset, error) {
	var assets []*domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

func requireOneRow(result sql.Result, missing error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return missing
	}
	return nil
}
