package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/koshhq/kosh/internal/domain"
	"github.com/koshhq/kosh/internal/ports"
)

// CreateAssetRequest represents the request to register an asset
type CreateAssetRequest struct {
	Name           string             `json:"name"`
	Category       string             `json:"category"`
	SerialNumber   string             `json:"serial_number"`
	Description    string             `json:"description"`
	PurchaseDate   *time.Time         `json:"purchase_date,omitempty"`
	WarrantyExpiry *time.Time         `json:"warranty_expiry,omitempty"`
	Cost           float64            `json:"cost"`
	Status         domain.AssetStatus `json:"status,omitempty"`
}

// UpdateAssetRequest represents a partial update. Only non-nil fields are
// applied; status never changes through this path.
type UpdateAssetRequest struct {
	Name           *string    `json:"name,omitempty"`
	Category       *string    `json:"category,omitempty"`
	SerialNumber   *string    `json:"serial_number,omitempty"`
	Description    *string    `json:"description,omitempty"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	WarrantyExpiry *time.Time `json:"warranty_expiry,omitempty"`
	Cost           *float64   `json:"cost,omitempty"`
}

// AssetRegistry owns the canonical asset record
type AssetRegistry struct {
	store  ports.Store
	audit  *AuditTrail
	logger *logrus.Logger
}

// NewAssetRegistry creates a new asset registry
func NewAssetRegistry(store ports.Store, audit *AuditTrail, logger *logrus.Logger) *AssetRegistry {
	return &AssetRegistry{store: store, audit: audit, logger: logger}
}

// Create registers a new asset. Status defaults to Available.
func (r *AssetRegistry) Create(ctx context.Context, req CreateAssetRequest, actorID string) (*domain.Asset, error) {
	asset, err := domain.NewAsset(req.SerialNumber, req.Name, req.Category, req.Description, req.Cost, req.Status)
	if err != nil {
		return nil, err
	}
	asset.PurchaseDate = req.PurchaseDate
	asset.WarrantyExpiry = req.WarrantyExpiry

	repos := r.store.Repos()
	if _, err := repos.Assets.FindBySerial(ctx, req.SerialNumber); err == nil {
		return nil, domain.NewConflict("asset with serial number " + req.SerialNumber + " already exists")
	} else if !domain.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check serial number: %w", err)
	}

	if err := repos.Assets.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	r.audit.Record(ctx, "Asset Created", actorID, domain.AuditTarget{Kind: domain.TargetKindAsset, ID: asset.ID}, map[string]string{
		"serial_number": asset.SerialNumber,
		"category":      asset.Category,
	})
	return asset, nil
}

// Get retrieves an asset by serial number
func (r *AssetRegistry) Get(ctx context.Context, serialNumber string) (*domain.Asset, error) {
	return r.store.Repos().Assets.FindBySerial(ctx, serialNumber)
}

// List retrieves assets matching the filter
func (r *AssetRegistry) List(ctx context.Context, filter domain.AssetFilter) ([]*domain.Asset, error) {
	return r.store.Repos().Assets.List(ctx, filter)
}

// Update applies a partial attribute update. Renaming the serial number is
// rejected: it is the externally visible identity of the asset.
func (r *AssetRegistry) Update(ctx context.Context, serialNumber string, req UpdateAssetRequest, actorID string) (*domain.Asset, error) {
	if req.SerialNumber != nil && *req.SerialNumber != serialNumber {
		return nil, domain.NewValidation("serial number cannot be changed")
	}
	if req.Cost != nil && *req.Cost < 0 {
		return nil, domain.NewValidation("invalid asset cost, must be a positive number")
	}

	repos := r.store.Repos()
	asset, err := repos.Assets.FindBySerial(ctx, serialNumber)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		asset.Name = *req.Name
	}
	if req.Category != nil {
		asset.Category = *req.Category
	}
	if req.Description != nil {
		asset.Description = *req.Description
	}
	if req.PurchaseDate != nil {
		asset.PurchaseDate = req.PurchaseDate
	}
	if req.WarrantyExpiry != nil {
		asset.WarrantyExpiry = req.WarrantyExpiry
	}
	if req.Cost != nil {
		asset.Cost = *req.Cost
	}
	asset.UpdatedAt = time.Now()

	if err := repos.Assets.Update(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to update asset: %w", err)
	}

	r.audit.Record(ctx, "Asset Updated", actorID, domain.AuditTarget{Kind: domain.TargetKindAsset, ID: asset.ID}, map[string]string{
		"serial_number": asset.SerialNumber,
	})
	return asset, nil
}

// Delete hard-removes an asset. An open assignment is force-closed with
// status Deleted first; already-returned history keeps its Returned status.
func (r *AssetRegistry) Delete(ctx context.Context, serialNumber, actorID string) error {
	var assetID string
	err := r.store.WithinTx(ctx, func(repos ports.Repositories) error {
		asset, err := repos.Assets.FindBySerial(ctx, serialNumber)
		if err != nil {
			return err
		}
		assetID = asset.ID

		if asset.HolderID != nil {
			assignment, err := repos.Assignments.FindOpenByAsset(ctx, asset.ID)
			if err != nil {
				if domain.IsNotFound(err) {
					return domain.NewIntegrity("asset " + serialNumber + " has a holder but no open assignment")
				}
				return err
			}
			if err := assignment.Close(domain.AssignmentStatusDeleted); err != nil {
				return err
			}
			assignment.Remarks = "[Deleted] " + assignment.Remarks
			if err := repos.Assignments.Update(ctx, assignment); err != nil {
				return fmt.Errorf("failed to close assignment: %w", err)
			}
			if err := repos.Holders.MarkIndexReturned(ctx, assignment.HolderID, assignment.ID); err != nil {
				return fmt.Errorf("failed to flip holder index entry: %w", err)
			}
			if err := repos.Assets.SetHolder(ctx, asset.ID, nil); err != nil {
				return fmt.Errorf("failed to clear holder: %w", err)
			}
		}

		if err := repos.Assets.Delete(ctx, asset.ID); err != nil {
			return fmt.Errorf("failed to delete asset: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.audit.Record(ctx, "Asset Deleted", actorID, domain.AuditTarget{Kind: domain.TargetKindAsset, ID: assetID}, map[string]string{
		"serial_number": serialNumber,
	})
	return nil
}

// Stats returns asset counts per status bucket
func (r *AssetRegistry) Stats(ctx context.Context) (*domain.AssetStats, error) {
	return r.store.Repos().Assets.CountByStatus(ctx)
}
