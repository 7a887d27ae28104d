package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/koshhq/kosh/internal/domain"
	"github.com/koshhq/kosh/internal/ports"
)

// AssignmentEngine orchestrates assign and return, keeping the asset record,
// the assignment ledger, and the holder index consistent as one unit.
type AssignmentEngine struct {
	store    ports.Store
	audit    *AuditTrail
	notifier ports.NotificationService
	logger   *logrus.Logger
}

// NewAssignmentEngine creates a new assignment engine
func NewAssignmentEngine(store ports.Store, audit *AuditTrail, notifier ports.NotificationService, logger *logrus.Logger) *AssignmentEngine {
	return &AssignmentEngine{store: store, audit: audit, notifier: notifier, logger: logger}
}

// Assign hands an asset to a verified holder. The category-exclusivity check
// runs inside the transaction so a concurrent assign cannot slip a second
// asset of the same category past it, and the status change is a
// compare-and-swap from Available.
func (e *AssignmentEngine) Assign(ctx context.Context, serialNumber, holderEmail, actorID string) (*domain.Assignment, error) {
	var (
		assignment *domain.Assignment
		asset      *domain.Asset
		holder     *domain.Holder
	)

	err := e.store.WithinTx(ctx, func(repos ports.Repositories) error {
		var err error
		asset, err = repos.Assets.FindBySerial(ctx, serialNumber)
		if err != nil {
			return err
		}

		holder, err = repos.Holders.FindByEmail(ctx, holderEmail)
		if err != nil || !holder.Verified {
			return domain.NewNotFound("no verified holder found with email " + holderEmail)
		}

		if asset.Status != domain.AssetStatusAvailable {
			return domain.NewConflict("asset " + serialNumber + " is not available for assignment")
		}

		if err := e.checkCategoryExclusivity(ctx, repos, holder.ID, asset.Category); err != nil {
			return err
		}

		assignment = domain.NewAssignment(asset.ID, holder.ID, actorID, "")
		if err := repos.Assignments.Create(ctx, assignment); err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}
		if err := repos.Holders.AppendIndexEntry(ctx, holder.ID, domain.IndexEntry{AssignmentID: assignment.ID}); err != nil {
			return fmt.Errorf("failed to append holder index entry: %w", err)
		}
		if err := repos.Assets.CompareAndSetStatus(ctx, asset.ID, domain.AssetStatusAvailable, domain.AssetStatusAssigned); err != nil {
			return err
		}
		if err := repos.Assets.SetHolder(ctx, asset.ID, &holder.ID); err != nil {
			return fmt.Errorf("failed to set holder: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.audit.Record(ctx, "Asset Assigned", actorID, domain.AuditTarget{Kind: domain.TargetKindAsset, ID: asset.ID}, map[string]string{
		"serial_number": serialNumber,
		"assigned_to":   holder.ID,
		"assigned_by":   actorID,
	})
	if e.notifier != nil {
		if err := e.notifier.NotifyAssetAssigned(ctx, asset, holder); err != nil {
			e.logger.WithError(err).Warn("assignment notification failed")
		}
	}
	return assignment, nil
}

// checkCategoryExclusivity walks the holder's open index entries and rejects
// when any open assignment resolves to an asset of the same category.
func (e *AssignmentEngine) checkCategoryExclusivity(ctx context.Context, repos ports.Repositories, holderID, category string) error {
	entries, err := repos.Holders.OpenIndexEntries(ctx, holderID)
	if err != nil {
		return fmt.Errorf("failed to read holder index: %w", err)
	}
	for _, entry := range entries {
		assignment, err := repos.Assignments.FindByID(ctx, entry.AssignmentID)
		if err != nil {
			return domain.NewIntegrity("holder index references missing assignment " + entry.AssignmentID)
		}
		if !assignment.IsOpen() {
			continue
		}
		held, err := repos.Assets.FindByID(ctx, assignment.AssetID)
		if err != nil {
			// asset deleted out from under an open assignment
			return domain.NewIntegrity("open assignment " + assignment.ID + " references missing asset")
		}
		if held.Category == category {
			return domain.NewConflict("holder has already been assigned an asset belonging to " + category + " category")
		}
	}
	return nil
}

// Return closes the open assignment for an assigned asset and makes it
// available again.
func (e *AssignmentEngine) Return(ctx context.Context, serialNumber, remarks, actorID string) (*domain.Assignment, error) {
	var (
		assignment *domain.Assignment
		asset      *domain.Asset
		holder     *domain.Holder
	)

	err := e.store.WithinTx(ctx, func(repos ports.Repositories) error {
		var err error
		asset, err = repos.Assets.FindBySerial(ctx, serialNumber)
		if err != nil {
			return err
		}
		if asset.HolderID == nil {
			return domain.NewConflict("asset " + serialNumber + " is not assigned to anyone")
		}
		holder, _ = repos.Holders.FindByID(ctx, *asset.HolderID)

		assignment, err = repos.Assignments.FindOpenByAsset(ctx, asset.ID)
		if err != nil {
			if domain.IsNotFound(err) {
				return domain.NewIntegrity("asset " + serialNumber + " has a holder but no open assignment")
			}
			return err
		}

		if err := assignment.Close(domain.AssignmentStatusReturned); err != nil {
			return err
		}
		if remarks != "" {
			assignment.Remarks = remarks
		}
		if err := repos.Assignments.Update(ctx, assignment); err != nil {
			return fmt.Errorf("failed to close assignment: %w", err)
		}
		if err := repos.Holders.MarkIndexReturned(ctx, assignment.HolderID, assignment.ID); err != nil {
			return fmt.Errorf("failed to flip holder index entry: %w", err)
		}
		if err := repos.Assets.CompareAndSetStatus(ctx, asset.ID, asset.Status, domain.AssetStatusAvailable); err != nil {
			return err
		}
		if err := repos.Assets.SetHolder(ctx, asset.ID, nil); err != nil {
			return fmt.Errorf("failed to clear holder: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.audit.Record(ctx, "Asset Returned", actorID, domain.AuditTarget{Kind: domain.TargetKindAsset, ID: asset.ID}, map[string]string{
		"serial_number": serialNumber,
		"returned_by":   assignment.HolderID,
	})
	if e.notifier != nil && holder != nil {
		if err := e.notifier.NotifyAssetReturned(ctx, asset, holder); err != nil {
			e.logger.WithError(err).Warn("return notification failed")
		}
	}
	return assignment, nil
}

// List retrieves assignments matching the filter. Deleted records stay
// hidden unless the filter asks for them.
func (e *AssignmentEngine) List(ctx context.Context, filter domain.AssignmentFilter) ([]*domain.Assignment, error) {
	return e.store.Repos().Assignments.List(ctx, filter)
}
