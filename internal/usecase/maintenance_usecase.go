package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/koshhq/kosh/internal/domain"
	"github.com/koshhq/kosh/internal/ports"
)

// MaintenanceEngine drives the repair and retirement lifecycle and appends
// to the repair history.
type MaintenanceEngine struct {
	store    ports.Store
	audit    *AuditTrail
	notifier ports.NotificationService
	logger   *logrus.Logger
}

// NewMaintenanceEngine creates a new maintenance engine
func NewMaintenanceEngine(store ports.Store, audit *AuditTrail, notifier ports.NotificationService, logger *logrus.Logger) *MaintenanceEngine {
	return &MaintenanceEngine{store: store, audit: audit, notifier: notifier, logger: logger}
}

// SendForRepair moves an Available or Assigned asset into maintenance and
// records the status it held, so repair completion can restore it.
func (e *MaintenanceEngine) SendForRepair(ctx context.Context, serialNumber, remarks, actorID string) error {
	var assetID string
	err := e.store.WithinTx(ctx, func(repos ports.Repositories) error {
		asset, err := repos.Assets.FindBySerial(ctx, serialNumber)
		if err != nil {
			return err
		}
		assetID = asset.ID

		prior := asset.Status
		if err := asset.Transition(domain.AssetStatusUnderMaintenance); err != nil {
			return err
		}
		if err := repos.Assets.CompareAndSetStatus(ctx, asset.ID, prior, domain.AssetStatusUnderMaintenance); err != nil {
			return err
		}

		record := domain.NewRepairRecord(asset.ID, domain.RepairStatusUnderRepair, remarks, actorID, actorID)
		record.PriorStatus = prior
		if err := repos.RepairLogs.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to append repair record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.audit.Record(ctx, "Asset Sent For Repair", actorID, domain.AuditTarget{Kind: domain.TargetKindAsset, ID: assetID}, map[string]string{
		"serial_number": serialNumber,
	})
	return nil
}

// MarkRepaired moves an asset out of maintenance, restoring the status
// stored when maintenance began.
func (e *MaintenanceEngine) MarkRepaired(ctx context.Context, serialNumber, remarks, actorID string) error {
	var assetID string
	err := e.store.WithinTx(ctx, func(repos ports.Repositories) error {
		asset, err := repos.Assets.FindBySerial(ctx, serialNumber)
		if err != nil {
			return err
		}
		assetID = asset.ID

		if asset.Status != domain.AssetStatusUnderMaintenance {
			return domain.NewConflict("asset " + serialNumber + " is not under maintenance")
		}

		restore := domain.AssetStatus("")
		if open, err := repos.RepairLogs.FindLatestOpen(ctx, asset.ID); err == nil {
			restore = open.PriorStatus
		}
		if !restore.IsValid() {
			// older records carry no prior status; fall back to the holder reference
			if asset.HolderID != nil {
				restore = domain.AssetStatusAssigned
			} else {
				restore = domain.AssetStatusAvailable
			}
		}

		if err := repos.Assets.CompareAndSetStatus(ctx, asset.ID, domain.AssetStatusUnderMaintenance, restore); err != nil {
			return err
		}

		record := domain.NewRepairRecord(asset.ID, domain.RepairStatusRepaired, remarks, actorID, actorID)
		if err := repos.RepairLogs.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to append repair record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.audit.Record(ctx, "Asset Repaired", actorID, domain.AuditTarget{Kind: domain.TargetKindAsset, ID: assetID}, map[string]string{
		"serial_number": serialNumber,
	})
	return nil
}

// Retire decommissions an asset from any non-Retired state. An open
// assignment is force-closed as Returned with the retirement remark.
func (e *MaintenanceEngine) Retire(ctx context.Context, serialNumber, remarks, actorID string) error {
	var asset *domain.Asset
	err := e.store.WithinTx(ctx, func(repos ports.Repositories) error {
		var err error
		asset, err = repos.Assets.FindBySerial(ctx, serialNumber)
		if err != nil {
			return err
		}

		if asset.Status == domain.AssetStatusRetired {
			return domain.NewConflict("asset " + serialNumber + " is already retired")
		}

		if asset.HolderID != nil {
			assignment, err := repos.Assignments.FindOpenByAsset(ctx, asset.ID)
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
				assignment.Remarks = assignment.Remarks + "\n[Retired] " + remarks
			}
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

		if err := repos.Assets.CompareAndSetStatus(ctx, asset.ID, asset.Status, domain.AssetStatusRetired); err != nil {
			return err
		}

		record := domain.NewRepairRecord(asset.ID, domain.RepairStatusDecommissioned, remarks, actorID, actorID)
		if err := repos.RepairLogs.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to append repair record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.audit.Record(ctx, "Asset Retired", actorID, domain.AuditTarget{Kind: domain.TargetKindAsset, ID: asset.ID}, map[string]string{
		"serial_number": serialNumber,
	})
	if e.notifier != nil {
		if err := e.notifier.NotifyAssetRetired(ctx, asset); err != nil {
			e.logger.WithError(err).Warn("retirement notification failed")
		}
	}
	return nil
}

// History retrieves repair/retirement records newest first, optionally
// limited to one serial number.
func (e *MaintenanceEngine) History(ctx context.Context, serialNumber *string) ([]*domain.RepairRecord, error) {
	repos := e.store.Repos()
	if serialNumber == nil {
		return repos.RepairLogs.List(ctx, nil)
	}
	asset, err := repos.Assets.FindBySerial(ctx, *serialNumber)
	if err != nil {
		return nil, err
	}
	return repos.RepairLogs.List(ctx, &asset.ID)
}
