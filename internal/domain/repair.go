package domain

import (
	"time"

	"github.com/google/uuid"
)

// RepairStatus represents one maintenance/retirement transition
type RepairStatus string

const (
	RepairStatusUnderRepair    RepairStatus = "Under Repair"
	RepairStatusRepaired       RepairStatus = "Repaired"
	RepairStatusDecommissioned RepairStatus = "Decommissioned"
)

// RepairRecord is an append-only history entry describing one transition
// into maintenance, out of maintenance, or into retirement. PriorStatus is
// stored when maintenance begins so the post-repair status is restored from
// the record instead of re-derived.
type RepairRecord struct {
	ID           string       `json:"id"`
	AssetID      string       `json:"asset_id"`
	Status       RepairStatus `json:"status"`
	Remarks      string       `json:"remarks"`
	ReportedByID string       `json:"reported_by_id"`
	HandledByID  string       `json:"handled_by_id"`
	PriorStatus  AssetStatus  `json:"prior_status,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// NewRepairRecord appends-only constructor for a history entry.
func NewRepairRecord(assetID string, status RepairStatus, remarks, reportedByID, handledByID string) *RepairRecord {
	if remarks == "" {
		remarks = "No remarks"
	}
	return &RepairRecord{
		ID:           uuid.NewString(),
		AssetID:      assetID,
		Status:       status,
		Remarks:      remarks,
		ReportedByID: reportedByID,
		HandledByID:  handledByID,
		CreatedAt:    time.Now(),
	}
}
