package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssetStatus represents the lifecycle status of an asset
type AssetStatus string

const (
	AssetStatusAvailable        AssetStatus = "Available"
	AssetStatusAssigned         AssetStatus = "Assigned"
	AssetStatusUnderMaintenance AssetStatus = "Under Maintenance"
	AssetStatusRetired          AssetStatus = "Retired"
)

// IsValid reports whether s is one of the four known statuses.
func (s AssetStatus) IsValid() bool {
	switch s {
	case AssetStatusAvailable, AssetStatusAssigned, AssetStatusUnderMaintenance, AssetStatusRetired:
		return true
	}
	return false
}

// assetTransitions is the single transition table for the asset lifecycle.
// Retired is terminal.
var assetTransitions = map[AssetStatus]map[AssetStatus]bool{
	AssetStatusAvailable: {
		AssetStatusAssigned:         true,
		AssetStatusUnderMaintenance: true,
		AssetStatusRetired:          true,
	},
	AssetStatusAssigned: {
		AssetStatusAvailable:        true,
		AssetStatusUnderMaintenance: true,
		AssetStatusRetired:          true,
	},
	AssetStatusUnderMaintenance: {
		AssetStatusAvailable: true,
		AssetStatusAssigned:  true,
		AssetStatusRetired:   true,
	},
	AssetStatusRetired: {},
}

// CanTransition reports whether the lifecycle allows moving from one status to another.
func CanTransition(from, to AssetStatus) bool {
	return assetTransitions[from][to]
}

// Asset represents a tracked physical item identified by a unique serial number
type Asset struct {
	ID             string      `json:"id"`
	SerialNumber   string      `json:"serial_number"`
	Name           string      `json:"name"`
	Category       string      `json:"category"`
	Description    string      `json:"description,omitempty"`
	PurchaseDate   *time.Time  `json:"purchase_date,omitempty"`
	WarrantyExpiry *time.Time  `json:"warranty_expiry,omitempty"`
	Cost           float64     `json:"cost"`
	Status         AssetStatus `json:"status"`
	HolderID       *string     `json:"holder_id,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewAsset creates a new asset. Status defaults to Available when empty.
func NewAsset(serialNumber, name, category, description string, cost float64, status AssetStatus) (*Asset, error) {
	if serialNumber == "" || name == "" || category == "" {
		return nil, NewValidation("name, category, and serial number are required")
	}
	if cost < 0 {
		return nil, NewValidation("invalid asset cost, must be a positive number")
	}
	if status == "" {
		status = AssetStatusAvailable
	}
	if !status.IsValid() {
		return nil, NewValidation("invalid asset status provided")
	}
	now := time.Now()
	return &Asset{
		ID:           uuid.NewString(),
		SerialNumber: serialNumber,
		Name:         name,
		Category:     category,
		Description:  description,
		Cost:         cost,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Transition moves the asset to the target status, rejecting moves the
// lifecycle table does not allow.
func (a *Asset) Transition(to AssetStatus) error {
	if !CanTransition(a.Status, to) {
		return NewConflict("asset " + a.SerialNumber + " cannot move from " + string(a.Status) + " to " + string(to))
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	return nil
}

// AssetFilter represents filters for listing assets
type AssetFilter struct {
	Category *string      `json:"category,omitempty"`
	Status   *AssetStatus `json:"status,omitempty"`
	Limit    int          `json:"limit"`
	Offset   int          `json:"offset"`
}

// AssetStats holds asset counts per status bucket
type AssetStats struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	Assigned    int `json:"assigned"`
	Maintenance int `json:"maintenance"`
	Retired     int `json:"retired"`
}
